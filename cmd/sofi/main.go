// Command sofi is the So-Fi endpoint: a full-duplex program piping
// standard input to a speaker and microphone input to standard output over
// an audible FSK link.
package main

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"sofi/internal/logging"
	"sofi/pkg/audio"
	"sofi/pkg/config"
	"sofi/pkg/endpoint"
	"sofi/pkg/wire"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout))
}

func run(args []string, stdin io.Reader, stdout io.Writer) int {
	cfg, usage, help, err := config.FromFlags(args)
	if help {
		fmt.Fprint(stdout, usage)
		return 0
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usage)
		return 1
	}

	logger := logging.New(cfg.DebugLevel)

	device := &audio.PortAudioDevice{SampleRate: float64(cfg.SampleRate)}
	ep, err := endpoint.New(cfg, device, logger)
	if err != nil {
		logger.Error("failed to initialize endpoint", "error", err)
		return 1
	}
	defer ep.Close()

	var failed atomic.Bool
	done := make(chan struct{}, 2)

	if cfg.Sender {
		go func() {
			if err := senderWorker(ep, stdin, cfg.MaxPacketLength, logger); err != nil {
				logger.Error("sender worker failed", "error", err)
				failed.Store(true)
			}
			done <- struct{}{}
		}()
	} else {
		done <- struct{}{}
	}

	if cfg.Receiver {
		go func() {
			if err := receiverWorker(ep, stdout, cfg.KeepOpen, logger); err != nil {
				logger.Error("receiver worker failed", "error", err)
				failed.Store(true)
			}
			done <- struct{}{}
		}()
	} else {
		done <- struct{}{}
	}

	<-done
	<-done
	if failed.Load() {
		return 1
	}
	return 0
}

// packetSender is the seam senderWorker depends on; *endpoint.Endpoint
// satisfies it.
type packetSender interface {
	Send(wire.Packet) error
}

// packetReceiver is the seam receiverWorker depends on; *endpoint.Endpoint
// satisfies it.
type packetReceiver interface {
	Recv() (wire.Packet, error)
}

// senderWorker reads stdin in chunks of up to maxLength bytes and sends
// each as a packet. An empty read (or a read returning io.EOF) signals
// end-of-stream: it emits one zero-length packet so the far end's
// receiver can close stdout, then returns.
func senderWorker(ep packetSender, stdin io.Reader, maxLength int, logger *log.Logger) error {
	buf := make([]byte, maxLength)
	for {
		n, err := stdin.Read(buf)
		if n > 0 {
			payload := append([]byte(nil), buf[:n]...)
			if sendErr := ep.Send(wire.Packet{Payload: payload}); sendErr != nil {
				return sendErr
			}
		}
		if err != nil {
			if err != io.EOF {
				return err
			}
			logger.Debug("stdin closed, sending end-of-stream packet")
			return ep.Send(wire.Packet{})
		}
		if n == 0 {
			logger.Debug("empty read, sending end-of-stream packet")
			return ep.Send(wire.Packet{})
		}
	}
}

// receiverWorker dequeues decoded packets and writes their payloads to
// stdout, flushing after each. On a zero-length packet it closes stdout
// and returns unless keepOpen is set.
func receiverWorker(ep packetReceiver, stdout io.Writer, keepOpen bool, logger *log.Logger) error {
	for {
		p, err := ep.Recv()
		if err != nil {
			return err
		}
		if _, err := stdout.Write(p.Payload); err != nil {
			return err
		}
		if flusher, ok := stdout.(interface{ Sync() error }); ok {
			flusher.Sync()
		}
		if p.Len() == 0 && !keepOpen {
			logger.Debug("end-of-stream packet received, closing stdout")
			if closer, ok := stdout.(io.Closer); ok {
				return closer.Close()
			}
			return nil
		}
	}
}
