// Package endpoint wires every other package into the full-duplex
// lifecycle described by spec.md §4.H: init builds the rings, queue, and
// audio stream from a Config; Send and Recv are the application-facing
// operations; Close tears everything down in reverse construction order.
package endpoint

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"sofi/pkg/async"
	"sofi/pkg/audio"
	"sofi/pkg/config"
	"sofi/pkg/modem"
	"sofi/pkg/queue"
	"sofi/pkg/ring"
	"sofi/pkg/wire"
)

// messageRingCapacity is the sender-side message ring's slot count. The
// spec requires only "at least 2 slots"; 4 gives the send path room to
// stay ahead of the modulator without claiming more memory than a handful
// of wire.RawMessage values (each already sized for the worst case).
const messageRingCapacity = 4

// sampleRingSeconds is how much audio the receiver's sample ring must
// comfortably hold, per spec.md §4.H.
const sampleRingSeconds = 1.0

// Endpoint owns every live resource for one direction-configurable So-Fi
// session: the audio device and bridge, the message/sample rings, the
// packet queue, and (when receiving) the demodulator worker.
type Endpoint struct {
	cfg    config.Config
	logger *log.Logger
	device audio.Device

	msgRing    *ring.Ring[wire.RawMessage]
	sampleRing *ring.Ring[float64]
	recvQueue  *queue.Queue[wire.RawMessage]

	demodCancel context.CancelFunc
	demodDone   <-chan struct{}

	streamStarted bool
}

// New builds and starts an Endpoint from cfg, using device as the audio
// backend. On any step's failure it rolls back everything already
// constructed, in reverse order, and returns an error — no partially
// initialized Endpoint is ever returned.
func New(cfg config.Config, device audio.Device, logger *log.Logger) (*Endpoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Endpoint{cfg: cfg, logger: logger, device: device}

	var modulator *modem.Modulator
	if cfg.Sender {
		e.msgRing = ring.New[wire.RawMessage](messageRingCapacity)
		modulator = modem.NewModulator(cfg.ModemParams(), e.msgRing)
	}

	if cfg.Receiver {
		capacity := nextPowerOfTwo(int(float64(cfg.SampleRate) * sampleRingSeconds))
		e.sampleRing = ring.New[float64](capacity)
		e.recvQueue = queue.New[wire.RawMessage](cfg.RecvQueueCap)
		e.recvQueue.OnDropped(func(wire.RawMessage) {
			e.logger.Debug("receive queue overflow, dropping packet")
		})
	}

	e.logger.Info("starting audio stream",
		"sample_rate", cfg.SampleRate,
		"baud", cfg.Baud,
		"window_factor", cfg.RecvWindowFactor,
		"frequencies", cfg.SymbolFreqs,
	)

	framesPerBuffer := audio.BufferSize
	bridge := audio.NewBridge(modulator, e.sampleRing, framesPerBuffer)

	if err := device.Start(bridge.Callback); err != nil {
		return nil, fmt.Errorf("endpoint: start audio stream: %w", err)
	}
	e.streamStarted = true
	e.logger.Info("audio stream started")

	if cfg.Receiver {
		demod := modem.NewDemodulator(cfg.ModemParams(), e.sampleRing, e.recvQueue)
		demod.OnDrop = func() {
			e.logger.Debug("incoming message exceeded symbol cap, truncating")
		}
		if cfg.DebugLevel >= 3 {
			demod.Front().Trace = func(strengths []float64) {
				e.logger.Debug("window symbol strengths", "strengths", strengths)
			}
		}

		ctx, cancel := context.WithCancel(context.Background())
		e.demodCancel = cancel
		e.demodDone = async.Job(func() { demod.Run(ctx) })
		e.logger.Info("demodulator worker started")
	}

	return e, nil
}

// Send serializes p and blocks until the message ring accepts it, per
// spec.md §4.H: spin-wait with a millisecond sleep proportional to one
// symbol time. Returns an error if sending is disabled.
func (e *Endpoint) Send(p wire.Packet) error {
	if e.msgRing == nil {
		return fmt.Errorf("endpoint: sender disabled")
	}
	msg := wire.ToRawMessage(p, e.cfg.SymbolWidth, e.cfg.UseCRC)

	symbolTime := time.Duration(float64(time.Second) / e.cfg.Baud)
	for {
		if n := e.msgRing.Write([]wire.RawMessage{msg}); n == 1 {
			e.logger.Debug("sent packet", "len", p.Len())
			return nil
		}
		time.Sleep(symbolTime)
	}
}

// Recv dequeues raw messages from the packet queue until it can decode one
// that isn't corrupt, and returns it. Returns an error if receiving is
// disabled or the queue has been closed with nothing left to deliver.
func (e *Endpoint) Recv() (wire.Packet, error) {
	if e.recvQueue == nil {
		return wire.Packet{}, fmt.Errorf("endpoint: receiver disabled")
	}
	for {
		msg, ok := e.recvQueue.Dequeue()
		if !ok {
			return wire.Packet{}, fmt.Errorf("endpoint: receiver closed")
		}
		serialized := wire.FromRawMessage(msg, e.cfg.SymbolWidth)
		p, err := wire.Deserialize(serialized, e.cfg.UseCRC, e.cfg.MaxPacketLength)
		if err != nil {
			e.logger.Debug("dropped corrupt packet", "error", err)
			continue
		}
		e.logger.Debug("received packet", "len", p.Len())
		if e.cfg.DebugLevel >= 1 {
			e.logger.Info("packet dump", "dump", wire.Dump(p))
		}
		return p, nil
	}
}

// Close cancels and joins the demodulator worker, then busy-waits for the
// sender's message ring to drain. The modulator holds a message's ring
// slot for its entire transmit+gap cycle (see Modulator.release), so
// ReadAvailable hitting zero here means the last packet's audio — symbols
// and trailing silence both — has actually finished being generated, not
// merely started; the extra sleep afterward is slack for that last audio
// block to finish playing out through the device before Stop tears the
// stream down.
func (e *Endpoint) Close() error {
	if e.demodCancel != nil {
		e.demodCancel()
		async.Await0(e.demodDone)
	}
	if e.recvQueue != nil {
		e.recvQueue.Close()
	}

	if e.msgRing != nil {
		for e.msgRing.ReadAvailable() > 0 {
			time.Sleep(time.Millisecond)
		}
		time.Sleep(20 * time.Millisecond)
	}

	if e.streamStarted {
		if err := e.device.Stop(); err != nil {
			return fmt.Errorf("endpoint: stop audio stream: %w", err)
		}
	}
	e.logger.Info("endpoint closed")
	return nil
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
