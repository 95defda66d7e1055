package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioDevice opens a duplex mono float32 stream via PortAudio. It is
// the production Device: one instance of the host library is initialized
// per process, mirroring the Pa_Initialize/Pa_OpenStream/Pa_StartStream
// sequence a native So-Fi implementation uses.
type PortAudioDevice struct {
	SampleRate      float64
	FramesPerBuffer int

	stream *portaudio.Stream
}

// Start initializes PortAudio, opens a duplex stream at SampleRate with
// FramesPerBuffer frames per callback (BufferSize if zero), and starts it.
// On any failure it terminates PortAudio before returning, so a caller
// never needs to call Stop after a failed Start.
func (d *PortAudioDevice) Start(callback func(in, out []float32)) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio: portaudio init: %w", err)
	}

	frames := d.FramesPerBuffer
	if frames == 0 {
		frames = BufferSize
	}

	stream, err := portaudio.OpenDefaultStream(1, 1, d.SampleRate, frames, callback)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio: open stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio: start stream: %w", err)
	}

	d.stream = stream
	return nil
}

// Stop stops and closes the stream, then terminates PortAudio. Safe to
// call at most once per successful Start.
func (d *PortAudioDevice) Stop() error {
	if d.stream == nil {
		return nil
	}
	stopErr := d.stream.Stop()
	closeErr := d.stream.Close()
	termErr := portaudio.Terminate()
	d.stream = nil

	if stopErr != nil {
		return fmt.Errorf("audio: stop stream: %w", stopErr)
	}
	if closeErr != nil {
		return fmt.Errorf("audio: close stream: %w", closeErr)
	}
	if termErr != nil {
		return fmt.Errorf("audio: terminate: %w", termErr)
	}
	return nil
}
