package audio

import (
	"sofi/pkg/modem"
	"sofi/pkg/ring"
)

// Bridge is the single record a Device's realtime callback closes over: it
// owns the modulator and the receiver's sample ring, the "cyclic
// ownership" the callback needs resolved into one value with a lifetime
// that outlives every callback invocation. scratch is preallocated at
// construction for FramesPerBuffer frames so Callback never allocates.
type Bridge struct {
	Modulator  *modem.Modulator    // nil when sending is disabled
	SampleRing *ring.Ring[float64] // nil when receiving is disabled

	scratch []float64
}

// NewBridge builds a Bridge whose scratch conversion buffer is sized for
// framesPerBuffer, the fixed block size the owning Device's callback will
// always be invoked with.
func NewBridge(modulator *modem.Modulator, sampleRing *ring.Ring[float64], framesPerBuffer int) *Bridge {
	return &Bridge{
		Modulator:  modulator,
		SampleRing: sampleRing,
		scratch:    make([]float64, framesPerBuffer),
	}
}

// Callback is the realtime audio callback: it must never allocate, lock,
// or block. It fills out by running the modulator (if sending), and
// copies in into the sample ring only while the modulator is idle (if
// receiving), which is the half-duplex gate that keeps a shared device
// from hearing its own transmission.
func (b *Bridge) Callback(in, out []float32) {
	if b.Modulator != nil && out != nil {
		samples := b.scratch[:len(out)]
		b.Modulator.Process(samples)
		for i, v := range samples {
			out[i] = float32(v)
		}
	}

	if b.SampleRing != nil && in != nil {
		if b.Modulator == nil || b.Modulator.IsIdle() {
			samples := b.scratch[:len(in)]
			for i, v := range in {
				samples[i] = float64(v)
			}
			// Upstream sizing (see pkg/endpoint) guarantees the sample ring
			// always has room for a full block at expected latencies; a
			// short write here would mean it was undersized.
			b.SampleRing.Write(samples)
		}
	}
}
