package audio

import "time"

// LoopbackDevice drives a callback on a fixed tick instead of a real audio
// device, feeding its own output straight back in as input. It exists for
// single-process tests and demonstrations where no sound card is
// available; a real two-machine deployment never needs it.
//
// SampleRate, when non-zero, paces callback invocations to roughly one
// BufferSize block per BufferSize/SampleRate seconds. Zero means run the
// callback as fast as possible, useful for deterministic test harnesses
// that don't care about wall-clock pacing.
type LoopbackDevice struct {
	SampleRate float64
	BufferSize int

	done chan struct{}
}

// Start launches the loopback loop in its own goroutine. Each tick it
// hands callback two equal-length buffers: in holds the previous tick's
// output (zero on the first tick), out is the buffer the callback fills
// for this tick.
func (d *LoopbackDevice) Start(callback func(in, out []float32)) error {
	size := d.BufferSize
	if size == 0 {
		size = BufferSize
	}
	d.done = make(chan struct{})

	go func() {
		buf := [2][]float32{make([]float32, size), make([]float32, size)}
		swap := true

		tick := func() {
			if swap {
				callback(buf[0], buf[1])
			} else {
				callback(buf[1], buf[0])
			}
			swap = !swap
		}

		if d.SampleRate == 0 {
			for {
				select {
				case <-d.done:
					return
				default:
					tick()
				}
			}
		} else {
			period := time.Duration(float64(size) / d.SampleRate * float64(time.Second))
			ticker := time.NewTicker(period)
			defer ticker.Stop()
			for {
				select {
				case <-d.done:
					return
				case <-ticker.C:
					tick()
				}
			}
		}
	}()
	return nil
}

// Stop ends the loopback loop. Safe to call at most once per Start.
func (d *LoopbackDevice) Stop() error {
	close(d.done)
	return nil
}
