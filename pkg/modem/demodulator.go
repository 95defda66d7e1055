package modem

import (
	"context"
	"time"

	"sofi/pkg/queue"
	"sofi/pkg/ring"
	"sofi/pkg/wire"
)

type demodState int

const (
	stListen demodState = iota
	stDemodulate
)

// Demodulator is the demodulator worker's state machine: it owns the
// sample ring reader, runs each window through a FrontEnd, and frames the
// resulting symbol stream into whole raw messages delimited by silence.
type Demodulator struct {
	params Params
	front  *FrontEnd

	samples *ring.Ring[float64]
	queue   *queue.Queue[wire.RawMessage]

	state  demodState
	msg    wire.RawMessage
	window []float64

	// OnDrop, if set, is called (off the realtime path) once for every
	// symbol the symbol cap drops from an incoming message.
	OnDrop func()
}

// NewDemodulator builds a Demodulator reading from sampleRing (populated by
// the audio bridge) and enqueuing completed messages onto q.
func NewDemodulator(params Params, sampleRing *ring.Ring[float64], q *queue.Queue[wire.RawMessage]) *Demodulator {
	listenSize := params.ListenWindowSize()
	gatherSize := params.SamplesPerSymbol()
	scratch := listenSize
	if gatherSize > scratch {
		scratch = gatherSize
	}
	return &Demodulator{
		params:  params,
		front:   NewFrontEnd(params),
		samples: sampleRing,
		queue:   q,
		window:  make([]float64, scratch),
	}
}

// Front exposes the underlying FrontEnd so a caller can wire
// FrontEnd.Trace for window-strength tracing; detection itself stays
// entirely owned by the Demodulator.
func (d *Demodulator) Front() *FrontEnd {
	return d.front
}

func (d *Demodulator) windowSize() int {
	if d.state == stListen {
		return d.params.ListenWindowSize()
	}
	return d.params.SamplesPerSymbol()
}

// Run executes the demodulator worker loop until ctx is cancelled. It
// sleeps roughly window_size/sample_rate seconds whenever the sample ring
// is short, a cooperative cancellation point that also bounds CPU use
// while idle.
func (d *Demodulator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		size := d.windowSize()
		if d.samples.ReadAvailable() < size {
			d.sleepIdle(ctx, size)
			continue
		}

		n := d.samples.Read(d.window[:size])
		symbol := d.detect(d.window[:n])
		d.step(symbol)
	}
}

func (d *Demodulator) detect(window []float64) int {
	if d.state == stListen {
		return d.front.DetectListen(window)
	}
	return d.front.DetectGather(window)
}

func (d *Demodulator) sleepIdle(ctx context.Context, windowSize int) {
	wait := time.Duration(float64(windowSize) / d.params.SampleRate * float64(time.Second))
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func (d *Demodulator) step(symbol int) {
	switch d.state {
	case stListen:
		if symbol == SilentSymbol {
			return
		}
		d.msg = wire.RawMessage{}
		d.appendSymbol(symbol)
		d.state = stDemodulate

	case stDemodulate:
		if symbol == SilentSymbol {
			d.queue.Enqueue(d.msg)
			d.state = stListen
			return
		}
		d.appendSymbol(symbol)
	}
}

func (d *Demodulator) appendSymbol(symbol int) {
	if d.msg.Len >= len(d.msg.Symbols) {
		if d.OnDrop != nil {
			d.OnDrop()
		}
		return
	}
	d.msg.Symbols[d.msg.Len] = uint8(symbol)
	d.msg.Len++
}
