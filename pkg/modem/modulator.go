package modem

import (
	"math"

	"sofi/pkg/ring"
	"sofi/pkg/wire"
)

type modulatorState int

const (
	modIdle modulatorState = iota
	modTransmitting
	modGap
)

// Modulator is the audio-callback-side state machine that drains the
// message ring and emits a continuous-phase FSK waveform. Process is the
// only method meant to run on the realtime callback thread; it never
// allocates or blocks.
type Modulator struct {
	params Params
	ring   *ring.Ring[wire.RawMessage]

	state        modulatorState
	phase        float64
	frameCounter int
	symbolIndex  int
	samplesPer   int
	gapFrames    int
	msg          wire.RawMessage
}

// NewModulator builds a Modulator draining msgRing, which must be the
// sender-side message ring populated by the endpoint's send path.
func NewModulator(params Params, msgRing *ring.Ring[wire.RawMessage]) *Modulator {
	return &Modulator{
		params:     params,
		ring:       msgRing,
		samplesPer: params.SamplesPerSymbol(),
		gapFrames:  params.GapFrames(),
	}
}

// IsIdle reports whether the modulator is currently emitting silence with
// no message in flight. The audio bridge uses this to gate the receive
// path and avoid self-echo in a shared-device loopback.
func (m *Modulator) IsIdle() bool {
	return m.state == modIdle
}

// Process fills out with one sample per frame, advancing the state
// machine. It must be called from the realtime audio callback, once per
// block, with out sized to the block's frame count.
func (m *Modulator) Process(out []float64) {
	for i := range out {
		out[i] = m.step()
	}
}

func (m *Modulator) step() float64 {
	switch m.state {
	case modIdle:
		if msg, ok := m.peek(); ok {
			m.msg = msg
			m.state = modTransmitting
			m.frameCounter = 0
			m.symbolIndex = 0
			// the first symbol of the new message is emitted below, same sample
		} else {
			return 0.0
		}

	case modGap:
		m.frameCounter++
		if m.frameCounter >= m.gapFrames {
			m.release()
			m.state = modIdle
		}
		return 0.0
	}

	if m.state != modTransmitting {
		return 0.0
	}

	if m.symbolIndex >= m.msg.Len {
		m.state = modGap
		m.frameCounter = 0
		return 0.0
	}

	freq := m.params.SymbolFreqs[m.msg.Symbols[m.symbolIndex]]
	out := math.Sin(m.phase)

	m.phase += 2 * math.Pi * freq / m.params.SampleRate
	for m.phase >= 2*math.Pi {
		m.phase -= 2 * math.Pi
	}

	m.frameCounter++
	if m.frameCounter >= m.samplesPer {
		m.frameCounter = 0
		m.symbolIndex++
		if m.symbolIndex >= m.msg.Len {
			m.state = modGap
		}
	}

	return out
}

// peek looks at the next queued message without releasing its ring slot.
// The slot stays held for the whole transmit+gap cycle, so ring occupancy
// reflects messages still in flight, not just messages not yet started;
// release gives the slot back once that cycle finishes.
func (m *Modulator) peek() (wire.RawMessage, bool) {
	p1, p2 := m.ring.ReadRegions(1)
	switch {
	case len(p1) > 0:
		return p1[0], true
	case len(p2) > 0:
		return p2[0], true
	default:
		return wire.RawMessage{}, false
	}
}

// release returns the slot peek last claimed. Called exactly once per
// peek, at the GAP->IDLE transition once the message's trailing silence
// has fully elapsed.
func (m *Modulator) release() {
	m.ring.AdvanceRead(1)
}
