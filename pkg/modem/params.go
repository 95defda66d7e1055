// Package modem implements the M-ary FSK modulator and demodulator: the
// physical-layer state machines that turn a ring of raw messages into an
// audio waveform and back.
package modem

import "math"

// Params is the immutable subset of the endpoint configuration the
// modulator and demodulator need. It is built once by pkg/config and
// shared read-only across the audio callback and the demodulator worker.
type Params struct {
	SampleRate           float64
	Baud                 float64
	SymbolFreqs          []float64 // len must be a power of two, 2^SymbolWidth
	RecvWindowFactor     float64
	InterpacketGapFactor float64
	SilenceThreshold     float64 // strength below this is "silence"; default 100
	MaxPacketLength      int     // cap on received payload bytes, 0 = unbounded
}

// SymbolWidth returns log2(len(SymbolFreqs)).
func (p Params) SymbolWidth() int {
	w := 0
	for n := len(p.SymbolFreqs); n > 1; n >>= 1 {
		w++
	}
	return w
}

// SamplesPerSymbol is round(sample_rate/baud), the modulator's symbol
// period and the demodulator's gather-mode window size.
func (p Params) SamplesPerSymbol() int {
	return int(math.Round(p.SampleRate / p.Baud))
}

// ListenWindowSize is round(recv_window_factor * sample_rate / baud), the
// sub-symbol window the demodulator uses while waiting for carrier onset.
func (p Params) ListenWindowSize() int {
	return int(math.Round(p.RecvWindowFactor * p.SampleRate / p.Baud))
}

// GapFrames is round(interpacket_gap_factor * sample_rate / baud), the
// silence duration (in samples) the modulator emits between packets.
func (p Params) GapFrames() int {
	return int(math.Round(p.InterpacketGapFactor * p.SampleRate / p.Baud))
}

// DefaultSilenceThreshold matches the fixed heuristic spec'd against
// unit-amplitude input; kept as the zero-value fallback so a Params left
// at its zero value still behaves deterministically.
const DefaultSilenceThreshold = 100.0

func (p Params) silenceThreshold() float64 {
	if p.SilenceThreshold == 0 {
		return DefaultSilenceThreshold
	}
	return p.SilenceThreshold
}
