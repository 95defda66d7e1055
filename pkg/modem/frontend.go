package modem

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// SilentSymbol is the front-end's sentinel for "no tone detected".
const SilentSymbol = -1

// toneTables holds precomputed sin/cos correlation reference tables, one
// pair per candidate symbol frequency, sized for a single window length.
// Precomputing these (rather than calling math.Sin/Cos per sample per
// window) keeps the demodulator worker's steady-state cost to a handful of
// dot products.
type toneTables struct {
	sin, cos [][]float64
}

func buildToneTables(freqs []float64, sampleRate float64, windowSize int) toneTables {
	t := toneTables{
		sin: make([][]float64, len(freqs)),
		cos: make([][]float64, len(freqs)),
	}
	for k, f := range freqs {
		sinRow := make([]float64, windowSize)
		cosRow := make([]float64, windowSize)
		for j := 0; j < windowSize; j++ {
			angle := 2 * math.Pi * f * float64(j) / sampleRate
			sinRow[j] = math.Sin(angle)
			cosRow[j] = math.Cos(angle)
		}
		t.sin[k] = sinRow
		t.cos[k] = cosRow
	}
	return t
}

// FrontEnd performs the per-window Goertzel-style quadrature correlation
// described by spec.md §4.E. It precomputes separate reference tables for
// the listen-mode and gather-mode window sizes, since the two modes use
// different window lengths.
type FrontEnd struct {
	params Params
	listen toneTables
	gather toneTables

	// Trace, if set, receives a copy of each window's per-candidate
	// strengths right after DetectListen/DetectGather computes them —
	// the level-3 "trace" verbosity's per-window symbol strengths. nil
	// (the default) costs nothing beyond one nil check per window.
	Trace func(strengths []float64)
}

// NewFrontEnd precomputes both window sizes' reference tables for params.
func NewFrontEnd(params Params) *FrontEnd {
	return &FrontEnd{
		params: params,
		listen: buildToneTables(params.SymbolFreqs, params.SampleRate, params.ListenWindowSize()),
		gather: buildToneTables(params.SymbolFreqs, params.SampleRate, params.SamplesPerSymbol()),
	}
}

// DetectListen runs detection using the listen-mode (sub-symbol) window.
func (f *FrontEnd) DetectListen(window []float64) int {
	return detect(window, f.listen, f.params.silenceThreshold(), f.Trace)
}

// DetectGather runs detection using the gather-mode (one symbol) window.
func (f *FrontEnd) DetectGather(window []float64) int {
	return detect(window, f.gather, f.params.silenceThreshold(), f.Trace)
}

// detect computes strength_k = S_k^2 + C_k^2 for every candidate symbol via
// a dot product against the precomputed reference tables, and returns
// argmax_k strength_k, or SilentSymbol if the maximum does not clear the
// threshold. Ties are broken by lowest k, which falls out naturally from a
// strict ">" comparison while scanning k in ascending order. When trace is
// non-nil it is handed every candidate's strength after the scan.
func detect(window []float64, t toneTables, threshold float64, trace func([]float64)) int {
	best := SilentSymbol
	bestStrength := threshold
	var strengths []float64
	if trace != nil {
		strengths = make([]float64, len(t.sin))
	}
	for k := range t.sin {
		n := min(len(window), len(t.sin[k]))
		s := floats.Dot(window[:n], t.sin[k][:n])
		c := floats.Dot(window[:n], t.cos[k][:n])
		strength := s*s + c*c
		if strengths != nil {
			strengths[k] = strength
		}
		if strength > bestStrength {
			bestStrength = strength
			best = k
		}
	}
	if trace != nil {
		trace(strengths)
	}
	return best
}
