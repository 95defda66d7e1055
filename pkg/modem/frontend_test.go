package modem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectGather_PureTone(t *testing.T) {
	params := testParams()
	front := NewFrontEnd(params)

	n := params.SamplesPerSymbol()
	window := make([]float64, n)
	for j := range window {
		window[j] = math.Sin(2 * math.Pi * params.SymbolFreqs[1] * float64(j) / params.SampleRate)
	}

	assert.Equal(t, 1, front.DetectGather(window))
}

func TestDetectGather_Silence(t *testing.T) {
	params := testParams()
	front := NewFrontEnd(params)

	window := make([]float64, params.SamplesPerSymbol())
	assert.Equal(t, SilentSymbol, front.DetectGather(window))
}

func TestDetectGather_TraceReceivesEveryCandidateStrength(t *testing.T) {
	params := testParams()
	front := NewFrontEnd(params)

	n := params.SamplesPerSymbol()
	window := make([]float64, n)
	for j := range window {
		window[j] = math.Sin(2 * math.Pi * params.SymbolFreqs[1] * float64(j) / params.SampleRate)
	}

	var traced []float64
	front.Trace = func(strengths []float64) {
		traced = strengths
	}

	symbol := front.DetectGather(window)
	require.Equal(t, 1, symbol)
	require.Len(t, traced, len(params.SymbolFreqs))
	assert.Greaterf(t, traced[1], traced[0], "winning symbol should score higher than the other candidate")
}

func TestDetectGather_TieBreaksLowestK(t *testing.T) {
	// Two identical-strength candidates (here, by construction: both tables
	// score zero against an all-zero window) resolve to the lowest k. Under
	// the default threshold neither would clear it and the result would be
	// SilentSymbol, so the threshold is forced negative to make both
	// candidates qualify; this pins down that the scan order is ascending.
	params := testParams()
	params.SilenceThreshold = -1 // force every k to "detect"
	front := NewFrontEnd(params)

	window := make([]float64, params.SamplesPerSymbol())
	assert.Equal(t, 0, front.DetectGather(window))
}
