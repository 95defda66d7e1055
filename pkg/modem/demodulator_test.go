package modem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"sofi/pkg/queue"
	"sofi/pkg/ring"
	"sofi/pkg/wire"
)

// TestDemodulator_FrontTraceFiresPerWindow verifies Demodulator.Front lets
// a caller observe every window's per-candidate strengths, the hook
// pkg/endpoint wires up at debug_level 3.
func TestDemodulator_FrontTraceFiresPerWindow(t *testing.T) {
	params := loopbackParams()

	sampleRing := ring.New[float64](1 << 20)
	q := queue.New[wire.RawMessage](4)
	d := NewDemodulator(params, sampleRing, q)

	var traceCount int
	d.Front().Trace = func(strengths []float64) {
		traceCount++
		assert.Len(t, strengths, len(params.SymbolFreqs))
	}

	msg := wire.RawMessage{Len: 2}
	msg.Symbols[0] = 0
	msg.Symbols[1] = 1
	samples := modulateAll(params, msg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go d.Run(ctx)

	sampleRing.Write(samples)

	delivered := make(chan struct{})
	go func() {
		q.Dequeue()
		close(delivered)
	}()

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("demodulator did not deliver the message")
	}

	assert.Greater(t, traceCount, 0, "trace hook never fired")
}
