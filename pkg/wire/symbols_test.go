package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBytesSymbolsRoundTrip_AllWidths(t *testing.T) {
	for _, width := range []int{1, 2, 4, 8} {
		data := []byte{0x00, 0x01, 0x68, 0x69, 0xff, 0x80, 0x41}
		symbols := BytesToSymbols(data, width)
		got := SymbolsToBytes(symbols, width)
		assert.Equalf(t, data, got, "width=%d", width)
	}
}

// TestCodecRoundTrip_Property is testable property 1: for all W in
// {1,2,4,8} and all byte sequences of length <= 255,
// symbols_to_bytes(bytes_to_symbols(b, W), W) == b.
func TestCodecRoundTrip_Property(t *testing.T) {
	widths := []int{1, 2, 4, 8}
	rapid.Check(t, func(t *rapid.T) {
		width := widths[rapid.IntRange(0, 3).Draw(t, "widthIdx")]
		data := rapid.SliceOfN(rapid.Byte(), 0, 255).Draw(t, "data")

		symbols := BytesToSymbols(data, width)
		got := SymbolsToBytes(symbols, width)
		require.Equal(t, data, got)
	})
}

func TestSymbolsToBytes_PartialTrailingByte(t *testing.T) {
	// Fewer symbols than CHAR_BIT/W for the final byte: emitted with
	// unreceived positions zero.
	symbols := []uint8{1, 0, 0} // width 1, only 3 of 8 bits known
	got := SymbolsToBytes(symbols, 1)
	assert.Equal(t, []byte{0b001}, got)
}

// TestScenario_S1 matches spec.md's concrete scenario S1.
func TestScenario_S1(t *testing.T) {
	p := Packet{Payload: []byte("hi")}
	serialized := Serialize(p, false)
	require.Equal(t, []byte{0x02, 'h', 'i'}, serialized)

	symbols := BytesToSymbols(serialized, 1)
	require.Equal(t, []uint8{
		0, 1, 0, 0, 0, 0, 0, 0, // len=0x02
		0, 0, 0, 1, 0, 1, 1, 0, // 'h'=0x68
		1, 0, 0, 1, 0, 1, 1, 0, // 'i'=0x69
	}, symbols)
}

// TestScenario_S2 matches spec.md's concrete scenario S2 (W=2).
func TestScenario_S2(t *testing.T) {
	p := Packet{Payload: []byte{0x41}}
	serialized := Serialize(p, false)
	require.Equal(t, []byte{0x01, 0x41}, serialized)

	symbols := BytesToSymbols(serialized, 2)
	require.Equal(t, []uint8{1, 0, 0, 0, 1, 0, 0, 1}, symbols)
}
