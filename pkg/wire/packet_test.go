package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSerializeDeserialize_NoCRC(t *testing.T) {
	p := Packet{Payload: []byte("hello, so-fi")}
	serialized := Serialize(p, false)
	got, err := Deserialize(serialized, false, 0)
	require.NoError(t, err)
	assert.Equal(t, p.Payload, got.Payload)
}

// TestCRCRoundTrip_Property is testable property 2.
func TestCRCRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		payload := rapid.SliceOfN(rapid.Byte(), 0, 255).Draw(t, "payload")
		p := Packet{Payload: payload}

		serialized := Serialize(p, true)
		got, err := Deserialize(serialized, true, 0)
		require.NoError(t, err)
		require.Equal(t, payload, got.Payload)

		bit := rapid.IntRange(0, len(serialized)*8-1).Draw(t, "bit")
		flipped := append([]byte(nil), serialized...)
		flipped[bit/8] ^= 1 << (bit % 8)

		_, err = Deserialize(flipped, true, 0)
		require.ErrorIs(t, err, ErrCorrupt)
	})
}

// TestScenario_S3 matches spec.md's concrete scenario S3: a zero-length
// packet serializes to a single length byte and round-trips to len 0.
func TestScenario_S3(t *testing.T) {
	p := Packet{}
	serialized := Serialize(p, false)
	require.Equal(t, []byte{0x00}, serialized)

	got, err := Deserialize(serialized, false, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

// TestScenario_S4 matches spec.md's concrete scenario S4: a CRC bit-flip
// on a 16-byte packet is dropped, and the next valid packet still decodes.
func TestScenario_S4(t *testing.T) {
	payload := make([]byte, 16)
	for i := range payload {
		payload[i] = byte(i)
	}
	p := Packet{Payload: payload}
	serialized := Serialize(p, true)

	corrupted := append([]byte(nil), serialized...)
	corrupted[3] ^= 0x01

	_, err := Deserialize(corrupted, true, 0)
	require.ErrorIs(t, err, ErrCorrupt)

	next := Packet{Payload: []byte("still here")}
	nextSerialized := Serialize(next, true)
	got, err := Deserialize(nextSerialized, true, 0)
	require.NoError(t, err)
	assert.Equal(t, next.Payload, got.Payload)
}

func TestDeserialize_ShortBufferZeroPads(t *testing.T) {
	// A length byte claiming 4 payload bytes but only 2 are present: the
	// legacy behavior zero-fills the rest rather than erroring.
	data := []byte{0x04, 'h', 'i'}
	got, err := Deserialize(data, false, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{'h', 'i', 0, 0}, got.Payload)
}

func TestDeserialize_MaxPacketLengthTruncates(t *testing.T) {
	data := Serialize(Packet{Payload: []byte("0123456789")}, false)
	got, err := Deserialize(data, false, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123"), got.Payload)
}

func TestRawMessageRoundTrip(t *testing.T) {
	p := Packet{Payload: []byte("round trip")}
	msg := ToRawMessage(p, 2, true)
	serialized := FromRawMessage(msg, 2)
	got, err := Deserialize(serialized, true, 0)
	require.NoError(t, err)
	assert.Equal(t, p.Payload, got.Payload)
}
