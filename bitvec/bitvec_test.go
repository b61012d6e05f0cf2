package bitvec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromBitString_Packing(t *testing.T) {
	tests := []struct {
		name     string
		bits     string
		expected []uint64
	}{
		{"SingleBit", "1", []uint64{1}},
		{"ByteAligned", "10000001", []uint64{0x81}},
		{"FullWord", "1" + strings.Repeat("0", 63), []uint64{1 << 63}},
		{"TwoWords", strings.Repeat("1", 64) + strings.Repeat("0", 64), []uint64{^uint64(0), 0}},
		{
			// 100 bits: first word carries the 36-bit remainder, second a full word.
			"Remainder",
			strings.Repeat("1", 36) + "1" + strings.Repeat("0", 63),
			[]uint64{(1 << 36) - 1, 1 << 63},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := FromBitString(tt.bits)
			require.NoError(t, err)
			assert.Equal(t, len(tt.bits), v.BitCount())
			assert.Equal(t, tt.expected, v.Words())
		})
	}
}

func TestFromBitString_Invalid(t *testing.T) {
	_, err := FromBitString("")
	assert.ErrorIs(t, err, ErrEmptyBitString)

	_, err = FromBitString("0101x011")
	var inv *ErrInvalidBitString
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, 4, inv.Offset)
	assert.Equal(t, byte('x'), inv.Char)
}

func TestBit(t *testing.T) {
	v, err := FromBitString("100" + strings.Repeat("0", 63) + "1")
	require.NoError(t, err)

	assert.True(t, v.Bit(0))
	assert.False(t, v.Bit(1))
	assert.True(t, v.Bit(66))
	assert.False(t, v.Bit(-1))
	assert.False(t, v.Bit(67))
}

func TestEncode_RoundTrip(t *testing.T) {
	inputs := []string{
		"1",
		"0110",
		strings.Repeat("10", 32),                           // exactly one word
		strings.Repeat("1", 36) + strings.Repeat("01", 32), // remainder + full word
		strings.Repeat("0", 100),                           // leading zeros must survive
	}

	for _, in := range inputs {
		v, err := FromBitString(in)
		require.NoError(t, err)

		enc, err := v.Encode(2)
		require.NoError(t, err)
		assert.Equal(t, in, enc)

		back, err := FromBitString(enc)
		require.NoError(t, err)
		assert.Equal(t, v.BitCount(), back.BitCount())
		assert.Equal(t, v.Words(), back.Words())
	}
}

func TestEncode_Hex(t *testing.T) {
	v, err := FromBitString(strings.Repeat("1", 64))
	require.NoError(t, err)
	enc, err := v.Encode(16)
	require.NoError(t, err)
	assert.Equal(t, "ffffffffffffffff", enc)

	// 68 bits: 4-bit first word plus one full word, rendered at fixed widths.
	v, err = FromBitString("1010" + strings.Repeat("0", 60) + "1111")
	require.NoError(t, err)
	enc, err = v.Encode(16)
	require.NoError(t, err)
	assert.Equal(t, "a"+"000000000000000f", enc)
}

func TestParse(t *testing.T) {
	t.Run("BinaryRoundTrip", func(t *testing.T) {
		in := strings.Repeat("1", 36) + strings.Repeat("01", 32)
		v, err := FromBitString(in)
		require.NoError(t, err)

		enc, err := v.Encode(2)
		require.NoError(t, err)
		back, err := Parse(enc, 2, v.BitCount())
		require.NoError(t, err)
		assert.Equal(t, v.Words(), back.Words())
	})

	t.Run("HexRoundTrip", func(t *testing.T) {
		inputs := []string{
			strings.Repeat("10", 32),
			"1010" + strings.Repeat("0", 60) + "1111", // 4-bit leading word
			strings.Repeat("0", 100),
		}
		for _, in := range inputs {
			v, err := FromBitString(in)
			require.NoError(t, err)

			enc, err := v.Encode(16)
			require.NoError(t, err)
			back, err := Parse(enc, 16, v.BitCount())
			require.NoError(t, err)
			assert.Equal(t, v.BitCount(), back.BitCount())
			assert.Equal(t, v.Words(), back.Words())
		}
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := Parse("ff", 16, 0)
		assert.ErrorIs(t, err, ErrEmptyBitString)

		_, err = Parse("ff", 36, 8)
		assert.ErrorIs(t, err, ErrUnsupportedRadix)

		_, err = Parse("f", 16, 64)
		assert.ErrorIs(t, err, ErrMalformedEncoding)

		_, err = Parse("ffff", 16, 8)
		assert.ErrorIs(t, err, ErrMalformedEncoding)

		_, err = Parse("zz", 16, 8)
		assert.ErrorIs(t, err, ErrMalformedEncoding)

		// 66 bits leave a 2-bit leading word; "f" does not fit.
		_, err = Parse("f"+strings.Repeat("0", 16), 16, 66)
		assert.ErrorIs(t, err, ErrMalformedEncoding)

		_, err = Parse("0110", 2, 8)
		var lm *LengthMismatchError
		assert.ErrorAs(t, err, &lm)
	})
}

func TestEncode_Base36(t *testing.T) {
	v := fromWords(64, []uint64{35})
	enc, err := v.Encode(36)
	require.NoError(t, err)
	assert.Equal(t, "z", enc)

	// Two words concatenate per word, no cross-word renormalization.
	v = fromWords(128, []uint64{36, 1})
	enc, err = v.Encode(36)
	require.NoError(t, err)
	assert.Equal(t, "101", enc)
}

func TestEncode_UnsupportedRadix(t *testing.T) {
	v := fromWords(8, []uint64{0xAB})
	for _, radix := range []int{0, 1, 8, 10, 64} {
		_, err := v.Encode(radix)
		assert.ErrorIs(t, err, ErrUnsupportedRadix, "radix %d", radix)
	}
}

func TestSimilarity(t *testing.T) {
	t.Run("Reflexive", func(t *testing.T) {
		v, err := FromBitString(strings.Repeat("1011", 16))
		require.NoError(t, err)
		s, err := Similarity(v, v)
		require.NoError(t, err)
		assert.Equal(t, 1.0, s)
	})

	t.Run("Symmetric", func(t *testing.T) {
		a, err := FromBitString(strings.Repeat("10", 32))
		require.NoError(t, err)
		b, err := FromBitString(strings.Repeat("01", 32))
		require.NoError(t, err)

		ab, err := Similarity(a, b)
		require.NoError(t, err)
		ba, err := Similarity(b, a)
		require.NoError(t, err)
		assert.Equal(t, ab, ba)
		assert.Equal(t, 0.0, ab)
	})

	t.Run("HalfDiffering", func(t *testing.T) {
		a, err := FromBitString("11110000")
		require.NoError(t, err)
		b, err := FromBitString("11111111")
		require.NoError(t, err)
		s, err := Similarity(a, b)
		require.NoError(t, err)
		assert.Equal(t, 0.5, s)
	})

	t.Run("MultiWord", func(t *testing.T) {
		a, err := FromBitString(strings.Repeat("0", 100))
		require.NoError(t, err)
		b, err := FromBitString("1" + strings.Repeat("0", 98) + "1")
		require.NoError(t, err)
		s, err := Similarity(a, b)
		require.NoError(t, err)
		assert.InDelta(t, 0.98, s, 1e-9)
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		a, err := FromBitString(strings.Repeat("0", 64))
		require.NoError(t, err)
		b, err := FromBitString(strings.Repeat("0", 100))
		require.NoError(t, err)

		_, err = Similarity(a, b)
		var lm *LengthMismatchError
		require.ErrorAs(t, err, &lm)
		assert.Equal(t, 64, lm.A)
		assert.Equal(t, 100, lm.B)
	})
}
