package bitvec

import (
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

var (
	// ErrEmptyBitString is returned when constructing a BitVector from an
	// empty bit string.
	ErrEmptyBitString = errors.New("bitvec: empty bit string")

	// ErrUnsupportedRadix is returned by Encode for radixes other than
	// 2, 16 and 36, and by Parse for radixes other than 2 and 16.
	ErrUnsupportedRadix = errors.New("bitvec: unsupported radix")

	// ErrMalformedEncoding is returned by Parse when the input length or
	// digits do not match the declared bit count.
	ErrMalformedEncoding = errors.New("bitvec: malformed encoding")
)

// ErrInvalidBitString indicates a bit string containing characters other
// than '0' and '1'.
type ErrInvalidBitString struct {
	Offset int
	Char   byte
}

func (e *ErrInvalidBitString) Error() string {
	return fmt.Sprintf("bitvec: invalid character %q at offset %d", e.Char, e.Offset)
}

// LengthMismatchError indicates a comparison between BitVectors of
// different bit counts.
type LengthMismatchError struct {
	A, B int
}

func (e *LengthMismatchError) Error() string {
	return fmt.Sprintf("bitvec: bit count mismatch: %d vs %d", e.A, e.B)
}

// BitVector is an immutable fixed-length bit sequence packed into 64-bit
// words. See the package documentation for the packing layout.
type BitVector struct {
	bitCount int
	words    []uint64
}

// FromBitString constructs a BitVector from a string of '0' and '1'
// characters. The string is consumed front to back; the first word receives
// len(s) mod 64 bits when the length is not word-aligned.
func FromBitString(s string) (*BitVector, error) {
	n := len(s)
	if n == 0 {
		return nil, ErrEmptyBitString
	}

	numWords := (n + 63) / 64
	words := make([]uint64, 0, numWords)

	first := n % 64
	if first == 0 {
		first = 64
	}

	pos := 0
	for pos < n {
		width := 64
		if pos == 0 {
			width = first
		}
		var w uint64
		for i := 0; i < width; i++ {
			switch s[pos+i] {
			case '0':
				w <<= 1
			case '1':
				w = w<<1 | 1
			default:
				return nil, &ErrInvalidBitString{Offset: pos + i, Char: s[pos+i]}
			}
		}
		words = append(words, w)
		pos += width
	}

	return &BitVector{bitCount: n, words: words}, nil
}

// fromWords is a test helper; words must already obey the packing
// invariant for bitCount.
func fromWords(bitCount int, words []uint64) *BitVector {
	cp := make([]uint64, len(words))
	copy(cp, words)
	return &BitVector{bitCount: bitCount, words: cp}
}

// Parse reconstructs a BitVector from a string produced by Encode with
// radix 2 or 16. bitCount names the length of the original vector; hex
// digits alone do not pin down the width of the first word.
func Parse(s string, radix, bitCount int) (*BitVector, error) {
	if bitCount <= 0 {
		return nil, ErrEmptyBitString
	}

	switch radix {
	case 2:
		v, err := FromBitString(s)
		if err != nil {
			return nil, err
		}
		if v.bitCount != bitCount {
			return nil, &LengthMismatchError{A: bitCount, B: v.bitCount}
		}
		return v, nil
	case 16:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedRadix, radix)
	}

	numWords := (bitCount + 63) / 64
	first := bitCount % 64
	if first == 0 {
		first = 64
	}

	words := make([]uint64, 0, numWords)
	pos := 0
	for i := 0; i < numWords; i++ {
		width, digits := 64, 16
		if i == 0 {
			width = first
			digits = (first + 3) / 4
		}
		if pos+digits > len(s) {
			return nil, fmt.Errorf("%w: truncated at offset %d", ErrMalformedEncoding, pos)
		}
		w, err := strconv.ParseUint(s[pos:pos+digits], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
		}
		if width < 64 && w>>uint(width) != 0 {
			return nil, fmt.Errorf("%w: leading word exceeds %d bits", ErrMalformedEncoding, width)
		}
		words = append(words, w)
		pos += digits
	}
	if pos != len(s) {
		return nil, fmt.Errorf("%w: trailing characters", ErrMalformedEncoding)
	}

	return &BitVector{bitCount: bitCount, words: words}, nil
}

// BitCount returns the number of bits in the vector.
func (v *BitVector) BitCount() int { return v.bitCount }

// Words returns a copy of the packed words in consumption order.
func (v *BitVector) Words() []uint64 {
	cp := make([]uint64, len(v.words))
	copy(cp, v.words)
	return cp
}

// Bit returns the i-th bit in consumption order.
func (v *BitVector) Bit(i int) bool {
	if i < 0 || i >= v.bitCount {
		return false
	}
	first := v.bitCount % 64
	if first == 0 {
		first = 64
	}
	if i < first {
		return v.words[0]>>(uint(first-1-i))&1 == 1
	}
	i -= first
	word := 1 + i/64
	return v.words[word]>>(uint(63-i%64))&1 == 1
}

// firstWidth returns the bit width of the first word.
func (v *BitVector) firstWidth() int {
	if w := v.bitCount % 64; w != 0 {
		return w
	}
	return 64
}

// Encode renders the vector as a string in the given radix (2, 16 or 36).
//
// Radix 2 and 16 render each word at its fixed digit width, so the result
// parses back to an identical vector. Radix 36 is a compact display form:
// words are rendered without padding and the encoding is not reversible.
func (v *BitVector) Encode(radix int) (string, error) {
	switch radix {
	case 2, 16, 36:
	default:
		return "", fmt.Errorf("%w: %d", ErrUnsupportedRadix, radix)
	}

	var sb strings.Builder
	for i, w := range v.words {
		width := 64
		if i == 0 {
			width = v.firstWidth()
		}
		switch radix {
		case 2:
			sb.WriteString(pad(strconv.FormatUint(w, 2), width))
		case 16:
			sb.WriteString(pad(strconv.FormatUint(w, 16), (width+3)/4))
		case 36:
			sb.WriteString(strconv.FormatUint(w, 36))
		}
	}
	return sb.String(), nil
}

// String returns the binary encoding.
func (v *BitVector) String() string {
	s, _ := v.Encode(2)
	return s
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// Similarity returns the normalized Hamming similarity between a and b:
// 1 - differingBits/bitCount, in [0, 1]. Vectors of different bit counts
// are not comparable and yield a *LengthMismatchError.
//
// Scores are only meaningful when both fingerprints were produced with an
// identical generator configuration.
func Similarity(a, b *BitVector) (float64, error) {
	if a.bitCount != b.bitCount {
		return 0, &LengthMismatchError{A: a.bitCount, B: b.bitCount}
	}
	diff := 0
	for i := range a.words {
		diff += bits.OnesCount64(a.words[i] ^ b.words[i])
	}
	return 1 - float64(diff)/float64(a.bitCount), nil
}
