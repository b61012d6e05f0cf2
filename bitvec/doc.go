// Package bitvec provides the fixed-length bit vector value type used for
// perceptual fingerprints, together with a normalized Hamming similarity
// comparator.
//
// Packing layout:
//   - Bits are grouped into 64-bit words in consumption order, most
//     significant bit first within each word.
//   - If the bit count is not a multiple of 64, the FIRST word holds the
//     remainder (bitCount mod 64 bits); every subsequent word holds exactly
//     64 bits.
//
// Encodings render each word independently in the chosen radix and
// concatenate the per-word strings; there is no cross-word renormalization.
package bitvec
