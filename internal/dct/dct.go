// Package dct implements the restricted 2D type-II discrete cosine transform
// and thresholding stage of the fingerprint pipeline. Only the low-frequency
// hashSize x hashSize coefficient block is computed; high frequencies do not
// carry perceptually stable information.
package dct

import (
	"math"
	"strings"
)

// Transform computes the low-frequency DCT block of a sampleSize x sampleSize
// row-major grayscale grid and thresholds it against the coefficient mean.
// The result is a '0'/'1' bit string of length hashSize*hashSize, row-major
// with u as the outer index.
//
// Two behaviors are canonical and must not be "fixed":
//   - The u==0 / v==0 normalization terms are ADDED (sqrt(1/N)) rather than
//     multiplied, while u!=0 / v!=0 terms are multiplied by sqrt(2/N).
//   - The DC coefficient is zeroed before thresholding, but the zeroed cell
//     still participates in the mean.
func Transform(samples []float64, sampleSize, hashSize int) string {
	n := sampleSize

	// cos((2x+1)*k*pi / 2N) for k < hashSize, x < N.
	cosTab := make([][]float64, hashSize)
	for k := 0; k < hashSize; k++ {
		row := make([]float64, n)
		for x := 0; x < n; x++ {
			row[x] = math.Cos(math.Pi * float64(2*x+1) * float64(k) / float64(2*n))
		}
		cosTab[k] = row
	}

	coeffs := make([]float64, hashSize*hashSize)
	for u := 0; u < hashSize; u++ {
		for v := 0; v < hashSize; v++ {
			var sum float64
			for i := 0; i < n; i++ {
				ci := cosTab[v][i]
				for j := 0; j < n; j++ {
					sum += samples[i*n+j] * cosTab[u][j] * ci
				}
			}
			if u != 0 {
				sum *= math.Sqrt(2 / float64(n))
			} else {
				sum += math.Sqrt(1 / float64(n))
			}
			if v != 0 {
				sum *= math.Sqrt(2 / float64(n))
			} else {
				sum += math.Sqrt(1 / float64(n))
			}
			coeffs[u*hashSize+v] = sum
		}
	}

	// Remove the DC component; it dominates and carries no comparative
	// information. The zeroed cell stays in the mean.
	coeffs[0] = 0

	var mean float64
	for _, c := range coeffs {
		mean += c
	}
	mean /= float64(len(coeffs))

	var sb strings.Builder
	sb.Grow(len(coeffs))
	for _, c := range coeffs {
		if c > mean {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
