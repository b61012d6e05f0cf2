// Package percept computes fixed-length perceptual fingerprints for raster
// images. Visually similar images (recompression, minor cropping, color
// adjustment) yield fingerprints with small bit-distance; dissimilar images
// yield near-random distance.
//
// # Quick Start
//
//	gen, _ := percept.New()
//	defer gen.Close()
//
//	fp, _ := gen.Compute(ctx, imageBytes)
//	other, _ := gen.Compute(ctx, otherBytes)
//
//	score, _ := bitvec.Similarity(fp, other) // 1.0 identical, ~0.5 unrelated
//
// # Pipeline
//
// Each Compute call is admitted through a concurrency limiter, decoded by the
// backend, low-pass filtered, downsampled with bilinear filtering into a
// pooled working buffer, reduced to grayscale, transformed with a restricted
// 2D DCT and thresholded into a bit vector. Output is bit-exact for identical
// input bytes and configuration.
//
// # Scores
//
// Similarity scores are only meaningful between fingerprints produced with an
// identical configuration. The fingerprint is not a cryptographic hash and is
// not robust to rotation or large geometric transforms.
package percept
