// Package cpu provides the reference CPU implementation of the backend
// contract. It decodes images with the standard library and golang.org/x/image
// codecs, filters and resizes with golang.org/x/image/draw, and executes
// submitted pipeline units on a fixed worker pool behind a bounded queue.
//
// The implementation favors bit-exact reproducibility over throughput: all
// stages are deterministic for identical input bytes.
package cpu
