// Package index provides an in-memory fingerprint index for near-duplicate
// lookup. Fingerprints of a fixed bit count are registered under caller
// chosen ids and queried by minimum similarity. Snapshots persist the index
// as a zstd-compressed binary stream.
//
// The index is a linear scanner: perceptual fingerprints are short (64 bits
// by default) and normalized Hamming similarity is a popcount, so a scan
// over hundreds of thousands of entries is cheap compared to computing a
// single fingerprint.
package index
