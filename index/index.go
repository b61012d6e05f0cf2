package index

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/percept/bitvec"
)

var (
	// ErrDuplicateID is returned when adding an id that is already
	// registered.
	ErrDuplicateID = errors.New("index: duplicate id")

	// ErrInvalidBitCount is returned when constructing an index with a
	// non-positive bit count.
	ErrInvalidBitCount = errors.New("index: bit count must be positive")

	// ErrInvalidSimilarity is returned for similarity thresholds outside
	// [0, 1].
	ErrInvalidSimilarity = errors.New("index: similarity threshold must be in [0, 1]")
)

// Match is one search hit.
type Match struct {
	ID         uint64
	Similarity float64
}

type entry struct {
	id uint64
	fp *bitvec.BitVector
}

// Index stores fingerprints of one fixed bit count. All methods are safe
// for concurrent use. Removed slots are reused before the entry arena
// grows.
type Index struct {
	mu      sync.RWMutex
	bits    int
	entries []entry
	free    *bitset.BitSet
	slots   map[uint64]int
}

// New creates an empty index for fingerprints of bitCount bits.
func New(bitCount int) (*Index, error) {
	if bitCount <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBitCount, bitCount)
	}
	return &Index{
		bits:  bitCount,
		free:  bitset.New(0),
		slots: make(map[uint64]int),
	}, nil
}

// BitCount returns the fingerprint length this index accepts.
func (x *Index) BitCount() int { return x.bits }

// Len returns the number of registered fingerprints.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.slots)
}

// Add registers fp under id. Fingerprints of a different bit count yield a
// *bitvec.LengthMismatchError; a registered id yields ErrDuplicateID.
func (x *Index) Add(id uint64, fp *bitvec.BitVector) error {
	if fp.BitCount() != x.bits {
		return &bitvec.LengthMismatchError{A: x.bits, B: fp.BitCount()}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.slots[id]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateID, id)
	}

	if slot, ok := x.free.NextSet(0); ok {
		x.free.Clear(slot)
		x.entries[slot] = entry{id: id, fp: fp}
		x.slots[id] = int(slot)
		return nil
	}

	x.entries = append(x.entries, entry{id: id, fp: fp})
	x.slots[id] = len(x.entries) - 1
	return nil
}

// Remove unregisters id, reporting whether it was present. The slot is
// recycled by later Adds.
func (x *Index) Remove(id uint64) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	slot, ok := x.slots[id]
	if !ok {
		return false
	}
	x.entries[slot] = entry{}
	x.free.Set(uint(slot))
	delete(x.slots, id)
	return true
}

// Search returns all entries with similarity >= minSimilarity to fp, most
// similar first (ties broken by ascending id).
func (x *Index) Search(fp *bitvec.BitVector, minSimilarity float64) ([]Match, error) {
	if fp.BitCount() != x.bits {
		return nil, &bitvec.LengthMismatchError{A: x.bits, B: fp.BitCount()}
	}
	if minSimilarity < 0 || minSimilarity > 1 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidSimilarity, minSimilarity)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	var matches []Match
	for slot, e := range x.entries {
		if e.fp == nil || x.free.Test(uint(slot)) {
			continue
		}
		score, err := bitvec.Similarity(fp, e.fp)
		if err != nil {
			return nil, err
		}
		if score >= minSimilarity {
			matches = append(matches, Match{ID: e.id, Similarity: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

// MatchIDs returns the ids with similarity >= minSimilarity as a bitmap,
// for callers that intersect hits with other id sets.
func (x *Index) MatchIDs(fp *bitvec.BitVector, minSimilarity float64) (*roaring64.Bitmap, error) {
	matches, err := x.Search(fp, minSimilarity)
	if err != nil {
		return nil, err
	}
	ids := roaring64.New()
	for _, m := range matches {
		ids.Add(m.ID)
	}
	return ids, nil
}
