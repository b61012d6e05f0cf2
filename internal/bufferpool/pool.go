// Package bufferpool manages reusable intermediate image buffer sets.
// A set pairs a color resize target with a grayscale readback buffer; sets
// are checked out exclusively, returned, and trimmed so steady-state memory
// is bounded to one spare set.
package bufferpool

import (
	"sync"

	"github.com/hupe1980/percept/backend"
)

// Set is a checked-out pair of working buffers. A set is mutable only while
// checked out by a single caller; the pool never hands out a set that is
// already in use.
type Set struct {
	id     int
	inUse  bool
	format backend.PixelFormat

	Color backend.Buffer
	Gray  backend.Buffer
}

// ID returns the set's unique id.
func (s *Set) ID() int { return s.id }

// Pool owns working buffer sets sized size x size. All bookkeeping is
// mutated under one mutex; Trim is safe to call concurrently with Acquire
// and Release.
type Pool struct {
	mu     sync.Mutex
	alloc  backend.Allocator
	size   int
	sets   []*Set
	nextID int
}

// New creates a pool allocating buffers through alloc.
func New(alloc backend.Allocator, size int) *Pool {
	return &Pool{alloc: alloc, size: size}
}

// Acquire returns the first idle set matching format, allocating a new set
// when none is available. The returned set is marked in use.
func (p *Pool) Acquire(format backend.PixelFormat) (*Set, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, s := range p.sets {
		if !s.inUse && s.format == format {
			s.inUse = true
			return s, nil
		}
	}

	color, err := p.alloc.AllocateColor(p.size, p.size, format)
	if err != nil {
		return nil, err
	}
	gray, err := p.alloc.AllocateGray(p.size, p.size)
	if err != nil {
		return nil, err
	}

	s := &Set{
		id:     p.nextID,
		inUse:  true,
		format: format,
		Color:  color,
		Gray:   gray,
	}
	p.nextID++
	p.sets = append(p.sets, s)
	return s, nil
}

// Release marks the set idle again.
func (p *Pool) Release(s *Set) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s.inUse = false
}

// Trim bounds pool memory. While any set is checked out, all idle sets are
// dropped (a busy pipeline will reallocate soon anyway, and keeping spares
// per in-flight caller multiplies memory). Once everything is idle, one
// spare set is retained and the rest discarded.
func (p *Pool) Trim() {
	p.mu.Lock()
	defer p.mu.Unlock()

	anyInUse := false
	for _, s := range p.sets {
		if s.inUse {
			anyInUse = true
			break
		}
	}

	kept := p.sets[:0]
	if anyInUse {
		for _, s := range p.sets {
			if s.inUse {
				kept = append(kept, s)
			}
		}
	} else {
		if len(p.sets) > 0 {
			kept = append(kept, p.sets[0])
		}
	}
	// Drop references so discarded sets are collectable.
	for i := len(kept); i < len(p.sets); i++ {
		p.sets[i] = nil
	}
	p.sets = kept
}

// Len returns the number of sets the pool currently owns.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.sets)
}

// Idle returns the number of idle sets.
func (p *Pool) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, s := range p.sets {
		if !s.inUse {
			n++
		}
	}
	return n
}
