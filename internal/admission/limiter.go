// Package admission bounds the number of simultaneously in-flight pipeline
// submissions. It exists so application code suspends here, cooperatively,
// instead of blocking inside the backend's own queue admission, which risks
// deadlock under high concurrency.
package admission

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Limiter is a counting semaphore with an observable in-flight gauge.
// Acquire and Release must be paired unconditionally, including on failure
// paths.
type Limiter struct {
	sem      *semaphore.Weighted
	inFlight atomic.Int64
	max      int64
}

// New creates a Limiter admitting at most maxInFlight callers. A
// non-positive maxInFlight admits one caller at a time.
func New(maxInFlight int64) *Limiter {
	if maxInFlight <= 0 {
		maxInFlight = 1
	}
	return &Limiter{
		sem: semaphore.NewWeighted(maxInFlight),
		max: maxInFlight,
	}
}

// Acquire suspends the caller until a slot is free or ctx is done. The
// goroutine parks; no thread is held while waiting.
func (l *Limiter) Acquire(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	l.inFlight.Add(1)
	return nil
}

// Release returns an admitted slot. A Release without a matching Acquire is
// ignored; the gauge never goes negative.
func (l *Limiter) Release() {
	for {
		cur := l.inFlight.Load()
		if cur <= 0 {
			return
		}
		if l.inFlight.CompareAndSwap(cur, cur-1) {
			l.sem.Release(1)
			return
		}
	}
}

// InFlight returns the number of currently admitted callers.
func (l *Limiter) InFlight() int64 { return l.inFlight.Load() }

// Max returns the admission capacity.
func (l *Limiter) Max() int64 { return l.max }
