package admission

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Bound(t *testing.T) {
	const k, extra = 4, 12

	l := New(k)

	var (
		current atomic.Int64
		peak    atomic.Int64
		wg      sync.WaitGroup
	)

	for i := 0; i < k+extra; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, l.Acquire(context.Background()))
			defer l.Release()

			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak.Load(), int64(k))
	assert.Equal(t, int64(0), l.InFlight())
}

func TestLimiter_ContextCanceled(t *testing.T) {
	l := New(1)
	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(1), l.InFlight())

	l.Release()
	assert.Equal(t, int64(0), l.InFlight())
}

func TestLimiter_ReleaseWithoutAcquire(t *testing.T) {
	l := New(2)

	// Must not drive the gauge negative or free phantom slots.
	l.Release()
	assert.Equal(t, int64(0), l.InFlight())

	require.NoError(t, l.Acquire(context.Background()))
	assert.Equal(t, int64(1), l.InFlight())
	l.Release()
	l.Release()
	assert.Equal(t, int64(0), l.InFlight())
}

func TestLimiter_NonPositiveMax(t *testing.T) {
	l := New(0)
	assert.Equal(t, int64(1), l.Max())
}
