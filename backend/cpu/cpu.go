package cpu

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/percept/backend"
)

const (
	// DefaultQueueCapacity bounds the number of queued submissions waiting
	// for a worker. The queue cap is enforced independently of any
	// application-level admission limiting.
	DefaultQueueCapacity = 128
)

// Backend is the CPU reference backend.
type Backend struct {
	workers  int
	queueCap int

	workCh chan *task
	stopCh chan struct{}
	wg     sync.WaitGroup

	closed   atomic.Bool
	submitMu sync.RWMutex
}

type task struct {
	ctx  context.Context
	work func(ctx context.Context) error
	done chan error
}

// Option configures the CPU backend.
type Option func(*Backend)

// WithWorkers sets the number of executor goroutines. Defaults to
// runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(b *Backend) { b.workers = n }
}

// WithQueueCapacity sets the bounded submission queue capacity. Defaults to
// DefaultQueueCapacity.
func WithQueueCapacity(n int) Option {
	return func(b *Backend) { b.queueCap = n }
}

// New provisions the backend executor. The worker pool is started before New
// returns; a misconfigured pool is a provisioning failure.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{
		workers:  runtime.GOMAXPROCS(0),
		queueCap: DefaultQueueCapacity,
	}
	for _, fn := range opts {
		if fn != nil {
			fn(b)
		}
	}

	if b.workers <= 0 {
		return nil, fmt.Errorf("cpu: invalid worker count %d", b.workers)
	}
	if b.queueCap <= 0 {
		return nil, fmt.Errorf("cpu: invalid queue capacity %d", b.queueCap)
	}

	b.workCh = make(chan *task, b.queueCap)
	b.stopCh = make(chan struct{})

	b.wg.Add(b.workers)
	for i := 0; i < b.workers; i++ {
		go b.worker()
	}
	return b, nil
}

func (b *Backend) worker() {
	defer b.wg.Done()

	for {
		select {
		case <-b.stopCh:
			// Drain queued work so blocked submitters are signaled.
			for {
				select {
				case t := <-b.workCh:
					t.done <- t.work(t.ctx)
				default:
					return
				}
			}
		case t := <-b.workCh:
			t.done <- t.work(t.ctx)
		}
	}
}

// Submit enqueues work on the bounded executor and waits for completion.
// ctx governs queue admission only: once the unit is enqueued it runs to
// completion or failure and is never aborted.
func (b *Backend) Submit(ctx context.Context, work func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.submitMu.RLock()

	if b.closed.Load() {
		b.submitMu.RUnlock()
		return backend.NewExecutionError("submit", backend.ErrClosed)
	}

	t := &task{ctx: ctx, work: work, done: make(chan error, 1)}
	select {
	case b.workCh <- t:
		b.submitMu.RUnlock()
	case <-b.stopCh:
		b.submitMu.RUnlock()
		return backend.NewExecutionError("submit", backend.ErrClosed)
	case <-ctx.Done():
		b.submitMu.RUnlock()
		return ctx.Err()
	}

	return <-t.done
}

// Close shuts down the executor. Queued work is drained before the workers
// exit; new submissions fail with ErrClosed.
func (b *Backend) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}

	b.submitMu.Lock()
	close(b.stopCh)
	b.submitMu.Unlock()

	b.wg.Wait()
	return nil
}
