package percept

import (
	"context"
	"math"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/percept/backend"
	"github.com/hupe1980/percept/backend/cpu"
	"github.com/hupe1980/percept/bitvec"
	"github.com/hupe1980/percept/internal/admission"
	"github.com/hupe1980/percept/internal/bufferpool"
	"github.com/hupe1980/percept/internal/dct"
)

// Generator computes perceptual fingerprints. A Generator is immutable after
// construction and safe for concurrent use; the number of simultaneously
// executing computations is bounded by its admission limiter.
type Generator struct {
	resizedSize   int
	transformSize int

	be          backend.Backend
	ownsBackend bool

	limiter *admission.Limiter
	pool    *bufferpool.Pool
	rate    *rate.Limiter

	logger  *Logger
	metrics MetricsCollector
}

// New constructs a Generator. Without WithBackend, a CPU reference backend
// is provisioned and owned by the generator.
func New(opts ...Option) (*Generator, error) {
	o := applyOptions(opts)

	switch {
	case o.resizedSize <= 0:
		return nil, &ConfigurationError{
			ResizedSize:   o.resizedSize,
			TransformSize: o.transformSize,
			Reason:        "resizedSize must be positive",
		}
	case o.transformSize <= 1:
		return nil, &ConfigurationError{
			ResizedSize:   o.resizedSize,
			TransformSize: o.transformSize,
			Reason:        "transformSize must be greater than 1",
		}
	case o.resizedSize < o.transformSize:
		return nil, &ConfigurationError{
			ResizedSize:   o.resizedSize,
			TransformSize: o.transformSize,
			Reason:        "resizedSize must be at least transformSize",
		}
	}

	be := o.backend
	owns := false
	if be == nil {
		cb, err := cpu.New()
		if err != nil {
			return nil, &BackendInitError{cause: err}
		}
		be = cb
		owns = true
	}

	g := &Generator{
		resizedSize:   o.resizedSize,
		transformSize: o.transformSize,
		be:            be,
		ownsBackend:   owns,
		limiter:       admission.New(o.maxInFlight),
		pool:          bufferpool.New(be, o.resizedSize),
		logger:        o.logger,
		metrics:       o.metrics,
	}
	if o.submissionRate > 0 {
		g.rate = rate.NewLimiter(o.submissionRate, 1)
	}
	return g, nil
}

// Close releases the backend when the generator owns it. Backends injected
// via WithBackend stay open.
func (g *Generator) Close() error {
	if g.ownsBackend {
		return g.be.Close()
	}
	return nil
}

// BitCount returns the fingerprint length this generator produces.
func (g *Generator) BitCount() int {
	return g.transformSize * g.transformSize
}

// Stats is a snapshot of generator resource state.
type Stats struct {
	InFlight    int64
	MaxInFlight int64
	PoolSets    int
	PoolIdle    int
}

// Stats returns current resource usage.
func (g *Generator) Stats() Stats {
	return Stats{
		InFlight:    g.limiter.InFlight(),
		MaxInFlight: g.limiter.Max(),
		PoolSets:    g.pool.Len(),
		PoolIdle:    g.pool.Idle(),
	}
}

// Compute decodes imageBytes and returns its perceptual fingerprint.
//
// The call suspends while the limiter is at capacity and while the backend
// executes the submitted blur/resize/grayscale unit; no thread is blocked
// during either wait. Identical bytes and configuration yield bit-identical
// fingerprints. On failure no partial fingerprint is returned, and the
// admission slot and pooled buffers are always released.
//
// ctx is honored during admission and queue submission; once the unit of
// work is running on the backend it runs to completion or failure.
func (g *Generator) Compute(ctx context.Context, imageBytes []byte) (*bitvec.BitVector, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()

	if err := g.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer g.limiter.Release()
	waited := time.Since(start)

	fp, err := g.compute(ctx, imageBytes)

	total := time.Since(start)
	g.metrics.RecordCompute(waited, total, err)
	bits := 0
	if fp != nil {
		bits = fp.BitCount()
	}
	g.logger.LogCompute(ctx, bits, waited, total, err)
	return fp, err
}

func (g *Generator) compute(ctx context.Context, imageBytes []byte) (*bitvec.BitVector, error) {
	img, err := g.be.Decode(imageBytes)
	if err != nil {
		return nil, err
	}

	scaleX := float64(g.resizedSize) / float64(img.Width())
	scaleY := float64(g.resizedSize) / float64(img.Height())

	// Low-pass ahead of downsampling so neither axis aliases. The larger
	// scale factor is the conservative (wider-radius) choice.
	sigma := 1 / (2 * math.Max(scaleX, scaleY))

	set, err := g.pool.Acquire(img.Format())
	if err != nil {
		return nil, err
	}

	if g.rate != nil {
		if err := g.rate.Wait(ctx); err != nil {
			g.pool.Release(set)
			g.pool.Trim()
			return nil, err
		}
	}

	err = g.be.Submit(ctx, func(ctx context.Context) error {
		if err := g.be.BlurInPlace(ctx, img, sigma); err != nil {
			return err
		}
		if err := g.be.ResizeBilinear(ctx, img, set.Color, scaleX, scaleY); err != nil {
			return err
		}
		return g.be.Grayscale(ctx, set.Color, set.Gray)
	})

	var samples []float64
	if err == nil {
		samples, err = g.be.Readback(ctx, set.Gray)
	}

	g.pool.Release(set)
	g.pool.Trim()
	if err != nil {
		return nil, err
	}

	return bitvec.FromBitString(dct.Transform(samples, g.resizedSize, g.transformSize))
}
