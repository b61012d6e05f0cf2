package percept

import (
	"log/slog"

	"golang.org/x/time/rate"

	"github.com/hupe1980/percept/backend"
)

const (
	// DefaultResizedSize is the default downsample target edge length.
	DefaultResizedSize = 32

	// DefaultTransformSize is the default number of retained DCT
	// coefficients per axis, yielding 64-bit fingerprints.
	DefaultTransformSize = 8

	// DefaultMaxInFlight is the default admission capacity, matching the
	// backend's own submission queue bound.
	DefaultMaxInFlight = 128
)

type options struct {
	resizedSize    int
	transformSize  int
	maxInFlight    int64
	backend        backend.Backend
	logger         *Logger
	metrics        MetricsCollector
	submissionRate rate.Limit
}

// Option configures generator construction.
type Option func(*options)

// WithResizedSize sets the downsample target edge length. Must be at least
// the transform size.
func WithResizedSize(size int) Option {
	return func(o *options) {
		o.resizedSize = size
	}
}

// WithTransformSize sets the number of retained low-frequency coefficients
// per axis; the fingerprint carries transformSize squared bits.
func WithTransformSize(size int) Option {
	return func(o *options) {
		o.transformSize = size
	}
}

// WithBackend injects a compute backend. The caller retains ownership and
// must close it; without this option the generator provisions (and owns) a
// CPU reference backend.
func WithBackend(b backend.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithMaxInFlight bounds the number of simultaneously admitted Compute
// calls. Admission suspends additional callers cooperatively.
func WithMaxInFlight(n int) Option {
	return func(o *options) {
		o.maxInFlight = int64(n)
	}
}

// WithSubmissionRate throttles backend submissions to at most perSecond
// units of work per second. Zero (the default) disables throttling.
func WithSubmissionRate(perSecond float64) Option {
	return func(o *options) {
		o.submissionRate = rate.Limit(perSecond)
	}
}

// WithLogger configures structured logging for operations.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metrics = mc
		}
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		resizedSize:   DefaultResizedSize,
		transformSize: DefaultTransformSize,
		maxInFlight:   DefaultMaxInFlight,
		logger:        NoopLogger(),
		metrics:       NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
