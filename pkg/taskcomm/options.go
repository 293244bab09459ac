package taskcomm

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/taskcomm/pkg/taskcomm/observability"
)

// Forever makes a blocking operation wait indefinitely. It is the
// default timeout for queues that don't set WithTimeout.
const Forever time.Duration = -1

// config holds construction options shared by Share and Queue.
type config struct {
	name     string
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
}

// defaultConfig returns the default construction configuration.
func defaultConfig() config {
	return config{
		registry: defaultRegistry,
		timeout:  Forever,
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
}

// Option configures a Share or Queue at construction.
type Option func(*config)

// WithName sets the display name shown in diagnostic printouts.
// Names longer than 15 characters are truncated. Default: "(no name)".
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithRegistry registers the new instance with reg instead of the
// process-wide default registry.
func WithRegistry(reg *Registry) Option {
	return func(c *config) {
		if reg != nil {
			c.registry = reg
		}
	}
}

// WithTimeout sets a queue's default wait limit for blocking
// operations. Default: Forever. Shares ignore this option; their
// operations never block.
//
// A default of 0 makes Put/Get/Peek single non-blocking attempts
// unless the caller uses the explicit *Wait variants.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

// WithLogger attaches a structured logger. Construction is logged at
// Info, data-plane timeouts at Warn. Default: no logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetrics attaches a metrics recorder for operation counts, wait
// latency, and occupancy high-water marks. Default: no-op recorder.
func WithMetrics(rec observability.MetricsRecorder) Option {
	return func(c *config) {
		if rec != nil {
			c.metrics = rec
		}
	}
}

// WithSpans attaches a span manager. A queue's blocking operations
// (put, put_front, get, peek) each run inside an operation span;
// timeouts are recorded as span errors. Shares ignore this option;
// their operations never block. Default: no-op span manager.
func WithSpans(mgr observability.SpanManager) Option {
	return func(c *config) {
		if mgr != nil {
			c.spans = mgr
		}
	}
}
