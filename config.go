package lanes

import (
	"github.com/ygrebnov/errorc"

	"github.com/lanekit/lanes/metrics"
)

// config holds execution configuration shared by the batch and stream engines.
type config struct {
	// ResultsBufferSize defines the size of the stream results channel buffer.
	// Default: 1024.
	ResultsBufferSize uint

	// ErrorsBufferSize defines the size of the outward errors channel buffer.
	// Default: 1024.
	ErrorsBufferSize uint

	// FailFastBufferSize defines the size of the internal errors buffer used
	// by the stream's fail-fast forwarder. A smaller buffer triggers
	// cancellation quickly. Default: 100.
	FailFastBufferSize uint

	// ContinueOnError switches the stream from fail-fast to collect-all:
	// every task error is delivered outward and intake continues.
	// Default: false (fail-fast).
	ContinueOnError bool

	// Metrics records engine instruments (completed/failed counters,
	// in-flight gauge, task duration histogram). Default: no-op provider.
	Metrics metrics.Provider
}

// defaultConfig centralizes default values for config.
func defaultConfig() config {
	return config{
		ResultsBufferSize:  1024,
		ErrorsBufferSize:   1024,
		FailFastBufferSize: 100,
		ContinueOnError:    false,
		Metrics:            metrics.NewNoopProvider(),
	}
}

// newConfig assembles a config from defaults and options.
func newConfig(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// checkLimit validates the caller-supplied concurrency limit.
func checkLimit(limit int) error {
	if limit < 1 {
		return errorc.With(ErrInvalidLimit, errorc.String("", "limit must be >= 1"))
	}
	return nil
}

// Option configures a run or a stream. Options returning an error reject the
// whole call before any task is dispatched.
type Option func(*config) error

// WithResultsBuffer sets the size of the stream results channel buffer (default 1024).
func WithResultsBuffer(size uint) Option {
	return func(cfg *config) error { cfg.ResultsBufferSize = size; return nil }
}

// WithErrorsBuffer sets the size of the outward errors channel buffer (default 1024).
func WithErrorsBuffer(size uint) Option {
	return func(cfg *config) error { cfg.ErrorsBufferSize = size; return nil }
}

// WithFailFastBuffer sets the size of the internal errors buffer used by the
// stream's fail-fast forwarder (default 100).
func WithFailFastBuffer(size uint) Option {
	return func(cfg *config) error { cfg.FailFastBufferSize = size; return nil }
}

// WithContinueOnError makes the stream deliver every task error outward
// instead of cancelling intake on the first one.
func WithContinueOnError() Option {
	return func(cfg *config) error { cfg.ContinueOnError = true; return nil }
}

// WithMetrics wires a metrics provider into the engine.
func WithMetrics(p metrics.Provider) Option {
	return func(cfg *config) error {
		if p == nil {
			return errorc.With(ErrInvalidConfig, errorc.String("", "WithMetrics requires a non-nil provider"))
		}
		cfg.Metrics = p
		return nil
	}
}
