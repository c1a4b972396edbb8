package repository

import (
	"time"

	"github.com/okian/salaryqa/pkg/logger"
)

// Option applies a configuration option to a store.
type Option func(*options)

type options struct {
	metricsUpdateInterval time.Duration
	connectTimeout        time.Duration
	autoMigrate           bool
	logger                logger.Logger
}

func defaultOptions() options {
	return options{
		metricsUpdateInterval: 5 * time.Second,
		connectTimeout:        30 * time.Second,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.Get().Named("repository")
	}
	return o
}

// WithMetricsUpdateInterval sets the interval for background entry gauge updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(o *options) {
		if interval > 0 {
			o.metricsUpdateInterval = interval
		}
	}
}

// WithConnectTimeout bounds how long opening a SQL store keeps retrying the
// database ping.
func WithConnectTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.connectTimeout = d
		}
	}
}

// WithAutoMigrate applies pending schema migrations when a SQL store opens.
func WithAutoMigrate(enabled bool) Option {
	return func(o *options) {
		o.autoMigrate = enabled
	}
}

// WithLogger sets a custom logger for the store.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
