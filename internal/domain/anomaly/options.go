package anomaly

import "github.com/okian/salaryqa/pkg/logger"

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithLogger sets a custom logger for the detector.
func WithLogger(l logger.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithComparatorLimit caps the number of comparators fetched per level.
func WithComparatorLimit(limit int) Option {
	return func(d *Detector) {
		if limit > 0 {
			d.comparatorLimit = limit
		}
	}
}

// WithLevels replaces the comparison levels. Levels are tried in order.
func WithLevels(levels ...Level) Option {
	return func(d *Detector) {
		if len(levels) > 0 {
			d.levels = levels
		}
	}
}
