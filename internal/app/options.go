package service

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/okian/salaryqa/internal/domain/anomaly"
	"github.com/okian/salaryqa/internal/domain/duplicate"
	"github.com/okian/salaryqa/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAnomalyDetector sets the anomaly detector.
func WithAnomalyDetector(d *anomaly.Detector) Option {
	return func(s *Service) {
		if d != nil {
			s.anomaly = d
		}
	}
}

// WithDuplicateDetector sets the duplicate detector.
func WithDuplicateDetector(d *duplicate.Detector) Option {
	return func(s *Service) {
		if d != nil {
			s.duplicate = d
		}
	}
}

// WithBatchLimit sets the default number of entries a re-analysis run processes.
func WithBatchLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.batchLimit = limit
		}
	}
}

// WithBatchRate paces re-analysis to perSec entries per second. Zero or
// negative disables pacing.
func WithBatchRate(perSec float64) Option {
	return func(s *Service) {
		if perSec <= 0 {
			s.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		s.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

// WithIDGenerator overrides how submitted entries get their IDs.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithClock overrides the submission timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
