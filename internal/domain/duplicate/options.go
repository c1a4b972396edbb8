package duplicate

import (
	"github.com/okian/salaryqa/internal/domain/similarity"
	"github.com/okian/salaryqa/pkg/logger"
)

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

// WithScorer sets the field similarity scorer.
func WithScorer(s *similarity.Scorer) Option {
	return func(d *Detector) {
		if s != nil {
			d.scorer = s
		}
	}
}

// WithThreshold sets the similarity score at which a candidate is a duplicate.
func WithThreshold(threshold int) Option {
	return func(d *Detector) {
		if threshold > 0 && threshold <= 100 {
			d.threshold = threshold
		}
	}
}

// WithMinMatchedFields sets how many fields a candidate must match to be ranked.
func WithMinMatchedFields(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.minMatched = n
		}
	}
}

// WithCandidateLimit caps the number of candidates fetched per check.
func WithCandidateLimit(limit int) Option {
	return func(d *Detector) {
		if limit > 0 {
			d.candidateLimit = limit
		}
	}
}
