// Package anomaly flags compensation entries whose salary is a statistical
// outlier relative to comparable approved entries.
package anomaly

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/salaryqa/internal/domain/criteria"
	"github.com/okian/salaryqa/internal/domain/model"
	"github.com/okian/salaryqa/internal/domain/stats"
	"github.com/okian/salaryqa/pkg/logger"
	"github.com/okian/salaryqa/pkg/metrics"
)

// Reasons for outcomes that are not produced by the scorer.
const (
	ReasonInsufficientData = "Insufficient comparable data for analysis"
	ReasonNoSalaryData     = "No salary data in comparison group"
	ReasonMissingSalary    = "Entry has no gross salary to compare"
)

const defaultComparatorLimit = 1000

// Finder queries approved comparator entries.
type Finder interface {
	FindApproved(ctx context.Context, c criteria.Criteria) ([]model.Entry, error)
}

// Result is the anomaly verdict for one entry.
type Result struct {
	IsAnomaly       bool               `json:"is_anomaly"`
	Score           int                `json:"anomaly_score"`
	Reason          string             `json:"reason"`
	ReviewStatus    model.ReviewStatus `json:"review_status"`
	ComparisonGroup string             `json:"comparison_group"`
	Level           string             `json:"comparison_level"`
	SampleSize      int                `json:"sample_size"`
}

// Detector walks the comparison levels until one yields a usable sample,
// profiles that sample and scores the entry's gross salary against it.
type Detector struct {
	finder          Finder
	levels          []Level
	comparatorLimit int
	logger          logger.Logger
}

// NewDetector creates a Detector reading comparators from finder.
func NewDetector(finder Finder, opts ...Option) *Detector {
	d := &Detector{
		finder:          finder,
		levels:          Levels(),
		comparatorLimit: defaultComparatorLimit,
		logger:          logger.Get().Named("anomaly"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect analyzes e. Store failures are returned wrapped in ErrStore; an
// insufficient sample is a regular NEEDS_REVIEW result.
func (d *Detector) Detect(ctx context.Context, e model.Entry) (Result, error) {
	var (
		group    Group
		entries  []model.Entry
		accepted bool
	)
	for _, lvl := range d.levels {
		group = lvl.Build(&e)
		start := time.Now()
		found, err := d.finder.FindApproved(ctx, group.Criteria.WithLimit(d.comparatorLimit))
		metrics.RecordStoreQueryLatency("find_approved", float64(time.Since(start).Milliseconds()))
		if err != nil {
			metrics.RecordStoreError("find_approved")
			return Result{}, fmt.Errorf("%w: %s comparison group: %w", ErrStore, lvl.Name, err)
		}
		entries = found
		if len(entries) >= lvl.MinSample {
			accepted = true
			break
		}
		d.logger.Debug(ctx, "comparison group too small, broadening",
			logger.String("level", lvl.Name),
			logger.String("group", group.Description),
			logger.Int("sample", len(entries)),
			logger.Int("required", lvl.MinSample),
		)
	}

	res := Result{
		ComparisonGroup: group.Description,
		Level:           group.Level,
		SampleSize:      len(entries),
	}

	if !accepted || len(entries) < MinSampleSize {
		metrics.RecordInsufficientData()
		res.Reason = ReasonInsufficientData
		res.ReviewStatus = model.StatusNeedsReview
		return d.finish(res), nil
	}

	salaries := make([]float64, 0, len(entries))
	for i := range entries {
		if entries[i].GrossSalary != nil {
			salaries = append(salaries, *entries[i].GrossSalary)
		}
	}
	if len(salaries) == 0 {
		d.logger.Warn(ctx, "comparison group has entries but no salaries",
			logger.String("group", group.Description),
			logger.Int("sample", len(entries)),
		)
		res.Reason = ReasonNoSalaryData
		res.ReviewStatus = model.StatusNeedsReview
		return d.finish(res), nil
	}

	profile, err := stats.Compute(salaries)
	if err != nil {
		return Result{}, fmt.Errorf("profile comparison group: %w", err)
	}

	if e.GrossSalary == nil {
		res.Reason = ReasonMissingSalary
		res.ReviewStatus = model.StatusNeedsReview
		return d.finish(res), nil
	}

	out := Score(*e.GrossSalary, profile)
	res.IsAnomaly = out.IsAnomaly
	res.Score = out.Score
	res.Reason = out.Reason
	res.ReviewStatus = Classify(out.Score)
	return d.finish(res), nil
}

func (d *Detector) finish(res Result) Result {
	metrics.RecordAnomalyAnalysis(res.Level, string(res.ReviewStatus))
	metrics.ObserveAnomalyScore(float64(res.Score))
	return res
}
