// Package service wires the quality assurance detectors to the record store
// and implements the dependencies required by the HTTP API and the CLI.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/okian/salaryqa/internal/adapters/repository"
	"github.com/okian/salaryqa/internal/domain/anomaly"
	"github.com/okian/salaryqa/internal/domain/duplicate"
	"github.com/okian/salaryqa/internal/domain/model"
	"github.com/okian/salaryqa/pkg/logger"
	"github.com/okian/salaryqa/pkg/metrics"
)

// ReasonAnalysisUnavailable marks entries whose anomaly analysis could not run.
const ReasonAnalysisUnavailable = "Anomaly analysis unavailable"

const defaultBatchLimit = 100

// Report is the outcome of analyzing one entry. Entry carries the review
// fields derived from both detectors.
type Report struct {
	Entry     model.Entry      `json:"entry"`
	Duplicate duplicate.Result `json:"duplicate"`
	Anomaly   anomaly.Result   `json:"anomaly"`
}

// BatchReport summarizes one re-analysis run.
type BatchReport struct {
	Processed     int           `json:"processed"`
	Downgraded    int           `json:"downgraded"`
	Failed        int           `json:"failed"`
	DowngradedIDs []string      `json:"downgraded_ids"`
	FailedIDs     []string      `json:"failed_ids"`
	Duration      time.Duration `json:"duration_ns"`
}

// Stats is a snapshot of the stored entries.
type Stats struct {
	Total              int                        `json:"total"`
	ByStatus           map[model.ReviewStatus]int `json:"by_status"`
	DuplicateThreshold int                        `json:"duplicate_threshold"`
	SimilarityFields   []string                   `json:"similarity_fields"`
}

// Service runs duplicate and anomaly analysis for submissions and maintenance
// re-analysis over the record store.
type Service struct {
	store     repository.Store
	anomaly   *anomaly.Detector
	duplicate *duplicate.Detector

	batchLimit int
	limiter    *rate.Limiter

	newID func() string
	now   func() time.Time

	logger logger.Logger
}

// New constructs a Service over store. Detectors default to ones reading
// from the same store.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		batchLimit: defaultBatchLimit,
		limiter:    rate.NewLimiter(rate.Inf, 1),
		newID:      func() string { return uuid.New().String() },
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.anomaly == nil {
		s.anomaly = anomaly.NewDetector(store)
	}
	if s.duplicate == nil {
		s.duplicate = duplicate.NewDetector(store)
	}
	return s
}

// Submit assigns an ID to e, analyzes it and stores it with the resulting
// review status. Analysis failures never block the submission.
func (s *Service) Submit(ctx context.Context, e model.Entry) (Report, error) {
	e.ID = s.newID()
	e.CreatedAt = s.now().UTC()

	r := s.analyze(ctx, e)
	if err := s.store.Insert(ctx, r.Entry); err != nil {
		metrics.RecordStoreError("insert")
		return Report{}, fmt.Errorf("store entry: %w", err)
	}
	metrics.RecordSubmission(string(r.Entry.ReviewStatus))

	s.logger.Info(ctx, "entry submitted",
		logger.String("id", r.Entry.ID),
		logger.String("status", string(r.Entry.ReviewStatus)),
		logger.Int("anomalyScore", r.Anomaly.Score),
		logger.Bool("duplicate", r.Duplicate.IsDuplicate),
	)
	return r, nil
}

// Analyze runs both detectors on e without storing anything.
func (s *Service) Analyze(ctx context.Context, e model.Entry) Report {
	return s.analyze(ctx, e)
}

func (s *Service) analyze(ctx context.Context, e model.Entry) Report {
	dup := s.duplicate.Detect(ctx, e, e.ID)

	res, err := s.anomaly.Detect(ctx, e)
	if err != nil {
		s.logger.Error(ctx, "anomaly analysis failed, holding entry for review",
			logger.String("id", e.ID),
			logger.Error(err),
		)
		res = anomaly.Result{
			Reason:       ReasonAnalysisUnavailable,
			ReviewStatus: model.StatusNeedsReview,
		}
		e.AnomalyScore = nil
	} else {
		e.AnomalyScore = model.Int(res.Score)
	}
	// The review status follows the anomaly score alone; the duplicate
	// verdict is returned to the caller and never written onto the entry.
	e.ReviewStatus = res.ReviewStatus
	e.AnomalyReason = res.Reason

	return Report{Entry: e, Duplicate: dup, Anomaly: res}
}

// Get returns a stored entry.
func (s *Service) Get(ctx context.Context, id string) (model.Entry, error) {
	return s.store.Get(ctx, id)
}

// FindDuplicates returns every stored entry at or above the duplicate
// threshold for the stored entry id, best first.
func (s *Service) FindDuplicates(ctx context.Context, id string) ([]duplicate.Match, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.duplicate.FindAll(ctx, e), nil
}

// BatchAnalyze re-runs anomaly analysis over up to limit approved entries,
// one at a time, and downgrades those no longer classified as APPROVED.
// Entries whose analysis fails are skipped and reported. A limit of 0 uses
// the configured default.
func (s *Service) BatchAnalyze(ctx context.Context, limit int) (BatchReport, error) {
	if limit <= 0 {
		limit = s.batchLimit
	}
	start := time.Now()
	report := BatchReport{DowngradedIDs: []string{}, FailedIDs: []string{}}
	defer func() {
		report.Duration = time.Since(start)
		metrics.RecordBatchRun(report.Processed, report.Downgraded, report.Failed, report.Duration)
	}()

	entries, err := s.store.ListByStatus(ctx, model.StatusApproved, limit)
	if err != nil {
		metrics.RecordStoreError("list_by_status")
		return report, fmt.Errorf("list approved entries: %w", err)
	}

	for i := range entries {
		if err := s.limiter.Wait(ctx); err != nil {
			return report, fmt.Errorf("batch re-analysis interrupted: %w", err)
		}
		e := entries[i]

		res, err := s.anomaly.Detect(ctx, e)
		if err != nil {
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, e.ID)
			s.logger.Warn(ctx, "re-analysis failed, entry left unchanged",
				logger.String("id", e.ID),
				logger.Error(err),
			)
			continue
		}
		report.Processed++

		if res.ReviewStatus == model.StatusApproved {
			continue
		}
		if err := s.store.UpdateStatus(ctx, e.ID, res.ReviewStatus, model.Int(res.Score), res.Reason); err != nil {
			metrics.RecordStoreError("update_status")
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, e.ID)
			s.logger.Warn(ctx, "failed to downgrade entry",
				logger.String("id", e.ID),
				logger.Error(err),
			)
			continue
		}
		report.Downgraded++
		report.DowngradedIDs = append(report.DowngradedIDs, e.ID)
		s.logger.Info(ctx, "entry downgraded",
			logger.String("id", e.ID),
			logger.String("status", string(res.ReviewStatus)),
			logger.Int("anomalyScore", res.Score),
			logger.String("reason", res.Reason),
		)
	}

	s.logger.Info(ctx, "batch re-analysis finished",
		logger.Int("processed", report.Processed),
		logger.Int("downgraded", report.Downgraded),
		logger.Int("failed", report.Failed),
	)
	return report, nil
}

// Stats returns entry counts per review status and publishes them as gauges.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	counts, err := s.store.Count(ctx)
	if err != nil {
		metrics.RecordStoreError("count")
		return Stats{}, fmt.Errorf("count entries: %w", err)
	}
	out := Stats{
		ByStatus:           make(map[model.ReviewStatus]int, 3),
		DuplicateThreshold: s.duplicate.Threshold(),
		SimilarityFields:   s.duplicate.Fields(),
	}
	for _, st := range []model.ReviewStatus{model.StatusApproved, model.StatusPending, model.StatusNeedsReview} {
		out.ByStatus[st] = counts[st]
		metrics.UpdateEntriesByStatus(string(st), counts[st])
	}
	for _, n := range counts {
		out.Total += n
	}
	metrics.UpdateEntriesTotal(out.Total)
	return out, nil
}

// IsNotFound reports whether err means the requested entry does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
