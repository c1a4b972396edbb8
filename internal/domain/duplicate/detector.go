// Package duplicate detects entries that repost or nearly repeat an existing one.
package duplicate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/salaryqa/internal/domain/model"
	"github.com/okian/salaryqa/internal/domain/similarity"
	"github.com/okian/salaryqa/pkg/logger"
	"github.com/okian/salaryqa/pkg/metrics"
)

// Default detection parameters.
const (
	DefaultThreshold       = 90
	DefaultMinMatchedField = 5
	DefaultCandidateLimit  = 100
)

// Fetcher returns candidate entries from the record store.
type Fetcher interface {
	// FindByCountry returns up to limit entries of country (any country when
	// empty), excluding excludeID.
	FindByCountry(ctx context.Context, country, excludeID string, limit int) ([]model.Entry, error)
}

// Result is the duplicate verdict for one entry.
type Result struct {
	IsDuplicate      bool     `json:"is_duplicate"`
	DuplicateEntryID string   `json:"duplicate_entry_id,omitempty"`
	SimilarityScore  int      `json:"similarity_score"`
	MatchDetails     []string `json:"match_details"`
}

// Match is a ranked candidate.
type Match struct {
	ID              string   `json:"id"`
	SimilarityScore int      `json:"similarity_score"`
	MatchedFields   []string `json:"matched_fields"`
}

// Detector fetches same-country candidates and ranks them by similarity.
type Detector struct {
	fetcher        Fetcher
	scorer         *similarity.Scorer
	threshold      int
	minMatched     int
	candidateLimit int
	logger         logger.Logger
}

// NewDetector creates a Detector reading candidates from fetcher.
func NewDetector(fetcher Fetcher, opts ...Option) *Detector {
	d := &Detector{
		fetcher:        fetcher,
		scorer:         similarity.NewScorer(),
		threshold:      DefaultThreshold,
		minMatched:     DefaultMinMatchedField,
		candidateLimit: DefaultCandidateLimit,
		logger:         logger.Get().Named("duplicate"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Threshold returns the similarity score at which a candidate is a duplicate.
func (d *Detector) Threshold() int { return d.threshold }

// Fields lists the similarity fields in use, heaviest first.
func (d *Detector) Fields() []string { return d.scorer.Fields() }

// Candidates returns up to the candidate limit of entries sharing e's
// country, excluding excludeID (or e's own ID when excludeID is empty).
func (d *Detector) Candidates(ctx context.Context, e model.Entry, excludeID string) ([]model.Entry, error) {
	if excludeID == "" {
		excludeID = e.ID
	}
	start := time.Now()
	out, err := d.fetcher.FindByCountry(ctx, e.Country, excludeID, d.candidateLimit)
	metrics.RecordStoreQueryLatency("find_by_country", float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordStoreError("find_by_country")
		return nil, fmt.Errorf("fetch duplicate candidates: %w", err)
	}
	return out, nil
}

// Detect reports whether e duplicates a stored entry. It fails open: a store
// error yields a non-duplicate result and is logged.
func (d *Detector) Detect(ctx context.Context, e model.Entry, excludeID string) Result {
	candidates, err := d.Candidates(ctx, e, excludeID)
	if err != nil {
		metrics.RecordDuplicateCheck("error")
		d.logger.Error(ctx, "duplicate detection failed, treating entry as unique",
			logger.String("country", e.Country),
			logger.Error(err),
		)
		return Result{MatchDetails: []string{}}
	}

	ranked := d.Rank(e, candidates)
	if len(ranked) == 0 {
		metrics.RecordDuplicateCheck("unique")
		return Result{MatchDetails: []string{}}
	}

	top := ranked[0]
	metrics.ObserveSimilarityScore(float64(top.SimilarityScore))
	res := Result{
		SimilarityScore: top.SimilarityScore,
		MatchDetails:    top.MatchedFields,
	}
	if top.SimilarityScore >= d.threshold {
		res.IsDuplicate = true
		res.DuplicateEntryID = top.ID
		metrics.RecordDuplicateCheck("duplicate")
		d.logger.Info(ctx, "duplicate entry detected",
			logger.String("duplicateOf", top.ID),
			logger.Int("similarity", top.SimilarityScore),
		)
		return res
	}
	metrics.RecordDuplicateCheck("unique")
	return res
}

// FindAll returns every candidate whose similarity reaches the duplicate
// threshold, best first. Like Detect it fails open: a store error yields an
// empty list and is logged.
func (d *Detector) FindAll(ctx context.Context, e model.Entry) []Match {
	candidates, err := d.Candidates(ctx, e, "")
	if err != nil {
		d.logger.Error(ctx, "duplicate listing failed, returning no matches",
			logger.String("id", e.ID),
			logger.Error(err),
		)
		return []Match{}
	}
	ranked := d.Rank(e, candidates)
	out := make([]Match, 0, len(ranked))
	for _, m := range ranked {
		if m.SimilarityScore < d.threshold {
			break
		}
		out = append(out, m)
	}
	return out
}

// Rank scores candidates against e, drops those with fewer than the
// minimum matched fields and sorts the rest by score desc, then ID asc.
func (d *Detector) Rank(e model.Entry, candidates []model.Entry) []Match {
	out := make([]Match, 0, len(candidates))
	for i := range candidates {
		m := d.scorer.Compare(&e, &candidates[i])
		if len(m.Matched) < d.minMatched {
			continue
		}
		out = append(out, Match{
			ID:              candidates[i].ID,
			SimilarityScore: m.Score,
			MatchedFields:   m.Matched,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SimilarityScore != out[j].SimilarityScore {
			return out[i].SimilarityScore > out[j].SimilarityScore
		}
		return out[i].ID < out[j].ID
	})
	return out
}
