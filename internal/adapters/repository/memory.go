package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/okian/salaryqa/internal/domain/criteria"
	"github.com/okian/salaryqa/internal/domain/model"
)

// MemoryStore is an in-memory Store. Iteration follows insertion order so
// results are deterministic.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]model.Entry
	order []string

	gauges *gaugeUpdater
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store. The background gauge
// updater stops when ctx is done or the store is closed.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	o := applyOptions(opts)
	s := &MemoryStore{byID: make(map[string]model.Entry)}
	s.gauges = startGaugeUpdater(ctx, o.metricsUpdateInterval, o.logger, s.Count)
	return s
}

// Close stops the background gauge updater.
func (s *MemoryStore) Close() error {
	s.gauges.stop()
	return nil
}

// Insert stores a new entry.
func (s *MemoryStore) Insert(ctx context.Context, e model.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[e.ID]; ok {
		return fmt.Errorf("%w: %s", ErrConflict, e.ID)
	}
	s.byID[e.ID] = e
	s.order = append(s.order, e.ID)
	return nil
}

// Get returns the entry with id.
func (s *MemoryStore) Get(ctx context.Context, id string) (model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return model.Entry{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.byID[id]
	if !ok {
		return model.Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, nil
}

// FindApproved returns approved entries with a gross salary that match c.
func (s *MemoryStore) FindApproved(ctx context.Context, c criteria.Criteria) ([]model.Entry, error) {
	return s.scan(ctx, c.Limit, func(e *model.Entry) bool {
		return e.Comparable() && c.Match(e)
	})
}

// FindByCountry returns up to limit entries of country, excluding excludeID.
func (s *MemoryStore) FindByCountry(ctx context.Context, country, excludeID string, limit int) ([]model.Entry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	return s.scan(ctx, limit, func(e *model.Entry) bool {
		if excludeID != "" && e.ID == excludeID {
			return false
		}
		return country == "" || e.Country == country
	})
}

// ListByStatus returns up to limit entries in status, oldest first.
func (s *MemoryStore) ListByStatus(ctx context.Context, status model.ReviewStatus, limit int) ([]model.Entry, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	out, err := s.scan(ctx, 0, func(e *model.Entry) bool { return e.ReviewStatus == status })
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// UpdateStatus overwrites the review outcome of an entry.
func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status model.ReviewStatus, score *int, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	e.ReviewStatus = status
	e.AnomalyScore = nil
	if score != nil {
		e.AnomalyScore = model.Int(*score)
	}
	e.AnomalyReason = reason
	s.byID[id] = e
	return nil
}

// Count returns the number of entries per review status.
func (s *MemoryStore) Count(ctx context.Context) (map[model.ReviewStatus]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[model.ReviewStatus]int)
	for _, e := range s.byID {
		out[e.ReviewStatus]++
	}
	return out, nil
}

// scan collects entries accepted by keep in insertion order, stopping at
// limit when limit > 0.
func (s *MemoryStore) scan(ctx context.Context, limit int, keep func(*model.Entry) bool) ([]model.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Entry, 0)
	for _, id := range s.order {
		e := s.byID[id]
		if !keep(&e) {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
