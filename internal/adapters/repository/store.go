// Package repository defines the record store interface and its adapters.
package repository

import (
	"context"

	"github.com/okian/salaryqa/internal/domain/criteria"
	"github.com/okian/salaryqa/internal/domain/model"
)

// Store provides read/write access to compensation entries.
type Store interface {
	// Insert stores a new entry. Returns ErrConflict if the ID is taken.
	Insert(ctx context.Context, e model.Entry) error

	// Get returns the entry with id. Returns ErrNotFound if it is unknown.
	Get(ctx context.Context, id string) (model.Entry, error)

	// FindApproved returns entries matching c. Only APPROVED entries with a
	// gross salary are ever returned, whatever c contains.
	FindApproved(ctx context.Context, c criteria.Criteria) ([]model.Entry, error)

	// FindByCountry returns up to limit entries of country (any country when
	// empty), excluding excludeID. Order is unspecified.
	FindByCountry(ctx context.Context, country, excludeID string, limit int) ([]model.Entry, error)

	// ListByStatus returns up to limit entries in status, oldest first.
	ListByStatus(ctx context.Context, status model.ReviewStatus, limit int) ([]model.Entry, error)

	// UpdateStatus overwrites the review outcome of an entry.
	// Returns ErrNotFound if the entry is unknown.
	UpdateStatus(ctx context.Context, id string, status model.ReviewStatus, score *int, reason string) error

	// Count returns the number of entries per review status.
	Count(ctx context.Context) (map[model.ReviewStatus]int, error)

	// Close releases the store's resources.
	Close() error
}
