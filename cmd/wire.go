package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/salaryqa/internal/adapters/repository"
	service "github.com/okian/salaryqa/internal/app"
	"github.com/okian/salaryqa/internal/config"
	"github.com/okian/salaryqa/internal/domain/anomaly"
	"github.com/okian/salaryqa/internal/domain/duplicate"
	"github.com/okian/salaryqa/internal/domain/similarity"
	"github.com/okian/salaryqa/pkg/logger"
)

// openStore opens the configured record store.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	store, err := repository.Open(ctx, strings.ToLower(cfg.StoreDriver), cfg.StoreDSN,
		repository.WithAutoMigrate(cfg.StoreAutoMigrate),
		repository.WithConnectTimeout(cfg.StoreConnectTimeout),
		repository.WithMetricsUpdateInterval(cfg.StoreMetricsInterval),
	)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store, nil
}

// newService builds the service and its detectors from cfg.
func newService(cfg *config.Config, store repository.Store) *service.Service {
	scorer := similarity.NewScorer(similarity.WithWeights(cfg.SimilarityWeights))
	dup := duplicate.NewDetector(store,
		duplicate.WithScorer(scorer),
		duplicate.WithThreshold(cfg.DuplicateThreshold),
		duplicate.WithMinMatchedFields(cfg.DuplicateMinMatchedFields),
		duplicate.WithCandidateLimit(cfg.DuplicateCandidateLimit),
	)
	anom := anomaly.NewDetector(store, anomaly.WithComparatorLimit(cfg.ComparatorLimit))

	return service.New(store,
		service.WithLogger(logger.Get().Named("service")),
		service.WithAnomalyDetector(anom),
		service.WithDuplicateDetector(dup),
		service.WithBatchLimit(cfg.BatchLimit),
		service.WithBatchRate(cfg.BatchRatePerSec),
	)
}
