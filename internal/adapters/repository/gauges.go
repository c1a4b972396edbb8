package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/salaryqa/internal/domain/model"
	"github.com/okian/salaryqa/pkg/logger"
	"github.com/okian/salaryqa/pkg/metrics"
)

// gaugeUpdater periodically publishes entry counts to the metrics gauges.
type gaugeUpdater struct {
	count    func(ctx context.Context) (map[model.ReviewStatus]int, error)
	interval time.Duration
	logger   logger.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func startGaugeUpdater(ctx context.Context, interval time.Duration, l logger.Logger,
	count func(ctx context.Context) (map[model.ReviewStatus]int, error),
) *gaugeUpdater {
	g := &gaugeUpdater{count: count, interval: interval, logger: l, stopChan: make(chan struct{})}
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-g.stopChan:
				return
			case <-ticker.C:
				g.publish(ctx)
			}
		}
	}()
	return g
}

func (g *gaugeUpdater) publish(ctx context.Context) {
	counts, err := g.count(ctx)
	if err != nil {
		metrics.RecordStoreError("count")
		g.logger.Warn(ctx, "failed to refresh entry gauges", logger.Error(err))
		return
	}
	publishCounts(counts)
}

func (g *gaugeUpdater) stop() {
	g.stopOnce.Do(func() { close(g.stopChan) })
	g.wg.Wait()
}

func publishCounts(counts map[model.ReviewStatus]int) {
	total := 0
	for _, st := range []model.ReviewStatus{model.StatusApproved, model.StatusPending, model.StatusNeedsReview} {
		metrics.UpdateEntriesByStatus(string(st), counts[st])
	}
	for _, n := range counts {
		total += n
	}
	metrics.UpdateEntriesTotal(total)
}
