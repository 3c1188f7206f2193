package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stylistbook/internal/pkg/clock"
)

// Cleaner removes notifications past the retention period.
type Cleaner struct {
	repo      *Repository
	clock     clock.Clock
	retention time.Duration
	logger    *zap.Logger
}

func NewCleaner(repo *Repository, clk clock.Clock, retention time.Duration, logger *zap.Logger) *Cleaner {
	return &Cleaner{repo: repo, clock: clk, retention: retention, logger: logger}
}

// CleanupOnce deletes notifications older than the retention period.
func (c *Cleaner) CleanupOnce(ctx context.Context) (int64, error) {
	start := c.clock.Now()
	deleted, err := c.repo.DeleteOlderThan(ctx, start.Add(-c.retention).UTC())
	if err != nil {
		c.logger.Error("notification cleanup failed", zap.Error(err))
		return 0, err
	}
	c.logger.Info("notification cleanup completed",
		zap.Int64("deleted", deleted),
		zap.Duration("took", c.clock.Now().Sub(start)),
	)
	return deleted, nil
}

// Run cleans up on every interval until ctx is done.
func (c *Cleaner) Run(ctx context.Context, interval time.Duration) {
	ticker := c.clock.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = c.CleanupOnce(ctx)
		case <-ctx.Done():
			c.logger.Info("notification cleanup stopped")
			return
		}
	}
}
