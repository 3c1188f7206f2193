package request

import (
	"context"
	"time"

	"go.uber.org/zap"

	"stylistbook/internal/pkg/clock"
)

type expirer interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Sweeper periodically expires requests that passed their deadline.
type Sweeper struct {
	engine   expirer
	clock    clock.Clock
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(engine expirer, clk clock.Clock, interval time.Duration, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sweeper{engine: engine, clock: clk, interval: interval, logger: logger}
}

// SweepOnce runs a single pass. Errors are logged, never returned.
func (s *Sweeper) SweepOnce(ctx context.Context) int {
	start := s.clock.Now()
	n, err := s.engine.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("expiry sweep failed", zap.Int("expired", n), zap.Error(err))
		return n
	}
	if n > 0 {
		s.logger.Info("expiry sweep completed",
			zap.Int("expired", n),
			zap.Duration("took", s.clock.Now().Sub(start)),
		)
	}
	return n
}

// Run sweeps once immediately and then on every tick until ctx is done.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("expiry sweeper started", zap.Duration("interval", s.interval))
	s.SweepOnce(ctx)

	for {
		select {
		case <-ticker.C:
			s.SweepOnce(ctx)
		case <-ctx.Done():
			s.logger.Info("expiry sweeper stopped")
			return
		}
	}
}
