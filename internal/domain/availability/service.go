package availability

import (
	"context"

	"go.uber.org/zap"

	"stylistbook/internal/pkg/clock"
)

// Invalidator is notified after a stylist's status changes.
type Invalidator interface {
	Invalidate(ctx context.Context, providerID int64)
}

type Service struct {
	repo        *Repository
	invalidator Invalidator
	clock       clock.Clock
	logger      *zap.Logger
}

func NewService(repo *Repository, invalidator Invalidator, clk clock.Clock, logger *zap.Logger) *Service {
	return &Service{repo: repo, invalidator: invalidator, clock: clk, logger: logger}
}

func (s *Service) Get(ctx context.Context, providerID int64) (*StylistWorkStatus, error) {
	return s.repo.Get(ctx, providerID)
}

func (s *Service) Set(ctx context.Context, providerID int64, status WorkStatus) (*StylistWorkStatus, error) {
	if !status.IsValid() {
		return nil, ErrValidation
	}
	ws, err := s.repo.Set(ctx, providerID, status, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, providerID)
	}
	s.logger.Info("work status updated", zap.Int64("stylist_id", providerID), zap.String("status", string(status)))
	return ws, nil
}
