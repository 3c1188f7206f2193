package request

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"stylistbook/internal/pkg/clock"
)

// RetryPolicy bounds the retries of transient store failures.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

type retryingRepository struct {
	inner  Repository
	policy RetryPolicy
	clock  clock.Clock
	logger *zap.Logger
}

// WithRetry wraps inner so that ErrStoreUnavailable is retried with
// exponential backoff (BaseDelay, 2*BaseDelay, ...). Create is not retried:
// a lost acknowledgement could otherwise insert a duplicate request.
func WithRetry(inner Repository, policy RetryPolicy, clk clock.Clock, logger *zap.Logger) Repository {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	return &retryingRepository{inner: inner, policy: policy, clock: clk, logger: logger}
}

func retry[T any](ctx context.Context, r *retryingRepository, op string, fn func() (T, error)) (T, error) {
	var (
		zero    T
		lastErr error
	)
	for attempt := 0; attempt < r.policy.Attempts; attempt++ {
		if attempt > 0 {
			backoff := r.policy.BaseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-r.clock.After(backoff):
			}
		}

		v, err := fn()
		if err == nil {
			return v, nil
		}
		if !errors.Is(err, ErrStoreUnavailable) {
			return zero, err
		}
		lastErr = err
		r.logger.Warn("transient store failure, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return zero, lastErr
}

func (r *retryingRepository) Create(ctx context.Context, br *BookingRequest) error {
	return r.inner.Create(ctx, br)
}

func (r *retryingRepository) GetByID(ctx context.Context, id int64) (*BookingRequest, error) {
	return retry(ctx, r, "get", func() (*BookingRequest, error) {
		return r.inner.GetByID(ctx, id)
	})
}

func (r *retryingRepository) List(ctx context.Context, filter ListFilter) ([]BookingRequest, error) {
	return retry(ctx, r, "list", func() ([]BookingRequest, error) {
		return r.inner.List(ctx, filter)
	})
}

func (r *retryingRepository) ListExpirable(ctx context.Context, now time.Time, after *ExpiryCursor, limit int) ([]BookingRequest, error) {
	return retry(ctx, r, "list_expirable", func() ([]BookingRequest, error) {
		return r.inner.ListExpirable(ctx, now, after, limit)
	})
}

func (r *retryingRepository) Transition(ctx context.Context, id int64, from Status, apply ApplyFunc) (*BookingRequest, error) {
	return retry(ctx, r, "transition", func() (*BookingRequest, error) {
		return r.inner.Transition(ctx, id, from, apply)
	})
}
