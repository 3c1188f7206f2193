package notification

import (
	"context"
	"errors"
)

// Sink delivers one notification.
type Sink interface {
	Deliver(ctx context.Context, n *Notification) error
}

// DBSink persists notifications so users can list them later.
type DBSink struct {
	repo *Repository
}

func NewDBSink(repo *Repository) *DBSink {
	return &DBSink{repo: repo}
}

func (s *DBSink) Deliver(ctx context.Context, n *Notification) error {
	return s.repo.Create(ctx, n)
}

// MultiSink delivers to every sink in order. The stored copy should come
// first so live pushes carry its id.
type MultiSink []Sink

func (m MultiSink) Deliver(ctx context.Context, n *Notification) error {
	var errs []error
	for _, s := range m {
		if err := s.Deliver(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
