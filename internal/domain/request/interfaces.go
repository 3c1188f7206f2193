package request

import (
	"context"
	"time"
)

// ApplyFunc mutates a copy of the record inside a guarded transition. ctx
// carries the store transaction; returning an error aborts the transition.
type ApplyFunc func(ctx context.Context, r *BookingRequest) error

// ExpiryCursor is the (expires_at, id) key of the last row a sweep page
// returned.
type ExpiryCursor struct {
	ExpiresAt time.Time
	ID        int64
}

// CursorAfter returns the cursor positioned on r.
func CursorAfter(r *BookingRequest) *ExpiryCursor {
	return &ExpiryCursor{ExpiresAt: r.ExpiresAt, ID: r.ID}
}

// Repository is the Request Store.
type Repository interface {
	Create(ctx context.Context, r *BookingRequest) error
	GetByID(ctx context.Context, id int64) (*BookingRequest, error)
	List(ctx context.Context, filter ListFilter) ([]BookingRequest, error)
	// ListExpirable returns open requests whose deadline is at or before now,
	// ordered by (expires_at, id) and strictly after the cursor when one is
	// given.
	ListExpirable(ctx context.Context, now time.Time, after *ExpiryCursor, limit int) ([]BookingRequest, error)
	// Transition commits apply only if the persisted status still equals
	// from. A lost guard yields ErrConflict.
	Transition(ctx context.Context, id int64, from Status, apply ApplyFunc) (*BookingRequest, error)
}

// AvailabilityGate reports whether a provider accepts new requests right now.
type AvailabilityGate interface {
	IsAvailable(ctx context.Context, providerID int64) (bool, error)
}

// Materializer creates the durable booking for a finalized request and
// returns its id. It must write through the transaction carried by ctx.
type Materializer interface {
	Materialize(ctx context.Context, r *BookingRequest) (int64, error)
}

// Notifier receives lifecycle events. Implementations must not block.
type Notifier interface {
	RequestCreated(ctx context.Context, r *BookingRequest)
	RequestDeclined(ctx context.Context, r *BookingRequest)
	RequestAutoBooked(ctx context.Context, r *BookingRequest)
	RequestAwaitingConfirmation(ctx context.Context, r *BookingRequest)
	RequestConfirmed(ctx context.Context, r *BookingRequest)
	RequestCancelled(ctx context.Context, r *BookingRequest)
	RequestExpired(ctx context.Context, r *BookingRequest)
}
