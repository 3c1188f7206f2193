package booking

import "context"

// Repository is the read side of the bookings table.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Booking, error)
	ListForParty(ctx context.Context, userID int64, limit int) ([]Booking, error)
}
