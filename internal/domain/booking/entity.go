package booking

import "time"

type Status string

const (
	StatusConfirmed Status = "CONFIRMED"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// Booking is the durable appointment created when a request is finalized.
type Booking struct {
	ID              int64     `json:"id"`
	ClientID        int64     `json:"client_id"`
	StylistID       int64     `json:"stylist_id"`
	ServiceID       *int64    `json:"service_id,omitempty"`
	BookingDate     string    `json:"booking_date"`
	BookingTime     string    `json:"booking_time"`
	DurationMinutes int       `json:"duration_minutes"`
	TotalPrice      float64   `json:"total_price"`
	Notes           string    `json:"notes,omitempty"`
	Status          Status    `json:"status"`
	SourceRequestID int64     `json:"source_request_id"`
	ConfirmedAt     time.Time `json:"confirmed_at"`
	CreatedAt       time.Time `json:"created_at"`
}
