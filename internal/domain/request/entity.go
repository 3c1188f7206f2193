package request

import (
	"fmt"
	"time"
)

// BookingRequest is a client's proposal for a specific stylist and slot.
type BookingRequest struct {
	ID         int64  `json:"id"`
	ClientID   int64  `json:"client_id"`
	ProviderID int64  `json:"provider_id"`
	ServiceID  *int64 `json:"service_id,omitempty"`

	RequestedDate   string  `json:"requested_date"` // YYYY-MM-DD
	RequestedTime   string  `json:"requested_time"` // HH:MM
	DurationMinutes int     `json:"duration_minutes"`
	TotalPrice      float64 `json:"total_price"`
	Notes           string  `json:"notes,omitempty"`

	Status Status `json:"status"`

	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
	ExpiresAt            time.Time `json:"expires_at"`
	AutoBookWindowEndsAt time.Time `json:"auto_book_window_ends_at"`

	ProviderResponse    *ProviderResponse `json:"provider_response,omitempty"`
	ProviderRespondedAt *time.Time        `json:"provider_responded_at,omitempty"`
	DeclineReason       *string           `json:"decline_reason,omitempty"`

	ClientConfirmedAt *time.Time `json:"client_confirmed_at,omitempty"`
	CancelledAt       *time.Time `json:"cancelled_at,omitempty"`
	ExpiredAt         *time.Time `json:"expired_at,omitempty"`

	BookingID *int64 `json:"booking_id,omitempty"`

	// Version increments on every committed transition.
	Version int64 `json:"-"`
}

// InAutoBookWindow reports whether an acceptance at now commits immediately.
func (r *BookingRequest) InAutoBookWindow(now time.Time) bool {
	return !now.After(r.AutoBookWindowEndsAt)
}

// PastDeadline reports whether now is after the hard deadline.
func (r *BookingRequest) PastDeadline(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// IsParty reports whether userID is the client or the provider of r.
func (r *BookingRequest) IsParty(userID int64) bool {
	return userID == r.ClientID || userID == r.ProviderID
}

// CheckInvariants validates the structural rules every persisted record obeys.
func (r *BookingRequest) CheckInvariants() error {
	if !r.AutoBookWindowEndsAt.Before(r.ExpiresAt) {
		return fmt.Errorf("request %d: auto-book window %s not before expiry %s", r.ID, r.AutoBookWindowEndsAt, r.ExpiresAt)
	}
	if (r.BookingID != nil) != r.Status.IsBooked() {
		return fmt.Errorf("request %d: booking id presence does not match status %s", r.ID, r.Status)
	}
	switch r.Status {
	case StatusPending:
		if r.ProviderResponse != nil {
			return fmt.Errorf("request %d: pending request has a provider response", r.ID)
		}
	case StatusDeclined:
		if r.ProviderResponse == nil || *r.ProviderResponse != ResponseDecline {
			return fmt.Errorf("request %d: declined without a decline response", r.ID)
		}
	case StatusAutoBooked, StatusAwaitingClientConfirmation, StatusConfirmed:
		if r.ProviderResponse == nil || *r.ProviderResponse != ResponseAccept {
			return fmt.Errorf("request %d: %s without an accept response", r.ID, r.Status)
		}
	}
	return nil
}

// CreateInput carries the client's proposed terms.
type CreateInput struct {
	ClientID        int64
	ProviderID      int64
	ServiceID       *int64
	RequestedDate   string
	RequestedTime   string
	DurationMinutes int
	TotalPrice      float64
	Notes           string
}

type RespondInput struct {
	RequestID     int64
	ProviderID    int64
	Decision      ProviderResponse
	DeclineReason string
}

type Role string

const (
	RoleClient   Role = "client"
	RoleProvider Role = "provider"
)

type ListFilter struct {
	PartyID int64
	Role    Role
	Status  *Status
	Limit   int
}
