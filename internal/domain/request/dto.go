package request

import "time"

type CreateRequestBody struct {
	StylistID       int64   `json:"stylist_id" binding:"required"`
	ServiceID       *int64  `json:"service_id"`
	RequestedDate   string  `json:"requested_date" binding:"required,datetime=2006-01-02"`
	RequestedTime   string  `json:"requested_time" binding:"required,datetime=15:04"`
	DurationMinutes int     `json:"duration_minutes" binding:"required,gt=0"`
	TotalPrice      float64 `json:"total_price" binding:"required,gt=0"`
	Notes           string  `json:"notes" binding:"max=2000"`
}

type RespondBody struct {
	Response      string `json:"response" binding:"required,oneof=accept decline"`
	DeclineReason string `json:"decline_reason" binding:"max=500"`
}

// Response is the public view of a BookingRequest.
type Response struct {
	ID                   int64      `json:"id"`
	ClientID             int64      `json:"client_id"`
	StylistID            int64      `json:"stylist_id"`
	ServiceID            *int64     `json:"service_id,omitempty"`
	RequestedDate        string     `json:"requested_date"`
	RequestedTime        string     `json:"requested_time"`
	DurationMinutes      int        `json:"duration_minutes"`
	TotalPrice           float64    `json:"total_price"`
	Notes                string     `json:"notes,omitempty"`
	Status               Status     `json:"status"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	ExpiresAt            time.Time  `json:"expires_at"`
	AutoBookWindowEndsAt time.Time  `json:"auto_book_window_ends_at"`
	StylistResponse      *string    `json:"stylist_response,omitempty"`
	StylistRespondedAt   *time.Time `json:"stylist_responded_at,omitempty"`
	DeclineReason        *string    `json:"decline_reason,omitempty"`
	ClientConfirmedAt    *time.Time `json:"client_confirmed_at,omitempty"`
	CancelledAt          *time.Time `json:"cancelled_at,omitempty"`
	ExpiredAt            *time.Time `json:"expired_at,omitempty"`
	BookingID            *int64     `json:"booking_id,omitempty"`
}

func ResponseFromEntity(r *BookingRequest) Response {
	out := Response{
		ID:                   r.ID,
		ClientID:             r.ClientID,
		StylistID:            r.ProviderID,
		ServiceID:            r.ServiceID,
		RequestedDate:        r.RequestedDate,
		RequestedTime:        r.RequestedTime,
		DurationMinutes:      r.DurationMinutes,
		TotalPrice:           r.TotalPrice,
		Notes:                r.Notes,
		Status:               r.Status,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
		ExpiresAt:            r.ExpiresAt,
		AutoBookWindowEndsAt: r.AutoBookWindowEndsAt,
		StylistRespondedAt:   r.ProviderRespondedAt,
		DeclineReason:        r.DeclineReason,
		ClientConfirmedAt:    r.ClientConfirmedAt,
		CancelledAt:          r.CancelledAt,
		ExpiredAt:            r.ExpiredAt,
		BookingID:            r.BookingID,
	}
	if r.ProviderResponse != nil {
		v := string(*r.ProviderResponse)
		out.StylistResponse = &v
	}
	return out
}

type ListResponse struct {
	Requests []Response `json:"requests"`
}
