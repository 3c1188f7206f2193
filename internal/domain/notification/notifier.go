package notification

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stylistbook/internal/domain/request"
	"stylistbook/internal/pkg/clock"
)

type dispatcher interface {
	Dispatch(n Notification)
}

// RequestNotifier turns lifecycle events into user notifications.
type RequestNotifier struct {
	dispatcher     dispatcher
	clock          clock.Clock
	autoBookWindow time.Duration
	logger         *zap.Logger
}

func NewRequestNotifier(d dispatcher, clk clock.Clock, autoBookWindow time.Duration, logger *zap.Logger) *RequestNotifier {
	return &RequestNotifier{dispatcher: d, clock: clk, autoBookWindow: autoBookWindow, logger: logger}
}

var _ request.Notifier = (*RequestNotifier)(nil)

func (n *RequestNotifier) send(userID int64, t Type, title, message string, r *request.BookingRequest) {
	requestID := r.ID
	note := Notification{
		UserID:           userID,
		Type:             t,
		Title:            title,
		Message:          message,
		RelatedRequestID: &requestID,
		CreatedAt:        n.clock.Now().UTC(),
	}
	if r.BookingID != nil {
		bookingID := *r.BookingID
		note.RelatedBookingID = &bookingID
	}
	n.dispatcher.Dispatch(note)
}

func (n *RequestNotifier) RequestCreated(_ context.Context, r *request.BookingRequest) {
	n.send(r.ProviderID, TypeBookingRequest, "New Booking Request",
		fmt.Sprintf("You have a new booking request for %s at %s. Respond within %d minutes for auto-booking.",
			r.RequestedDate, r.RequestedTime, int(n.autoBookWindow.Minutes())), r)
}

func (n *RequestNotifier) RequestDeclined(_ context.Context, r *request.BookingRequest) {
	n.send(r.ClientID, TypeBookingDeclined, "Booking Request Declined",
		fmt.Sprintf("Your booking request for %s at %s was declined.", r.RequestedDate, r.RequestedTime), r)
}

func (n *RequestNotifier) RequestAutoBooked(_ context.Context, r *request.BookingRequest) {
	n.send(r.ClientID, TypeBookingAutoBooked, "Booking Confirmed",
		fmt.Sprintf("Your booking for %s at %s was automatically confirmed.", r.RequestedDate, r.RequestedTime), r)
}

func (n *RequestNotifier) RequestAwaitingConfirmation(_ context.Context, r *request.BookingRequest) {
	n.send(r.ClientID, TypeBookingAwaitingConfirmation, "Booking Request Accepted",
		fmt.Sprintf("Your booking request for %s at %s was accepted. Please confirm to finalize.", r.RequestedDate, r.RequestedTime), r)
}

func (n *RequestNotifier) RequestConfirmed(_ context.Context, r *request.BookingRequest) {
	n.send(r.ProviderID, TypeBookingConfirmed, "Booking Confirmed",
		fmt.Sprintf("Client confirmed the booking for %s at %s.", r.RequestedDate, r.RequestedTime), r)
}

func (n *RequestNotifier) RequestCancelled(_ context.Context, r *request.BookingRequest) {
	n.send(r.ProviderID, TypeBookingCancelled, "Booking Request Cancelled",
		fmt.Sprintf("The booking request for %s at %s was cancelled by the client.", r.RequestedDate, r.RequestedTime), r)
}

// RequestExpired is recorded in the log only.
func (n *RequestNotifier) RequestExpired(_ context.Context, r *request.BookingRequest) {
	n.logger.Info("booking request expired",
		zap.Int64("request_id", r.ID),
		zap.Int64("client_id", r.ClientID),
		zap.Int64("stylist_id", r.ProviderID),
	)
}
