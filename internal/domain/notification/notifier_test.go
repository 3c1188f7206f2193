package notification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stylistbook/internal/domain/request"
	"stylistbook/internal/pkg/clock"
)

type captureDispatcher struct{ got []Notification }

func (c *captureDispatcher) Dispatch(n Notification) { c.got = append(c.got, n) }

func sampleRequest() *request.BookingRequest {
	return &request.BookingRequest{
		ID:            11,
		ClientID:      1,
		ProviderID:    2,
		RequestedDate: "2026-10-20",
		RequestedTime: "14:30",
	}
}

func TestRequestNotifier_Recipients(t *testing.T) {
	d := &captureDispatcher{}
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	n := NewRequestNotifier(d, clock.Fake(now), 5*time.Minute, zap.NewNop())
	ctx := context.Background()
	r := sampleRequest()

	n.RequestCreated(ctx, r)
	n.RequestDeclined(ctx, r)
	n.RequestAwaitingConfirmation(ctx, r)
	n.RequestCancelled(ctx, r)

	bookingID := int64(99)
	r.BookingID = &bookingID
	n.RequestAutoBooked(ctx, r)
	n.RequestConfirmed(ctx, r)
	n.RequestExpired(ctx, r)

	require.Len(t, d.got, 6)

	assert.Equal(t, int64(2), d.got[0].UserID)
	assert.Equal(t, TypeBookingRequest, d.got[0].Type)
	assert.Equal(t, "You have a new booking request for 2026-10-20 at 14:30. Respond within 5 minutes for auto-booking.", d.got[0].Message)
	assert.True(t, now.Equal(d.got[0].CreatedAt))
	require.NotNil(t, d.got[0].RelatedRequestID)
	assert.Equal(t, int64(11), *d.got[0].RelatedRequestID)
	assert.Nil(t, d.got[0].RelatedBookingID)

	assert.Equal(t, int64(1), d.got[1].UserID)
	assert.Equal(t, "Your booking request for 2026-10-20 at 14:30 was declined.", d.got[1].Message)

	assert.Equal(t, int64(1), d.got[2].UserID)
	assert.Equal(t, "Your booking request for 2026-10-20 at 14:30 was accepted. Please confirm to finalize.", d.got[2].Message)

	assert.Equal(t, int64(2), d.got[3].UserID)
	assert.Equal(t, TypeBookingCancelled, d.got[3].Type)

	assert.Equal(t, int64(1), d.got[4].UserID)
	assert.Equal(t, TypeBookingAutoBooked, d.got[4].Type)
	require.NotNil(t, d.got[4].RelatedBookingID)
	assert.Equal(t, int64(99), *d.got[4].RelatedBookingID)

	assert.Equal(t, int64(2), d.got[5].UserID)
	assert.Equal(t, "Client confirmed the booking for 2026-10-20 at 14:30.", d.got[5].Message)
}
