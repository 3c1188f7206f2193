package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusPending, StatusDeclined, true},
		{StatusPending, StatusAutoBooked, true},
		{StatusPending, StatusAwaitingClientConfirmation, true},
		{StatusPending, StatusExpired, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusConfirmed, false},
		{StatusAwaitingClientConfirmation, StatusConfirmed, true},
		{StatusAwaitingClientConfirmation, StatusExpired, true},
		{StatusAwaitingClientConfirmation, StatusCancelled, true},
		{StatusAwaitingClientConfirmation, StatusAutoBooked, false},
		{StatusAwaitingClientConfirmation, StatusPending, false},
		{StatusConfirmed, StatusCancelled, false},
		{StatusAutoBooked, StatusExpired, false},
		{StatusCancelled, StatusPending, false},
		{StatusExpired, StatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestNoTransitionReturnsToPending(t *testing.T) {
	for from := range transitions {
		assert.False(t, from.CanTransitionTo(StatusPending), "%s must not return to pending", from)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusAwaitingClientConfirmation.IsTerminal())
	for _, s := range []Status{StatusDeclined, StatusAutoBooked, StatusConfirmed, StatusExpired, StatusCancelled} {
		assert.True(t, s.IsTerminal(), s)
	}
	assert.True(t, Status("bogus").IsTerminal())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("awaiting_client_confirmation")
	assert.NoError(t, err)
	assert.Equal(t, StatusAwaitingClientConfirmation, s)

	_, err = ParseStatus("PENDING")
	assert.Error(t, err)
}
