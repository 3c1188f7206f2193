package request

import "fmt"

type Status string

const (
	StatusPending                    Status = "pending"
	StatusDeclined                   Status = "declined"
	StatusAutoBooked                 Status = "auto_booked"
	StatusAwaitingClientConfirmation Status = "awaiting_client_confirmation"
	StatusConfirmed                  Status = "confirmed"
	StatusExpired                    Status = "expired"
	StatusCancelled                  Status = "cancelled"
)

// transitions is the complete lifecycle. Anything not listed is rejected.
var transitions = map[Status][]Status{
	StatusPending: {
		StatusDeclined,
		StatusAutoBooked,
		StatusAwaitingClientConfirmation,
		StatusExpired,
		StatusCancelled,
	},
	StatusAwaitingClientConfirmation: {
		StatusConfirmed,
		StatusExpired,
		StatusCancelled,
	},
	StatusDeclined:   {},
	StatusAutoBooked: {},
	StatusConfirmed:  {},
	StatusExpired:    {},
	StatusCancelled:  {},
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, t := range transitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
// Unknown statuses are treated as terminal.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// IsBooked reports whether the status carries a materialized booking.
func (s Status) IsBooked() bool {
	return s == StatusAutoBooked || s == StatusConfirmed
}

func (s Status) String() string { return string(s) }

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid booking request status: %q", v)
	}
	return s, nil
}

// OpenStatuses are the statuses the sweeper may expire.
var OpenStatuses = []Status{StatusPending, StatusAwaitingClientConfirmation}

// IsOpen reports whether s is still waiting on a party.
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusAwaitingClientConfirmation
}

type ProviderResponse string

const (
	ResponseAccept  ProviderResponse = "accept"
	ResponseDecline ProviderResponse = "decline"
)

func (r ProviderResponse) IsValid() bool {
	return r == ResponseAccept || r == ResponseDecline
}
