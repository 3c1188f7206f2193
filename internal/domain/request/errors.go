package request

import (
	"errors"
	"fmt"
)

var (
	ErrValidation            = errors.New("validation error")
	ErrGateRejected          = errors.New("provider is not currently available for bookings")
	ErrNotFound              = errors.New("booking request not found")
	ErrInvalidTransition     = errors.New("invalid_status_transition")
	ErrConflict              = errors.New("booking request already resolved")
	ErrExpired               = errors.New("booking request has expired")
	ErrStoreUnavailable      = errors.New("request store unavailable")
	ErrMaterializationFailed = errors.New("booking materialization failed")
)

// ConflictError is returned when a guarded transition lost a race. Current
// is the state re-read after the loss.
type ConflictError struct {
	Current *BookingRequest
}

func (e *ConflictError) Error() string {
	if e.Current == nil {
		return ErrConflict.Error()
	}
	if e.Current.Status == StatusExpired {
		return fmt.Sprintf("%s (request %d)", ErrExpired, e.Current.ID)
	}
	return fmt.Sprintf("%s (request %d is %s)", ErrConflict, e.Current.ID, e.Current.Status)
}

func (e *ConflictError) Is(target error) bool {
	if target == ErrConflict {
		return true
	}
	return target == ErrExpired && e.Current != nil && e.Current.Status == StatusExpired
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
