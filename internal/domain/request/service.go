package request

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"stylistbook/internal/pkg/clock"
)

const (
	maxNotesLength      = 2000
	maxDeclineReasonLen = 500
	maxDurationMinutes  = 24 * 60
)

// Policy holds the lifecycle timing. AutoBookWindow must be shorter than
// RequestTTL.
type Policy struct {
	RequestTTL     time.Duration
	AutoBookWindow time.Duration
	SweepBatchSize int
}

func DefaultPolicy() Policy {
	return Policy{
		RequestTTL:     15 * time.Minute,
		AutoBookWindow: 5 * time.Minute,
		SweepBatchSize: 100,
	}
}

// Service is the lifecycle engine: the only component that changes a
// request's status.
type Service struct {
	repo         Repository
	gate         AvailabilityGate
	materializer Materializer
	notifier     Notifier
	clock        clock.Clock
	logger       *zap.Logger
	policy       Policy
}

func NewService(
	repo Repository,
	gate AvailabilityGate,
	materializer Materializer,
	notifier Notifier,
	clk clock.Clock,
	logger *zap.Logger,
	policy Policy,
) (*Service, error) {
	if policy.RequestTTL <= 0 || policy.AutoBookWindow <= 0 {
		return nil, fmt.Errorf("request ttl and auto-book window must be positive")
	}
	if policy.AutoBookWindow >= policy.RequestTTL {
		return nil, fmt.Errorf("auto-book window %s must be shorter than request ttl %s", policy.AutoBookWindow, policy.RequestTTL)
	}
	if policy.SweepBatchSize <= 0 {
		policy.SweepBatchSize = DefaultPolicy().SweepBatchSize
	}
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:         repo,
		gate:         gate,
		materializer: materializer,
		notifier:     notifier,
		clock:        clk,
		logger:       logger,
		policy:       policy,
	}, nil
}

func (s *Service) now() time.Time { return s.clock.Now().UTC() }

func (s *Service) CreateRequest(ctx context.Context, in CreateInput) (*BookingRequest, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	available, err := s.gate.IsAvailable(ctx, in.ProviderID)
	if err != nil {
		return nil, fmt.Errorf("%w: availability check: %v", ErrStoreUnavailable, err)
	}
	if !available {
		return nil, ErrGateRejected
	}

	now := s.now()
	r := &BookingRequest{
		ClientID:             in.ClientID,
		ProviderID:           in.ProviderID,
		ServiceID:            in.ServiceID,
		RequestedDate:        in.RequestedDate,
		RequestedTime:        in.RequestedTime,
		DurationMinutes:      in.DurationMinutes,
		TotalPrice:           in.TotalPrice,
		Notes:                strings.TrimSpace(in.Notes),
		Status:               StatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
		ExpiresAt:            now.Add(s.policy.RequestTTL),
		AutoBookWindowEndsAt: now.Add(s.policy.AutoBookWindow),
	}
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.logger.Info("booking request created",
		zap.Int64("request_id", r.ID),
		zap.Int64("client_id", r.ClientID),
		zap.Int64("provider_id", r.ProviderID),
		zap.Time("expires_at", r.ExpiresAt),
	)
	s.notifier.RequestCreated(ctx, r)
	return r, nil
}

func (s *Service) ProviderRespond(ctx context.Context, in RespondInput) (*BookingRequest, error) {
	if !in.Decision.IsValid() {
		return nil, validationError("response must be %q or %q", ResponseAccept, ResponseDecline)
	}
	reason := strings.TrimSpace(in.DeclineReason)
	if len(reason) > maxDeclineReasonLen {
		return nil, validationError("decline reason is too long")
	}

	r, err := s.repo.GetByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if r.ProviderID != in.ProviderID {
		return nil, ErrNotFound
	}
	if err := s.checkActionable(ctx, r, StatusPending); err != nil {
		return nil, err
	}

	updated, err := s.repo.Transition(ctx, r.ID, StatusPending, func(txCtx context.Context, next *BookingRequest) error {
		at := s.now()
		if next.PastDeadline(at) {
			return errPastDeadline
		}
		recordResponse(next, in.Decision, at)
		switch {
		case in.Decision == ResponseDecline:
			if reason != "" {
				next.DeclineReason = &reason
			}
			next.Status = StatusDeclined
			return nil
		case next.InAutoBookWindow(at):
			next.Status = StatusAutoBooked
			return s.materialize(txCtx, next)
		default:
			next.Status = StatusAwaitingClientConfirmation
			return nil
		}
	})
	if err != nil {
		return nil, s.failed(ctx, r, err)
	}
	s.logTransition(updated, StatusPending)

	switch updated.Status {
	case StatusDeclined:
		s.notifier.RequestDeclined(ctx, updated)
	case StatusAutoBooked:
		s.notifier.RequestAutoBooked(ctx, updated)
	default:
		s.notifier.RequestAwaitingConfirmation(ctx, updated)
	}
	return updated, nil
}

func (s *Service) ClientConfirm(ctx context.Context, requestID, clientID int64) (*BookingRequest, error) {
	r, err := s.loadForClient(ctx, requestID, clientID)
	if err != nil {
		return nil, err
	}
	if err := s.checkActionable(ctx, r, StatusAwaitingClientConfirmation); err != nil {
		return nil, err
	}

	updated, err := s.repo.Transition(ctx, r.ID, StatusAwaitingClientConfirmation, func(txCtx context.Context, next *BookingRequest) error {
		at := s.now()
		if next.PastDeadline(at) {
			return errPastDeadline
		}
		next.ClientConfirmedAt = &at
		next.UpdatedAt = at
		next.Status = StatusConfirmed
		return s.materialize(txCtx, next)
	})
	if err != nil {
		return nil, s.failed(ctx, r, err)
	}
	s.logTransition(updated, StatusAwaitingClientConfirmation)
	s.notifier.RequestConfirmed(ctx, updated)
	return updated, nil
}

func (s *Service) ClientCancel(ctx context.Context, requestID, clientID int64) (*BookingRequest, error) {
	r, err := s.loadForClient(ctx, requestID, clientID)
	if err != nil {
		return nil, err
	}
	// A resolved request reports its current state rather than an error.
	if r.Status.IsTerminal() {
		return nil, &ConflictError{Current: r}
	}
	if !r.Status.CanTransitionTo(StatusCancelled) {
		return nil, fmt.Errorf("%w: request is %s", ErrInvalidTransition, r.Status)
	}

	now := s.now()
	from := r.Status
	updated, err := s.repo.Transition(ctx, r.ID, from, func(_ context.Context, next *BookingRequest) error {
		next.CancelledAt = &now
		next.UpdatedAt = now
		next.Status = StatusCancelled
		return nil
	})
	if err != nil {
		return nil, s.resolve(ctx, r.ID, err)
	}
	s.logTransition(updated, from)
	s.notifier.RequestCancelled(ctx, updated)
	return updated, nil
}

// SweepExpired moves every open request past its deadline into expired and
// returns how many it moved. Pages are keyed on (expires_at, id) so a record
// that keeps failing never hides the ones behind it. Lost races are skipped;
// per-record failures are logged and the scan continues. Only a failed scan
// is returned as an error.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()
	expired := 0
	var cursor *ExpiryCursor

	for {
		if err := ctx.Err(); err != nil {
			return expired, err
		}

		batch, err := s.repo.ListExpirable(ctx, now, cursor, s.policy.SweepBatchSize)
		if err != nil {
			return expired, err
		}
		if len(batch) == 0 {
			return expired, nil
		}

		for i := range batch {
			candidate := &batch[i]
			updated, err := s.repo.Transition(ctx, candidate.ID, candidate.Status, expireAt(now))
			switch {
			case err == nil:
				expired++
				s.logTransition(updated, candidate.Status)
				s.notifier.RequestExpired(ctx, updated)
			case errors.Is(err, ErrConflict):
				s.logger.Debug("sweep skipped resolved request", zap.Int64("request_id", candidate.ID))
			default:
				s.logger.Warn("sweep failed to expire request",
					zap.Int64("request_id", candidate.ID),
					zap.Error(err),
				)
			}
		}

		if len(batch) < s.policy.SweepBatchSize {
			return expired, nil
		}
		cursor = CursorAfter(&batch[len(batch)-1])
	}
}

func (s *Service) ListRequests(ctx context.Context, filter ListFilter) ([]BookingRequest, error) {
	if filter.Role != RoleClient && filter.Role != RoleProvider {
		return nil, validationError("role must be %q or %q", RoleClient, RoleProvider)
	}
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, validationError("unknown status %q", *filter.Status)
	}
	return s.repo.List(ctx, filter)
}

// GetRequest returns the request if partyID is its client or provider.
func (s *Service) GetRequest(ctx context.Context, requestID, partyID int64) (*BookingRequest, error) {
	r, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !r.IsParty(partyID) {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *Service) loadForClient(ctx context.Context, requestID, clientID int64) (*BookingRequest, error) {
	r, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if r.ClientID != clientID {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *Service) materialize(ctx context.Context, next *BookingRequest) error {
	bookingID, err := s.materializer.Materialize(ctx, next)
	if err != nil {
		s.logger.Error("booking materialization failed",
			zap.Int64("request_id", next.ID),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %v", ErrMaterializationFailed, err)
	}
	next.BookingID = &bookingID
	return nil
}

// errPastDeadline aborts a transition whose commit instant fell after the
// hard deadline.
var errPastDeadline = errors.New("request deadline passed before commit")

// checkActionable rejects an action on r unless it is in want. An open
// request already past its deadline is expired first, whatever its status.
func (s *Service) checkActionable(ctx context.Context, r *BookingRequest, want Status) error {
	if r.Status == StatusExpired {
		return &ConflictError{Current: r}
	}
	if now := s.now(); r.Status.IsOpen() && r.PastDeadline(now) {
		return s.expireLate(ctx, r, now)
	}
	if r.Status != want {
		return fmt.Errorf("%w: request is %s", ErrInvalidTransition, r.Status)
	}
	return nil
}

// failed maps a transition error. A deadline that passed while the write was
// in flight expires the request.
func (s *Service) failed(ctx context.Context, r *BookingRequest, err error) error {
	if errors.Is(err, errPastDeadline) {
		return s.expireLate(ctx, r, s.now())
	}
	return s.resolve(ctx, r.ID, err)
}

// expireLate handles an action that arrived after the hard deadline on a
// request the sweeper has not reached yet. The result is always an expired
// conflict unless a concurrent actor resolved the request first.
func (s *Service) expireLate(ctx context.Context, r *BookingRequest, now time.Time) error {
	updated, err := s.repo.Transition(ctx, r.ID, r.Status, expireAt(now))
	if err != nil {
		return s.resolve(ctx, r.ID, err)
	}
	s.logTransition(updated, r.Status)
	s.notifier.RequestExpired(ctx, updated)
	return &ConflictError{Current: updated}
}

// resolve turns a lost guard into a ConflictError carrying the current
// state. Other errors pass through.
func (s *Service) resolve(ctx context.Context, requestID int64, err error) error {
	if !errors.Is(err, ErrConflict) {
		return err
	}
	current, getErr := s.repo.GetByID(ctx, requestID)
	if getErr != nil {
		s.logger.Warn("re-read after conflict failed", zap.Int64("request_id", requestID), zap.Error(getErr))
		return &ConflictError{}
	}
	return &ConflictError{Current: current}
}

func (s *Service) logTransition(r *BookingRequest, from Status) {
	fields := []zap.Field{
		zap.Int64("request_id", r.ID),
		zap.String("from", string(from)),
		zap.String("to", string(r.Status)),
	}
	if r.BookingID != nil {
		fields = append(fields, zap.Int64("booking_id", *r.BookingID))
	}
	s.logger.Info("booking request transition", fields...)
}

func recordResponse(next *BookingRequest, resp ProviderResponse, now time.Time) {
	next.ProviderResponse = &resp
	next.ProviderRespondedAt = &now
	next.UpdatedAt = now
}

func expireAt(now time.Time) ApplyFunc {
	return func(_ context.Context, next *BookingRequest) error {
		next.ExpiredAt = &now
		next.UpdatedAt = now
		next.Status = StatusExpired
		return nil
	}
}

func validateCreate(in CreateInput) error {
	if in.ClientID <= 0 || in.ProviderID <= 0 {
		return validationError("client and provider are required")
	}
	if in.ClientID == in.ProviderID {
		return validationError("cannot request a booking with yourself")
	}
	if in.ServiceID != nil && *in.ServiceID <= 0 {
		return validationError("invalid service id")
	}
	if _, err := time.Parse("2006-01-02", in.RequestedDate); err != nil {
		return validationError("requested date must be YYYY-MM-DD")
	}
	if _, err := time.Parse("15:04", in.RequestedTime); err != nil {
		return validationError("requested time must be HH:MM")
	}
	if in.DurationMinutes <= 0 || in.DurationMinutes > maxDurationMinutes {
		return validationError("duration must be between 1 and %d minutes", maxDurationMinutes)
	}
	if in.TotalPrice <= 0 {
		return validationError("total price must be positive")
	}
	if len(in.Notes) > maxNotesLength {
		return validationError("notes are too long")
	}
	return nil
}

type nopNotifier struct{}

func (nopNotifier) RequestCreated(context.Context, *BookingRequest)              {}
func (nopNotifier) RequestDeclined(context.Context, *BookingRequest)             {}
func (nopNotifier) RequestAutoBooked(context.Context, *BookingRequest)           {}
func (nopNotifier) RequestAwaitingConfirmation(context.Context, *BookingRequest) {}
func (nopNotifier) RequestConfirmed(context.Context, *BookingRequest)            {}
func (nopNotifier) RequestCancelled(context.Context, *BookingRequest)            {}
func (nopNotifier) RequestExpired(context.Context, *BookingRequest)              {}
