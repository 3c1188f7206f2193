package request

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stylistbook/internal/database"
	"stylistbook/internal/database/dbtest"
)

func newRepo(t *testing.T) (Repository, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t, Models()...)
	return NewRepository(db, 2*time.Second), db
}

func seed(t *testing.T, repo Repository, clientID, providerID int64, createdAt time.Time) *BookingRequest {
	t.Helper()
	r := &BookingRequest{
		ClientID:             clientID,
		ProviderID:           providerID,
		RequestedDate:        "2026-10-20",
		RequestedTime:        "09:00",
		DurationMinutes:      30,
		TotalPrice:           20,
		Status:               StatusPending,
		CreatedAt:            createdAt,
		UpdatedAt:            createdAt,
		ExpiresAt:            createdAt.Add(15 * time.Minute),
		AutoBookWindowEndsAt: createdAt.Add(5 * time.Minute),
	}
	require.NoError(t, repo.Create(context.Background(), r))
	require.NotZero(t, r.ID)
	return r
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, _ := newRepo(t)
	r := seed(t, repo, clientID, stylistID, t0)

	got, err := repo.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status)
	assert.Equal(t, "2026-10-20", got.RequestedDate)
	assert.True(t, t0.Equal(got.CreatedAt))
	assert.True(t, t0.Add(15*time.Minute).Equal(got.ExpiresAt))
	assert.Empty(t, got.Notes)
	assert.Nil(t, got.ProviderResponse)
	assert.Zero(t, got.Version)

	_, err = repo.GetByID(context.Background(), r.ID+1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_TransitionCommitsAndBumpsVersion(t *testing.T) {
	repo, _ := newRepo(t)
	r := seed(t, repo, clientID, stylistID, t0)
	now := t0.Add(time.Minute)

	got, err := repo.Transition(context.Background(), r.ID, StatusPending, func(_ context.Context, next *BookingRequest) error {
		recordResponse(next, ResponseDecline, now)
		reason := "busy"
		next.DeclineReason = &reason
		next.Status = StatusDeclined
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.Version)

	stored, err := repo.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, stored.Status)
	require.NotNil(t, stored.DeclineReason)
	assert.Equal(t, "busy", *stored.DeclineReason)
	require.NotNil(t, stored.ProviderRespondedAt)
	assert.True(t, now.Equal(*stored.ProviderRespondedAt))
	assert.Equal(t, int64(1), stored.Version)
}

func TestRepository_TransitionGuardedByStatus(t *testing.T) {
	repo, _ := newRepo(t)
	r := seed(t, repo, clientID, stylistID, t0)

	applied := false
	_, err := repo.Transition(context.Background(), r.ID, StatusAwaitingClientConfirmation, func(context.Context, *BookingRequest) error {
		applied = true
		return nil
	})
	assert.ErrorIs(t, err, ErrConflict)
	assert.False(t, applied)
}

func TestRepository_TransitionLostVersionRace(t *testing.T) {
	repo, db := newRepo(t)
	r := seed(t, repo, clientID, stylistID, t0)

	_, err := repo.Transition(context.Background(), r.ID, StatusPending, func(ctx context.Context, next *BookingRequest) error {
		// A concurrent writer commits between the read and the guarded update.
		if err := database.Conn(ctx, db).Model(&requestModel{}).
			Where("id = ?", next.ID).
			Update("version", gorm.Expr("version + 1")).Error; err != nil {
			return err
		}
		next.Status = StatusCancelled
		return nil
	})
	assert.ErrorIs(t, err, ErrConflict)

	stored, err := repo.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
	assert.Zero(t, stored.Version)
}

func TestRepository_TransitionRejectsIllegalTarget(t *testing.T) {
	repo, _ := newRepo(t)
	r := seed(t, repo, clientID, stylistID, t0)

	_, err := repo.Transition(context.Background(), r.ID, StatusPending, func(_ context.Context, next *BookingRequest) error {
		next.Status = StatusConfirmed
		return nil
	})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRepository_TransitionApplyErrorRollsBack(t *testing.T) {
	repo, _ := newRepo(t)
	r := seed(t, repo, clientID, stylistID, t0)
	boom := errors.New("boom")

	_, err := repo.Transition(context.Background(), r.ID, StatusPending, func(_ context.Context, next *BookingRequest) error {
		next.Status = StatusCancelled
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stored, err := repo.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, stored.Status)
}

func TestRepository_ListOrderAndFilters(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	a := seed(t, repo, clientID, stylistID, t0)
	b := seed(t, repo, clientID, 303, t0.Add(time.Minute))
	c := seed(t, repo, 404, stylistID, t0.Add(2*time.Minute))
	_, err := repo.Transition(ctx, a.ID, StatusPending, expireAt(t0.Add(20*time.Minute)))
	require.NoError(t, err)

	mine, err := repo.List(ctx, ListFilter{PartyID: clientID, Role: RoleClient})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, []int64{b.ID, a.ID}, []int64{mine[0].ID, mine[1].ID})

	theirs, err := repo.List(ctx, ListFilter{PartyID: stylistID, Role: RoleProvider})
	require.NoError(t, err)
	require.Len(t, theirs, 2)
	assert.Equal(t, c.ID, theirs[0].ID)

	expired := StatusExpired
	filtered, err := repo.List(ctx, ListFilter{PartyID: stylistID, Role: RoleProvider, Status: &expired})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, a.ID, filtered[0].ID)

	limited, err := repo.List(ctx, ListFilter{PartyID: stylistID, Role: RoleProvider, Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = repo.List(ctx, ListFilter{PartyID: stylistID})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRepository_ListExpirable(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()

	late := seed(t, repo, clientID, stylistID, t0.Add(time.Minute))
	early := seed(t, repo, clientID, stylistID, t0)
	seed(t, repo, clientID, stylistID, t0.Add(time.Hour))
	declined := seed(t, repo, clientID, stylistID, t0)
	_, err := repo.Transition(ctx, declined.ID, StatusPending, func(_ context.Context, next *BookingRequest) error {
		recordResponse(next, ResponseDecline, t0)
		next.Status = StatusDeclined
		return nil
	})
	require.NoError(t, err)

	got, err := repo.ListExpirable(ctx, t0.Add(16*time.Minute), nil, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early.ID, got[0].ID)
	assert.Equal(t, late.ID, got[1].ID)

	got, err = repo.ListExpirable(ctx, t0.Add(16*time.Minute), nil, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, early.ID, got[0].ID)
}

func TestRepository_ListExpirableCursor(t *testing.T) {
	repo, _ := newRepo(t)
	ctx := context.Background()
	now := t0.Add(time.Hour)

	first := seed(t, repo, clientID, stylistID, t0)
	tie := seed(t, repo, clientID, stylistID, t0)
	later := seed(t, repo, clientID, stylistID, t0.Add(time.Second))

	page, err := repo.ListExpirable(ctx, now, nil, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, first.ID, page[0].ID)
	assert.Equal(t, tie.ID, page[1].ID)

	page, err = repo.ListExpirable(ctx, now, CursorAfter(&page[0]), 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, tie.ID, page[0].ID)
	assert.Equal(t, later.ID, page[1].ID)

	page, err = repo.ListExpirable(ctx, now, CursorAfter(later), 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		guarded bool
		want    error
	}{
		{"record not found", gorm.ErrRecordNotFound, false, ErrNotFound},
		{"guarded timeout", context.DeadlineExceeded, true, ErrConflict},
		{"read timeout", fmt.Errorf("query: %w", context.DeadlineExceeded), false, ErrStoreUnavailable},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, true, ErrStoreUnavailable},
		{"connection exception", &pgconn.PgError{Code: "08006"}, false, ErrStoreUnavailable},
		{"sqlite busy", errors.New("database is locked (5) (SQLITE_BUSY)"), false, ErrStoreUnavailable},
		{"conflict passes through", ErrConflict, true, ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tt.err, tt.guarded), tt.want)
		})
	}

	unique := &pgconn.PgError{Code: "23505"}
	assert.Equal(t, unique, translateError(unique, false))
	assert.NoError(t, translateError(nil, false))
}
