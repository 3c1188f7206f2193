package request

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"stylistbook/internal/database"
	"stylistbook/internal/database/dbtest"
	"stylistbook/internal/pkg/clock"
)

var t0 = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

const (
	clientID  int64 = 101
	stylistID int64 = 202
)

type MockGate struct {
	mock.Mock
}

func (m *MockGate) IsAvailable(ctx context.Context, providerID int64) (bool, error) {
	args := m.Called(ctx, providerID)
	return args.Bool(0), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func newMockNotifier() *MockNotifier {
	n := &MockNotifier{}
	for _, method := range []string{
		"RequestCreated", "RequestDeclined", "RequestAutoBooked", "RequestAwaitingConfirmation",
		"RequestConfirmed", "RequestCancelled", "RequestExpired",
	} {
		n.On(method, mock.Anything, mock.Anything).Return().Maybe()
	}
	return n
}

func (m *MockNotifier) RequestCreated(ctx context.Context, r *BookingRequest) { m.Called(ctx, r) }
func (m *MockNotifier) RequestDeclined(ctx context.Context, r *BookingRequest) { m.Called(ctx, r) }
func (m *MockNotifier) RequestAutoBooked(ctx context.Context, r *BookingRequest) {
	m.Called(ctx, r)
}
func (m *MockNotifier) RequestAwaitingConfirmation(ctx context.Context, r *BookingRequest) {
	m.Called(ctx, r)
}
func (m *MockNotifier) RequestConfirmed(ctx context.Context, r *BookingRequest) { m.Called(ctx, r) }
func (m *MockNotifier) RequestCancelled(ctx context.Context, r *BookingRequest) { m.Called(ctx, r) }
func (m *MockNotifier) RequestExpired(ctx context.Context, r *BookingRequest)   { m.Called(ctx, r) }

func forRequest(id int64) any {
	return mock.MatchedBy(func(r *BookingRequest) bool { return r.ID == id })
}

// stubBooking stands in for the bookings table so tests can observe
// whether a materialization committed.
type stubBooking struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	RequestID int64 `gorm:"uniqueIndex"`
}

type fakeMaterializer struct {
	db *gorm.DB

	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeMaterializer) Materialize(ctx context.Context, r *BookingRequest) (int64, error) {
	f.mu.Lock()
	f.calls++
	err := f.err
	f.mu.Unlock()
	if err != nil {
		return 0, err
	}

	p := stubBooking{RequestID: r.ID}
	if err := database.Conn(ctx, f.db).Create(&p).Error; err != nil {
		return 0, err
	}
	return p.ID, nil
}

func (f *fakeMaterializer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testEnv struct {
	db       *gorm.DB
	repo     Repository
	clock    *clock.FakeClock
	gate     *MockGate
	notifier *MockNotifier
	mat      *fakeMaterializer
	svc      *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := dbtest.Open(t, append(Models(), &stubBooking{})...)
	return newTestEnvWithRepo(t, db, NewRepository(db, 2*time.Second))
}

func newTestEnvWithRepo(t *testing.T, db *gorm.DB, repo Repository) *testEnv {
	t.Helper()
	gate := &MockGate{}
	gate.On("IsAvailable", mock.Anything, mock.Anything).Return(true, nil).Maybe()

	env := &testEnv{
		db:       db,
		repo:     repo,
		clock:    clock.Fake(t0),
		gate:     gate,
		notifier: newMockNotifier(),
		mat:      &fakeMaterializer{db: db},
	}
	svc, err := NewService(env.repo, env.gate, env.mat, env.notifier, env.clock, zap.NewNop(), DefaultPolicy())
	require.NoError(t, err)
	env.svc = svc
	return env
}

func validInput() CreateInput {
	return CreateInput{
		ClientID:        clientID,
		ProviderID:      stylistID,
		RequestedDate:   "2026-10-20",
		RequestedTime:   "14:30",
		DurationMinutes: 60,
		TotalPrice:      45.5,
		Notes:           "fade, short on the sides",
	}
}

func (e *testEnv) create(t *testing.T) *BookingRequest {
	t.Helper()
	r, err := e.svc.CreateRequest(context.Background(), validInput())
	require.NoError(t, err)
	return r
}

func (e *testEnv) bookings(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&stubBooking{}).Count(&n).Error)
	return n
}

func (e *testEnv) reload(t *testing.T, id int64) *BookingRequest {
	t.Helper()
	r, err := e.repo.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, r.CheckInvariants())
	return r
}
