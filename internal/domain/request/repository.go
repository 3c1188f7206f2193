package request

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stylistbook/internal/database"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

type gormRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewRepository returns the gorm-backed store. Every call is bounded by
// timeout; a Transition that times out reports ErrConflict.
func NewRepository(db *gorm.DB, timeout time.Duration) Repository {
	return &gormRepository{db: db, timeout: timeout}
}

type requestModel struct {
	ID              int64   `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID        int64   `gorm:"column:client_id;not null;index:idx_booking_requests_client,priority:1"`
	ProviderID      int64   `gorm:"column:provider_id;not null;index:idx_booking_requests_provider,priority:1"`
	ServiceID       *int64  `gorm:"column:service_id"`
	RequestedDate   string  `gorm:"column:requested_date;type:varchar(10);not null"`
	RequestedTime   string  `gorm:"column:requested_time;type:varchar(5);not null"`
	DurationMinutes int     `gorm:"column:duration_minutes;not null"`
	TotalPrice      float64 `gorm:"column:total_price;not null"`
	Notes           *string `gorm:"column:notes;type:text"`

	Status string `gorm:"column:status;type:varchar(32);not null;index:idx_booking_requests_open,priority:1"`

	ExpiresAt            time.Time `gorm:"column:expires_at;not null;index:idx_booking_requests_open,priority:2"`
	AutoBookWindowEndsAt time.Time `gorm:"column:auto_book_window_ends_at;not null"`

	ProviderResponse    *string    `gorm:"column:provider_response;type:varchar(16)"`
	ProviderRespondedAt *time.Time `gorm:"column:provider_responded_at"`
	DeclineReason       *string    `gorm:"column:decline_reason;type:text"`
	ClientConfirmedAt   *time.Time `gorm:"column:client_confirmed_at"`
	CancelledAt         *time.Time `gorm:"column:cancelled_at"`
	ExpiredAt           *time.Time `gorm:"column:expired_at"`
	BookingID           *int64     `gorm:"column:booking_id"`

	Version int64 `gorm:"column:version;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime:false;index:idx_booking_requests_client,priority:2;index:idx_booking_requests_provider,priority:2"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

func (requestModel) TableName() string { return "booking_requests" }

// Models lists the tables owned by this package, for migrations.
func Models() []any { return []any{&requestModel{}} }

func toDomainRequest(m requestModel) *BookingRequest {
	r := &BookingRequest{
		ID:                   m.ID,
		ClientID:             m.ClientID,
		ProviderID:           m.ProviderID,
		ServiceID:            m.ServiceID,
		RequestedDate:        m.RequestedDate,
		RequestedTime:        m.RequestedTime,
		DurationMinutes:      m.DurationMinutes,
		TotalPrice:           m.TotalPrice,
		Status:               Status(m.Status),
		CreatedAt:            m.CreatedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
		ExpiresAt:            m.ExpiresAt.UTC(),
		AutoBookWindowEndsAt: m.AutoBookWindowEndsAt.UTC(),
		ProviderRespondedAt:  utcPtr(m.ProviderRespondedAt),
		DeclineReason:        m.DeclineReason,
		ClientConfirmedAt:    utcPtr(m.ClientConfirmedAt),
		CancelledAt:          utcPtr(m.CancelledAt),
		ExpiredAt:            utcPtr(m.ExpiredAt),
		BookingID:            m.BookingID,
		Version:              m.Version,
	}
	if m.Notes != nil {
		r.Notes = *m.Notes
	}
	if m.ProviderResponse != nil {
		pr := ProviderResponse(*m.ProviderResponse)
		r.ProviderResponse = &pr
	}
	return r
}

func toRequestModel(r *BookingRequest) requestModel {
	m := requestModel{
		ID:                   r.ID,
		ClientID:             r.ClientID,
		ProviderID:           r.ProviderID,
		ServiceID:            r.ServiceID,
		RequestedDate:        r.RequestedDate,
		RequestedTime:        r.RequestedTime,
		DurationMinutes:      r.DurationMinutes,
		TotalPrice:           r.TotalPrice,
		Status:               string(r.Status),
		ExpiresAt:            r.ExpiresAt,
		AutoBookWindowEndsAt: r.AutoBookWindowEndsAt,
		ProviderRespondedAt:  r.ProviderRespondedAt,
		DeclineReason:        r.DeclineReason,
		ClientConfirmedAt:    r.ClientConfirmedAt,
		CancelledAt:          r.CancelledAt,
		ExpiredAt:            r.ExpiredAt,
		BookingID:            r.BookingID,
		Version:              r.Version,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	if r.Notes != "" {
		v := r.Notes
		m.Notes = &v
	}
	if r.ProviderResponse != nil {
		v := string(*r.ProviderResponse)
		m.ProviderResponse = &v
	}
	return m
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}

func (r *gormRepository) Create(ctx context.Context, br *BookingRequest) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	m := toRequestModel(br)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateError(err, false)
	}
	br.ID = m.ID
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id int64) (*BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var m requestModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, translateError(err, false)
	}
	return toDomainRequest(m), nil
}

func (r *gormRepository) List(ctx context.Context, filter ListFilter) ([]BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	limit := filter.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}

	q := r.db.WithContext(ctx).Model(&requestModel{})
	switch filter.Role {
	case RoleClient:
		q = q.Where("client_id = ?", filter.PartyID)
	case RoleProvider:
		q = q.Where("provider_id = ?", filter.PartyID)
	default:
		return nil, validationError("unknown role %q", filter.Role)
	}
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}

	var rows []requestModel
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, translateError(err, false)
	}

	out := make([]BookingRequest, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRequest(m))
	}
	return out, nil
}

func (r *gormRepository) ListExpirable(ctx context.Context, now time.Time, after *ExpiryCursor, limit int) ([]BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	open := make([]string, 0, len(OpenStatuses))
	for _, s := range OpenStatuses {
		open = append(open, string(s))
	}

	q := r.db.WithContext(ctx).
		Where("status IN ?", open).
		Where("expires_at <= ?", now)
	if after != nil {
		q = q.Where("(expires_at > ? OR (expires_at = ? AND id > ?))", after.ExpiresAt, after.ExpiresAt, after.ID)
	}

	var rows []requestModel
	err := q.Order("expires_at ASC").
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, translateError(err, false)
	}

	out := make([]BookingRequest, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRequest(m))
	}
	return out, nil
}

func (r *gormRepository) Transition(ctx context.Context, id int64, from Status, apply ApplyFunc) (*BookingRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var out *BookingRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m requestModel
		// Row lock on PostgreSQL; the SQLite dialector drops the clause.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).First(&m).Error; err != nil {
			return err
		}
		current := toDomainRequest(m)
		if current.Status != from {
			return ErrConflict
		}

		next := *current
		if err := apply(database.WithTx(ctx, tx), &next); err != nil {
			return err
		}
		if !from.CanTransitionTo(next.Status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, next.Status)
		}
		next.Version = current.Version + 1

		res := tx.Model(&requestModel{}).
			Where("id = ? AND status = ? AND version = ?", id, string(from), current.Version).
			Updates(transitionColumns(&next))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		out = &next
		return nil
	})
	if err != nil {
		return nil, translateError(err, true)
	}
	return out, nil
}

// transitionColumns lists every column a transition may touch. Nil pointers
// are written as NULL.
func transitionColumns(r *BookingRequest) map[string]any {
	m := toRequestModel(r)
	return map[string]any{
		"status":                m.Status,
		"provider_response":     m.ProviderResponse,
		"provider_responded_at": m.ProviderRespondedAt,
		"decline_reason":        m.DeclineReason,
		"client_confirmed_at":   m.ClientConfirmedAt,
		"cancelled_at":          m.CancelledAt,
		"expired_at":            m.ExpiredAt,
		"booking_id":            m.BookingID,
		"version":               m.Version,
		"updated_at":            m.UpdatedAt,
	}
}

// translateError maps driver and gorm errors onto the package taxonomy.
// When guarded is set, a store timeout is reported as ErrConflict so the
// caller re-reads instead of retrying blindly.
func translateError(err error, guarded bool) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConflict),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrMaterializationFailed),
		errors.Is(err, ErrValidation):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded):
		if guarded {
			return ErrConflict
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	case errors.Is(err, context.Canceled):
		return err
	case isTransient(err):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}

func isTransient(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case strings.HasPrefix(pgErr.Code, "08"): // connection exception
			return true
		case pgErr.Code == "40001", pgErr.Code == "40P01": // serialization failure, deadlock
			return true
		case pgErr.Code == "53300", pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03":
			return true
		}
		return false
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.SafeToRetry(err) {
		return true
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "sqlite_busy")
}
