package booking

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"stylistbook/internal/database"
	"stylistbook/internal/domain/request"
)

const defaultListLimit = 50

type bookingModel struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID        int64     `gorm:"column:client_id;not null;index"`
	StylistID       int64     `gorm:"column:stylist_id;not null;index"`
	ServiceID       *int64    `gorm:"column:service_id"`
	BookingDate     string    `gorm:"column:booking_date;type:varchar(10);not null"`
	BookingTime     string    `gorm:"column:booking_time;type:varchar(5);not null"`
	DurationMinutes int       `gorm:"column:duration_minutes;not null"`
	TotalPrice      float64   `gorm:"column:total_price;not null"`
	Notes           *string   `gorm:"column:notes;type:text"`
	Status          string    `gorm:"column:status;type:varchar(16);not null"`
	SourceRequestID int64     `gorm:"column:source_request_id;not null;uniqueIndex"`
	ConfirmedAt     time.Time `gorm:"column:confirmed_at;not null"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime:false"`
}

func (bookingModel) TableName() string { return "bookings" }

// Models lists the tables owned by this package, for migrations.
func Models() []any { return []any{&bookingModel{}} }

func toDomainBooking(m bookingModel) *Booking {
	var notes string
	if m.Notes != nil {
		notes = *m.Notes
	}

	return &Booking{
		ID:              m.ID,
		ClientID:        m.ClientID,
		StylistID:       m.StylistID,
		ServiceID:       m.ServiceID,
		BookingDate:     m.BookingDate,
		BookingTime:     m.BookingTime,
		DurationMinutes: m.DurationMinutes,
		TotalPrice:      m.TotalPrice,
		Notes:           notes,
		Status:          Status(m.Status),
		SourceRequestID: m.SourceRequestID,
		ConfirmedAt:     m.ConfirmedAt.UTC(),
		CreatedAt:       m.CreatedAt.UTC(),
	}
}

// Store materializes finalized requests and serves booking reads.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Materialize inserts the booking for r through the transaction carried by
// ctx and returns its id. A second call for the same request fails with
// ErrAlreadyMaterialized.
func (s *Store) Materialize(ctx context.Context, r *request.BookingRequest) (int64, error) {
	if r == nil || r.ID <= 0 {
		return 0, ErrValidation
	}

	var notes *string
	if r.Notes != "" {
		v := r.Notes
		notes = &v
	}
	confirmedAt := r.UpdatedAt.UTC()

	m := bookingModel{
		ClientID:        r.ClientID,
		StylistID:       r.ProviderID,
		ServiceID:       r.ServiceID,
		BookingDate:     r.RequestedDate,
		BookingTime:     r.RequestedTime,
		DurationMinutes: r.DurationMinutes,
		TotalPrice:      r.TotalPrice,
		Notes:           notes,
		Status:          string(StatusConfirmed),
		SourceRequestID: r.ID,
		ConfirmedAt:     confirmedAt,
		CreatedAt:       confirmedAt,
	}
	if err := database.Conn(ctx, s.db).Create(&m).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, ErrAlreadyMaterialized
		}
		return 0, err
	}
	return m.ID, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*Booking, error) {
	var m bookingModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

// ListForParty returns bookings where userID is the client or the stylist,
// newest first.
func (s *Store) ListForParty(ctx context.Context, userID int64, limit int) ([]Booking, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}

	var rows []bookingModel
	err := s.db.WithContext(ctx).
		Where("client_id = ? OR stylist_id = ?", userID, userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
