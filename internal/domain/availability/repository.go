package availability

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Models lists the tables owned by this package, for migrations.
func Models() []any { return []any{&StylistWorkStatus{}} }

// Get returns the stored status, or an offline placeholder when the stylist
// never set one.
func (r *Repository) Get(ctx context.Context, providerID int64) (*StylistWorkStatus, error) {
	var ws StylistWorkStatus
	err := r.db.WithContext(ctx).Where("provider_id = ?", providerID).First(&ws).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &StylistWorkStatus{ProviderID: providerID, Status: StatusOffline}, nil
	}
	if err != nil {
		return nil, err
	}
	ws.UpdatedAt = ws.UpdatedAt.UTC()
	return &ws, nil
}

// Set upserts the stylist's status.
func (r *Repository) Set(ctx context.Context, providerID int64, status WorkStatus, now time.Time) (*StylistWorkStatus, error) {
	ws := StylistWorkStatus{ProviderID: providerID, Status: status, UpdatedAt: now.UTC()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(&ws).Error
	if err != nil {
		return nil, err
	}
	return &ws, nil
}
