package availability

import (
	"fmt"
	"time"
)

type WorkStatus string

const (
	StatusAvailable   WorkStatus = "available"
	StatusWorking     WorkStatus = "working"
	StatusUnavailable WorkStatus = "unavailable"
	StatusOffline     WorkStatus = "offline"
)

func (s WorkStatus) IsValid() bool {
	switch s {
	case StatusAvailable, StatusWorking, StatusUnavailable, StatusOffline:
		return true
	}
	return false
}

func ParseWorkStatus(v string) (WorkStatus, error) {
	s := WorkStatus(v)
	if !s.IsValid() {
		return "", fmt.Errorf("%w: unknown work status %q", ErrValidation, v)
	}
	return s, nil
}

// StylistWorkStatus is the stylist's current availability. A stylist without
// a row is offline.
type StylistWorkStatus struct {
	ProviderID int64      `gorm:"column:provider_id;primaryKey;autoIncrement:false" json:"stylist_id"`
	Status     WorkStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime:false" json:"updated_at"`
}

func (StylistWorkStatus) TableName() string { return "stylist_work_status" }
