package notification

import "time"

// Type is the notification category shown to the recipient.
type Type string

const (
	TypeBookingRequest              Type = "BOOKING_REQUEST"
	TypeBookingDeclined             Type = "BOOKING_DECLINED"
	TypeBookingAutoBooked           Type = "BOOKING_AUTO_BOOKED"
	TypeBookingAwaitingConfirmation Type = "BOOKING_AWAITING_CONFIRMATION"
	TypeBookingConfirmed            Type = "BOOKING_CONFIRMED"
	TypeBookingCancelled            Type = "BOOKING_CANCELLED"
)

type Notification struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID           int64     `gorm:"column:user_id;not null;index:idx_notifications_user_created,priority:1" json:"user_id"`
	Type             Type      `gorm:"column:type;type:varchar(48);not null" json:"type"`
	Title            string    `gorm:"column:title;not null" json:"title"`
	Message          string    `gorm:"column:message;type:text" json:"message"`
	RelatedBookingID *int64    `gorm:"column:related_booking_id" json:"related_booking_id,omitempty"`
	RelatedRequestID *int64    `gorm:"column:related_request_id" json:"related_request_id,omitempty"`
	IsRead           bool      `gorm:"column:is_read;not null;default:false" json:"is_read"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime:false;index:idx_notifications_user_created,priority:2" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
