package models

import "time"

type NotificationType string

const (
	NotifyNewRequest NotificationType = "NEWREQ"
	NotifyAccepted   NotificationType = "ACCEPTED"
	NotifyDeclined   NotificationType = "DECLINED"
	NotifyPaid       NotificationType = "PAID"
	NotifyCancelled  NotificationType = "CANCELLED"
)

// Notification is addressed to one user. BookingID may point at a booking
// that no longer exists (declined or cancelled).
type Notification struct {
	ID        string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	BookingID string           `gorm:"type:varchar(36);not null;index" json:"booking_id"`
	UserID    string           `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(20);not null" json:"type"`
	Read      bool             `gorm:"not null;default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
