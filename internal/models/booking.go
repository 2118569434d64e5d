package models

import "time"

type BookingState string

const (
	StatePending   BookingState = "PENDING"
	StateUnpaid    BookingState = "UNPAID"
	StatePaid      BookingState = "PAID"
	StateCompleted BookingState = "COMPLETED"
)

// Valid reports whether s is one of the four lifecycle states.
func (s BookingState) Valid() bool {
	switch s {
	case StatePending, StateUnpaid, StatePaid, StateCompleted:
		return true
	}
	return false
}

type Booking struct {
	ID           string       `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ChargerID    string       `gorm:"type:varchar(36);not null;index" json:"charger_id"`
	ClientID     string       `gorm:"type:varchar(36);not null;index" json:"client_id"`
	TimeStart    time.Time    `gorm:"not null;index" json:"time_start"`
	TimeEnd      time.Time    `gorm:"not null" json:"time_end"`
	State        BookingState `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"state"`
	Cost         float64      `gorm:"type:numeric(12,2);not null" json:"cost"`
	Accepted     bool         `gorm:"not null;default:false" json:"accepted"`
	UserFeedback bool         `gorm:"not null;default:false" json:"user_feedback"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
