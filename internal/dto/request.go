package dto

import "time"

type CreateBookingRequest struct {
	ChargerID string    `json:"charger_id"`
	TimeStart time.Time `json:"time_start"`
	TimeEnd   time.Time `json:"time_end"`
}
