package models

import "time"

type Charger struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OwnerID     string    `gorm:"type:varchar(36);not null;index" json:"owner_id"`
	ChargerName string    `gorm:"not null" json:"chargername"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Province    string    `json:"province"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Cost        float64   `gorm:"type:numeric(12,2);not null;default:0" json:"cost"` // hourly rate
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
