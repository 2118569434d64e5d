package models

import "time"

type Review struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ReviewerID string    `gorm:"type:varchar(36);not null" json:"reviewer"`
	RevieweeID string    `gorm:"type:varchar(36);not null;index" json:"reviewee"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}
