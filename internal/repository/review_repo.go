package repository

import (
	"context"

	"github.com/zapshare/booking-service/internal/models"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	FindByReviewee(ctx context.Context, chargerID string) ([]models.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) FindByReviewee(ctx context.Context, chargerID string) ([]models.Review, error) {
	var reviews []models.Review
	if err := r.db.WithContext(ctx).
		Where("reviewee_id = ?", chargerID).
		Order("created_at ASC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
