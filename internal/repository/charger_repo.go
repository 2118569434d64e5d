package repository

import (
	"context"

	"github.com/zapshare/booking-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChargerRepository interface {
	FindByID(ctx context.Context, id string) (*models.Charger, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.Charger, error)
	Upsert(ctx context.Context, charger *models.Charger) error
}

type chargerRepository struct {
	db *gorm.DB
}

func NewChargerRepository(db *gorm.DB) ChargerRepository {
	return &chargerRepository{db: db}
}

func (r *chargerRepository) FindByID(ctx context.Context, id string) (*models.Charger, error) {
	var charger models.Charger
	if err := r.db.WithContext(ctx).First(&charger, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &charger, nil
}

func (r *chargerRepository) FindByOwner(ctx context.Context, ownerID string) ([]models.Charger, error) {
	var chargers []models.Charger
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&chargers).Error; err != nil {
		return nil, err
	}
	return chargers, nil
}

// Upsert inserts the charger or overwrites the synced columns of an existing one.
func (r *chargerRepository) Upsert(ctx context.Context, charger *models.Charger) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"owner_id", "charger_name", "address", "city", "province",
			"latitude", "longitude", "cost", "updated_at",
		}),
	}).Create(charger).Error
}
