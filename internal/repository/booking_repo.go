package repository

import (
	"context"
	"time"

	"github.com/zapshare/booking-service/internal/models"
	"gorm.io/gorm"
)

// BookingFilter is an equality filter over booking documents. Zero-valued
// fields are ignored. StartedBefore matches time_start <= the given instant.
type BookingFilter struct {
	ChargerID     string
	ClientID      string
	State         models.BookingState
	StartedBefore *time.Time
}

func (f BookingFilter) scope(q *gorm.DB) *gorm.DB {
	if f.ChargerID != "" {
		q = q.Where("charger_id = ?", f.ChargerID)
	}
	if f.ClientID != "" {
		q = q.Where("client_id = ?", f.ClientID)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.StartedBefore != nil {
		q = q.Where("time_start <= ?", *f.StartedBefore)
	}
	return q
}

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	Find(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	FindByIDAndUpdate(ctx context.Context, id string, patch map[string]any) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
	UpdateMany(ctx context.Context, filter BookingFilter, patch map[string]any) (int64, error)
	DeleteMany(ctx context.Context, filter BookingFilter) (int64, error)
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) Find(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Scopes(filter.scope).
		Order("created_at ASC, id ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindByIDAndUpdate applies patch to one booking and returns the stored result.
// It returns gorm.ErrRecordNotFound when no booking has the id.
func (r *bookingRepository) FindByIDAndUpdate(ctx context.Context, id string, patch map[string]any) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&booking, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Booking{}).Where("id = ?", id).Updates(patch).Error; err != nil {
			return err
		}
		return tx.First(&booking, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Delete removes one booking. It returns gorm.ErrRecordNotFound when nothing was removed.
func (r *bookingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Booking{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *bookingRepository) UpdateMany(ctx context.Context, filter BookingFilter, patch map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Scopes(filter.scope).
		Updates(patch)
	return res.RowsAffected, res.Error
}

func (r *bookingRepository) DeleteMany(ctx context.Context, filter BookingFilter) (int64, error) {
	res := r.db.WithContext(ctx).
		Scopes(filter.scope).
		Delete(&models.Booking{})
	return res.RowsAffected, res.Error
}
