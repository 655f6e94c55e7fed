package repository

import (
	"context"

	"resort/internal/domain"

	"gorm.io/gorm"
)

type CheckInRepository struct {
	db *gorm.DB
}

func NewCheckInRepository(db *gorm.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

func (r *CheckInRepository) Create(ctx context.Context, rec *domain.CheckInRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

// GetOpen returns the booking's occupancy record that has not been checked out yet.
func (r *CheckInRepository) GetOpen(ctx context.Context, bookingID int64) (*domain.CheckInRecord, error) {
	var rec domain.CheckInRecord
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND check_out_time IS NULL", bookingID).
		Order("id DESC").
		First(&rec).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (r *CheckInRepository) Save(ctx context.Context, rec *domain.CheckInRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *CheckInRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.CheckInRecord, error) {
	var out []domain.CheckInRecord
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id").Find(&out).Error
	return out, err
}
