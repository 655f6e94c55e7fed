package repository

import (
	"context"

	"resort/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type BookingFilter struct {
	Status     domain.BookingStatus
	RoomID     int64
	CustomerID int64
	From       domain.Date
	To         domain.Date
	Limit      int
	Offset     int
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error
}

func (r *BookingRepository) Save(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// GetForUpdate loads the booking holding a row lock until the transaction ends.
func (r *BookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

// ListActiveForRoom returns every booking that still claims the room.
func (r *BookingRepository) ListActiveForRoom(ctx context.Context, roomID int64) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND status IN ?", roomID, domain.ActiveBookingStatuses).
		Order("check_in_date").
		Find(&out).Error
	return out, err
}

func (r *BookingRepository) List(ctx context.Context, f BookingFilter) ([]domain.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.RoomID != 0 {
		q = q.Where("room_id = ?", f.RoomID)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if !f.From.IsZero() {
		q = q.Where("check_out_date > ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("check_in_date < ?", f.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []domain.Booking
	err := q.Order("check_in_date DESC, id DESC").Limit(limit).Offset(f.Offset).Find(&out).Error
	return out, total, err
}

// ListPendingArrivingBefore returns pending bookings whose check-in date has passed.
func (r *BookingRepository) ListPendingArrivingBefore(ctx context.Context, day domain.Date) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND check_in_date < ?", domain.BookingPending, day).
		Order("id").
		Find(&out).Error
	return out, err
}

// ListInHouseDepartingBefore returns checked-in bookings whose check-out date has passed.
func (r *BookingRepository) ListInHouseDepartingBefore(ctx context.Context, day domain.Date) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND check_out_date < ?", domain.BookingCheckedIn, day).
		Order("id").
		Find(&out).Error
	return out, err
}
