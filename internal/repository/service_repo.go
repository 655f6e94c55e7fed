package repository

import (
	"context"

	"resort/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var s domain.Service
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *ServiceRepository) List(ctx context.Context, activeOnly bool) ([]domain.Service, error) {
	q := r.db.WithContext(ctx).Order("category, service_name")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []domain.Service
	err := q.Find(&out).Error
	return out, err
}

type ServiceBookingRepository struct {
	db *gorm.DB
}

func NewServiceBookingRepository(db *gorm.DB) *ServiceBookingRepository {
	return &ServiceBookingRepository{db: db}
}

func (r *ServiceBookingRepository) Create(ctx context.Context, sb *domain.ServiceBooking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sb).Error
}

func (r *ServiceBookingRepository) Save(ctx context.Context, sb *domain.ServiceBooking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(sb).Error
}

func (r *ServiceBookingRepository) GetByID(ctx context.Context, id int64) (*domain.ServiceBooking, error) {
	var sb domain.ServiceBooking
	if err := r.db.WithContext(ctx).Preload("Service").First(&sb, id).Error; err != nil {
		return nil, translate(err)
	}
	return &sb, nil
}

func (r *ServiceBookingRepository) ListByCustomer(ctx context.Context, customerID int64) ([]domain.ServiceBooking, error) {
	var out []domain.ServiceBooking
	err := r.db.WithContext(ctx).Preload("Service").
		Where("customer_id = ?", customerID).
		Order("service_date DESC, id DESC").
		Find(&out).Error
	return out, err
}

// ListBillable returns the customer's non-cancelled service bookings dated within [from, to].
func (r *ServiceBookingRepository) ListBillable(ctx context.Context, customerID int64, from, to domain.Date) ([]domain.ServiceBooking, error) {
	var out []domain.ServiceBooking
	err := r.db.WithContext(ctx).Preload("Service").
		Where("customer_id = ? AND status <> ? AND service_date >= ? AND service_date <= ?",
			customerID, domain.ServiceBookingCancelled, from, to).
		Order("service_date, id").
		Find(&out).Error
	return out, err
}
