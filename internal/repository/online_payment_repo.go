package repository

import (
	"context"

	"resort/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OnlinePaymentRepository struct {
	db *gorm.DB
}

func NewOnlinePaymentRepository(db *gorm.DB) *OnlinePaymentRepository {
	return &OnlinePaymentRepository{db: db}
}

func (r *OnlinePaymentRepository) Create(ctx context.Context, p *domain.OnlinePayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *OnlinePaymentRepository) Save(ctx context.Context, p *domain.OnlinePayment) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *OnlinePaymentRepository) GetByID(ctx context.Context, id int64) (*domain.OnlinePayment, error) {
	var p domain.OnlinePayment
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *OnlinePaymentRepository) GetByOrderID(ctx context.Context, orderID string) (*domain.OnlinePayment, error) {
	var p domain.OnlinePayment
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *OnlinePaymentRepository) GetForUpdate(ctx context.Context, id int64) (*domain.OnlinePayment, error) {
	var p domain.OnlinePayment
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *OnlinePaymentRepository) GetByOrderIDForUpdate(ctx context.Context, orderID string) (*domain.OnlinePayment, error) {
	var p domain.OnlinePayment
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ?", orderID).
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *OnlinePaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.OnlinePayment, error) {
	var out []domain.OnlinePayment
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Order("id").Find(&out).Error
	return out, err
}
