package repository

import (
	"context"

	"resort/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// Create inserts the invoice together with its items.
func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	return r.db.WithContext(ctx).Omit("Payments").Create(inv).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&inv, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) UpdateStatus(ctx context.Context, id int64, status domain.InvoiceStatus, extra map[string]any) error {
	updates := map[string]any{"status": status}
	for k, v := range extra {
		updates[k] = v
	}
	res := r.db.WithContext(ctx).Model(&domain.Invoice{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindOpenForBooking returns the booking's invoice unless it was cancelled.
func (r *InvoiceRepository) FindOpenForBooking(ctx context.Context, bookingID int64) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status <> ?", bookingID, domain.InvoiceCancelled).
		First(&inv).Error
	if err != nil {
		return nil, translate(err)
	}
	return &inv, nil
}

// ListDraftForCheckedOut returns draft invoices whose booking has checked out.
func (r *InvoiceRepository) ListDraftForCheckedOut(ctx context.Context) ([]domain.Invoice, error) {
	var out []domain.Invoice
	err := r.db.WithContext(ctx).
		Joins("JOIN bookings ON bookings.id = invoices.booking_id").
		Where("invoices.status = ? AND bookings.status = ?", domain.InvoiceDraft, domain.BookingCheckedOut).
		Order("invoices.id").
		Find(&out).Error
	return out, err
}

func (r *InvoiceRepository) List(ctx context.Context, status domain.InvoiceStatus, limit int) ([]domain.Invoice, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []domain.Invoice
	err := q.Find(&out).Error
	return out, err
}
