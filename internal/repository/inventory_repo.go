package repository

import (
	"context"

	"resort/internal/domain"

	"gorm.io/gorm"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func (r *InventoryRepository) Create(ctx context.Context, item *domain.Inventory) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *InventoryRepository) List(ctx context.Context) ([]domain.Inventory, error) {
	var out []domain.Inventory
	err := r.db.WithContext(ctx).Order("item_name").Find(&out).Error
	return out, err
}

// ListLowStock returns items at or below their minimum stock level.
func (r *InventoryRepository) ListLowStock(ctx context.Context) ([]domain.Inventory, error) {
	var out []domain.Inventory
	err := r.db.WithContext(ctx).
		Where("quantity_on_hand <= min_stock_level").
		Order("id").
		Find(&out).Error
	return out, err
}
