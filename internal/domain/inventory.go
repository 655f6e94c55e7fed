package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultMinStockLevel = 10

type Inventory struct {
	ID               int64           `gorm:"primaryKey" json:"id"`
	ItemName         string          `gorm:"type:varchar(255);not null" json:"item_name"`
	Warehouse        string          `gorm:"type:varchar(100)" json:"warehouse"`
	QuantityOnHand   int             `gorm:"not null;default:0" json:"quantity_on_hand"`
	QuantityReserved int             `gorm:"not null;default:0" json:"quantity_reserved"`
	MinStockLevel    int             `gorm:"not null;default:10" json:"min_stock_level"`
	UnitCost         decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"unit_cost"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (Inventory) TableName() string { return "inventory" }

func (i *Inventory) IsLowStock() bool {
	return i.QuantityOnHand <= i.MinStockLevel
}
