package catalog

import (
	"github.com/shopspring/decimal"

	"resort/internal/domain"
)

// ---------- ROOM TYPES ----------

type CreateRoomTypeRequest struct {
	TypeName     string          `json:"type_name" validate:"required,max=100"`
	Description  string          `json:"description" validate:"max=2000"`
	BasePrice    decimal.Decimal `json:"base_price" validate:"money_positive"`
	MaxOccupancy int             `json:"max_occupancy" validate:"gte=1,lte=20"`
	Amenities    string          `json:"amenities" validate:"max=2000"`
}

// ---------- ROOMS ----------

type CreateRoomRequest struct {
	RoomNumber string            `json:"room_number" validate:"required,max=20"`
	RoomTypeID int64             `json:"room_type_id" validate:"required,gt=0"`
	Floor      int               `json:"floor" validate:"gte=0,lte=200"`
	Status     domain.RoomStatus `json:"status" validate:"omitempty,oneof=available maintenance"`
	Notes      string            `json:"notes" validate:"max=2000"`
}

// ---------- CUSTOMERS ----------

type CreateCustomerRequest struct {
	FirstName string `json:"first_name" validate:"required,max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty,numeric,min=10,max=11"`
}

// ---------- SERVICES ----------

type CreateServiceRequest struct {
	ServiceCode string          `json:"service_code" validate:"required,max=20"`
	ServiceName string          `json:"service_name" validate:"required,max=255"`
	Category    string          `json:"category" validate:"max=50"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"money_positive"`
	Unit        string          `json:"unit" validate:"max=20"`
}

// ---------- INVENTORY ----------

type CreateInventoryRequest struct {
	ItemName       string          `json:"item_name" validate:"required,max=255"`
	Warehouse      string          `json:"warehouse" validate:"max=100"`
	QuantityOnHand int             `json:"quantity_on_hand" validate:"gte=0"`
	MinStockLevel  *int            `json:"min_stock_level" validate:"omitempty,gte=0"`
	UnitCost       decimal.Decimal `json:"unit_cost" validate:"money_nonneg"`
}
