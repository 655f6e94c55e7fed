package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoomStatus string

const (
	RoomAvailable       RoomStatus = "available"
	RoomBooked          RoomStatus = "booked"
	RoomOccupied        RoomStatus = "occupied"
	RoomCleaning        RoomStatus = "cleaning"
	RoomMaintenance     RoomStatus = "maintenance"
	RoomOccupiedOverdue RoomStatus = "occupied-overdue"
)

type RoomType struct {
	ID           int64           `gorm:"primaryKey" json:"id"`
	TypeName     string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"type_name"`
	Description  string          `gorm:"type:text" json:"description,omitempty"`
	BasePrice    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"base_price"`
	MaxOccupancy int             `gorm:"not null;default:2" json:"max_occupancy"`
	Amenities    string          `gorm:"type:text" json:"amenities,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (RoomType) TableName() string { return "room_types" }

type Room struct {
	ID          int64      `gorm:"primaryKey" json:"id"`
	RoomNumber  string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"room_number"`
	RoomTypeID  int64      `gorm:"not null;index" json:"room_type_id"`
	Floor       int        `json:"floor"`
	Status      RoomStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	LastCleaned *time.Time `json:"last_cleaned,omitempty"`
	Notes       string     `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	RoomType *RoomType `gorm:"foreignKey:RoomTypeID" json:"room_type,omitempty"`
}

func (Room) TableName() string { return "rooms" }
