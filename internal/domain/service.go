package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is a resort add-on (spa, tour, laundry) priced per unit.
type Service struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	ServiceCode string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"service_code"`
	ServiceName string          `gorm:"type:varchar(255);not null" json:"service_name"`
	Category    string          `gorm:"type:varchar(50)" json:"category,omitempty"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"unit_price"`
	Unit        string          `gorm:"type:varchar(20)" json:"unit,omitempty"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Service) TableName() string { return "services" }

type ServiceBookingStatus string

const (
	ServiceBookingPending   ServiceBookingStatus = "pending"
	ServiceBookingConfirmed ServiceBookingStatus = "confirmed"
	ServiceBookingCompleted ServiceBookingStatus = "completed"
	ServiceBookingCancelled ServiceBookingStatus = "cancelled"
)

type ServiceBooking struct {
	ID              int64                `gorm:"primaryKey" json:"id"`
	BookingCode     string               `gorm:"type:varchar(20);uniqueIndex;not null" json:"booking_code"`
	CustomerID      int64                `gorm:"not null;index" json:"customer_id"`
	ServiceID       int64                `gorm:"not null;index" json:"service_id"`
	BookingDate     time.Time            `gorm:"not null" json:"booking_date"`
	ServiceDate     Date                 `gorm:"not null;index" json:"service_date"`
	Quantity        int                  `gorm:"not null" json:"quantity"`
	UnitPrice       decimal.Decimal      `gorm:"type:numeric(18,2);not null" json:"unit_price"`
	TotalAmount     decimal.Decimal      `gorm:"type:numeric(18,2);not null" json:"total_amount"`
	Status          ServiceBookingStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	SpecialRequests string               `gorm:"type:text" json:"special_requests,omitempty"`
	CreatedBy       *int64               `json:"created_by,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`

	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (ServiceBooking) TableName() string { return "service_bookings" }
