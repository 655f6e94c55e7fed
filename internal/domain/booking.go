package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending         BookingStatus = "pending"
	BookingPendingPayment  BookingStatus = "pending_payment"
	BookingPendingDeposit  BookingStatus = "pending_deposit"
	BookingConfirmed       BookingStatus = "confirmed"
	BookingCheckedIn       BookingStatus = "checkedin"
	BookingCheckedOut      BookingStatus = "checkedout"
	BookingCancelled       BookingStatus = "cancelled"
	BookingNoShow          BookingStatus = "no-show"
	BookingOverdueCheckout BookingStatus = "overdue-checkout"
)

// ActiveBookingStatuses are the statuses that still claim a room for their date range.
var ActiveBookingStatuses = []BookingStatus{
	BookingPending,
	BookingPendingPayment,
	BookingPendingDeposit,
	BookingConfirmed,
	BookingCheckedIn,
	BookingOverdueCheckout,
}

func (s BookingStatus) IsActive() bool {
	for _, a := range ActiveBookingStatuses {
		if s == a {
			return true
		}
	}
	return false
}

type Booking struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	BookingCode     string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"booking_code"`
	CustomerID      *int64          `gorm:"index" json:"customer_id,omitempty"`
	RoomID          *int64          `gorm:"index" json:"room_id,omitempty"`
	RoomTypeID      *int64          `json:"room_type_id,omitempty"`
	CheckInDate     Date            `gorm:"not null;index" json:"check_in_date"`
	CheckOutDate    Date            `gorm:"not null;index" json:"check_out_date"`
	Adults          int             `gorm:"not null;default:1" json:"adults"`
	Children        int             `gorm:"not null;default:0" json:"children"`
	TotalAmount     decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"total_amount"`
	DepositAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"deposit_amount"`
	SpecialRequests string          `gorm:"type:text" json:"special_requests,omitempty"`
	Status          BookingStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedBy       *int64          `json:"created_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Room     *Room     `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

func (Booking) TableName() string { return "bookings" }

// Nights is the number of whole nights between check-in and check-out.
func (b *Booking) Nights() int {
	return b.CheckInDate.DaysUntil(b.CheckOutDate)
}
