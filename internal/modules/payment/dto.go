package payment

import (
	"github.com/shopspring/decimal"

	"resort/internal/domain"
)

// OnlineBookingRequest is what a guest submits from the public booking page.
type OnlineBookingRequest struct {
	RoomID          int64       `json:"room_id" validate:"omitempty,gt=0"`
	RoomTypeID      int64       `json:"room_type_id" validate:"omitempty,gt=0"`
	CheckInDate     domain.Date `json:"check_in_date"`
	CheckOutDate    domain.Date `json:"check_out_date"`
	Adults          int         `json:"adults" validate:"gte=1,lte=10"`
	Children        int         `json:"children" validate:"gte=0,lte=10"`
	CustomerName    string      `json:"customer_name" validate:"required,min=2,max=100"`
	CustomerEmail   string      `json:"customer_email" validate:"required,email,max=100"`
	CustomerPhone   string      `json:"customer_phone" validate:"required,numeric,min=10,max=11"`
	SpecialRequests string      `json:"special_requests" validate:"max=2000"`
	PaymentMethod   string      `json:"payment_method" validate:"required,oneof=cash momo stripe"`
}

type OnlineBookingResponse struct {
	Booking       *domain.Booking       `json:"booking"`
	Payment       *domain.OnlinePayment `json:"payment"`
	PayURL        string                `json:"pay_url,omitempty"`
	RemainingDue  decimal.Decimal       `json:"remaining_due"`
	PaymentMethod string                `json:"payment_method"`
}

type CheckoutRequest struct {
	OrderID     string
	Amount      decimal.Decimal
	Description string
}

type Checkout struct {
	RequestID string
	PayURL    string
}

// CallbackResult is a verified gateway notification.
type CallbackResult struct {
	OrderID       string
	Amount        decimal.Decimal
	TransactionID string
	Success       bool
	Message       string
}
