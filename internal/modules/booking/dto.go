package booking

import (
	"github.com/shopspring/decimal"

	"resort/internal/domain"
)

type CreateBookingRequest struct {
	CustomerID      int64       `json:"customer_id" validate:"omitempty,gt=0"`
	RoomID          int64       `json:"room_id" validate:"omitempty,gt=0"`
	RoomTypeID      int64       `json:"room_type_id" validate:"omitempty,gt=0"`
	CheckInDate     domain.Date `json:"check_in_date"`
	CheckOutDate    domain.Date `json:"check_out_date"`
	Adults          int         `json:"adults" validate:"gte=1,lte=20"`
	Children        int         `json:"children" validate:"gte=0,lte=20"`
	SpecialRequests string      `json:"special_requests" validate:"max=2000"`
}

type ConfirmRequest struct {
	RoomID int64 `json:"room_id" validate:"omitempty,gt=0"`
}

type AssignRoomRequest struct {
	RoomID int64 `json:"room_id" validate:"required,gt=0"`
}

type CheckInRequest struct {
	ActualAdults   int    `json:"actual_adults" validate:"gte=0,lte=20"`
	ActualChildren int    `json:"actual_children" validate:"gte=0,lte=20"`
	Notes          string `json:"notes" validate:"max=2000"`
}

type CheckOutRequest struct {
	Notes string `json:"notes" validate:"max=2000"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type AvailabilityResponse struct {
	RoomID       int64       `json:"room_id"`
	CheckInDate  domain.Date `json:"check_in_date"`
	CheckOutDate domain.Date `json:"check_out_date"`
	Available    bool        `json:"available"`
}

type QuoteResponse struct {
	RoomID       int64           `json:"room_id"`
	CheckInDate  domain.Date     `json:"check_in_date"`
	CheckOutDate domain.Date     `json:"check_out_date"`
	Nights       int             `json:"nights"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Currency     string          `json:"currency"`
}

type ListResult struct {
	Items []domain.Booking `json:"items"`
	Total int64            `json:"total"`
}
