package servicebooking

import "resort/internal/domain"

type CreateRequest struct {
	CustomerID      int64       `json:"customer_id" validate:"required,gt=0"`
	ServiceID       int64       `json:"service_id" validate:"required,gt=0"`
	ServiceDate     domain.Date `json:"service_date"`
	Quantity        int         `json:"quantity" validate:"gte=1,lte=100"`
	SpecialRequests string      `json:"special_requests" validate:"max=2000"`
}

type UpdateStatusRequest struct {
	Status domain.ServiceBookingStatus `json:"status" validate:"required,oneof=confirmed completed cancelled"`
}
