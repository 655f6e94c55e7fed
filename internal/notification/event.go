package notification

import "time"

// Push event names shared with the front-desk dashboard.
const (
	EventBookingUpdated        = "BookingUpdated"
	EventRoomStatusChanged     = "RoomStatusChanged"
	EventNewBooking            = "NewBooking"
	EventCheckIn               = "CheckIn"
	EventCheckOut              = "CheckOut"
	EventPaymentProcessed      = "PaymentProcessed"
	EventPaymentRefunded       = "PaymentRefunded"
	EventLowStockAlert         = "LowStockAlert"
	EventInvoiceGenerated      = "InvoiceGenerated"
	EventInvoiceUpdated        = "InvoiceUpdated"
	EventInvoiceApproved       = "InvoiceApproved"
	EventInvoiceCancelled      = "InvoiceCancelled"
	EventServiceBookingCreated = "ServiceBookingCreated"
	EventDashboardUpdate       = "DashboardUpdate"
)

// Event is a real-time message broadcast to connected staff clients.
type Event struct {
	Type    string    `json:"type"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Email is a single outgoing HTML message.
type Email struct {
	To       string `json:"to"`
	ToName   string `json:"to_name,omitempty"`
	Subject  string `json:"subject"`
	HTMLBody string `json:"html_body"`
}
