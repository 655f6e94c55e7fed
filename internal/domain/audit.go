package domain

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AuditCreateBooking    = "CREATE_BOOKING"
	AuditConfirmBooking   = "CONFIRM_BOOKING"
	AuditAssignRoom       = "ASSIGN_ROOM"
	AuditCheckIn          = "CHECK_IN"
	AuditCheckOut         = "CHECK_OUT"
	AuditCancelBooking    = "CANCEL_BOOKING"
	AuditPaymentSucceeded = "PAYMENT_SUCCEEDED"
	AuditPaymentFailed    = "PAYMENT_FAILED"
	AuditNoShow           = "NO_SHOW"
	AuditOverdueCheckout  = "OVERDUE_CHECKOUT"
	AuditLowStockAlert    = "LOW_STOCK_ALERT"
	AuditFinalizeInvoice  = "FINALIZE_INVOICE"
	AuditRoomReleased     = "ROOM_RELEASED"
	AuditNightAudit       = "NIGHT_AUDIT"
	AuditCreateInvoice    = "CREATE_INVOICE"
	AuditApproveInvoice   = "APPROVE_INVOICE"
	AuditCancelInvoice    = "CANCEL_INVOICE"
	AuditProcessPayment   = "PROCESS_PAYMENT"
	AuditRefundPayment    = "REFUND_PAYMENT"
	AuditOnlinePayment    = "ONLINE_PAYMENT"
	AuditServiceBooking   = "SERVICE_BOOKING"
	AuditCreate           = "CREATE"
)

type AuditLog struct {
	ID        int64          `gorm:"primaryKey" json:"id"`
	UserID    *int64         `gorm:"index" json:"user_id,omitempty"`
	Action    string         `gorm:"type:varchar(50);not null;index" json:"action"`
	Entity    string         `gorm:"type:varchar(50);index" json:"entity"`
	RecordID  int64          `gorm:"index" json:"record_id"`
	OldValues datatypes.JSON `json:"old_values,omitempty"`
	NewValues datatypes.JSON `json:"new_values,omitempty"`
	Reference string         `gorm:"type:varchar(100);index" json:"reference,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func (AuditLog) TableName() string { return "audit_logs" }
