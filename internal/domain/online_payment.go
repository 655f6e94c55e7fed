package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OnlinePaymentStatus string

const (
	OnlinePaymentPending        OnlinePaymentStatus = "pending"
	OnlinePaymentPendingDeposit OnlinePaymentStatus = "pending_deposit"
	OnlinePaymentCompleted      OnlinePaymentStatus = "completed"
	OnlinePaymentFailed         OnlinePaymentStatus = "failed"
)

const (
	MethodCash   = "cash"
	MethodMoMo   = "momo"
	MethodStripe = "stripe"
)

// OnlinePayment tracks a self-service booking's deposit or gateway transaction.
type OnlinePayment struct {
	ID            int64               `gorm:"primaryKey" json:"id"`
	BookingID     int64               `gorm:"not null;index" json:"booking_id"`
	Method        string              `gorm:"type:varchar(20);not null" json:"method"`
	Amount        decimal.Decimal     `gorm:"type:numeric(18,2);not null" json:"amount"`
	Status        OnlinePaymentStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	OrderID       string              `gorm:"type:varchar(64);uniqueIndex;not null" json:"order_id"`
	RequestID     string              `gorm:"type:varchar(64)" json:"request_id,omitempty"`
	TransactionID string              `gorm:"type:varchar(128)" json:"transaction_id,omitempty"`
	PayURL        string              `gorm:"type:text" json:"pay_url,omitempty"`
	RawCallback   string              `gorm:"type:text" json:"-"`
	FailureReason string              `gorm:"type:text" json:"failure_reason,omitempty"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func (OnlinePayment) TableName() string { return "online_payments" }

func (p *OnlinePayment) IsSettled() bool {
	return p.Status == OnlinePaymentCompleted || p.Status == OnlinePaymentFailed
}
