package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type InvoiceStatus string

const (
	InvoiceDraft          InvoiceStatus = "draft"
	InvoicePendingPayment InvoiceStatus = "pending_payment"
	InvoiceApproved       InvoiceStatus = "approved"
	InvoicePaid           InvoiceStatus = "paid"
	InvoicePartial        InvoiceStatus = "partial"
	InvoiceCancelled      InvoiceStatus = "cancelled"
)

type InvoiceItemType string

const (
	ItemRoom    InvoiceItemType = "room"
	ItemService InvoiceItemType = "service"
)

type Invoice struct {
	ID             int64           `gorm:"primaryKey" json:"id"`
	InvoiceNumber  string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"invoice_number"`
	BookingID      *int64          `gorm:"index" json:"booking_id,omitempty"`
	CustomerID     *int64          `gorm:"index" json:"customer_id,omitempty"`
	IssueDate      Date            `gorm:"not null" json:"issue_date"`
	DueDate        Date            `gorm:"not null" json:"due_date"`
	Subtotal       decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"discount_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_amount"`
	Status         InvoiceStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	PaymentMethod  string          `gorm:"type:varchar(20)" json:"payment_method"`
	Notes          string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedBy      *int64          `json:"created_by,omitempty"`
	ApprovedBy     *int64          `json:"approved_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`

	Items    []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
	Payments []Payment     `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }

type InvoiceItem struct {
	ID          int64           `gorm:"primaryKey" json:"id"`
	InvoiceID   int64           `gorm:"not null;index" json:"invoice_id"`
	ItemType    InvoiceItemType `gorm:"type:varchar(20);not null" json:"item_type"`
	Description string          `gorm:"type:varchar(255)" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"unit_price"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"total_amount"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// Payment is a signed ledger entry against an invoice. Refunds are negative.
type Payment struct {
	ID              int64           `gorm:"primaryKey" json:"id"`
	PaymentNumber   string          `gorm:"type:varchar(20);uniqueIndex;not null" json:"payment_number"`
	InvoiceID       int64           `gorm:"not null;index" json:"invoice_id"`
	PaymentDate     time.Time       `gorm:"not null" json:"payment_date"`
	Amount          decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Method          string          `gorm:"type:varchar(20);not null" json:"method"`
	ReferenceNumber string          `gorm:"type:varchar(100)" json:"reference_number,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes,omitempty"`
	RefundOfID      *int64          `gorm:"index" json:"refund_of_id,omitempty"`
	ProcessedBy     *int64          `json:"processed_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (Payment) TableName() string { return "payments" }

// SumPayments adds up signed payment amounts.
func SumPayments(payments []Payment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.Amount)
	}
	return total
}
