package invoice

import (
	"github.com/shopspring/decimal"

	"resort/internal/domain"
)

// CreateOptions tune the invoice built from a booking. A nil TaxRate uses the
// configured default.
type CreateOptions struct {
	TaxRate        *decimal.Decimal `json:"tax_rate,omitempty"`
	DiscountAmount decimal.Decimal  `json:"discount_amount" validate:"money_nonneg"`
	Notes          string           `json:"notes" validate:"max=2000"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type ProcessPaymentRequest struct {
	InvoiceID       int64           `json:"invoice_id" validate:"required,gt=0"`
	Amount          decimal.Decimal `json:"amount" validate:"money_positive"`
	Method          string          `json:"method" validate:"omitempty,oneof=cash card bank_transfer momo stripe"`
	ReferenceNumber string          `json:"reference_number" validate:"max=100"`
	Notes           string          `json:"notes" validate:"max=2000"`
}

type RefundRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"money_positive"`
	Reason string          `json:"reason" validate:"required,max=500"`
}

// Balance summarises what has been paid against an invoice.
type Balance struct {
	Invoice   *domain.Invoice `json:"invoice"`
	Paid      decimal.Decimal `json:"paid"`
	Remaining decimal.Decimal `json:"remaining"`
}
