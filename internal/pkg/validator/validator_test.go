package validator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type paymentInput struct {
	InvoiceID int64           `json:"invoice_id" validate:"required"`
	Amount    decimal.Decimal `json:"amount" validate:"money_positive"`
	Method    string          `json:"method" validate:"required,oneof=cash card transfer momo stripe"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(paymentInput{InvoiceID: 1, Amount: decimal.NewFromInt(10), Method: "cash"}))

	errs := Validate(paymentInput{Amount: decimal.Zero, Method: "cheque"})
	assert.Equal(t, "required", errs["invoice_id"])
	assert.Equal(t, "money_positive", errs["amount"])
	assert.Equal(t, "oneof", errs["method"])
}
