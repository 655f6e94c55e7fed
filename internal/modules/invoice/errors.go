package invoice

import "errors"

var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrInvalidStatus        = errors.New("invalid invoice status")
	ErrInvoiceClosed        = errors.New("invoice is closed")
	ErrExceedsBalance       = errors.New("amount exceeds remaining balance")
	ErrRefundExceedsPayment = errors.New("refund exceeds refundable amount")
)
