package invoice

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"resort/internal/domain"
	"resort/internal/notification"
	"resort/internal/repository"
)

// PaymentService records payments and refunds against invoices. Every
// operation locks the invoice row so balances are computed serially.
type PaymentService struct {
	store    *repository.Store
	notifier Notifier
	log      *zap.Logger
	clock
}

func NewPaymentService(store *repository.Store, notifier Notifier, log *zap.Logger, opts ...Option) *PaymentService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentService{store: store, notifier: notifier, log: log, clock: newClock(opts)}
}

func (s *PaymentService) ProcessPayment(ctx context.Context, req ProcessPaymentRequest, actor domain.Actor) (*domain.Payment, error) {
	var (
		payment *domain.Payment
		status  domain.InvoiceStatus
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		inv, err := tx.Invoices.GetForUpdate(ctx, req.InvoiceID)
		if err != nil {
			return notFound(err, "invoice")
		}
		if inv.Status == domain.InvoicePaid || inv.Status == domain.InvoiceCancelled {
			return fmt.Errorf("%w: invoice %s is %s", ErrInvoiceClosed, inv.InvoiceNumber, inv.Status)
		}
		if !req.Amount.IsPositive() {
			return fmt.Errorf("%w: amount must be greater than zero", ErrValidation)
		}

		existing, err := tx.Payments.ListByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		paid := domain.SumPayments(existing)
		remaining := inv.TotalAmount.Sub(paid)
		if req.Amount.GreaterThan(remaining) {
			return fmt.Errorf("%w: remaining balance is %s", ErrExceedsBalance, remaining)
		}

		method := req.Method
		if method == "" {
			method = domain.MethodCash
		}
		payment = &domain.Payment{
			InvoiceID:       inv.ID,
			PaymentDate:     s.now().UTC(),
			Amount:          req.Amount,
			Method:          method,
			ReferenceNumber: req.ReferenceNumber,
			Notes:           req.Notes,
			ProcessedBy:     actor.Ref(),
		}
		if err := s.insert(ctx, tx, payment); err != nil {
			return err
		}

		status = settledStatus(paid.Add(req.Amount), inv.TotalAmount)
		if err := tx.Invoices.UpdateStatus(ctx, inv.ID, status, nil); err != nil {
			return err
		}
		return tx.Audit.Record(ctx, repository.AuditEntry{
			Actor:    actor,
			Action:   domain.AuditProcessPayment,
			Entity:   "payments",
			RecordID: payment.ID,
			After:    payment,
			At:       s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(notification.EventPaymentProcessed, payment)
	s.notifier.Publish(notification.EventInvoiceUpdated, map[string]any{"invoice_id": payment.InvoiceID, "status": status})
	s.log.Info("payment recorded",
		zap.String("payment_number", payment.PaymentNumber),
		zap.Int64("invoice_id", payment.InvoiceID),
		zap.String("amount", payment.Amount.String()),
	)
	return payment, nil
}

// Refund returns part or all of a payment. The sum of refunds against one
// payment never exceeds the payment itself.
func (s *PaymentService) Refund(ctx context.Context, paymentID int64, amount decimal.Decimal, reason string, actor domain.Actor) (*domain.Payment, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: refund amount must be greater than zero", ErrValidation)
	}

	var (
		refund *domain.Payment
		status domain.InvoiceStatus
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		orig, err := tx.Payments.GetByID(ctx, paymentID)
		if err != nil {
			return notFound(err, "payment")
		}
		if !orig.Amount.IsPositive() || orig.RefundOfID != nil {
			return fmt.Errorf("%w: only original payments can be refunded", ErrValidation)
		}
		inv, err := tx.Invoices.GetForUpdate(ctx, orig.InvoiceID)
		if err != nil {
			return notFound(err, "invoice")
		}

		prior, err := tx.Payments.ListRefundsOf(ctx, orig.ID)
		if err != nil {
			return err
		}
		refundable := orig.Amount.Add(domain.SumPayments(prior))
		if amount.GreaterThan(refundable) {
			return fmt.Errorf("%w: at most %s can still be refunded", ErrRefundExceedsPayment, refundable)
		}

		ref := orig.ReferenceNumber
		if ref == "" {
			ref = orig.PaymentNumber
		}
		origID := orig.ID
		refund = &domain.Payment{
			InvoiceID:       inv.ID,
			PaymentDate:     s.now().UTC(),
			Amount:          amount.Neg(),
			Method:          orig.Method,
			ReferenceNumber: "REFUND-" + ref,
			Notes:           "Refund: " + reason,
			RefundOfID:      &origID,
			ProcessedBy:     actor.Ref(),
		}
		if err := s.insert(ctx, tx, refund); err != nil {
			return err
		}

		all, err := tx.Payments.ListByInvoice(ctx, inv.ID)
		if err != nil {
			return err
		}
		status = settledStatus(domain.SumPayments(all), inv.TotalAmount)
		if err := tx.Invoices.UpdateStatus(ctx, inv.ID, status, nil); err != nil {
			return err
		}
		return tx.Audit.Record(ctx, repository.AuditEntry{
			Actor:    actor,
			Action:   domain.AuditRefundPayment,
			Entity:   "payments",
			RecordID: refund.ID,
			Before:   orig,
			After:    refund,
			At:       s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(notification.EventPaymentRefunded, refund)
	s.notifier.Publish(notification.EventInvoiceUpdated, map[string]any{"invoice_id": refund.InvoiceID, "status": status})
	return refund, nil
}

func (s *PaymentService) ListForInvoice(ctx context.Context, invoiceID int64) ([]domain.Payment, error) {
	if _, err := s.store.Invoices.GetByID(ctx, invoiceID); err != nil {
		return nil, notFound(err, "invoice")
	}
	return s.store.Payments.ListByInvoice(ctx, invoiceID)
}

func (s *PaymentService) insert(ctx context.Context, tx *repository.Store, p *domain.Payment) error {
	number, err := tx.Sequences.NextCode(ctx, repository.PrefixPayment, s.today())
	if err != nil {
		return fmt.Errorf("allocate payment number: %w", err)
	}
	p.PaymentNumber = number
	if err := tx.Payments.Create(ctx, p); err != nil {
		if repository.IsUniqueViolation(err) {
			return fmt.Errorf("%w: payment number %s already used", ErrConflict, number)
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func settledStatus(paid, total decimal.Decimal) domain.InvoiceStatus {
	if paid.GreaterThanOrEqual(total) {
		return domain.InvoicePaid
	}
	return domain.InvoicePartial
}
