package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"resort/internal/domain"
	"resort/internal/modules/booking"
	"resort/internal/notification"
	"resort/internal/repository"
)

const paymentTermDays = 7

// Service builds and manages invoices.
type Service struct {
	store    *repository.Store
	pricing  booking.Pricing
	taxRate  decimal.Decimal
	notifier Notifier
	log      *zap.Logger
	clock
}

type clock struct {
	now func() time.Time
	loc *time.Location
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c clock) today() domain.Date { return domain.DateOf(c.now().In(c.loc)) }

type Option func(*clock)

func WithClock(now func() time.Time) Option { return func(c *clock) { c.now = now } }

func WithLocation(loc *time.Location) Option { return func(c *clock) { c.loc = loc } }

func NewService(store *repository.Store, pricing booking.Pricing, taxRate decimal.Decimal, notifier Notifier, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		pricing:  pricing,
		taxRate:  taxRate,
		notifier: notifier,
		log:      log,
		clock:    newClock(opts),
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// CreateFromBooking issues a draft invoice for the room stay plus any service
// bookings the guest used during it.
func (s *Service) CreateFromBooking(ctx context.Context, bookingID int64, opts CreateOptions, actor domain.Actor) (*domain.Invoice, error) {
	rate := s.taxRate
	if opts.TaxRate != nil {
		rate = *opts.TaxRate
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("%w: tax_rate must be between 0 and 1", ErrValidation)
	}
	if opts.DiscountAmount.IsNegative() {
		return nil, fmt.Errorf("%w: discount_amount cannot be negative", ErrValidation)
	}

	var inv *domain.Invoice
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		b, err := tx.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return notFound(err, "booking")
		}
		if b.Status == domain.BookingCancelled || b.Status == domain.BookingNoShow {
			return fmt.Errorf("%w: booking %s is %s", ErrValidation, b.BookingCode, b.Status)
		}
		if existing, err := tx.Invoices.FindOpenForBooking(ctx, b.ID); err == nil {
			return fmt.Errorf("%w: booking already has invoice %s", ErrConflict, existing.InvoiceNumber)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return err
		}

		items, err := s.lineItems(ctx, tx, b)
		if err != nil {
			return err
		}
		subtotal := decimal.Zero
		for _, it := range items {
			subtotal = subtotal.Add(it.TotalAmount)
		}
		tax := s.pricing.Round(subtotal.Mul(rate))
		discount := s.pricing.Round(opts.DiscountAmount)
		if discount.GreaterThan(subtotal.Add(tax)) {
			return fmt.Errorf("%w: discount exceeds invoice amount", ErrValidation)
		}

		today := s.today()
		number, err := tx.Sequences.NextCode(ctx, repository.PrefixInvoice, today)
		if err != nil {
			return fmt.Errorf("allocate invoice number: %w", err)
		}
		bookingRef := b.ID
		inv = &domain.Invoice{
			InvoiceNumber:  number,
			BookingID:      &bookingRef,
			CustomerID:     b.CustomerID,
			IssueDate:      today,
			DueDate:        today.AddDays(paymentTermDays),
			Subtotal:       subtotal,
			TaxAmount:      tax,
			DiscountAmount: discount,
			TotalAmount:    subtotal.Add(tax).Sub(discount),
			Status:         domain.InvoiceDraft,
			PaymentMethod:  domain.MethodCash,
			Notes:          opts.Notes,
			CreatedBy:      actor.Ref(),
			Items:          items,
		}
		if err := tx.Invoices.Create(ctx, inv); err != nil {
			if repository.IsUniqueViolation(err) {
				return fmt.Errorf("%w: invoice number %s already used", ErrConflict, number)
			}
			return fmt.Errorf("create invoice: %w", err)
		}
		return tx.Audit.Record(ctx, repository.AuditEntry{
			Actor:    actor,
			Action:   domain.AuditCreateInvoice,
			Entity:   "invoices",
			RecordID: inv.ID,
			After:    inv,
			At:       s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(notification.EventInvoiceGenerated, inv)
	s.log.Info("invoice created", zap.String("invoice_number", inv.InvoiceNumber), zap.String("total", inv.TotalAmount.String()))
	return inv, nil
}

func (s *Service) lineItems(ctx context.Context, tx *repository.Store, b *domain.Booking) ([]domain.InvoiceItem, error) {
	nights := b.Nights()
	if nights < 1 {
		nights = 1
	}
	label := "Room stay"
	if b.RoomID != nil {
		if room, err := tx.Rooms.GetByID(ctx, *b.RoomID); err == nil {
			label = "Room " + room.RoomNumber
		}
	}
	items := []domain.InvoiceItem{{
		ItemType:    domain.ItemRoom,
		Description: fmt.Sprintf("%s, %s to %s (%d nights)", label, b.CheckInDate, b.CheckOutDate, nights),
		Quantity:    nights,
		UnitPrice:   s.pricing.Round(b.TotalAmount.Div(decimal.NewFromInt(int64(nights)))),
		TotalAmount: b.TotalAmount,
	}}

	if b.CustomerID == nil {
		return items, nil
	}
	extras, err := tx.ServiceBookings.ListBillable(ctx, *b.CustomerID, b.CheckInDate, b.CheckOutDate)
	if err != nil {
		return nil, fmt.Errorf("load service bookings: %w", err)
	}
	for _, sb := range extras {
		name := "Service"
		if sb.Service != nil {
			name = sb.Service.ServiceName
		}
		items = append(items, domain.InvoiceItem{
			ItemType:    domain.ItemService,
			Description: fmt.Sprintf("%s on %s (%s)", name, sb.ServiceDate, sb.BookingCode),
			Quantity:    sb.Quantity,
			UnitPrice:   sb.UnitPrice,
			TotalAmount: sb.TotalAmount,
		})
	}
	return items, nil
}

func (s *Service) Approve(ctx context.Context, id int64, actor domain.Actor) (*domain.Invoice, error) {
	inv, err := s.changeStatus(ctx, id, actor, domain.AuditApproveInvoice, func(tx *repository.Store, inv *domain.Invoice) (domain.InvoiceStatus, map[string]any, error) {
		if inv.Status != domain.InvoiceDraft && inv.Status != domain.InvoicePendingPayment {
			return "", nil, fmt.Errorf("%w: cannot approve a %s invoice", ErrInvalidStatus, inv.Status)
		}
		return domain.InvoiceApproved, map[string]any{"approved_by": actor.Ref()}, nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notification.EventInvoiceApproved, inv)
	return inv, nil
}

// Cancel voids an invoice that has no money against it.
func (s *Service) Cancel(ctx context.Context, id int64, reason string, actor domain.Actor) (*domain.Invoice, error) {
	inv, err := s.changeStatus(ctx, id, actor, domain.AuditCancelInvoice, func(tx *repository.Store, inv *domain.Invoice) (domain.InvoiceStatus, map[string]any, error) {
		if inv.Status == domain.InvoicePaid || inv.Status == domain.InvoiceCancelled {
			return "", nil, fmt.Errorf("%w: cannot cancel a %s invoice", ErrInvalidStatus, inv.Status)
		}
		payments, err := tx.Payments.ListByInvoice(ctx, inv.ID)
		if err != nil {
			return "", nil, err
		}
		if !domain.SumPayments(payments).IsZero() {
			return "", nil, fmt.Errorf("%w: refund recorded payments before cancelling", ErrInvalidStatus)
		}
		extra := map[string]any{}
		if reason != "" {
			extra["notes"] = appendNote(inv.Notes, "Cancelled: "+reason)
		}
		return domain.InvoiceCancelled, extra, nil
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notification.EventInvoiceCancelled, inv)
	return inv, nil
}

type statusRule func(tx *repository.Store, inv *domain.Invoice) (domain.InvoiceStatus, map[string]any, error)

func (s *Service) changeStatus(ctx context.Context, id int64, actor domain.Actor, action string, rule statusRule) (*domain.Invoice, error) {
	var updated *domain.Invoice
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		inv, err := tx.Invoices.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "invoice")
		}
		to, extra, err := rule(tx, inv)
		if err != nil {
			return err
		}
		if err := tx.Invoices.UpdateStatus(ctx, id, to, extra); err != nil {
			return err
		}
		updated, err = tx.Invoices.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return tx.Audit.Record(ctx, repository.AuditEntry{
			Actor:    actor,
			Action:   action,
			Entity:   "invoices",
			RecordID: id,
			Before:   inv,
			After:    updated,
			At:       s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Balance, error) {
	inv, err := s.store.Invoices.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "invoice")
	}
	paid := domain.SumPayments(inv.Payments)
	return &Balance{Invoice: inv, Paid: paid, Remaining: inv.TotalAmount.Sub(paid)}, nil
}

func (s *Service) List(ctx context.Context, status domain.InvoiceStatus, limit int) ([]domain.Invoice, error) {
	out, err := s.store.Invoices.List(ctx, status, limit)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Invoice{}
	}
	return out, nil
}

func appendNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}

func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
