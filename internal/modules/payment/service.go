package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"resort/internal/domain"
	"resort/internal/modules/booking"
	"resort/internal/notification"
	"resort/internal/repository"
)

// Service runs self-service bookings and settles their deposits, either at
// the front desk in cash or through a hosted gateway.
type Service struct {
	store    *repository.Store
	bookings *booking.Service
	gateways map[string]Gateway
	notifier Notifier
	log      *zap.Logger
}

func NewService(store *repository.Store, bookings *booking.Service, notifier Notifier, log *zap.Logger, gateways ...Gateway) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{store: store, bookings: bookings, gateways: map[string]Gateway{}, notifier: notifier, log: log}
	for _, g := range gateways {
		if g != nil {
			s.gateways[g.Name()] = g
		}
	}
	return s
}

// CreateOnlineBooking books a stay for a walk-up web guest. Cash bookings wait
// for a deposit at the desk; gateway bookings wait for the provider callback.
func (s *Service) CreateOnlineBooking(ctx context.Context, req OnlineBookingRequest) (*OnlineBookingResponse, error) {
	method := strings.ToLower(req.PaymentMethod)
	var gw Gateway
	if method != domain.MethodCash {
		gw = s.gateways[method]
		if gw == nil {
			return nil, fmt.Errorf("%w: payment method %q is not available", ErrValidation, req.PaymentMethod)
		}
	}
	if req.RoomID == 0 && req.RoomTypeID == 0 {
		return nil, fmt.Errorf("%w: room_id or room_type_id is required", ErrValidation)
	}
	if req.CheckInDate.Before(s.bookings.Today()) {
		return nil, fmt.Errorf("%w: check-in date cannot be in the past", ErrValidation)
	}

	bookingStatus, paymentStatus := domain.BookingPendingDeposit, domain.OnlinePaymentPendingDeposit
	if gw != nil {
		bookingStatus, paymentStatus = domain.BookingPendingPayment, domain.OnlinePaymentPending
	}

	if req.RoomID != 0 {
		unlock, err := s.bookings.LockRoom(ctx, req.RoomID)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	var (
		b        *domain.Booking
		op       *domain.OnlinePayment
		customer *domain.Customer
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		if customer, err = s.findOrCreateCustomer(ctx, tx, req); err != nil {
			return err
		}
		b, err = s.bookings.CreateInTx(ctx, tx, booking.CreateBookingRequest{
			CustomerID:      customer.ID,
			RoomID:          req.RoomID,
			RoomTypeID:      req.RoomTypeID,
			CheckInDate:     req.CheckInDate,
			CheckOutDate:    req.CheckOutDate,
			Adults:          req.Adults,
			Children:        req.Children,
			SpecialRequests: req.SpecialRequests,
		}, bookingStatus, domain.SystemActor)
		if err != nil {
			return err
		}
		b.DepositAmount = s.bookings.Pricing().Deposit(b.TotalAmount, method)
		if err := tx.Bookings.Save(ctx, b); err != nil {
			return fmt.Errorf("save deposit: %w", err)
		}

		op = &domain.OnlinePayment{
			BookingID: b.ID,
			Method:    method,
			Amount:    b.DepositAmount,
			Status:    paymentStatus,
			OrderID:   b.BookingCode,
		}
		if err := tx.OnlinePayments.Create(ctx, op); err != nil {
			return fmt.Errorf("create online payment: %w", err)
		}
		return tx.Audit.Record(ctx, repository.AuditEntry{
			Action:   domain.AuditOnlinePayment,
			Entity:   "online_payments",
			RecordID: op.ID,
			After:    op,
			At:       s.bookings.Now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	resp := &OnlineBookingResponse{
		Booking:       b,
		Payment:       op,
		RemainingDue:  b.TotalAmount.Sub(b.DepositAmount),
		PaymentMethod: method,
	}
	s.notifier.Publish(notification.EventNewBooking, b)

	if gw == nil {
		s.mail(customer, b, 0, notification.BookingReceivedEmail)
		s.log.Info("online booking awaiting deposit", zap.String("booking_code", b.BookingCode), zap.String("deposit", op.Amount.String()))
		return resp, nil
	}

	checkout, err := gw.CreateCheckout(ctx, CheckoutRequest{
		OrderID:     op.OrderID,
		Amount:      op.Amount,
		Description: "Resort booking " + b.BookingCode,
	})
	if err != nil {
		s.log.Error("gateway checkout failed", zap.String("gateway", gw.Name()), zap.String("order_id", op.OrderID), zap.Error(err))
		if ferr := s.settle(ctx, op.OrderID, &CallbackResult{OrderID: op.OrderID, Amount: op.Amount, Message: err.Error()}, ""); ferr != nil {
			s.log.Error("release failed checkout", zap.String("order_id", op.OrderID), zap.Error(ferr))
		}
		return nil, err
	}

	op.RequestID = checkout.RequestID
	op.PayURL = checkout.PayURL
	if err := s.store.OnlinePayments.Save(ctx, op); err != nil {
		return nil, fmt.Errorf("save checkout: %w", err)
	}
	resp.PayURL = checkout.PayURL
	s.log.Info("online booking awaiting gateway", zap.String("booking_code", b.BookingCode), zap.String("gateway", gw.Name()))
	return resp, nil
}

func (s *Service) findOrCreateCustomer(ctx context.Context, tx *repository.Store, req OnlineBookingRequest) (*domain.Customer, error) {
	c, err := tx.Customers.FindByEmail(ctx, req.CustomerEmail)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	code, err := tx.Sequences.NextCode(ctx, repository.PrefixCustomer, s.bookings.Today())
	if err != nil {
		return nil, fmt.Errorf("allocate customer code: %w", err)
	}
	names := strings.Fields(req.CustomerName)
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	c = &domain.Customer{
		CustomerCode: code,
		FirstName:    names[0],
		LastName:     strings.Join(names[1:], " "),
		Email:        req.CustomerEmail,
		Phone:        req.CustomerPhone,
	}
	if err := tx.Customers.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

// ConfirmCashDeposit records a deposit taken at the desk and confirms the booking.
func (s *Service) ConfirmCashDeposit(ctx context.Context, id int64, actor domain.Actor) (*domain.OnlinePayment, error) {
	var (
		op  *domain.OnlinePayment
		b   *domain.Booking
		out *booking.Outcome
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		op, err = tx.OnlinePayments.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "online payment")
		}
		if op.Method != domain.MethodCash || op.Status != domain.OnlinePaymentPendingDeposit {
			return fmt.Errorf("%w: %s payment is %s", ErrInvalidState, op.Method, op.Status)
		}
		b, err = tx.Bookings.GetForUpdate(ctx, op.BookingID)
		if err != nil {
			return notFound(err, "booking")
		}
		if out, err = s.bookings.Machine().Apply(ctx, tx, b, booking.EventPaymentSucceeded, booking.Input{}, actor); err != nil {
			return err
		}

		before := *op
		now := s.bookings.Now().UTC()
		op.Status = domain.OnlinePaymentCompleted
		op.CompletedAt = &now
		if err := tx.OnlinePayments.Save(ctx, op); err != nil {
			return err
		}
		return tx.Audit.Record(ctx, repository.AuditEntry{
			Actor:    actor,
			Action:   domain.AuditOnlinePayment,
			Entity:   "online_payments",
			RecordID: op.ID,
			Before:   &before,
			After:    op,
			At:       now,
		})
	})
	if err != nil {
		return nil, err
	}
	s.afterSettle(ctx, op, b, out)
	return op, nil
}

// HandleCallback verifies and applies a gateway notification. Replays of an
// already settled payment are accepted without effect.
func (s *Service) HandleCallback(ctx context.Context, gateway string, body []byte, header http.Header) (*domain.OnlinePayment, error) {
	gw := s.gateways[gateway]
	if gw == nil {
		return nil, fmt.Errorf("%w: gateway %q is not configured", ErrNotFound, gateway)
	}
	res, err := gw.ParseCallback(body, header)
	if err != nil {
		s.log.Warn("rejected gateway callback", zap.String("gateway", gateway), zap.Error(err))
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	if err := s.settle(ctx, res.OrderID, res, string(body)); err != nil {
		return nil, err
	}
	op, err := s.store.OnlinePayments.GetByOrderID(ctx, res.OrderID)
	if err != nil {
		return nil, notFound(err, "order "+res.OrderID)
	}
	return op, nil
}

func (s *Service) settle(ctx context.Context, orderID string, res *CallbackResult, raw string) error {
	var (
		op      *domain.OnlinePayment
		b       *domain.Booking
		out     *booking.Outcome
		settled bool
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		op, err = tx.OnlinePayments.GetByOrderIDForUpdate(ctx, orderID)
		if err != nil {
			return notFound(err, "order "+orderID)
		}
		if op.IsSettled() {
			return nil
		}
		if !res.Amount.Equal(op.Amount) {
			return fmt.Errorf("%w: order %s expects %s, gateway reported %s", ErrAmountMismatch, orderID, op.Amount, res.Amount)
		}

		before := *op
		now := s.bookings.Now().UTC()
		op.RawCallback = raw
		if res.Success {
			op.Status = domain.OnlinePaymentCompleted
			op.TransactionID = res.TransactionID
			op.CompletedAt = &now
		} else {
			op.Status = domain.OnlinePaymentFailed
			op.FailureReason = res.Message
		}
		if err := tx.OnlinePayments.Save(ctx, op); err != nil {
			return err
		}
		if err := tx.Audit.Record(ctx, repository.AuditEntry{
			Action:    domain.AuditOnlinePayment,
			Entity:    "online_payments",
			RecordID:  op.ID,
			Before:    &before,
			After:     op,
			Reference: "online:" + orderID,
			At:        now,
		}); err != nil {
			return err
		}
		settled = true

		ev := booking.EventPaymentFailed
		if res.Success {
			ev = booking.EventPaymentSucceeded
		}
		b, err = tx.Bookings.GetForUpdate(ctx, op.BookingID)
		if err != nil {
			return notFound(err, "booking")
		}
		if _, err := booking.Next(b.Status, ev); err != nil {
			s.log.Warn("booking no longer awaits payment",
				zap.String("booking_code", b.BookingCode),
				zap.String("status", string(b.Status)),
				zap.String("event", string(ev)),
			)
			return nil
		}
		out, err = s.bookings.Machine().Apply(ctx, tx, b, ev, booking.Input{Reason: res.Message}, domain.SystemActor)
		return err
	})
	if err != nil {
		return err
	}
	if settled {
		s.afterSettle(ctx, op, b, out)
	}
	return nil
}

func (s *Service) afterSettle(ctx context.Context, op *domain.OnlinePayment, b *domain.Booking, out *booking.Outcome) {
	s.notifier.Publish(notification.EventPaymentProcessed, op)
	if b == nil || out == nil {
		return
	}
	s.notifier.Publish(notification.EventBookingUpdated, b)
	for _, rc := range out.Rooms {
		s.notifier.Publish(notification.EventRoomStatusChanged, rc)
	}
	s.log.Info("online payment settled",
		zap.String("order_id", op.OrderID),
		zap.String("status", string(op.Status)),
		zap.String("booking_status", string(b.Status)),
	)
	if out.To != domain.BookingConfirmed || b.CustomerID == nil {
		return
	}
	customer, err := s.store.Customers.GetByID(ctx, *b.CustomerID)
	if err != nil {
		s.log.Warn("confirmation email skipped", zap.String("booking_code", b.BookingCode), zap.Error(err))
		return
	}
	s.mail(customer, b, out.LoyaltyPoints, notification.BookingConfirmedEmail)
}

func (s *Service) mail(c *domain.Customer, b *domain.Booking, points int, build func(string, notification.BookingMail) (notification.Email, error)) {
	if c == nil || c.Email == "" {
		return
	}
	e, err := build(c.Email, notification.BookingMail{
		GuestName:     c.FullName(),
		BookingCode:   b.BookingCode,
		CheckIn:       b.CheckInDate.String(),
		CheckOut:      b.CheckOutDate.String(),
		Total:         b.TotalAmount.String(),
		Deposit:       depositLabel(b.DepositAmount),
		Currency:      s.bookings.Currency(),
		LoyaltyPoints: points,
	})
	if err != nil {
		s.log.Error("render booking email", zap.String("booking_code", b.BookingCode), zap.Error(err))
		return
	}
	s.notifier.Email(e)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.OnlinePayment, error) {
	op, err := s.store.OnlinePayments.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "online payment")
	}
	return op, nil
}

func depositLabel(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
