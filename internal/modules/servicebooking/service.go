package servicebooking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"resort/internal/domain"
	"resort/internal/modules/booking"
	"resort/internal/notification"
	"resort/internal/repository"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status change")
)

var transitions = map[domain.ServiceBookingStatus][]domain.ServiceBookingStatus{
	domain.ServiceBookingPending:   {domain.ServiceBookingConfirmed, domain.ServiceBookingCancelled},
	domain.ServiceBookingConfirmed: {domain.ServiceBookingCompleted, domain.ServiceBookingCancelled},
}

// CanMove reports whether a service booking may go from one status to another.
func CanMove(from, to domain.ServiceBookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Notifier interface {
	Publish(eventType string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, any) {}

type Service struct {
	store    *repository.Store
	pricing  booking.Pricing
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
	loc      *time.Location
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func NewService(store *repository.Store, pricing booking.Pricing, notifier Notifier, log *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, pricing: pricing, notifier: notifier, log: log, now: time.Now, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *Service) today() domain.Date { return domain.DateOf(s.now().In(s.loc)) }

func (s *Service) Create(ctx context.Context, req CreateRequest, actor domain.Actor) (*domain.ServiceBooking, error) {
	if req.ServiceDate.IsZero() {
		return nil, fmt.Errorf("%w: service_date is required", ErrValidation)
	}
	if req.ServiceDate.Before(s.today()) {
		return nil, fmt.Errorf("%w: service_date cannot be in the past", ErrValidation)
	}

	var sb *domain.ServiceBooking
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		if _, err := tx.Customers.GetByID(ctx, req.CustomerID); err != nil {
			return notFound(err, "customer")
		}
		total, err := s.pricing.TotalForService(ctx, tx, req.ServiceID, req.Quantity)
		if err != nil {
			return err
		}
		svc, err := tx.Services.GetByID(ctx, req.ServiceID)
		if err != nil {
			return notFound(err, "service")
		}
		code, err := tx.Sequences.NextCode(ctx, repository.PrefixServiceBooking, s.today())
		if err != nil {
			return fmt.Errorf("allocate service booking code: %w", err)
		}
		sb = &domain.ServiceBooking{
			BookingCode:     code,
			CustomerID:      req.CustomerID,
			ServiceID:       svc.ID,
			BookingDate:     s.now().UTC(),
			ServiceDate:     req.ServiceDate,
			Quantity:        req.Quantity,
			UnitPrice:       svc.UnitPrice,
			TotalAmount:     total,
			Status:          domain.ServiceBookingPending,
			SpecialRequests: req.SpecialRequests,
			CreatedBy:       actor.Ref(),
		}
		if err := tx.ServiceBookings.Create(ctx, sb); err != nil {
			return fmt.Errorf("create service booking: %w", err)
		}
		sb.Service = svc
		return tx.Audit.Record(ctx, repository.AuditEntry{
			Actor:    actor,
			Action:   domain.AuditServiceBooking,
			Entity:   "service_bookings",
			RecordID: sb.ID,
			After:    sb,
			At:       s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(notification.EventServiceBookingCreated, sb)
	s.log.Info("service booked", zap.String("code", sb.BookingCode), zap.String("total", sb.TotalAmount.String()))
	return sb, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id int64, to domain.ServiceBookingStatus, actor domain.Actor) (*domain.ServiceBooking, error) {
	var sb *domain.ServiceBooking
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		var err error
		sb, err = tx.ServiceBookings.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "service booking")
		}
		if !CanMove(sb.Status, to) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, sb.Status, to)
		}
		before := *sb
		sb.Status = to
		if err := tx.ServiceBookings.Save(ctx, sb); err != nil {
			return err
		}
		return tx.Audit.Record(ctx, repository.AuditEntry{
			Actor:    actor,
			Action:   domain.AuditServiceBooking,
			Entity:   "service_bookings",
			RecordID: sb.ID,
			Before:   &before,
			After:    sb,
			At:       s.now().UTC(),
		})
	})
	if err != nil {
		return nil, err
	}
	s.notifier.Publish(notification.EventDashboardUpdate, map[string]any{"service_booking_id": sb.ID, "status": sb.Status})
	return sb, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.ServiceBooking, error) {
	sb, err := s.store.ServiceBookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "service booking")
	}
	return sb, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]domain.ServiceBooking, error) {
	out, err := s.store.ServiceBookings.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.ServiceBooking{}
	}
	return out, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
