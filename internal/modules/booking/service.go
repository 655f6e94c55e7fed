package booking

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"resort/internal/domain"
	"resort/internal/notification"
	"resort/internal/pkg/lock"
	"resort/internal/repository"
)

type Service struct {
	store    *repository.Store
	machine  *Machine
	pricing  Pricing
	locks    lock.Locker
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
	loc      *time.Location
	currency string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func WithLocation(loc *time.Location) Option { return func(s *Service) { s.loc = loc } }

func WithCurrency(code string) Option { return func(s *Service) { s.currency = code } }

func NewService(store *repository.Store, pricing Pricing, locks lock.Locker, notifier Notifier, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		store:    store,
		pricing:  pricing,
		locks:    locks,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		loc:      time.Local,
		currency: "VND",
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = lock.NewLocal()
	}
	if s.notifier == nil {
		s.notifier = nopNotifier{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.machine = NewMachine(pricing, s.now, s.loc)
	return s
}

// Machine exposes the state machine so other workflows can drive bookings
// inside their own transactions.
func (s *Service) Machine() *Machine { return s.machine }

func (s *Service) Pricing() Pricing { return s.pricing }

func (s *Service) Today() domain.Date { return domain.DateOf(s.now().In(s.loc)) }

func (s *Service) Now() time.Time { return s.now() }

func (s *Service) Currency() string { return s.currency }

// LockRoom takes the per-room lock that guards availability checks.
func (s *Service) LockRoom(ctx context.Context, roomID int64) (func(), error) {
	unlock, err := s.locks.Lock(ctx, RoomLockKey(roomID))
	if err != nil {
		return nil, fmt.Errorf("lock room %d: %w", roomID, err)
	}
	return unlock, nil
}

func RoomLockKey(roomID int64) string { return "room:" + strconv.FormatInt(roomID, 10) }

func (s *Service) Create(ctx context.Context, req CreateBookingRequest, actor domain.Actor) (*domain.Booking, error) {
	return s.CreateWithStatus(ctx, req, domain.BookingPending, actor)
}

// CreateWithStatus persists a new booking in one of the pending statuses.
func (s *Service) CreateWithStatus(ctx context.Context, req CreateBookingRequest, status domain.BookingStatus, actor domain.Actor) (*domain.Booking, error) {
	if err := validateCreate(req, status); err != nil {
		return nil, err
	}

	if req.RoomID != 0 {
		unlock, err := s.locks.Lock(ctx, RoomLockKey(req.RoomID))
		if err != nil {
			return nil, fmt.Errorf("lock room %d: %w", req.RoomID, err)
		}
		defer unlock()
	}

	var created *domain.Booking
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		b, err := s.CreateInTx(ctx, tx, req, status, actor)
		if err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Publish(notification.EventNewBooking, created)
	if created.RoomID != nil {
		if room, err := s.store.Rooms.GetByID(ctx, *created.RoomID); err == nil {
			s.notifier.Publish(notification.EventRoomStatusChanged, RoomChange{RoomID: room.ID, Status: room.Status})
		}
	}
	s.log.Info("booking created",
		zap.String("booking_code", created.BookingCode),
		zap.String("status", string(created.Status)),
		zap.Int64("actor", actor.UserID),
	)
	return created, nil
}

// CreateInTx writes the booking using tx. When a room is requested the
// caller must already hold its lock.
func (s *Service) CreateInTx(ctx context.Context, tx *repository.Store, req CreateBookingRequest, status domain.BookingStatus, actor domain.Actor) (*domain.Booking, error) {
	if err := validateCreate(req, status); err != nil {
		return nil, err
	}

	b := &domain.Booking{
		CheckInDate:     req.CheckInDate,
		CheckOutDate:    req.CheckOutDate,
		Adults:          req.Adults,
		Children:        req.Children,
		SpecialRequests: req.SpecialRequests,
		Status:          status,
		CreatedBy:       actor.Ref(),
	}

	if req.CustomerID != 0 {
		if _, err := tx.Customers.GetByID(ctx, req.CustomerID); err != nil {
			return nil, notFound(err, "customer")
		}
		id := req.CustomerID
		b.CustomerID = &id
	}

	var roomType *domain.RoomType
	switch {
	case req.RoomID != 0:
		room, err := tx.Rooms.GetForUpdate(ctx, req.RoomID)
		if err != nil {
			return nil, notFound(err, "room")
		}
		if room.Status == domain.RoomMaintenance {
			return nil, fmt.Errorf("%w: room %s is under maintenance", ErrRoomUnavailable, room.RoomNumber)
		}
		free, err := checkAvailability(ctx, tx, room.ID, req.CheckInDate, req.CheckOutDate, nil)
		if err != nil {
			return nil, err
		}
		if !free {
			return nil, fmt.Errorf("%w: room %s", ErrRoomUnavailable, room.RoomNumber)
		}
		if roomType, err = tx.RoomTypes.GetByID(ctx, room.RoomTypeID); err != nil {
			return nil, notFound(err, "room type")
		}
		roomID := room.ID
		b.RoomID = &roomID
	case req.RoomTypeID != 0:
		rt, err := tx.RoomTypes.GetByID(ctx, req.RoomTypeID)
		if err != nil {
			return nil, notFound(err, "room type")
		}
		roomType = rt
	}

	if roomType != nil {
		if roomType.MaxOccupancy > 0 && req.Adults+req.Children > roomType.MaxOccupancy {
			return nil, fmt.Errorf("%w: %s sleeps at most %d guests", ErrValidation, roomType.TypeName, roomType.MaxOccupancy)
		}
		total, err := s.pricing.StayTotal(roomType.BasePrice, req.CheckInDate, req.CheckOutDate)
		if err != nil {
			return nil, err
		}
		typeID := roomType.ID
		b.RoomTypeID = &typeID
		b.TotalAmount = total
	}

	code, err := tx.Sequences.NextCode(ctx, repository.PrefixBooking, s.Today())
	if err != nil {
		return nil, fmt.Errorf("allocate booking code: %w", err)
	}
	b.BookingCode = code

	if err := tx.Bookings.Create(ctx, b); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: booking code %s already used", ErrConflict, code)
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if b.RoomID != nil {
		if _, err := s.machine.SyncRoom(ctx, tx, *b.RoomID, s.Today(), nil); err != nil {
			return nil, err
		}
	}

	err = tx.Audit.Record(ctx, repository.AuditEntry{
		Actor:    actor,
		Action:   domain.AuditCreateBooking,
		Entity:   "bookings",
		RecordID: b.ID,
		After:    b,
		At:       s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("audit create booking: %w", err)
	}
	return b, nil
}

func validateCreate(req CreateBookingRequest, status domain.BookingStatus) error {
	switch status {
	case domain.BookingPending, domain.BookingPendingPayment, domain.BookingPendingDeposit:
	default:
		return fmt.Errorf("%w: bookings cannot be created as %s", ErrValidation, status)
	}
	if err := validateRange(req.CheckInDate, req.CheckOutDate); err != nil {
		return err
	}
	if req.Adults < 1 {
		return fmt.Errorf("%w: at least one adult is required", ErrValidation)
	}
	if req.Children < 0 {
		return fmt.Errorf("%w: children cannot be negative", ErrValidation)
	}
	return nil
}

func (s *Service) Confirm(ctx context.Context, id, roomID int64, actor domain.Actor) (*domain.Booking, error) {
	return s.transition(ctx, id, EventConfirm, Input{RoomID: roomID}, actor)
}

func (s *Service) AssignRoom(ctx context.Context, id, roomID int64, actor domain.Actor) (*domain.Booking, error) {
	return s.transition(ctx, id, EventAssignRoom, Input{RoomID: roomID}, actor)
}

func (s *Service) CheckIn(ctx context.Context, id int64, req CheckInRequest, actor domain.Actor) (*domain.Booking, error) {
	return s.transition(ctx, id, EventCheckIn, Input{
		ActualAdults:   req.ActualAdults,
		ActualChildren: req.ActualChildren,
		Notes:          req.Notes,
	}, actor)
}

func (s *Service) CheckOut(ctx context.Context, id int64, notes string, actor domain.Actor) (*domain.Booking, error) {
	return s.transition(ctx, id, EventCheckOut, Input{Notes: notes}, actor)
}

func (s *Service) Cancel(ctx context.Context, id int64, reason string, actor domain.Actor) (*domain.Booking, error) {
	return s.transition(ctx, id, EventCancel, Input{Reason: reason}, actor)
}

// transition applies ev in its own transaction. Events that claim a room take
// the room lock first, then re-check inside the transaction that the booking
// still targets the locked room.
func (s *Service) transition(ctx context.Context, id int64, ev Event, in Input, actor domain.Actor) (*domain.Booking, error) {
	var lockedRoom int64
	if ev == EventConfirm || ev == EventAssignRoom {
		lockedRoom = in.RoomID
		if lockedRoom == 0 && ev == EventConfirm {
			current, err := s.store.Bookings.GetByID(ctx, id)
			if err != nil {
				return nil, notFound(err, "booking")
			}
			if current.RoomID != nil {
				lockedRoom = *current.RoomID
			}
		}
		if lockedRoom != 0 {
			unlock, err := s.locks.Lock(ctx, RoomLockKey(lockedRoom))
			if err != nil {
				return nil, fmt.Errorf("lock room %d: %w", lockedRoom, err)
			}
			defer unlock()
		}
	}

	var (
		updated *domain.Booking
		outcome *Outcome
	)
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		b, err := tx.Bookings.GetForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "booking")
		}
		if ev == EventConfirm && in.RoomID == 0 && b.RoomID != nil && *b.RoomID != lockedRoom {
			return fmt.Errorf("%w: booking was reassigned concurrently", ErrConflict)
		}
		out, err := s.machine.Apply(ctx, tx, b, ev, in, actor)
		if err != nil {
			return err
		}
		updated, outcome = b, out
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishTransition(ev, updated, outcome)
	s.log.Info("booking transition",
		zap.String("booking_code", updated.BookingCode),
		zap.String("event", string(ev)),
		zap.String("from", string(outcome.From)),
		zap.String("to", string(outcome.To)),
		zap.Int64("actor", actor.UserID),
	)
	return updated, nil
}

func (s *Service) publishTransition(ev Event, b *domain.Booking, out *Outcome) {
	switch ev {
	case EventCheckIn:
		s.notifier.Publish(notification.EventCheckIn, b)
	case EventCheckOut:
		s.notifier.Publish(notification.EventCheckOut, b)
	}
	s.notifier.Publish(notification.EventBookingUpdated, b)
	for _, rc := range out.Rooms {
		s.notifier.Publish(notification.EventRoomStatusChanged, rc)
	}
}

func (s *Service) IsAvailable(ctx context.Context, roomID int64, checkIn, checkOut domain.Date, exclude *int64) (bool, error) {
	return checkAvailability(ctx, s.store, roomID, checkIn, checkOut, exclude)
}

func (s *Service) CalculateAmount(ctx context.Context, roomID int64, checkIn, checkOut domain.Date) (*QuoteResponse, error) {
	total, err := s.pricing.TotalForStay(ctx, s.store, roomID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	return &QuoteResponse{
		RoomID:       roomID,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Nights:       checkIn.DaysUntil(checkOut),
		TotalAmount:  total,
		Currency:     s.currency,
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.store.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "booking")
	}
	return b, nil
}

func (s *Service) List(ctx context.Context, f repository.BookingFilter) (*ListResult, error) {
	items, total, err := s.store.Bookings.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Booking{}
	}
	return &ListResult{Items: items, Total: total}, nil
}

// History returns the audit trail of a booking, oldest first.
func (s *Service) History(ctx context.Context, id int64) ([]domain.AuditLog, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Audit.ListForRecord(ctx, "bookings", id)
}
