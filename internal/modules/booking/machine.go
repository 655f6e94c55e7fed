package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"resort/internal/domain"
	"resort/internal/repository"
)

// LoyaltyPointsPerBooking are credited when an online booking is paid.
const LoyaltyPointsPerBooking = 5

// Input carries the optional arguments of an event.
type Input struct {
	RoomID         int64
	ActualAdults   int
	ActualChildren int
	Notes          string
	Reason         string
}

type RoomChange struct {
	RoomID int64             `json:"room_id"`
	Status domain.RoomStatus `json:"status"`
}

// Outcome describes what a transition touched besides the booking row.
type Outcome struct {
	From          domain.BookingStatus
	To            domain.BookingStatus
	Rooms         []RoomChange
	LoyaltyPoints int
	CheckIn       *domain.CheckInRecord
}

// Machine applies guarded transitions. It never opens a transaction itself;
// callers pass a store bound to one.
type Machine struct {
	pricing Pricing
	now     func() time.Time
	loc     *time.Location
}

func NewMachine(pricing Pricing, now func() time.Time, loc *time.Location) *Machine {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Machine{pricing: pricing, now: now, loc: loc}
}

func (m *Machine) today() domain.Date { return domain.DateOf(m.now().In(m.loc)) }

// Apply moves b through ev, writing the booking, any room and check-in
// changes, and an audit row. b is only updated on success; on error the
// caller's transaction must be rolled back.
func (m *Machine) Apply(ctx context.Context, st *repository.Store, b *domain.Booking, ev Event, in Input, actor domain.Actor) (*Outcome, error) {
	to, err := Next(b.Status, ev)
	if err != nil {
		return nil, err
	}

	before := *b
	work := *b
	out := &Outcome{From: b.Status, To: to}
	// rooms whose status is recomputed once the booking row is saved
	var touched []int64
	if work.RoomID != nil {
		touched = append(touched, *work.RoomID)
	}

	switch ev {
	case EventConfirm:
		roomID := in.RoomID
		if roomID == 0 && work.RoomID != nil {
			roomID = *work.RoomID
		}
		if roomID == 0 {
			return nil, fmt.Errorf("%w: room_id is required to confirm", ErrValidation)
		}
		recompute := work.RoomID == nil || *work.RoomID != roomID
		if err := m.claimRoom(ctx, st, &work, roomID, recompute); err != nil {
			return nil, err
		}
		touched = append(touched, roomID)

	case EventAssignRoom:
		if in.RoomID == 0 {
			return nil, fmt.Errorf("%w: room_id is required", ErrValidation)
		}
		if err := m.claimRoom(ctx, st, &work, in.RoomID, true); err != nil {
			return nil, err
		}
		touched = append(touched, in.RoomID)

	case EventCheckIn:
		if work.RoomID == nil {
			return nil, fmt.Errorf("%w: assign a room before check-in", ErrValidation)
		}
		if _, err := st.CheckIns.GetOpen(ctx, work.ID); err == nil {
			return nil, fmt.Errorf("%w: booking already has an open check-in", ErrInvalidTransition)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		adults, children := in.ActualAdults, in.ActualChildren
		if adults == 0 {
			adults, children = work.Adults, work.Children
		}
		rec := &domain.CheckInRecord{
			BookingID:      work.ID,
			RoomID:         *work.RoomID,
			CheckInTime:    m.now().UTC(),
			ActualAdults:   adults,
			ActualChildren: children,
			CheckInBy:      actor.Ref(),
			Notes:          in.Notes,
		}
		if err := st.CheckIns.Create(ctx, rec); err != nil {
			return nil, fmt.Errorf("open check-in: %w", err)
		}
		out.CheckIn = rec

	case EventCheckOut:
		rec, err := m.closeCheckIn(ctx, st, work.ID, actor, in.Notes)
		if err != nil {
			return nil, err
		}
		out.CheckIn = rec
		if work.RoomID != nil {
			if err := st.Rooms.SetStatus(ctx, *work.RoomID, domain.RoomCleaning); err != nil {
				return nil, notFound(err, "room")
			}
			out.Rooms = append(out.Rooms, RoomChange{RoomID: *work.RoomID, Status: domain.RoomCleaning})
		}

	case EventCancel:
		rec, err := m.closeCheckIn(ctx, st, work.ID, actor, in.Reason)
		if err != nil {
			return nil, err
		}
		out.CheckIn = rec

	case EventPaymentSucceeded:
		if work.CustomerID != nil {
			if err := st.Customers.AddLoyaltyPoints(ctx, *work.CustomerID, LoyaltyPointsPerBooking); err != nil {
				return nil, fmt.Errorf("credit loyalty points: %w", err)
			}
			out.LoyaltyPoints = LoyaltyPointsPerBooking
		}

	}

	work.Status = to
	if err := st.Bookings.Save(ctx, &work); err != nil {
		return nil, fmt.Errorf("save booking: %w", err)
	}
	if ev != EventPaymentSucceeded {
		today := m.today()
		for i, roomID := range touched {
			if i > 0 && roomID == touched[0] {
				continue
			}
			if _, err := m.SyncRoom(ctx, st, roomID, today, out); err != nil {
				return nil, err
			}
		}
	}

	var after any = &work
	if in.Reason != "" {
		after = struct {
			*domain.Booking
			Reason string `json:"reason"`
		}{&work, in.Reason}
	}
	err = st.Audit.Record(ctx, repository.AuditEntry{
		Actor:    actor,
		Action:   auditActions[ev],
		Entity:   "bookings",
		RecordID: work.ID,
		Before:   &before,
		After:    after,
		At:       m.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("audit %s: %w", ev, err)
	}

	*b = work
	return out, nil
}

// claimRoom locks roomID, checks it is free for the booking's dates and
// moves the booking onto it. Room statuses are synced by the caller.
func (m *Machine) claimRoom(ctx context.Context, st *repository.Store, b *domain.Booking, roomID int64, recompute bool) error {
	room, err := st.Rooms.GetForUpdate(ctx, roomID)
	if err != nil {
		return notFound(err, "room")
	}
	if room.Status == domain.RoomMaintenance {
		return fmt.Errorf("%w: room %s is under maintenance", ErrRoomUnavailable, room.RoomNumber)
	}

	free, err := checkAvailability(ctx, st, roomID, b.CheckInDate, b.CheckOutDate, &b.ID)
	if err != nil {
		return err
	}
	if !free {
		return fmt.Errorf("%w: room %s", ErrRoomUnavailable, room.RoomNumber)
	}

	if recompute {
		rt, err := st.RoomTypes.GetByID(ctx, room.RoomTypeID)
		if err != nil {
			return notFound(err, "room type")
		}
		total, err := m.pricing.StayTotal(rt.BasePrice, b.CheckInDate, b.CheckOutDate)
		if err != nil {
			return err
		}
		b.TotalAmount = total
	}

	id, typeID := roomID, room.RoomTypeID
	b.RoomID = &id
	b.RoomTypeID = &typeID
	return nil
}

func (m *Machine) closeCheckIn(ctx context.Context, st *repository.Store, bookingID int64, actor domain.Actor, notes string) (*domain.CheckInRecord, error) {
	rec, err := st.CheckIns.GetOpen(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	at := m.now().UTC()
	rec.CheckOutTime = &at
	rec.CheckOutBy = actor.Ref()
	if notes != "" {
		rec.Notes = notes
	}
	if err := st.CheckIns.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("close check-in: %w", err)
	}
	return rec, nil
}

// SyncRoom recomputes a room's status from the bookings that still claim it
// and writes it when it changed. out may be nil.
func (m *Machine) SyncRoom(ctx context.Context, st *repository.Store, roomID int64, today domain.Date, out *Outcome) (domain.RoomStatus, error) {
	room, err := st.Rooms.GetByID(ctx, roomID)
	if err != nil {
		return "", notFound(err, "room")
	}
	rows, err := st.Bookings.ListActiveForRoom(ctx, roomID)
	if err != nil {
		return "", fmt.Errorf("load room bookings: %w", err)
	}
	status := RoomProjection(room.Status, rows, today)
	if status == room.Status {
		return status, nil
	}
	if err := st.Rooms.SetStatus(ctx, roomID, status); err != nil {
		return "", notFound(err, "room")
	}
	if out != nil {
		out.Rooms = append(out.Rooms, RoomChange{RoomID: roomID, Status: status})
	}
	return status, nil
}

// RoomProjection derives a room's status from its active bookings. An
// in-house guest wins over everything; otherwise maintenance and cleaning
// are kept, and any booking not yet over as of today marks the room booked.
func RoomProjection(current domain.RoomStatus, active []domain.Booking, today domain.Date) domain.RoomStatus {
	status := domain.RoomAvailable
	for _, b := range active {
		switch b.Status {
		case domain.BookingOverdueCheckout:
			return domain.RoomOccupiedOverdue
		case domain.BookingCheckedIn:
			status = domain.RoomOccupied
		default:
			if status == domain.RoomAvailable && today.Before(b.CheckOutDate) {
				status = domain.RoomBooked
			}
		}
	}
	if status == domain.RoomOccupied {
		return status
	}
	if current == domain.RoomMaintenance || current == domain.RoomCleaning {
		return current
	}
	return status
}
