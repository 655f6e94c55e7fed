package booking

import (
	"fmt"

	"resort/internal/domain"
)

type Event string

const (
	EventConfirm          Event = "confirm"
	EventAssignRoom       Event = "assign_room"
	EventCheckIn          Event = "check_in"
	EventCheckOut         Event = "check_out"
	EventCancel           Event = "cancel"
	EventPaymentSucceeded Event = "payment_succeeded"
	EventPaymentFailed    Event = "payment_failed"
	EventMarkNoShow       Event = "mark_no_show"
	EventMarkOverdue      Event = "mark_overdue"
)

var transitions = map[domain.BookingStatus]map[Event]domain.BookingStatus{
	domain.BookingPending: {
		EventConfirm:    domain.BookingConfirmed,
		EventAssignRoom: domain.BookingPending,
		EventCancel:     domain.BookingCancelled,
		EventMarkNoShow: domain.BookingNoShow,
	},
	domain.BookingPendingPayment: {
		EventPaymentSucceeded: domain.BookingConfirmed,
		EventPaymentFailed:    domain.BookingCancelled,
	},
	domain.BookingPendingDeposit: {
		EventPaymentSucceeded: domain.BookingConfirmed,
		EventPaymentFailed:    domain.BookingCancelled,
	},
	domain.BookingConfirmed: {
		EventAssignRoom: domain.BookingConfirmed,
		EventCheckIn:    domain.BookingCheckedIn,
		EventCancel:     domain.BookingCancelled,
	},
	domain.BookingCheckedIn: {
		EventCheckOut:    domain.BookingCheckedOut,
		EventCancel:      domain.BookingCancelled,
		EventMarkOverdue: domain.BookingOverdueCheckout,
	},
	domain.BookingOverdueCheckout: {
		EventCheckOut: domain.BookingCheckedOut,
	},
}

var auditActions = map[Event]string{
	EventConfirm:          domain.AuditConfirmBooking,
	EventAssignRoom:       domain.AuditAssignRoom,
	EventCheckIn:          domain.AuditCheckIn,
	EventCheckOut:         domain.AuditCheckOut,
	EventCancel:           domain.AuditCancelBooking,
	EventPaymentSucceeded: domain.AuditPaymentSucceeded,
	EventPaymentFailed:    domain.AuditPaymentFailed,
	EventMarkNoShow:       domain.AuditNoShow,
	EventMarkOverdue:      domain.AuditOverdueCheckout,
}

// Next returns the status a booking moves to when ev is applied in from.
// Terminal statuses accept no events.
func Next(from domain.BookingStatus, ev Event) (domain.BookingStatus, error) {
	if to, ok := transitions[from][ev]; ok {
		return to, nil
	}
	return "", fmt.Errorf("%w: %s not allowed from %s", ErrInvalidTransition, ev, from)
}
