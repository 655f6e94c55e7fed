package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"resort/internal/domain"
)

var allStatuses = []domain.BookingStatus{
	domain.BookingPending,
	domain.BookingPendingPayment,
	domain.BookingPendingDeposit,
	domain.BookingConfirmed,
	domain.BookingCheckedIn,
	domain.BookingCheckedOut,
	domain.BookingCancelled,
	domain.BookingNoShow,
	domain.BookingOverdueCheckout,
}

var allEvents = []Event{
	EventConfirm,
	EventAssignRoom,
	EventCheckIn,
	EventCheckOut,
	EventCancel,
	EventPaymentSucceeded,
	EventPaymentFailed,
	EventMarkNoShow,
	EventMarkOverdue,
}

func TestNext_FullTable(t *testing.T) {
	type key struct {
		from domain.BookingStatus
		ev   Event
	}
	allowed := map[key]domain.BookingStatus{
		{domain.BookingPending, EventConfirm}:                 domain.BookingConfirmed,
		{domain.BookingPending, EventAssignRoom}:              domain.BookingPending,
		{domain.BookingPending, EventCancel}:                  domain.BookingCancelled,
		{domain.BookingPending, EventMarkNoShow}:              domain.BookingNoShow,
		{domain.BookingConfirmed, EventAssignRoom}:            domain.BookingConfirmed,
		{domain.BookingConfirmed, EventCheckIn}:               domain.BookingCheckedIn,
		{domain.BookingConfirmed, EventCancel}:                domain.BookingCancelled,
		{domain.BookingCheckedIn, EventCheckOut}:              domain.BookingCheckedOut,
		{domain.BookingCheckedIn, EventCancel}:                domain.BookingCancelled,
		{domain.BookingCheckedIn, EventMarkOverdue}:           domain.BookingOverdueCheckout,
		{domain.BookingOverdueCheckout, EventCheckOut}:        domain.BookingCheckedOut,
		{domain.BookingPendingPayment, EventPaymentSucceeded}: domain.BookingConfirmed,
		{domain.BookingPendingPayment, EventPaymentFailed}:    domain.BookingCancelled,
		{domain.BookingPendingDeposit, EventPaymentSucceeded}: domain.BookingConfirmed,
		{domain.BookingPendingDeposit, EventPaymentFailed}:    domain.BookingCancelled,
	}

	for _, from := range allStatuses {
		for _, ev := range allEvents {
			to, err := Next(from, ev)
			if want, ok := allowed[key{from, ev}]; ok {
				assert.NoError(t, err, "%s + %s", from, ev)
				assert.Equal(t, want, to, "%s + %s", from, ev)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s + %s", from, ev)
				assert.Empty(t, to)
			}
		}
	}
}

func TestNext_TerminalStatesAcceptNothing(t *testing.T) {
	for _, from := range []domain.BookingStatus{domain.BookingCheckedOut, domain.BookingCancelled, domain.BookingNoShow} {
		for _, ev := range allEvents {
			_, err := Next(from, ev)
			assert.ErrorIs(t, err, ErrInvalidTransition)
		}
	}
}
