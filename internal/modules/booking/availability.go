package booking

import (
	"context"
	"errors"
	"fmt"

	"resort/internal/domain"
	"resort/internal/repository"
)

// Overlaps reports whether the half-open ranges [a,b) and [c,d) intersect.
// A stay ending on the day another begins does not overlap it.
func Overlaps(a, b, c, d domain.Date) bool {
	return a.Before(d) && c.Before(b)
}

// Available reports whether none of the given bookings claims [checkIn, checkOut).
// Bookings with a released status and the excluded booking are ignored.
func Available(bookings []domain.Booking, checkIn, checkOut domain.Date, exclude *int64) bool {
	for _, b := range bookings {
		if exclude != nil && b.ID == *exclude {
			continue
		}
		if !b.Status.IsActive() {
			continue
		}
		if Overlaps(checkIn, checkOut, b.CheckInDate, b.CheckOutDate) {
			return false
		}
	}
	return true
}

func validateRange(checkIn, checkOut domain.Date) error {
	if checkIn.IsZero() || checkOut.IsZero() {
		return fmt.Errorf("%w: check_in and check_out are required", ErrValidation)
	}
	if !checkIn.Before(checkOut) {
		return fmt.Errorf("%w: check_out must be after check_in", ErrValidation)
	}
	return nil
}

// checkAvailability runs against whichever store it is given, so it sees
// uncommitted rows when called inside a transaction.
func checkAvailability(ctx context.Context, st *repository.Store, roomID int64, checkIn, checkOut domain.Date, exclude *int64) (bool, error) {
	if err := validateRange(checkIn, checkOut); err != nil {
		return false, err
	}
	if _, err := st.Rooms.GetByID(ctx, roomID); err != nil {
		return false, notFound(err, "room")
	}
	rows, err := st.Bookings.ListActiveForRoom(ctx, roomID)
	if err != nil {
		return false, fmt.Errorf("load room bookings: %w", err)
	}
	return Available(rows, checkIn, checkOut, exclude), nil
}

func notFound(err error, what string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
