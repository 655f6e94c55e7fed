// Package testutil builds throwaway SQLite stores and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"resort/internal/database"
	"resort/internal/domain"
	"resort/internal/repository"
)

var seq atomic.Int64

func NewStore(t testing.TB) *repository.Store {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "resort.db"), nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repository.NewStore(db)
}

// Date parses YYYY-MM-DD or fails the test.
func Date(t testing.TB, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func RoomType(t testing.TB, st *repository.Store, name, rate string) *domain.RoomType {
	t.Helper()
	rt := &domain.RoomType{TypeName: name, BasePrice: Money(rate), MaxOccupancy: 4}
	require.NoError(t, st.RoomTypes.Create(context.Background(), rt))
	return rt
}

func Room(t testing.TB, st *repository.Store, number string, roomTypeID int64) *domain.Room {
	t.Helper()
	r := &domain.Room{RoomNumber: number, RoomTypeID: roomTypeID, Floor: 1, Status: domain.RoomAvailable}
	require.NoError(t, st.Rooms.Create(context.Background(), r))
	return r
}

func Customer(t testing.TB, st *repository.Store, first, email string) *domain.Customer {
	t.Helper()
	c := &domain.Customer{
		CustomerCode: fmt.Sprintf("CUS%05d", seq.Add(1)),
		FirstName:    first,
		LastName:     "Nguyen",
		Email:        email,
	}
	require.NoError(t, st.Customers.Create(context.Background(), c))
	return c
}

func Service(t testing.TB, st *repository.Store, name, price string) *domain.Service {
	t.Helper()
	s := &domain.Service{
		ServiceCode: fmt.Sprintf("SVC%05d", seq.Add(1)),
		ServiceName: name,
		Category:    "spa",
		UnitPrice:   Money(price),
		Unit:        "session",
		IsActive:    true,
	}
	require.NoError(t, st.Services.Create(context.Background(), s))
	return s
}

// Booking inserts a booking row directly, bypassing the service rules.
func Booking(t testing.TB, st *repository.Store, roomID int64, checkIn, checkOut domain.Date, status domain.BookingStatus, total string) *domain.Booking {
	t.Helper()
	b := &domain.Booking{
		BookingCode:  fmt.Sprintf("BKGT%06d", seq.Add(1)),
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Adults:       2,
		TotalAmount:  Money(total),
		Status:       status,
	}
	if roomID != 0 {
		id := roomID
		b.RoomID = &id
	}
	require.NoError(t, st.Bookings.Create(context.Background(), b))
	return b
}
