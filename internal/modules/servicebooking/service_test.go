package servicebooking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resort/internal/domain"
	"resort/internal/modules/booking"
	"resort/internal/testutil"
)

var fixedNow = time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)

func TestCanMove(t *testing.T) {
	cases := []struct {
		from, to domain.ServiceBookingStatus
		want     bool
	}{
		{domain.ServiceBookingPending, domain.ServiceBookingConfirmed, true},
		{domain.ServiceBookingPending, domain.ServiceBookingCancelled, true},
		{domain.ServiceBookingPending, domain.ServiceBookingCompleted, false},
		{domain.ServiceBookingConfirmed, domain.ServiceBookingCompleted, true},
		{domain.ServiceBookingConfirmed, domain.ServiceBookingCancelled, true},
		{domain.ServiceBookingCompleted, domain.ServiceBookingCancelled, false},
		{domain.ServiceBookingCancelled, domain.ServiceBookingPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanMove(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCreateAndAdvance(t *testing.T) {
	st := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewService(st, booking.NewPricing(0, decimal.RequireFromString("0.3")), nil, nil,
		WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC))
	guest := testutil.Customer(t, st, "Minh", "minh@example.com")
	spa := testutil.Service(t, st, "Four hands massage", "450000")

	sb, err := svc.Create(ctx, CreateRequest{CustomerID: guest.ID, ServiceID: spa.ID, ServiceDate: testutil.Date(t, "2025-07-02"), Quantity: 2}, domain.Actor{UserID: 4})
	require.NoError(t, err)
	assert.Equal(t, "SRV20250701001", sb.BookingCode)
	assert.Equal(t, domain.ServiceBookingPending, sb.Status)
	assert.Equal(t, "900000", sb.TotalAmount.String())

	sb, err = svc.UpdateStatus(ctx, sb.ID, domain.ServiceBookingConfirmed, domain.SystemActor)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceBookingConfirmed, sb.Status)

	sb, err = svc.UpdateStatus(ctx, sb.ID, domain.ServiceBookingCompleted, domain.SystemActor)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, sb.ID, domain.ServiceBookingCancelled, domain.SystemActor)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	list, err := svc.ListByCustomer(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.ServiceBookingCompleted, list[0].Status)
}

func TestCreate_Rejections(t *testing.T) {
	st := testutil.NewStore(t)
	ctx := context.Background()
	svc := NewService(st, booking.NewPricing(0, decimal.RequireFromString("0.3")), nil, nil,
		WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC))
	guest := testutil.Customer(t, st, "Minh", "minh@example.com")
	spa := testutil.Service(t, st, "Sauna", "200000")

	tomorrow := testutil.Date(t, "2025-07-02")
	_, err := svc.Create(ctx, CreateRequest{CustomerID: guest.ID, ServiceID: spa.ID, ServiceDate: testutil.Date(t, "2025-06-30"), Quantity: 1}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(ctx, CreateRequest{CustomerID: 999, ServiceID: spa.ID, ServiceDate: tomorrow, Quantity: 1}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Create(ctx, CreateRequest{CustomerID: guest.ID, ServiceID: spa.ID, ServiceDate: tomorrow, Quantity: 0}, domain.SystemActor)
	assert.ErrorIs(t, err, booking.ErrValidation)

	require.NoError(t, st.DB().Model(spa).Update("is_active", false).Error)
	_, err = svc.Create(ctx, CreateRequest{CustomerID: guest.ID, ServiceID: spa.ID, ServiceDate: tomorrow, Quantity: 1}, domain.SystemActor)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}
