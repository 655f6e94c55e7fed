package nightaudit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resort/internal/domain"
	"resort/internal/modules/booking"
	"resort/internal/notification"
	"resort/internal/repository"
	"resort/internal/testutil"
)

var fixedNow = time.Date(2025, 6, 10, 23, 50, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) Publish(eventType string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func (r *recorder) count(eventType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e == eventType {
			n++
		}
	}
	return n
}

type fixture struct {
	st    *repository.Store
	svc   *Service
	rec   *recorder
	room  *domain.Room
	today domain.Date
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := testutil.NewStore(t)
	clock := func() time.Time { return fixedNow }
	rec := &recorder{}
	machine := booking.NewMachine(booking.NewPricing(0, decimal.RequireFromString("0.3")), clock, time.UTC)
	rt := testutil.RoomType(t, st, "Lagoon", "1000000")
	return &fixture{
		st:    st,
		svc:   NewService(st, machine, rec, nil, clock),
		rec:   rec,
		room:  testutil.Room(t, st, "L01", rt.ID),
		today: domain.DateOf(fixedNow),
	}
}

func (f *fixture) booking(t *testing.T, id int64) *domain.Booking {
	t.Helper()
	b, err := f.st.Bookings.GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) roomStatus(t *testing.T, id int64) domain.RoomStatus {
	t.Helper()
	r, err := f.st.Rooms.GetByID(context.Background(), id)
	require.NoError(t, err)
	return r.Status
}

func TestRun_PendingPastArrivalBecomesNoShow(t *testing.T) {
	f := newFixture(t)
	yesterday := f.today.AddDays(-1)
	stale := testutil.Booking(t, f.st, 0, yesterday, f.today.AddDays(1), domain.BookingPending, "2000000")
	arrivingToday := testutil.Booking(t, f.st, 0, f.today, f.today.AddDays(2), domain.BookingPending, "2000000")
	confirmed := testutil.Booking(t, f.st, f.room.ID, yesterday, f.today.AddDays(1), domain.BookingConfirmed, "2000000")

	sum, err := f.svc.Run(context.Background(), f.today)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.NoShows)

	assert.Equal(t, domain.BookingNoShow, f.booking(t, stale.ID).Status)
	assert.Equal(t, domain.BookingPending, f.booking(t, arrivingToday.ID).Status)
	assert.Equal(t, domain.BookingConfirmed, f.booking(t, confirmed.ID).Status)

	rows, err := f.st.Audit.ListForRecord(context.Background(), "bookings", stale.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.AuditNoShow, rows[0].Action)
	assert.Nil(t, rows[0].UserID)
}

func TestRun_LateDepartureFlagsRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stay := testutil.Booking(t, f.st, f.room.ID, f.today.AddDays(-3), f.today.AddDays(-1), domain.BookingCheckedIn, "2000000")
	require.NoError(t, f.st.Rooms.SetStatus(ctx, f.room.ID, domain.RoomOccupied))

	sum, err := f.svc.Run(ctx, f.today)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.OverdueCheckouts)
	assert.Equal(t, domain.BookingOverdueCheckout, f.booking(t, stay.ID).Status)
	assert.Equal(t, domain.RoomOccupiedOverdue, f.roomStatus(t, f.room.ID))
	assert.Equal(t, 1, f.rec.count(notification.EventRoomStatusChanged))
}

func TestRun_ReleasesInvoicesAndRooms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	done := testutil.Booking(t, f.st, f.room.ID, f.today.AddDays(-2), f.today, domain.BookingCheckedOut, "2000000")
	open := testutil.Booking(t, f.st, 0, f.today, f.today.AddDays(3), domain.BookingConfirmed, "3000000")

	draft := &domain.Invoice{InvoiceNumber: "INV-A", BookingID: &done.ID, IssueDate: f.today, DueDate: f.today.AddDays(7),
		Subtotal: testutil.Money("2000000"), TotalAmount: testutil.Money("2200000"), Status: domain.InvoiceDraft}
	early := &domain.Invoice{InvoiceNumber: "INV-B", BookingID: &open.ID, IssueDate: f.today, DueDate: f.today.AddDays(7),
		Subtotal: testutil.Money("3000000"), TotalAmount: testutil.Money("3300000"), Status: domain.InvoiceDraft}
	require.NoError(t, f.st.Invoices.Create(ctx, draft))
	require.NoError(t, f.st.Invoices.Create(ctx, early))
	require.NoError(t, f.st.Rooms.SetStatus(ctx, f.room.ID, domain.RoomCleaning))

	sum, err := f.svc.Run(ctx, f.today)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.InvoicesReleased)
	assert.Equal(t, 1, sum.RoomsReleased)

	got, err := f.st.Invoices.GetByID(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoicePendingPayment, got.Status)
	got, err = f.st.Invoices.GetByID(ctx, early.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceDraft, got.Status)

	room, err := f.st.Rooms.GetByID(ctx, f.room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomAvailable, room.Status)
	require.NotNil(t, room.LastCleaned)
}

func TestRun_LowStockAlertedOncePerDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.st.Inventory.Create(ctx, &domain.Inventory{ItemName: "Sunscreen", QuantityOnHand: 2, MinStockLevel: 10}))
	require.NoError(t, f.st.Inventory.Create(ctx, &domain.Inventory{ItemName: "Slippers", QuantityOnHand: 300, MinStockLevel: 50}))

	sum, err := f.svc.Run(ctx, f.today)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.LowStockAlerts)

	sum, err = f.svc.Run(ctx, f.today)
	require.NoError(t, err)
	assert.Zero(t, sum.LowStockAlerts)

	sum, err = f.svc.Run(ctx, f.today.AddDays(1))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.LowStockAlerts)

	alerts, err := f.st.Audit.ListByAction(ctx, domain.AuditLowStockAlert)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
	assert.Equal(t, 2, f.rec.count(notification.EventLowStockAlert))
}

func TestRun_SecondRunSameDayIsNoOp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	testutil.Booking(t, f.st, 0, f.today.AddDays(-1), f.today.AddDays(1), domain.BookingPending, "1000000")
	testutil.Booking(t, f.st, f.room.ID, f.today.AddDays(-2), f.today.AddDays(-1), domain.BookingCheckedIn, "1000000")

	first, err := f.svc.Run(ctx, f.today)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Transitions())

	second, err := f.svc.Run(ctx, f.today)
	require.NoError(t, err)
	assert.Zero(t, second.Transitions())

	runs, err := f.st.Audit.ListByAction(ctx, domain.AuditNightAudit)
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestRun_FailureRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stale := testutil.Booking(t, f.st, 0, f.today.AddDays(-1), f.today.AddDays(1), domain.BookingPending, "1000000")
	require.NoError(t, f.st.DB().Migrator().DropTable(&domain.Inventory{}))

	_, err := f.svc.Run(ctx, f.today)
	require.Error(t, err)

	assert.Equal(t, domain.BookingPending, f.booking(t, stale.ID).Status)
	rows, err := f.st.Audit.ListForRecord(ctx, "bookings", stale.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRun_RequiresDate(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Run(context.Background(), domain.Date{})
	assert.Error(t, err)
}
