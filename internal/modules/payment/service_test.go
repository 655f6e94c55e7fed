package payment

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
	"resort/internal/pkg/lock"
	"resort/internal/repository"
	"resort/internal/testutil"
)

var fixedNow = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

type recorder struct {
	mu     sync.Mutex
	events []string
	emails []notification.Email
}

func (r *recorder) Publish(eventType string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, eventType)
}

func (r *recorder) Email(e notification.Email) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, e)
}

func (r *recorder) sent() []notification.Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification.Email(nil), r.emails...)
}

type fixture struct {
	st    *repository.Store
	svc   *Service
	momo  *MoMo
	fake  *fakeMoMo
	notes *recorder
	suite *domain.RoomType
	room  *domain.Room
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := testutil.NewStore(t)
	notes := &recorder{}
	bookings := booking.NewService(st, booking.NewPricing(0, decimal.RequireFromString("0.30")), lock.NewLocal(), notes, nil,
		booking.WithClock(func() time.Time { return fixedNow }),
		booking.WithLocation(time.UTC),
	)
	momo, fake := newMoMo(t)
	f := &fixture{
		st:    st,
		svc:   NewService(st, bookings, notes, nil, momo),
		momo:  momo,
		fake:  fake,
		notes: notes,
	}
	f.suite = testutil.RoomType(t, st, "Ocean Suite", "1000000")
	f.room = testutil.Room(t, st, "S01", f.suite.ID)
	return f
}

func (f *fixture) request(method string) OnlineBookingRequest {
	return OnlineBookingRequest{
		RoomID:        f.room.ID,
		CheckInDate:   domain.NewDate(2025, time.June, 1),
		CheckOutDate:  domain.NewDate(2025, time.June, 3),
		Adults:        2,
		CustomerName:  "Lan Tran",
		CustomerEmail: "Lan.Tran@example.com",
		CustomerPhone: "0901234567",
		PaymentMethod: method,
	}
}

func (f *fixture) booking(t *testing.T, id int64) *domain.Booking {
	t.Helper()
	b, err := f.st.Bookings.GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func (f *fixture) roomStatus(t *testing.T) domain.RoomStatus {
	t.Helper()
	r, err := f.st.Rooms.GetByID(context.Background(), f.room.ID)
	require.NoError(t, err)
	return r.Status
}

func TestCashBooking_DepositThenConfirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateOnlineBooking(ctx, f.request("cash"))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPendingDeposit, resp.Booking.Status)
	assert.Equal(t, "2000000", resp.Booking.TotalAmount.String())
	assert.Equal(t, "600000", resp.Booking.DepositAmount.String())
	assert.Equal(t, "1400000", resp.RemainingDue.String())
	assert.Equal(t, domain.OnlinePaymentPendingDeposit, resp.Payment.Status)
	assert.Equal(t, resp.Booking.BookingCode, resp.Payment.OrderID)
	assert.Empty(t, resp.PayURL)
	assert.Equal(t, int32(0), f.fake.calls.Load())
	assert.Equal(t, domain.RoomBooked, f.roomStatus(t))

	mails := f.notes.sent()
	require.Len(t, mails, 1)
	assert.Equal(t, "lan.tran@example.com", mails[0].To)
	assert.Contains(t, mails[0].HTMLBody, "600000")

	op, err := f.svc.ConfirmCashDeposit(ctx, resp.Payment.ID, domain.Actor{UserID: 3, Role: "receptionist"})
	require.NoError(t, err)
	assert.Equal(t, domain.OnlinePaymentCompleted, op.Status)
	require.NotNil(t, op.CompletedAt)

	b := f.booking(t, resp.Booking.ID)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	c, err := f.st.Customers.GetByID(ctx, *b.CustomerID)
	require.NoError(t, err)
	assert.Equal(t, booking.LoyaltyPointsPerBooking, c.LoyaltyPoints)
	require.Len(t, f.notes.sent(), 2)
	assert.Contains(t, f.notes.sent()[1].Subject, "confirmed")

	_, err = f.svc.ConfirmCashDeposit(ctx, resp.Payment.ID, domain.SystemActor)
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.svc.ConfirmCashDeposit(ctx, 9999, domain.SystemActor)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGatewayBooking_CallbackConfirmsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateOnlineBooking(ctx, f.request("momo"))
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPendingPayment, resp.Booking.Status)
	assert.Equal(t, "2000000", resp.Payment.Amount.String(), "gateway payments cover the full stay")
	assert.Equal(t, "https://test-payment.momo.vn/pay/"+resp.Booking.BookingCode, resp.PayURL)
	assert.Empty(t, f.notes.sent())

	stored, err := f.svc.Get(ctx, resp.Payment.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.PayURL, stored.PayURL)
	assert.Equal(t, "2f1c6d9e-request", stored.RequestID)

	body := signedIPN(t, f.momo, resp.Booking.BookingCode, 2000000, 0)
	op, err := f.svc.HandleCallback(ctx, domain.MethodMoMo, body, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OnlinePaymentCompleted, op.Status)
	assert.Equal(t, "4088878653", op.TransactionID)
	assert.Equal(t, domain.BookingConfirmed, f.booking(t, resp.Booking.ID).Status)
	require.Len(t, f.notes.sent(), 1)

	// replay
	op, err = f.svc.HandleCallback(ctx, domain.MethodMoMo, body, nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OnlinePaymentCompleted, op.Status)
	assert.Len(t, f.notes.sent(), 1)

	c, err := f.st.Customers.FindByEmail(ctx, "lan.tran@example.com")
	require.NoError(t, err)
	assert.Equal(t, booking.LoyaltyPointsPerBooking, c.LoyaltyPoints)
}

func TestGatewayBooking_FailureReleasesRoom(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp, err := f.svc.CreateOnlineBooking(ctx, f.request("momo"))
	require.NoError(t, err)

	_, err = f.svc.HandleCallback(ctx, domain.MethodMoMo, signedIPN(t, f.momo, resp.Booking.BookingCode, 1000000, 0), nil)
	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Equal(t, domain.BookingPendingPayment, f.booking(t, resp.Booking.ID).Status)

	_, err = f.svc.HandleCallback(ctx, domain.MethodMoMo, signedIPN(t, f.momo, "BKG19990101001", 2000000, 0), nil)
	assert.ErrorIs(t, err, ErrNotFound)

	op, err := f.svc.HandleCallback(ctx, domain.MethodMoMo, signedIPN(t, f.momo, resp.Booking.BookingCode, 2000000, 1006), nil)
	require.NoError(t, err)
	assert.Equal(t, domain.OnlinePaymentFailed, op.Status)
	assert.Equal(t, domain.BookingCancelled, f.booking(t, resp.Booking.ID).Status)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t))

	again, err := f.svc.CreateOnlineBooking(ctx, f.request("cash"))
	require.NoError(t, err, "the released room can be booked again")
	assert.Equal(t, resp.Booking.CustomerID, again.Booking.CustomerID, "guests are matched by email")
}

func TestGatewayBooking_CheckoutErrorCancelsBooking(t *testing.T) {
	f := newFixture(t)
	f.fake.fail.Store(true)

	_, err := f.svc.CreateOnlineBooking(context.Background(), f.request("momo"))
	assert.ErrorIs(t, err, ErrGateway)
	assert.Equal(t, domain.RoomAvailable, f.roomStatus(t))

	list, err := f.st.Bookings.ListActiveForRoom(context.Background(), f.room.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateOnlineBooking_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	req := f.request("stripe")
	_, err := f.svc.CreateOnlineBooking(ctx, req)
	assert.ErrorIs(t, err, ErrValidation, "stripe is not configured in this fixture")

	req = f.request("cash")
	req.CheckInDate = domain.NewDate(2025, time.May, 19)
	_, err = f.svc.CreateOnlineBooking(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)

	req = f.request("cash")
	req.RoomID = 0
	_, err = f.svc.CreateOnlineBooking(ctx, req)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateOnlineBooking(ctx, f.request("cash"))
	require.NoError(t, err)
	_, err = f.svc.CreateOnlineBooking(ctx, f.request("cash"))
	assert.ErrorIs(t, err, booking.ErrRoomUnavailable)

	byType := f.request("cash")
	byType.RoomID = 0
	byType.RoomTypeID = f.suite.ID
	resp, err := f.svc.CreateOnlineBooking(ctx, byType)
	require.NoError(t, err)
	assert.Nil(t, resp.Booking.RoomID)
	assert.Equal(t, "600000", resp.Payment.Amount.String())
}

func TestHandleCallback_UnknownGateway(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.HandleCallback(context.Background(), "paypal", []byte("{}"), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}
