package invoice

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resort/internal/domain"
	"resort/internal/modules/booking"
	"resort/internal/repository"
	"resort/internal/testutil"
)

var fixedNow = time.Date(2025, 6, 5, 10, 0, 0, 0, time.UTC)

type fixture struct {
	st       *repository.Store
	invoices *Service
	payments *PaymentService
	guest    *domain.Customer
	room     *domain.Room
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := testutil.NewStore(t)
	opts := []Option{WithClock(func() time.Time { return fixedNow }), WithLocation(time.UTC)}
	pricing := booking.NewPricing(0, decimal.RequireFromString("0.30"))
	rt := testutil.RoomType(t, st, "Garden Villa", "1000000")
	return &fixture{
		st:       st,
		invoices: NewService(st, pricing, decimal.RequireFromString("0.10"), nil, nil, opts...),
		payments: NewPaymentService(st, nil, nil, opts...),
		guest:    testutil.Customer(t, st, "Hoa", "hoa@example.com"),
		room:     testutil.Room(t, st, "V01", rt.ID),
	}
}

func (f *fixture) stay(t *testing.T, status domain.BookingStatus, in, out, total string) *domain.Booking {
	t.Helper()
	b := testutil.Booking(t, f.st, f.room.ID, testutil.Date(t, in), testutil.Date(t, out), status, total)
	cid := f.guest.ID
	b.CustomerID = &cid
	require.NoError(t, f.st.Bookings.Save(context.Background(), b))
	return b
}

func (f *fixture) serviceBooking(t *testing.T, svc *domain.Service, day string, qty int, status domain.ServiceBookingStatus) {
	t.Helper()
	sb := &domain.ServiceBooking{
		BookingCode: "SRVT" + strings.ReplaceAll(day, "-", ""),
		CustomerID:  f.guest.ID,
		ServiceID:   svc.ID,
		BookingDate: fixedNow,
		ServiceDate: testutil.Date(t, day),
		Quantity:    qty,
		UnitPrice:   svc.UnitPrice,
		TotalAmount: svc.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
		Status:      status,
	}
	require.NoError(t, f.st.ServiceBookings.Create(context.Background(), sb))
}

func TestCreateFromBooking_RoomAndServices(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.stay(t, domain.BookingCheckedOut, "2025-06-01", "2025-06-03", "2000000")
	spa := testutil.Service(t, f.st, "Hot stone massage", "300000")

	f.serviceBooking(t, spa, "2025-06-01", 1, domain.ServiceBookingCompleted)
	f.serviceBooking(t, spa, "2025-06-03", 2, domain.ServiceBookingConfirmed)
	f.serviceBooking(t, spa, "2025-06-02", 1, domain.ServiceBookingCancelled)
	f.serviceBooking(t, spa, "2025-06-10", 1, domain.ServiceBookingPending)

	inv, err := f.invoices.CreateFromBooking(ctx, b.ID, CreateOptions{DiscountAmount: decimal.NewFromInt(100000)}, domain.Actor{UserID: 2})
	require.NoError(t, err)

	assert.Equal(t, "INV20250605001", inv.InvoiceNumber)
	assert.Equal(t, domain.InvoiceDraft, inv.Status)
	assert.Equal(t, domain.MethodCash, inv.PaymentMethod)
	assert.Equal(t, "2025-06-12", inv.DueDate.String())
	require.Len(t, inv.Items, 3)
	assert.Equal(t, domain.ItemRoom, inv.Items[0].ItemType)
	assert.Equal(t, 2, inv.Items[0].Quantity)
	assert.Equal(t, "2900000", inv.Subtotal.String())
	assert.Equal(t, "290000", inv.TaxAmount.String())
	assert.Equal(t, "3090000", inv.TotalAmount.String())

	loaded, err := f.invoices.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Invoice.Items, 3)
	assert.True(t, loaded.Remaining.Equal(inv.TotalAmount))

	_, err = f.invoices.CreateFromBooking(ctx, b.ID, CreateOptions{}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateFromBooking_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cancelled := f.stay(t, domain.BookingCancelled, "2025-06-01", "2025-06-02", "1000000")
	_, err := f.invoices.CreateFromBooking(ctx, cancelled.ID, CreateOptions{}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrValidation)

	noShow := f.stay(t, domain.BookingNoShow, "2025-06-03", "2025-06-04", "1000000")
	_, err = f.invoices.CreateFromBooking(ctx, noShow.ID, CreateOptions{}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.invoices.CreateFromBooking(ctx, 9999, CreateOptions{}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrNotFound)

	ok := f.stay(t, domain.BookingConfirmed, "2025-06-05", "2025-06-06", "1000000")
	_, err = f.invoices.CreateFromBooking(ctx, ok.ID, CreateOptions{DiscountAmount: decimal.NewFromInt(2000000)}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrValidation)

	rate := decimal.RequireFromString("1.5")
	_, err = f.invoices.CreateFromBooking(ctx, ok.ID, CreateOptions{TaxRate: &rate}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPayment_ExceedingBalanceIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.stay(t, domain.BookingCheckedOut, "2025-06-01", "2025-06-02", "1000000")

	inv, err := f.invoices.CreateFromBooking(ctx, b.ID, CreateOptions{}, domain.SystemActor)
	require.NoError(t, err)
	require.Equal(t, "1100000", inv.TotalAmount.String())

	_, err = f.payments.ProcessPayment(ctx, ProcessPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(1200000)}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrExceedsBalance)

	_, err = f.payments.ProcessPayment(ctx, ProcessPaymentRequest{InvoiceID: inv.ID, Amount: decimal.Zero}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrValidation)

	first, err := f.payments.ProcessPayment(ctx, ProcessPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(600000), Method: "card"}, domain.Actor{UserID: 4})
	require.NoError(t, err)
	assert.Equal(t, "PAY20250605001", first.PaymentNumber)
	assertStatus(t, f, inv.ID, domain.InvoicePartial)

	_, err = f.payments.ProcessPayment(ctx, ProcessPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(500001)}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrExceedsBalance)

	_, err = f.payments.ProcessPayment(ctx, ProcessPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(500000)}, domain.SystemActor)
	require.NoError(t, err)
	assertStatus(t, f, inv.ID, domain.InvoicePaid)

	_, err = f.payments.ProcessPayment(ctx, ProcessPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(1)}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrInvoiceClosed)

	_, err = f.payments.ProcessPayment(ctx, ProcessPaymentRequest{InvoiceID: 9999, Amount: decimal.NewFromInt(1)}, domain.SystemActor)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefund_BoundedByOriginalPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.stay(t, domain.BookingCheckedOut, "2025-06-01", "2025-06-02", "1000000")
	inv, err := f.invoices.CreateFromBooking(ctx, b.ID, CreateOptions{}, domain.SystemActor)
	require.NoError(t, err)

	paid, err := f.payments.ProcessPayment(ctx, ProcessPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(1100000)}, domain.SystemActor)
	require.NoError(t, err)
	assertStatus(t, f, inv.ID, domain.InvoicePaid)

	refund, err := f.payments.Refund(ctx, paid.ID, decimal.NewFromInt(300000), "minibar overcharge", domain.SystemActor)
	require.NoError(t, err)
	assert.Equal(t, "-300000", refund.Amount.String())
	assert.Equal(t, "REFUND-"+paid.PaymentNumber, refund.ReferenceNumber)
	assert.Equal(t, "Refund: minibar overcharge", refund.Notes)
	require.NotNil(t, refund.RefundOfID)
	assert.Equal(t, paid.ID, *refund.RefundOfID)
	assertStatus(t, f, inv.ID, domain.InvoicePartial)

	_, err = f.payments.Refund(ctx, paid.ID, decimal.NewFromInt(800001), "too much", domain.SystemActor)
	assert.ErrorIs(t, err, ErrRefundExceedsPayment)

	_, err = f.payments.Refund(ctx, refund.ID, decimal.NewFromInt(1), "refund of refund", domain.SystemActor)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.payments.Refund(ctx, paid.ID, decimal.Zero, "zero", domain.SystemActor)
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.payments.Refund(ctx, paid.ID, decimal.NewFromInt(800000), "rest", domain.SystemActor)
	require.NoError(t, err)

	_, err = f.payments.Refund(ctx, paid.ID, decimal.NewFromInt(1), "nothing left", domain.SystemActor)
	assert.ErrorIs(t, err, ErrRefundExceedsPayment)

	all, err := f.payments.ListForInvoice(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, domain.SumPayments(all).IsZero())
}

func TestApproveAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.stay(t, domain.BookingCheckedOut, "2025-06-01", "2025-06-02", "1000000")
	inv, err := f.invoices.CreateFromBooking(ctx, b.ID, CreateOptions{}, domain.SystemActor)
	require.NoError(t, err)

	approved, err := f.invoices.Approve(ctx, inv.ID, domain.Actor{UserID: 9})
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, int64(9), *approved.ApprovedBy)

	_, err = f.invoices.Approve(ctx, inv.ID, domain.SystemActor)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	p, err := f.payments.ProcessPayment(ctx, ProcessPaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(100000)}, domain.SystemActor)
	require.NoError(t, err)
	_, err = f.invoices.Cancel(ctx, inv.ID, "wrong guest", domain.SystemActor)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.payments.Refund(ctx, p.ID, decimal.NewFromInt(100000), "wrong guest", domain.SystemActor)
	require.NoError(t, err)
	cancelled, err := f.invoices.Cancel(ctx, inv.ID, "wrong guest", domain.SystemActor)
	require.NoError(t, err)
	assert.Equal(t, domain.InvoiceCancelled, cancelled.Status)
	assert.Contains(t, cancelled.Notes, "Cancelled: wrong guest")

	again, err := f.invoices.CreateFromBooking(ctx, b.ID, CreateOptions{}, domain.SystemActor)
	require.NoError(t, err, "a cancelled invoice does not block a new one")
	assert.NotEqual(t, inv.ID, again.ID)

	audit, err := f.st.Audit.ListByAction(ctx, domain.AuditCancelInvoice)
	require.NoError(t, err)
	assert.Len(t, audit, 1)
}

func assertStatus(t *testing.T, f *fixture, id int64, want domain.InvoiceStatus) {
	t.Helper()
	bal, err := f.invoices.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, want, bal.Invoice.Status)
}
