package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resort/internal/config"
)

// fakeMoMo is a MoMo create endpoint that checks request signatures.
type fakeMoMo struct {
	srv   *httptest.Server
	calls atomic.Int32
	fail  atomic.Bool
}

func newMoMo(t *testing.T) (*MoMo, *fakeMoMo) {
	t.Helper()
	fake := &fakeMoMo{}
	var gw *MoMo
	fake.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fake.calls.Add(1)
		var req momoCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if fake.fail.Load() || req.Signature != gw.sign(req.createRaw()) {
			_ = json.NewEncoder(w).Encode(momoCreateResponse{ResultCode: 11, Message: "Access denied"})
			return
		}
		_ = json.NewEncoder(w).Encode(momoCreateResponse{ResultCode: 0, Message: "Successful.", PayURL: "https://test-payment.momo.vn/pay/" + req.OrderID})
	}))
	t.Cleanup(fake.srv.Close)

	gw = NewMoMo(config.MoMoConfig{
		PartnerCode: "MOMOTEST",
		AccessKey:   "F8BBA842ECF85",
		SecretKey:   "K951B6PE1waDMi640xX08PD3vg6EkVlz",
		Endpoint:    fake.srv.URL,
		RedirectURL: "https://resort.example/return",
		IPNURL:      "https://resort.example/api/v1/payments/momo/ipn",
	}, fake.srv.Client())
	gw.newID = func() string { return "2f1c6d9e-request" }
	return gw, fake
}

func signedIPN(t *testing.T, m *MoMo, orderID string, amount int64, resultCode int) []byte {
	t.Helper()
	ipn := momoIPN{
		PartnerCode:  "MOMOTEST",
		AccessKey:    m.cfg.AccessKey,
		RequestID:    "2f1c6d9e-request",
		Amount:       amount,
		OrderID:      orderID,
		OrderInfo:    "Resort booking " + orderID,
		OrderType:    "momo_wallet",
		TransID:      4088878653,
		ResultCode:   resultCode,
		Message:      "Successful.",
		PayType:      "qr",
		ResponseTime: 1716195600000,
	}
	ipn.Signature = m.sign(ipn.raw())
	body, err := json.Marshal(ipn)
	require.NoError(t, err)
	return body
}

func TestMoMo_SignatureIsLowercaseHexHMAC(t *testing.T) {
	m := NewMoMo(config.MoMoConfig{SecretKey: "secret"}, nil)
	// HMAC-SHA256("secret", "payload")
	assert.Equal(t, "b82fcb791acec57859b989b430a826488ce2e479fdf92326bd0a2e8375a42ba4", m.sign("payload"))
}

func TestMoMo_CreateCheckout(t *testing.T) {
	gw, fake := newMoMo(t)

	out, err := gw.CreateCheckout(context.Background(), CheckoutRequest{OrderID: "BKG20250520001", Amount: decimal.NewFromInt(2000000), Description: "Resort booking"})
	require.NoError(t, err)
	assert.Equal(t, "https://test-payment.momo.vn/pay/BKG20250520001", out.PayURL)
	assert.Equal(t, "2f1c6d9e-request", out.RequestID)
	assert.Equal(t, int32(1), fake.calls.Load())

	fake.fail.Store(true)
	_, err = gw.CreateCheckout(context.Background(), CheckoutRequest{OrderID: "BKG20250520002", Amount: decimal.NewFromInt(10)})
	assert.ErrorIs(t, err, ErrGateway)

	_, err = gw.CreateCheckout(context.Background(), CheckoutRequest{OrderID: "BKG20250520003", Amount: decimal.Zero})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestMoMo_ParseCallback(t *testing.T) {
	gw, _ := newMoMo(t)

	res, err := gw.ParseCallback(signedIPN(t, gw, "BKG20250520001", 2000000, 0), nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "BKG20250520001", res.OrderID)
	assert.Equal(t, "2000000", res.Amount.String())
	assert.Equal(t, "4088878653", res.TransactionID)

	res, err = gw.ParseCallback(signedIPN(t, gw, "BKG20250520001", 2000000, 1006), nil)
	require.NoError(t, err)
	assert.False(t, res.Success)

	var tampered map[string]any
	require.NoError(t, json.Unmarshal(signedIPN(t, gw, "BKG20250520001", 2000000, 0), &tampered))
	tampered["amount"] = 1000
	body, err := json.Marshal(tampered)
	require.NoError(t, err)
	_, err = gw.ParseCallback(body, nil)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = gw.ParseCallback([]byte("not json"), nil)
	assert.ErrorIs(t, err, ErrValidation)
}
