package payment

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"resort/internal/config"
)

const testWebhookSecret = "whsec_test_resort"

func newStripe() *Stripe {
	return NewStripe(config.StripeConfig{
		SecretKey:     "sk_test_resort",
		WebhookSecret: testWebhookSecret,
		SuccessURL:    "https://resort.example/paid",
		CancelURL:     "https://resort.example/cancelled",
	}, "VND", 0)
}

func stripeEvent(t *testing.T, eventType, orderID string, amount int64, paymentStatus string) ([]byte, http.Header) {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"id":          "evt_test_1",
		"object":      "event",
		"api_version": stripe.APIVersion,
		"type":        eventType,
		"data": map[string]any{
			"object": map[string]any{
				"id":                  "cs_test_1",
				"object":              "checkout.session",
				"client_reference_id": orderID,
				"amount_total":        amount,
				"payment_status":      paymentStatus,
				"payment_intent":      "pi_test_1",
			},
		},
	})
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   body,
		Secret:    testWebhookSecret,
		Timestamp: time.Now(),
		Scheme:    "v1",
	})
	h := http.Header{}
	h.Set("Stripe-Signature", signed.Header)
	return body, h
}

func TestStripe_ParseCallback(t *testing.T) {
	gw := newStripe()

	body, h := stripeEvent(t, "checkout.session.completed", "BKG20250520001", 2000000, "paid")
	res, err := gw.ParseCallback(body, h)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.Success)
	assert.Equal(t, "BKG20250520001", res.OrderID)
	assert.Equal(t, "2000000", res.Amount.String())
	assert.Equal(t, "pi_test_1", res.TransactionID)

	body, h = stripeEvent(t, "checkout.session.expired", "BKG20250520001", 2000000, "unpaid")
	res, err = gw.ParseCallback(body, h)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.False(t, res.Success)

	body, h = stripeEvent(t, "checkout.session.completed", "BKG20250520001", 2000000, "unpaid")
	res, err = gw.ParseCallback(body, h)
	require.NoError(t, err)
	assert.Nil(t, res, "delayed payment methods settle on a later event")

	body, h = stripeEvent(t, "customer.created", "BKG20250520001", 0, "paid")
	res, err = gw.ParseCallback(body, h)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestStripe_RejectsBadSignature(t *testing.T) {
	gw := newStripe()
	body, h := stripeEvent(t, "checkout.session.completed", "BKG20250520001", 2000000, "paid")

	_, err := gw.ParseCallback(append(body, ' '), h)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = gw.ParseCallback(body, http.Header{})
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStripe_MinorUnits(t *testing.T) {
	usd := NewStripe(config.StripeConfig{SecretKey: "sk_test", WebhookSecret: testWebhookSecret}, "USD", 2)
	body, err := json.Marshal(map[string]any{
		"id": "evt_2", "object": "event", "api_version": stripe.APIVersion, "type": "checkout.session.completed",
		"data": map[string]any{"object": map[string]any{
			"id": "cs_2", "object": "checkout.session", "client_reference_id": "BKG1", "amount_total": 12345, "payment_status": "paid",
		}},
	})
	require.NoError(t, err)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: body, Secret: testWebhookSecret, Timestamp: time.Now(), Scheme: "v1"})

	res, err := usd.ParseCallback(body, http.Header{"Stripe-Signature": []string{signed.Header}})
	require.NoError(t, err)
	assert.Equal(t, "123.45", res.Amount.String())
	assert.Equal(t, "cs_2", res.TransactionID)
}
