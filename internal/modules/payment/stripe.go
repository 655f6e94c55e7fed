package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"resort/internal/config"
	"resort/internal/domain"
)

// Stripe issues hosted checkout sessions and verifies webhook events.
type Stripe struct {
	client   *stripe.Client
	cfg      config.StripeConfig
	currency string
	decimals int32
}

func NewStripe(cfg config.StripeConfig, currency string, decimals int32) *Stripe {
	return &Stripe{
		client:   stripe.NewClient(cfg.SecretKey),
		cfg:      cfg,
		currency: strings.ToLower(currency),
		decimals: decimals,
	}
}

func (s *Stripe) Name() string { return domain.MethodStripe }

func (s *Stripe) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	minor := req.Amount.Shift(s.decimals).Round(0).IntPart()
	if minor <= 0 {
		return nil, fmt.Errorf("%w: stripe amount must be positive", ErrValidation)
	}
	params := &stripe.CheckoutSessionCreateParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(req.OrderID),
		SuccessURL:        stripe.String(s.cfg.SuccessURL),
		CancelURL:         stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:   stripe.String(s.currency),
				UnitAmount: stripe.Int64(minor),
				ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
					Name: stripe.String(req.Description),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	sess, err := s.client.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: stripe checkout: %v", ErrGateway, err)
	}
	return &Checkout{RequestID: sess.ID, PayURL: sess.URL}, nil
}

func (s *Stripe) ParseCallback(body []byte, header http.Header) (*CallbackResult, error) {
	event, err := webhook.ConstructEvent(body, header.Get("Stripe-Signature"), s.cfg.WebhookSecret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var success bool
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted, stripe.EventTypeCheckoutSessionAsyncPaymentSucceeded:
		success = true
	case stripe.EventTypeCheckoutSessionExpired, stripe.EventTypeCheckoutSessionAsyncPaymentFailed:
		success = false
	default:
		return nil, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("%w: malformed checkout session", ErrValidation)
	}
	// Completed sessions paid by a delayed method settle later.
	if event.Type == stripe.EventTypeCheckoutSessionCompleted && sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		return nil, nil
	}

	txID := sess.ID
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		txID = sess.PaymentIntent.ID
	}
	return &CallbackResult{
		OrderID:       sess.ClientReferenceID,
		Amount:        decimal.New(sess.AmountTotal, -s.decimals),
		TransactionID: txID,
		Success:       success,
		Message:       string(event.Type),
	}, nil
}
