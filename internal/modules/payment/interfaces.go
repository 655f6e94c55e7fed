package payment

import (
	"context"
	"net/http"

	"resort/internal/notification"
)

type Notifier interface {
	Publish(eventType string, payload any)
	Email(e notification.Email)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, any)      {}
func (nopNotifier) Email(notification.Email) {}

// Gateway is a hosted payment provider. ParseCallback verifies the provider's
// signature and returns nil when the notification carries nothing to settle.
type Gateway interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error)
	ParseCallback(body []byte, header http.Header) (*CallbackResult, error)
}
