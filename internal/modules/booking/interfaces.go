package booking

import "resort/internal/notification"

// Notifier receives post-commit events. Implementations must not block.
type Notifier interface {
	Publish(eventType string, payload any)
	Email(e notification.Email)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, any)      {}
func (nopNotifier) Email(notification.Email) {}
