package invoice

// Notifier receives post-commit events. Implementations must not block.
type Notifier interface {
	Publish(eventType string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(string, any) {}
