package notification

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Publisher broadcasts events to live clients.
type Publisher interface {
	Broadcast(e Event)
}

// Notifier fans out email and push messages. Delivery runs off the caller's
// goroutine and failures are only logged; callers never see them.
type Notifier struct {
	mailer  Mailer
	push    Publisher
	log     *zap.Logger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewNotifier(mailer Mailer, push Publisher, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		mailer:  mailer,
		push:    push,
		log:     log,
		timeout: 30 * time.Second,
		now:     time.Now,
	}
}

func (n *Notifier) Publish(eventType string, payload any) {
	if n == nil || n.push == nil {
		return
	}
	n.push.Broadcast(Event{Type: eventType, Payload: payload, At: n.now().UTC()})
}

func (n *Notifier) Email(e Email) {
	if n == nil || n.mailer == nil || e.To == "" {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				n.log.Error("email panic", zap.Any("panic", r))
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
		defer cancel()
		if err := n.mailer.Send(ctx, e); err != nil {
			n.log.Warn("email notification failed", zap.String("to", e.To), zap.String("subject", e.Subject), zap.Error(err))
		}
	}()
}

// Wait blocks until in-flight email deliveries finish.
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}
