package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeEmailSend = "email:send"

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueMailer hands email to the asynq worker instead of talking SMTP inline.
type QueueMailer struct {
	client enqueuer
}

func NewQueueMailer(client *asynq.Client) *QueueMailer {
	return &QueueMailer{client: client}
}

func NewEmailTask(e Email) (*asynq.Task, error) {
	payload, err := json.Marshal(e)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailSend, payload), nil
}

func (q *QueueMailer) Send(ctx context.Context, e Email) error {
	task, err := NewEmailTask(e)
	if err != nil {
		return err
	}
	_, err = q.client.EnqueueContext(ctx, task,
		asynq.MaxRetry(5),
		asynq.Timeout(time.Minute),
		asynq.Queue("email"),
	)
	if err != nil {
		return fmt.Errorf("enqueue email: %w", err)
	}
	return nil
}

// EmailTaskHandler delivers queued email with the given mailer.
func EmailTaskHandler(m Mailer, log *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var e Email
		if err := json.Unmarshal(task.Payload(), &e); err != nil {
			log.Error("invalid email task payload", zap.Error(err))
			return fmt.Errorf("decode email task: %v: %w", err, asynq.SkipRetry)
		}
		if err := m.Send(ctx, e); err != nil {
			log.Warn("email delivery failed", zap.String("to", e.To), zap.Error(err))
			return err
		}
		log.Info("email delivered", zap.String("to", e.To), zap.String("subject", e.Subject))
		return nil
	}
}
