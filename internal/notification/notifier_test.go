package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []Email
	err  error
}

func (m *recordingMailer) Send(_ context.Context, e Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, e)
	return m.err
}

type recordingPublisher struct {
	events []Event
}

func (p *recordingPublisher) Broadcast(e Event) { p.events = append(p.events, e) }

func TestNotifier_EmailIsAsyncAndErrorsAreSwallowed(t *testing.T) {
	m := &recordingMailer{err: errors.New("relay down")}
	n := NewNotifier(m, nil, zap.NewNop())

	n.Email(Email{To: "guest@example.com", Subject: "hi"})
	n.Email(Email{To: "", Subject: "skipped"})
	n.Wait()

	require.Len(t, m.sent, 1)
	assert.Equal(t, "guest@example.com", m.sent[0].To)
}

func TestNotifier_Publish(t *testing.T) {
	p := &recordingPublisher{}
	n := NewNotifier(nil, p, nil)

	n.Publish(EventRoomStatusChanged, map[string]any{"room_id": 7})

	require.Len(t, p.events, 1)
	assert.Equal(t, EventRoomStatusChanged, p.events[0].Type)
	assert.False(t, p.events[0].At.IsZero())
}

func TestNotifier_NilSafe(t *testing.T) {
	var n *Notifier
	n.Publish(EventNewBooking, nil)
	n.Email(Email{To: "x@example.com"})
	n.Wait()
}

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestQueueMailer_RoundTripThroughHandler(t *testing.T) {
	q := &fakeEnqueuer{}
	qm := &QueueMailer{client: q}

	email := Email{To: "guest@example.com", Subject: "Booking BKG20250101001 confirmed", HTMLBody: "<p>ok</p>"}
	require.NoError(t, qm.Send(context.Background(), email))
	require.Len(t, q.tasks, 1)
	assert.Equal(t, TypeEmailSend, q.tasks[0].Type())

	delivered := &recordingMailer{}
	h := EmailTaskHandler(delivered, zap.NewNop())
	require.NoError(t, h(context.Background(), q.tasks[0]))
	require.Len(t, delivered.sent, 1)
	assert.Equal(t, email, delivered.sent[0])
}

func TestEmailTaskHandler_BadPayloadSkipsRetry(t *testing.T) {
	h := EmailTaskHandler(&recordingMailer{}, zap.NewNop())
	err := h(context.Background(), asynq.NewTask(TypeEmailSend, []byte("{")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestBookingConfirmedEmail(t *testing.T) {
	e, err := BookingConfirmedEmail("guest@example.com", BookingMail{
		GuestName:     "Lan <Tran>",
		BookingCode:   "BKG20250101001",
		CheckIn:       "2025-01-01",
		CheckOut:      "2025-01-03",
		Total:         "2000000",
		Currency:      "VND",
		LoyaltyPoints: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, "Booking BKG20250101001 confirmed", e.Subject)
	assert.Contains(t, e.HTMLBody, "Lan &lt;Tran&gt;")
	assert.Contains(t, e.HTMLBody, "5 loyalty points")

	raw, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"to":"guest@example.com"`)
}
