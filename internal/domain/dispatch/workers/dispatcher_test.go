package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/entities"
	dispatcherrors "github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/errors"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
)

type memoryRepo struct {
	mu       sync.Mutex
	messages map[uint]*entities.OutboundMessage
	sent     int
	failed   int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{messages: make(map[uint]*entities.OutboundMessage)}
}

func (r *memoryRepo) put(msg *entities.OutboundMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[msg.ID] = msg
}

func (r *memoryRepo) get(id uint) entities.OutboundMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.messages[id]
}

func (r *memoryRepo) Create(ctx context.Context, msg *entities.OutboundMessage) (*entities.OutboundMessage, error) {
	r.put(msg)
	return msg, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id uint) (*entities.OutboundMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg, ok := r.messages[id]
	if !ok {
		return nil, dispatcherrors.ErrMessageNotFound
	}
	copied := *msg
	return &copied, nil
}

func (r *memoryRepo) MarkSent(ctx context.Context, id uint, providerMessageID string, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := r.messages[id]
	if msg.Status != entities.StatusQueued {
		return dispatcherrors.ErrMessageNotFound
	}
	msg.Status = entities.StatusSent
	msg.ProviderMessageID = providerMessageID
	msg.SentAt = &sentAt
	r.sent++
	return nil
}

func (r *memoryRepo) MarkFailed(ctx context.Context, id uint, errorMessage string, failedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg := r.messages[id]
	if msg.Status != entities.StatusQueued {
		return dispatcherrors.ErrMessageNotFound
	}
	msg.Status = entities.StatusFailed
	msg.ErrorMessage = errorMessage
	msg.FailedAt = &failedAt
	msg.RetryCount++
	r.failed++
	return nil
}

func (r *memoryRepo) MarkCancelled(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[id].Status = entities.StatusCancelled
	return nil
}

func (r *memoryRepo) Requeue(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages[id].Status = entities.StatusQueued
	return nil
}

func (r *memoryRepo) ListByUser(ctx context.Context, userID uint, status string, limit, offset int) ([]entities.OutboundMessage, int64, error) {
	return nil, 0, nil
}

type scriptedSender struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (s *scriptedSender) SendMessage(ctx context.Context, sessionName, recipientPhone, content string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return "prov-1", nil
}

func (s *scriptedSender) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingPublisher struct {
	mu     sync.Mutex
	sent   []uint
	failed []uint
}

func (p *recordingPublisher) PublishSent(msg *entities.OutboundMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, msg.ID)
}

func (p *recordingPublisher) PublishFailed(msg *entities.OutboundMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = append(p.failed, msg.ID)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestDispatcherDeliversAndMarksSent(t *testing.T) {
	repo := newMemoryRepo()
	sender := &scriptedSender{}
	publisher := &recordingPublisher{}

	repo.put(&entities.OutboundMessage{ID: 1, UserID: 7, Status: entities.StatusQueued})

	var hookCalls int
	var hookMu sync.Mutex

	d := NewDispatcher(repo, sender, publisher, 2, 16, zerolog.Nop(), metrics.GetDefaultMetrics())
	defer d.Stop()

	err := d.Submit(deps.Job{
		MessageID:   1,
		SessionName: "user-7",
		Recipient:   "212612345678",
		Content:     "hello",
		OnSent: func(ctx context.Context, msg *entities.OutboundMessage) {
			hookMu.Lock()
			hookCalls++
			hookMu.Unlock()
		},
	})
	if err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	waitFor(t, func() bool { return repo.get(1).Status == entities.StatusSent })

	msg := repo.get(1)
	if msg.ProviderMessageID != "prov-1" {
		t.Errorf("expected provider message id recorded, got %q", msg.ProviderMessageID)
	}
	if msg.SentAt == nil {
		t.Error("expected sent timestamp recorded")
	}

	waitFor(t, func() bool {
		hookMu.Lock()
		defer hookMu.Unlock()
		return hookCalls == 1
	})

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	if len(publisher.sent) != 1 || publisher.sent[0] != 1 {
		t.Errorf("expected sent event for message 1, got %v", publisher.sent)
	}
}

func TestDispatcherMarksFailedOnSendError(t *testing.T) {
	repo := newMemoryRepo()
	sender := &scriptedSender{err: errors.New("provider rejected")}
	publisher := &recordingPublisher{}

	repo.put(&entities.OutboundMessage{ID: 1, UserID: 7, Status: entities.StatusQueued})

	d := NewDispatcher(repo, sender, publisher, 1, 16, zerolog.Nop(), metrics.GetDefaultMetrics())
	defer d.Stop()

	if err := d.Submit(deps.Job{MessageID: 1, SessionName: "user-7", Recipient: "212612345678", Content: "x"}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	waitFor(t, func() bool { return repo.get(1).Status == entities.StatusFailed })

	msg := repo.get(1)
	if msg.RetryCount != 1 {
		t.Errorf("expected retry count 1, got %d", msg.RetryCount)
	}
	if msg.ErrorMessage != "provider rejected" {
		t.Errorf("expected failure reason recorded, got %q", msg.ErrorMessage)
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	if len(publisher.failed) != 1 {
		t.Errorf("expected failed event, got %v", publisher.failed)
	}
}

func TestDispatcherSkipsCancelledMessages(t *testing.T) {
	repo := newMemoryRepo()
	sender := &scriptedSender{}
	publisher := &recordingPublisher{}

	// Cancelled while the job waited in the queue.
	repo.put(&entities.OutboundMessage{ID: 1, UserID: 7, Status: entities.StatusCancelled})

	d := NewDispatcher(repo, sender, publisher, 1, 16, zerolog.Nop(), metrics.GetDefaultMetrics())

	if err := d.Submit(deps.Job{MessageID: 1, SessionName: "user-7", Recipient: "212612345678", Content: "x"}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	d.Stop()

	if sender.callCount() != 0 {
		t.Errorf("cancelled message must not reach the provider, got %d calls", sender.callCount())
	}
	if repo.get(1).Status != entities.StatusCancelled {
		t.Errorf("expected status untouched, got %s", repo.get(1).Status)
	}
}

func TestDispatcherShutdownFailsWaitingJobs(t *testing.T) {
	repo := newMemoryRepo()
	sender := &scriptedSender{}
	publisher := &recordingPublisher{}

	repo.put(&entities.OutboundMessage{ID: 1, UserID: 7, Status: entities.StatusQueued})

	d := NewDispatcher(repo, sender, publisher, 1, 16, zerolog.Nop(), metrics.GetDefaultMetrics())

	if err := d.Submit(deps.Job{MessageID: 1, SessionName: "user-7", Recipient: "212612345678", Content: "x", Delay: time.Hour}); err != nil {
		t.Fatalf("unexpected submit error: %v", err)
	}

	d.Stop()

	msg := repo.get(1)
	if msg.Status != entities.StatusFailed {
		t.Fatalf("interrupted message must go FAILED, got %s", msg.Status)
	}
	if msg.ErrorMessage != "delivery interrupted by shutdown" {
		t.Errorf("expected shutdown reason recorded, got %q", msg.ErrorMessage)
	}
	if !msg.IsRetryable() {
		t.Error("interrupted message must stay retryable")
	}
	if sender.callCount() != 0 {
		t.Errorf("interrupted message must not reach the provider, got %d calls", sender.callCount())
	}
}

func TestDispatcherSubmitRejectsWhenFull(t *testing.T) {
	repo := newMemoryRepo()
	sender := &scriptedSender{}
	publisher := &recordingPublisher{}

	// No workers: nothing drains the queue.
	d := NewDispatcher(repo, sender, publisher, 0, 1, zerolog.Nop(), metrics.GetDefaultMetrics())
	defer d.Stop()

	if err := d.Submit(deps.Job{MessageID: 1}); err != nil {
		t.Fatalf("first submit should fit the queue: %v", err)
	}
	if err := d.Submit(deps.Job{MessageID: 2}); !errors.Is(err, dispatcherrors.ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}
