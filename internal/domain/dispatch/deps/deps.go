package deps

import (
	"context"
	"time"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/entities"
)

// MessageRepository persists the outbound message ledger
type MessageRepository interface {
	// Create inserts a QUEUED ledger row
	Create(ctx context.Context, msg *entities.OutboundMessage) (*entities.OutboundMessage, error)

	// GetByID returns one ledger row
	GetByID(ctx context.Context, id uint) (*entities.OutboundMessage, error)

	// MarkSent records the single terminal SENT write
	MarkSent(ctx context.Context, id uint, providerMessageID string, sentAt time.Time) error

	// MarkFailed records the terminal FAILED write and increments retry_count
	MarkFailed(ctx context.Context, id uint, errorMessage string, failedAt time.Time) error

	// MarkCancelled cancels a still-QUEUED row; no-op error if already terminal
	MarkCancelled(ctx context.Context, id uint) error

	// Requeue flips a retryable FAILED row back to QUEUED
	Requeue(ctx context.Context, id uint) error

	// ListByUser pages the ledger for the history view, newest first
	ListByUser(ctx context.Context, userID uint, status string, limit, offset int) ([]entities.OutboundMessage, int64, error)
}

// MessageSender is the slice of the provider client the dispatcher needs
type MessageSender interface {
	SendMessage(ctx context.Context, sessionName, recipientPhone, content string) (providerMessageID string, err error)
}

// Job is one scheduled delivery. Delay is the stagger computed from the
// message's position in its batch at enqueue time.
type Job struct {
	MessageID   uint
	SessionName string
	Recipient   string
	Content     string
	Delay       time.Duration
	// OnSent runs after a confirmed send, never at enqueue time
	OnSent func(ctx context.Context, msg *entities.OutboundMessage)
}

// Dispatcher accepts delivery jobs and drains them through a bounded worker
// pool. Submit never blocks the enqueue path.
type Dispatcher interface {
	Submit(job Job) error
}

// EventPublisher emits message-outcome events for downstream consumers
type EventPublisher interface {
	PublishSent(msg *entities.OutboundMessage)
	PublishFailed(msg *entities.OutboundMessage)
}

// BatchRecipient is one roster entry in an enqueue request
type BatchRecipient struct {
	StudentName  string
	GroupName    string
	RawPhone     string
	LastPresence string
}

// BatchSummary reports the outcome of an enqueue call. Skipped recipients
// (unnormalizable phones) never produce ledger rows; Failed counts rows
// that were persisted but could not be submitted for delivery.
type BatchSummary struct {
	BatchID       string
	Queued        int
	Skipped       int
	Failed        int
	SkippedPhones []string
}

// DispatchService defines the queue operations exposed to delivery
type DispatchService interface {
	EnqueueBatch(ctx context.Context, userID uint, recipients []BatchRecipient, tmpl string, messageType entities.MessageType) (*BatchSummary, error)
	Retry(ctx context.Context, userID uint, messageID uint) (*entities.OutboundMessage, error)
	Cancel(ctx context.Context, userID uint, messageID uint) (*entities.OutboundMessage, error)
	History(ctx context.Context, userID uint, status string, limit, offset int) ([]entities.OutboundMessage, int64, error)
}
