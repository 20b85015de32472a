package entities

import "time"

// MessageStatus is the ledger status of one send attempt
type MessageStatus string

const (
	StatusQueued    MessageStatus = "QUEUED"
	StatusSent      MessageStatus = "SENT"
	StatusFailed    MessageStatus = "FAILED"
	StatusCancelled MessageStatus = "CANCELLED"
)

// IsTerminal reports whether the status ends the message lifecycle
func (s MessageStatus) IsTerminal() bool {
	return s == StatusSent || s == StatusFailed || s == StatusCancelled
}

// MaxRetries is the cap on operator-triggered retries per message
const MaxRetries = 3

// MessageType classifies the outbound message for the history view
type MessageType string

const (
	TypeReminder   MessageType = "reminder"
	TypeAttendance MessageType = "attendance"
	TypeCustom     MessageType = "custom"
)

// OutboundMessage is one ledger entry: a single send attempt and its outcome.
// A row is created in QUEUED status at enqueue time and mutated exactly once
// to a terminal status by its delivery job (or cancelled by an operator
// before delivery).
type OutboundMessage struct {
	ID                uint
	SessionID         uint
	UserID            uint
	BatchID           string
	RecipientPhone    string // canonical, post-normalization
	MessageType       MessageType
	Content           string
	Status            MessageStatus
	ProviderMessageID string // set only on SENT
	SentAt            *time.Time
	FailedAt          *time.Time
	ErrorMessage      string
	RetryCount        int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// IsRetryable reports whether an operator may re-enqueue this message.
// Only failed messages under the retry cap qualify.
func (m *OutboundMessage) IsRetryable() bool {
	return m.Status == StatusFailed && m.RetryCount < MaxRetries
}
