package dto

import (
	"time"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/entities"
)

// BatchRecipient is one recipient in a batch send request
type BatchRecipient struct {
	StudentName  string `json:"student_name"`
	GroupName    string `json:"group_name,omitempty"`
	Phone        string `json:"phone"`
	LastPresence string `json:"last_presence,omitempty"`
}

// BatchRequest is a request to send a templated message to many recipients
type BatchRequest struct {
	Recipients  []BatchRecipient `json:"recipients"`
	Template    string           `json:"template"`
	MessageType string           `json:"message_type,omitempty"`
}

// BatchResponse reports per-recipient outcomes; skipped recipients had
// unnormalizable phone numbers and produced no ledger rows, failed ones
// have a ledger row awaiting an operator retry
type BatchResponse struct {
	BatchID       string   `json:"batch_id"`
	Queued        int      `json:"queued"`
	Skipped       int      `json:"skipped"`
	Failed        int      `json:"failed"`
	SkippedPhones []string `json:"skipped_phones,omitempty"`
}

// MessageResponse is one ledger entry in API form
type MessageResponse struct {
	ID                uint       `json:"id"`
	BatchID           string     `json:"batch_id,omitempty"`
	RecipientPhone    string     `json:"recipient_phone"`
	MessageType       string     `json:"message_type"`
	Content           string     `json:"content"`
	Status            string     `json:"status"`
	ProviderMessageID string     `json:"provider_message_id,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	FailedAt          *time.Time `json:"failed_at,omitempty"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	RetryCount        int        `json:"retry_count"`
	Retryable         bool       `json:"retryable"`
	CreatedAt         time.Time  `json:"created_at"`
}

// FromMessage converts a ledger entry to the response shape
func FromMessage(m *entities.OutboundMessage) MessageResponse {
	return MessageResponse{
		ID:                m.ID,
		BatchID:           m.BatchID,
		RecipientPhone:    m.RecipientPhone,
		MessageType:       string(m.MessageType),
		Content:           m.Content,
		Status:            string(m.Status),
		ProviderMessageID: m.ProviderMessageID,
		SentAt:            m.SentAt,
		FailedAt:          m.FailedAt,
		ErrorMessage:      m.ErrorMessage,
		RetryCount:        m.RetryCount,
		Retryable:         m.IsRetryable(),
		CreatedAt:         m.CreatedAt,
	}
}

// HistoryResponse is a page of the message ledger
type HistoryResponse struct {
	Messages []MessageResponse `json:"messages"`
	Total    int64             `json:"total"`
}

// ErrorResponse generic error response
type ErrorResponse struct {
	Error string `json:"error"`
}
