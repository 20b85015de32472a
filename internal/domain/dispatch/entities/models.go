package entities

import "time"

// OutboundMessageModel is a GORM model for the outbound_messages table
type OutboundMessageModel struct {
	ID                uint   `gorm:"primaryKey"`
	SessionID         uint   `gorm:"not null;index;constraint:OnDelete:CASCADE"`
	UserID            uint   `gorm:"not null;index"`
	BatchID           string `gorm:"size:36;index"`
	RecipientPhone    string `gorm:"not null;size:20"`
	MessageType       string `gorm:"not null;size:20;default:'custom'"`
	Content           string `gorm:"type:text;not null"`
	Status            string `gorm:"not null;size:12;default:'QUEUED';index"`
	ProviderMessageID string `gorm:"size:255;default:''"`
	SentAt            *time.Time
	FailedAt          *time.Time
	ErrorMessage      string    `gorm:"type:text;default:''"`
	RetryCount        int       `gorm:"not null;default:0"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime"`
}

func (OutboundMessageModel) TableName() string {
	return "outbound_messages"
}

// ToEntity converts DB model to domain entity
func (m *OutboundMessageModel) ToEntity() *OutboundMessage {
	return &OutboundMessage{
		ID:                m.ID,
		SessionID:         m.SessionID,
		UserID:            m.UserID,
		BatchID:           m.BatchID,
		RecipientPhone:    m.RecipientPhone,
		MessageType:       MessageType(m.MessageType),
		Content:           m.Content,
		Status:            MessageStatus(m.Status),
		ProviderMessageID: m.ProviderMessageID,
		SentAt:            m.SentAt,
		FailedAt:          m.FailedAt,
		ErrorMessage:      m.ErrorMessage,
		RetryCount:        m.RetryCount,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromEntity converts domain entity to DB model
func FromEntity(msg *OutboundMessage) *OutboundMessageModel {
	return &OutboundMessageModel{
		ID:                msg.ID,
		SessionID:         msg.SessionID,
		UserID:            msg.UserID,
		BatchID:           msg.BatchID,
		RecipientPhone:    msg.RecipientPhone,
		MessageType:       string(msg.MessageType),
		Content:           msg.Content,
		Status:            string(msg.Status),
		ProviderMessageID: msg.ProviderMessageID,
		SentAt:            msg.SentAt,
		FailedAt:          msg.FailedAt,
		ErrorMessage:      msg.ErrorMessage,
		RetryCount:        msg.RetryCount,
	}
}
