package entities

import "time"

// SessionModel is a GORM model for the provider_sessions table
type SessionModel struct {
	ID                  uint       `gorm:"primaryKey"`
	UserID              uint       `gorm:"not null;uniqueIndex"`
	Status              string     `gorm:"not null;size:32;default:'DISCONNECTED'"`
	QRKind              string     `gorm:"size:16;default:''"`
	QRData              string     `gorm:"type:text;default:''"`
	ProviderSessionData string     `gorm:"type:text;default:''"`
	ConnectedAt         *time.Time
	LastActivityAt      *time.Time
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

func (SessionModel) TableName() string {
	return "provider_sessions"
}

// ToEntity converts DB model to domain entity
func (m *SessionModel) ToEntity() *Session {
	s := &Session{
		ID:                  m.ID,
		UserID:              m.UserID,
		Status:              ConnectionStatus(m.Status),
		ProviderSessionData: m.ProviderSessionData,
		ConnectedAt:         m.ConnectedAt,
		LastActivityAt:      m.LastActivityAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
	if m.QRKind != "" && m.QRData != "" {
		s.QR = &QRArtifact{Kind: QRKind(m.QRKind), Data: m.QRData}
	}
	return s
}

// FromEntity converts domain entity to DB model
func FromEntity(s *Session) *SessionModel {
	m := &SessionModel{
		ID:                  s.ID,
		UserID:              s.UserID,
		Status:              string(s.Status),
		ProviderSessionData: s.ProviderSessionData,
		ConnectedAt:         s.ConnectedAt,
		LastActivityAt:      s.LastActivityAt,
	}
	if s.QR != nil {
		m.QRKind = string(s.QR.Kind)
		m.QRData = s.QR.Data
	}
	return m
}
