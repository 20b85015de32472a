package dto

import (
	"time"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/entities"
)

// QRResponse is the normalized pairing artifact
type QRResponse struct {
	Kind string `json:"kind"` // "image" or "raw"
	Data string `json:"data"`
}

// SessionResponse describes the session state to the caller
type SessionResponse struct {
	UserID         uint        `json:"user_id"`
	Status         string      `json:"status"`
	QR             *QRResponse `json:"qr,omitempty"`
	ConnectedAt    *time.Time  `json:"connected_at,omitempty"`
	LastActivityAt *time.Time  `json:"last_activity_at,omitempty"`
	// NextPollInMs tells the UI when to poll again; only set on status checks
	NextPollInMs int64 `json:"next_poll_in_ms,omitempty"`
}

// FromSession converts a domain session to the response shape
func FromSession(s *entities.Session) SessionResponse {
	resp := SessionResponse{
		UserID:         s.UserID,
		Status:         string(s.Status),
		ConnectedAt:    s.ConnectedAt,
		LastActivityAt: s.LastActivityAt,
	}
	if s.QR != nil {
		resp.QR = &QRResponse{Kind: string(s.QR.Kind), Data: s.QR.Data}
	}
	return resp
}

// ErrorResponse generic error response
type ErrorResponse struct {
	Error string `json:"error"`
}
