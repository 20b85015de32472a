package deps

import (
	"context"
	"time"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/entities"
)

// SessionRepository persists provider sessions
type SessionRepository interface {
	// Create inserts a new session; fails if the user already has one
	Create(ctx context.Context, session *entities.Session) (*entities.Session, error)

	// GetByUserID returns the session owned by the user
	GetByUserID(ctx context.Context, userID uint) (*entities.Session, error)

	// Update overwrites the stored session state (last write wins)
	Update(ctx context.Context, session *entities.Session) error

	// Delete removes the session; the message ledger cascades via FK
	Delete(ctx context.Context, userID uint) error
}

// ProviderStatus is the provider's answer to any session operation
type ProviderStatus struct {
	Status      string
	QRImage     string // base64 PNG, when offered
	QRContent   string // raw pairing string, when offered
	AuthToken   string // present on some status responses
	RawResponse string // opaque snapshot kept for diagnostics
}

// ProviderClient talks to the external chat provider over HTTP
type ProviderClient interface {
	// CreateSession asks the provider to start a new session for the user
	CreateSession(ctx context.Context, sessionName string) (*ProviderStatus, error)

	// GetStatus queries the current session status
	GetStatus(ctx context.Context, sessionName string) (*ProviderStatus, error)

	// RequestQR asks the provider for a fresh pairing artifact
	RequestQR(ctx context.Context, sessionName string) (*ProviderStatus, error)

	// Logout asks the provider to end the session (best effort)
	Logout(ctx context.Context, sessionName string) error
}

// TokenCache stores provider auth tokens per session with a bounded lifetime.
// Implementations are injected so tests can use an in-memory fake.
type TokenCache interface {
	Set(ctx context.Context, sessionID uint, token string, ttl time.Duration) error
	Get(ctx context.Context, sessionID uint) (string, bool, error)
	Invalidate(ctx context.Context, sessionID uint) error
}

// SessionService defines the connection lifecycle operations exposed to
// delivery and to the dispatch domain
type SessionService interface {
	Start(ctx context.Context, userID uint) (*entities.Session, error)
	CheckStatus(ctx context.Context, userID uint) (*entities.Session, time.Duration, error)
	RefreshQR(ctx context.Context, userID uint) (*entities.Session, error)
	Logout(ctx context.Context, userID uint) (*entities.Session, error)
	Delete(ctx context.Context, userID uint) error
	GetConnected(ctx context.Context, userID uint) (*entities.Session, error)
}
