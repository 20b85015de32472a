package entities

import (
	"strings"
	"time"
)

// ConnectionStatus is the local projection of the provider-reported session
// state. The provider is the source of truth; any poll may overwrite the
// cached value.
type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "DISCONNECTED"
	StatusCreating     ConnectionStatus = "CREATING"
	StatusConnecting   ConnectionStatus = "CONNECTING"
	StatusPending      ConnectionStatus = "PENDING"
	StatusGeneratingQR ConnectionStatus = "GENERATING_QR"
	StatusConnected    ConnectionStatus = "CONNECTED"
)

// StatusFromProvider maps a provider status string to the internal enum.
// Matching is case-insensitive. NOT_FOUND means the provider no longer knows
// the session, which is an implicit disconnect. Unrecognized values map to
// PENDING, the least-capable intermediate state, so a new provider status
// never flips a session to connected or disconnected by accident.
func StatusFromProvider(providerStatus string) ConnectionStatus {
	switch strings.ToUpper(strings.TrimSpace(providerStatus)) {
	case "CONNECTED", "WORKING", "AUTHENTICATED":
		return StatusConnected
	case "DISCONNECTED", "NOT_FOUND", "STOPPED", "LOGGED_OUT", "":
		return StatusDisconnected
	case "CREATING", "STARTING":
		return StatusCreating
	case "CONNECTING":
		return StatusConnecting
	case "PENDING", "SCAN_QR_CODE":
		return StatusPending
	case "GENERATING_QR":
		return StatusGeneratingQR
	default:
		return StatusPending
	}
}

// IsStable reports whether the status is a resting state that does not call
// for fast polling.
func (s ConnectionStatus) IsStable() bool {
	return s == StatusConnected || s == StatusDisconnected
}

// QRKind discriminates the two pairing-artifact encodings the provider may
// return.
type QRKind string

const (
	// QRKindImage is a ready-to-render base64 image payload.
	QRKindImage QRKind = "image"
	// QRKindRaw is a raw content string the consumer must render into a
	// scannable code itself.
	QRKindRaw QRKind = "raw"
)

// QRArtifact is the normalized pairing payload. Downstream code branches on
// Kind only, never on the shape of Data.
type QRArtifact struct {
	Kind QRKind `json:"kind"`
	Data string `json:"data"`
}

// NormalizeQR converts whichever artifact form the provider returned into
// the tagged representation. Image payloads win when both are present.
// Returns nil when the provider offered no artifact at all.
func NormalizeQR(imageBase64, rawContent string) *QRArtifact {
	if imageBase64 != "" {
		return &QRArtifact{Kind: QRKindImage, Data: imageBase64}
	}
	if rawContent != "" {
		return &QRArtifact{Kind: QRKindRaw, Data: rawContent}
	}
	return nil
}

// Session is the local record of one user's pairing with the chat provider.
// At most one session exists per user.
type Session struct {
	ID                  uint
	UserID              uint
	Status              ConnectionStatus
	QR                  *QRArtifact
	ProviderSessionData string
	ConnectedAt         *time.Time
	LastActivityAt      *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsConnected reports whether the session is currently paired.
func (s *Session) IsConnected() bool {
	return s.Status == StatusConnected
}

// Polling cadence bounds.
const (
	fastPollInterval = 2 * time.Second
	basePollInterval = 10 * time.Second
	pollBackoffStep  = 5 * time.Second
	maxPollInterval  = 30 * time.Second
)

// PollInterval returns the recommended delay before the next status poll.
// Intermediate states poll fast; stable states back off with every poll that
// observes no change, up to a cap. Callers reset pollsSinceChange to zero
// whenever the observed status changes.
func PollInterval(status ConnectionStatus, pollsSinceChange int) time.Duration {
	if !status.IsStable() {
		return fastPollInterval
	}
	interval := basePollInterval + time.Duration(pollsSinceChange)*pollBackoffStep
	if interval > maxPollInterval {
		return maxPollInterval
	}
	return interval
}
