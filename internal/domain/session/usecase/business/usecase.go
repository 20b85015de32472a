package business

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/session/entities"
	sessionerrors "github.com/HoceineEl/madrasa-messaging/internal/domain/session/errors"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
	pkgerrors "github.com/HoceineEl/madrasa-messaging/pkg/errors"
)

// UseCase drives the connection state machine for provider sessions.
// The provider is the source of truth: every operation re-projects the
// provider-reported status onto the local record, last write wins.
type UseCase struct {
	repo       deps.SessionRepository
	provider   deps.ProviderClient
	tokenCache deps.TokenCache
	tokenTTL   time.Duration
	logger     zerolog.Logger
	metrics    *metrics.Metrics

	// pollsSinceChange counts consecutive polls that observed no status
	// change, per user. It only feeds the adaptive poll interval and is
	// deliberately not persisted.
	pollMu           sync.Mutex
	pollsSinceChange map[uint]int
}

// NewUseCase creates a new session use case
func NewUseCase(
	repo deps.SessionRepository,
	provider deps.ProviderClient,
	tokenCache deps.TokenCache,
	tokenTTL time.Duration,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *UseCase {
	return &UseCase{
		repo:             repo,
		provider:         provider,
		tokenCache:       tokenCache,
		tokenTTL:         tokenTTL,
		logger:           logger.With().Str("component", "session_usecase").Logger(),
		metrics:          m,
		pollsSinceChange: make(map[uint]int),
	}
}

// sessionName is the identifier under which the provider knows a user's session.
func sessionName(userID uint) string {
	return fmt.Sprintf("user-%d", userID)
}

// Start creates the user's session, or re-adopts the provider status of an
// existing one. A user already paired on the provider side is promoted to
// CONNECTED immediately; a local session the provider no longer knows gets
// a fresh provider session so pairing can restart.
func (u *UseCase) Start(ctx context.Context, userID uint) (*entities.Session, error) {
	session, err := u.repo.GetByUserID(ctx, userID)
	if err != nil && err != sessionerrors.ErrSessionNotFound {
		return nil, err
	}

	if session == nil {
		session, err = u.repo.Create(ctx, &entities.Session{
			UserID: userID,
			Status: entities.StatusCreating,
		})
		if err != nil {
			return nil, err
		}

		status, perr := u.provider.CreateSession(ctx, sessionName(userID))
		if perr != nil {
			u.logger.Error().Err(perr).Uint("user_id", userID).Msg("provider create session failed")
			// A CREATING row with no provider session behind it would
			// steer every later Start onto the status-query path.
			if derr := u.repo.Delete(ctx, userID); derr != nil {
				u.logger.Error().Err(derr).Uint("user_id", userID).Msg("failed to remove session after provider create failure")
			}
			return nil, pkgerrors.NewProviderUnavailableError("failed to create provider session")
		}
		return u.adopt(ctx, session, status)
	}

	status, perr := u.provider.GetStatus(ctx, sessionName(userID))
	if perr != nil {
		u.logger.Error().Err(perr).Uint("user_id", userID).Msg("provider status query failed")
		return nil, pkgerrors.NewProviderUnavailableError("failed to query provider session")
	}

	// The provider has no session under this name, so pairing can only
	// resume by creating one.
	if strings.EqualFold(status.Status, "NOT_FOUND") {
		status, perr = u.provider.CreateSession(ctx, sessionName(userID))
		if perr != nil {
			u.logger.Error().Err(perr).Uint("user_id", userID).Msg("provider create session failed")
			return nil, pkgerrors.NewProviderUnavailableError("failed to create provider session")
		}
	}
	return u.adopt(ctx, session, status)
}

// CheckStatus re-projects the provider status and returns the recommended
// delay before the next poll. Provider failures are surfaced without
// mutating local state.
func (u *UseCase) CheckStatus(ctx context.Context, userID uint) (*entities.Session, time.Duration, error) {
	session, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	status, perr := u.provider.GetStatus(ctx, sessionName(userID))
	if perr != nil {
		u.logger.Error().Err(perr).Uint("user_id", userID).Msg("provider status query failed")
		return nil, 0, pkgerrors.NewProviderUnavailableError("failed to query provider session")
	}

	previous := session.Status
	session, err = u.adopt(ctx, session, status)
	if err != nil {
		return nil, 0, err
	}

	polls := u.trackPoll(userID, previous, session.Status)
	return session, entities.PollInterval(session.Status, polls), nil
}

// RefreshQR asks the provider for a fresh pairing artifact. The provider
// offering none (already connected, or not yet ready) is a no-op, not an
// error: the absence of a fresh artifact is itself meaningful state.
func (u *UseCase) RefreshQR(ctx context.Context, userID uint) (*entities.Session, error) {
	session, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	status, perr := u.provider.RequestQR(ctx, sessionName(userID))
	if perr != nil {
		u.logger.Error().Err(perr).Uint("user_id", userID).Msg("provider qr request failed")
		return nil, pkgerrors.NewProviderUnavailableError("failed to request pairing code")
	}

	return u.adopt(ctx, session, status)
}

// Logout performs a best-effort provider logout and tears the session down
// locally. Provider failures are logged and swallowed.
func (u *UseCase) Logout(ctx context.Context, userID uint) (*entities.Session, error) {
	session, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if perr := u.provider.Logout(ctx, sessionName(userID)); perr != nil {
		u.logger.Warn().Err(perr).Uint("user_id", userID).Msg("provider logout failed, continuing local teardown")
	}

	u.disconnectLocally(ctx, session)
	if err := u.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Delete removes the session after a best-effort provider logout. The
// message ledger cascades with the row. A logout failure never blocks
// deletion: an orphaned provider-side session is recoverable, a row the
// user cannot delete is not.
func (u *UseCase) Delete(ctx context.Context, userID uint) error {
	session, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if perr := u.provider.Logout(ctx, sessionName(userID)); perr != nil {
		u.logger.Warn().Err(perr).Uint("user_id", userID).Msg("provider logout failed, continuing deletion")
	}

	if cerr := u.tokenCache.Invalidate(ctx, session.ID); cerr != nil {
		u.logger.Warn().Err(cerr).Uint("session_id", session.ID).Msg("failed to invalidate cached token")
	}

	u.pollMu.Lock()
	delete(u.pollsSinceChange, userID)
	u.pollMu.Unlock()

	return u.repo.Delete(ctx, userID)
}

// GetConnected returns the user's session if and only if it is CONNECTED.
// The dispatch domain uses this as its enqueue precondition.
func (u *UseCase) GetConnected(ctx context.Context, userID uint) (*entities.Session, error) {
	session, err := u.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !session.IsConnected() {
		return nil, sessionerrors.ErrNotConnected
	}
	return session, nil
}

// adopt projects a provider status response onto the session and persists it.
func (u *UseCase) adopt(ctx context.Context, session *entities.Session, status *deps.ProviderStatus) (*entities.Session, error) {
	now := time.Now()
	newStatus := entities.StatusFromProvider(status.Status)

	if session.Status != newStatus {
		u.logger.Info().
			Uint("user_id", session.UserID).
			Str("from", string(session.Status)).
			Str("to", string(newStatus)).
			Msg("session status changed")
		u.metrics.RecordSessionTransition(string(newStatus))
	}

	session.Status = newStatus
	session.LastActivityAt = &now
	if status.RawResponse != "" {
		session.ProviderSessionData = status.RawResponse
	}

	switch newStatus {
	case entities.StatusConnected:
		if session.ConnectedAt == nil {
			session.ConnectedAt = &now
		}
		session.QR = nil
	case entities.StatusDisconnected:
		u.disconnectLocally(ctx, session)
	default:
		if qr := entities.NormalizeQR(status.QRImage, status.QRContent); qr != nil {
			session.QR = qr
		}
	}

	// disconnectLocally just invalidated the token; a stray token on a
	// DISCONNECTED response must not resurrect it.
	if status.AuthToken != "" && newStatus != entities.StatusDisconnected {
		if cerr := u.tokenCache.Set(ctx, session.ID, status.AuthToken, u.tokenTTL); cerr != nil {
			u.logger.Warn().Err(cerr).Uint("session_id", session.ID).Msg("failed to cache provider token")
		}
	}

	if err := u.repo.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// disconnectLocally clears pairing state and invalidates the cached token.
func (u *UseCase) disconnectLocally(ctx context.Context, session *entities.Session) {
	session.Status = entities.StatusDisconnected
	session.QR = nil
	session.ConnectedAt = nil

	if err := u.tokenCache.Invalidate(ctx, session.ID); err != nil {
		u.logger.Warn().Err(err).Uint("session_id", session.ID).Msg("failed to invalidate cached token")
	}
}

// trackPoll updates the unchanged-poll counter for the adaptive cadence.
func (u *UseCase) trackPoll(userID uint, previous, current entities.ConnectionStatus) int {
	u.pollMu.Lock()
	defer u.pollMu.Unlock()

	if previous != current {
		u.pollsSinceChange[userID] = 0
		return 0
	}
	u.pollsSinceChange[userID]++
	return u.pollsSinceChange[userID]
}
