package business

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/entities"
	dispatcherrors "github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/errors"
	sessiondeps "github.com/HoceineEl/madrasa-messaging/internal/domain/session/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
	"github.com/HoceineEl/madrasa-messaging/internal/phone"
	"github.com/HoceineEl/madrasa-messaging/internal/template"
	pkgerrors "github.com/HoceineEl/madrasa-messaging/pkg/errors"
)

// Batch positions stagger in steps of half a second per ten messages, a
// crude token bucket that keeps large batches under provider abuse
// thresholds without delaying small ones.
const (
	staggerWindow = 10
	staggerStep   = 500 * time.Millisecond
)

// StaggerDelay computes the delivery delay for a zero-based batch position:
// positions 0-9 wait 0, 10-19 wait 500ms, 20-29 wait 1s, and so on.
func StaggerDelay(position int) time.Duration {
	if position < 0 {
		return 0
	}
	return time.Duration(position/staggerWindow) * staggerStep
}

// SentHook runs after a message is confirmed sent. The surrounding
// application injects it to record attendance; it never fires at enqueue
// time or for failed sends.
type SentHook func(ctx context.Context, msg *entities.OutboundMessage)

// UseCase implements the outbound dispatch queue
type UseCase struct {
	repo       deps.MessageRepository
	dispatcher deps.Dispatcher
	sessions   sessiondeps.SessionService
	normalizer *phone.Normalizer
	sentHook   SentHook
	logger     zerolog.Logger
	metrics    *metrics.Metrics
}

// NewUseCase creates a new dispatch use case
func NewUseCase(
	repo deps.MessageRepository,
	dispatcher deps.Dispatcher,
	sessions sessiondeps.SessionService,
	normalizer *phone.Normalizer,
	sentHook SentHook,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *UseCase {
	return &UseCase{
		repo:       repo,
		dispatcher: dispatcher,
		sessions:   sessions,
		normalizer: normalizer,
		sentHook:   sentHook,
		logger:     logger.With().Str("component", "dispatch_usecase").Logger(),
		metrics:    m,
	}
}

// EnqueueBatch validates the session, then walks the recipients: normalizes
// each phone, renders the template, persists a QUEUED ledger row and submits
// a staggered delivery job. Unnormalizable phones are skipped and counted,
// never failing the batch. The whole batch is rejected up front when the
// session is not connected, before any ledger rows exist.
func (u *UseCase) EnqueueBatch(
	ctx context.Context,
	userID uint,
	recipients []deps.BatchRecipient,
	tmpl string,
	messageType entities.MessageType,
) (*deps.BatchSummary, error) {
	if len(recipients) == 0 {
		return nil, pkgerrors.NewValidationError("batch contains no recipients")
	}

	session, err := u.sessions.GetConnected(ctx, userID)
	if err != nil {
		return nil, pkgerrors.NewPreconditionError("messaging session is not connected")
	}

	summary := &deps.BatchSummary{BatchID: uuid.NewString()}
	today := time.Now().Format("2006-01-02")

	for _, recipient := range recipients {
		canonical, nerr := u.normalizer.Normalize(recipient.RawPhone)
		if nerr != nil {
			summary.Skipped++
			summary.SkippedPhones = append(summary.SkippedPhones, recipient.RawPhone)
			u.metrics.RecordRecipientSkipped()
			u.logger.Warn().
				Str("raw_phone", recipient.RawPhone).
				Str("student", recipient.StudentName).
				Msg("recipient phone not normalizable, skipping")
			continue
		}

		content := template.Render(tmpl, template.Vars{
			StudentName:  recipient.StudentName,
			GroupName:    recipient.GroupName,
			CurrentDate:  today,
			LastPresence: recipient.LastPresence,
		})

		msg, cerr := u.repo.Create(ctx, &entities.OutboundMessage{
			SessionID:      session.ID,
			UserID:         userID,
			BatchID:        summary.BatchID,
			RecipientPhone: canonical,
			MessageType:    messageType,
			Content:        content,
			Status:         entities.StatusQueued,
		})
		if cerr != nil {
			return nil, fmt.Errorf("failed to persist queued message: %w", cerr)
		}

		job := deps.Job{
			MessageID:   msg.ID,
			SessionName: fmt.Sprintf("user-%d", userID),
			Recipient:   canonical,
			Content:     content,
			Delay:       StaggerDelay(summary.Queued),
		}
		if u.sentHook != nil && messageType == entities.TypeAttendance {
			job.OnSent = u.sentHook
		}

		if serr := u.dispatcher.Submit(job); serr != nil {
			// A QUEUED row with no job behind it has no recovery path, so the
			// row goes FAILED immediately and stays reachable through Retry.
			u.failStranded(ctx, msg.ID, serr)
			summary.Failed++
			continue
		}

		summary.Queued++
		u.metrics.RecordMessageQueued()
	}

	u.logger.Info().
		Str("batch_id", summary.BatchID).
		Int("queued", summary.Queued).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Msg("batch enqueued")

	return summary, nil
}

// failStranded marks a ledger row FAILED after a job could not be submitted.
// The terminal write keeps the row out of the QUEUED state it can never
// leave on its own.
func (u *UseCase) failStranded(ctx context.Context, messageID uint, submitErr error) {
	u.logger.Error().Err(submitErr).Uint("message_id", messageID).Msg("failed to submit delivery job")
	if ferr := u.repo.MarkFailed(ctx, messageID, "dispatch queue full", time.Now()); ferr != nil {
		u.logger.Error().Err(ferr).Uint("message_id", messageID).Msg("failed to mark stranded message failed")
		return
	}
	u.metrics.RecordMessageFailed()
}

// Retry re-enqueues a failed message. Only the owning user may retry, and
// only while the row is retryable.
func (u *UseCase) Retry(ctx context.Context, userID uint, messageID uint) (*entities.OutboundMessage, error) {
	msg, err := u.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.UserID != userID {
		return nil, dispatcherrors.ErrMessageNotFound
	}
	if !msg.IsRetryable() {
		return nil, dispatcherrors.ErrNotRetryable
	}

	if _, err := u.sessions.GetConnected(ctx, userID); err != nil {
		return nil, pkgerrors.NewPreconditionError("messaging session is not connected")
	}

	if err := u.repo.Requeue(ctx, messageID); err != nil {
		return nil, err
	}
	msg.Status = entities.StatusQueued

	job := deps.Job{
		MessageID:   msg.ID,
		SessionName: fmt.Sprintf("user-%d", userID),
		Recipient:   msg.RecipientPhone,
		Content:     msg.Content,
	}
	if u.sentHook != nil && msg.MessageType == entities.TypeAttendance {
		job.OnSent = u.sentHook
	}
	if err := u.dispatcher.Submit(job); err != nil {
		u.failStranded(ctx, msg.ID, err)
		return nil, err
	}

	u.logger.Info().Uint("message_id", msg.ID).Int("retry_count", msg.RetryCount).Msg("message requeued")
	return msg, nil
}

// Cancel marks a still-queued message CANCELLED. No in-flight abort is
// attempted: a cancelled row simply means "do not count this as sent", and
// the worker skips rows that went terminal while waiting.
func (u *UseCase) Cancel(ctx context.Context, userID uint, messageID uint) (*entities.OutboundMessage, error) {
	msg, err := u.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.UserID != userID {
		return nil, dispatcherrors.ErrMessageNotFound
	}
	if msg.Status != entities.StatusQueued {
		return nil, dispatcherrors.ErrNotCancellable
	}

	if err := u.repo.MarkCancelled(ctx, messageID); err != nil {
		return nil, err
	}
	msg.Status = entities.StatusCancelled

	u.logger.Info().Uint("message_id", msg.ID).Msg("message cancelled")
	return msg, nil
}

// History pages the user's ledger, newest first
func (u *UseCase) History(ctx context.Context, userID uint, status string, limit, offset int) ([]entities.OutboundMessage, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return u.repo.ListByUser(ctx, userID, status, limit, offset)
}
