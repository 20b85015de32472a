package workers

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/entities"
	dispatcherrors "github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/errors"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
)

// Dispatcher drains delivery jobs through a bounded worker pool. Each job
// honors its stagger delay before calling the provider, then performs the
// single terminal ledger write for its message. Workers own their rows:
// nothing else mutates a message after it leaves the queue.
type Dispatcher struct {
	repo      deps.MessageRepository
	sender    deps.MessageSender
	publisher deps.EventPublisher
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	jobs   chan deps.Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// NewDispatcher creates a dispatcher with the given pool size and queue depth
func NewDispatcher(
	repo deps.MessageRepository,
	sender deps.MessageSender,
	publisher deps.EventPublisher,
	workerCount, queueSize int,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())

	d := &Dispatcher{
		repo:      repo,
		sender:    sender,
		publisher: publisher,
		metrics:   m,
		logger:    logger.With().Str("component", "dispatcher").Logger(),
		jobs:      make(chan deps.Job, queueSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	for i := 0; i < workerCount; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	d.logger.Info().
		Int("workers", workerCount).
		Int("queue_size", queueSize).
		Msg("dispatcher started")

	return d
}

// Submit queues a delivery job without blocking the enqueue path. A full
// queue is reported to the caller rather than silently dropping the job.
func (d *Dispatcher) Submit(job deps.Job) error {
	select {
	case d.jobs <- job:
		d.metrics.SetDispatchQueueDepth(len(d.jobs))
		return nil
	default:
		return dispatcherrors.ErrQueueFull
	}
}

// Stop drains in-flight workers and shuts the pool down
func (d *Dispatcher) Stop() {
	d.logger.Info().Msg("stopping dispatcher")
	d.cancel()
	close(d.jobs)
	d.wg.Wait()
	d.logger.Info().Msg("dispatcher stopped")
}

func (d *Dispatcher) worker(id int) {
	defer d.wg.Done()

	for job := range d.jobs {
		d.metrics.SetDispatchQueueDepth(len(d.jobs))

		if !d.sleep(job.Delay) {
			// Shutting down: the job is lost with the process, so the row
			// goes FAILED and an operator retry can resubmit it after
			// restart. The status guard leaves cancelled rows untouched.
			if err := d.repo.MarkFailed(context.Background(), job.MessageID, "delivery interrupted by shutdown", time.Now()); err != nil {
				d.logger.Error().Err(err).Uint("message_id", job.MessageID).Msg("failed to mark interrupted message failed")
			}
			d.logger.Warn().Uint("message_id", job.MessageID).Msg("shutdown before delivery, message marked failed")
			continue
		}

		d.deliver(job, id)
	}
}

// sleep honors the stagger delay, returning false when shutdown interrupts it
func (d *Dispatcher) sleep(delay time.Duration) bool {
	if delay <= 0 {
		return d.ctx.Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-d.ctx.Done():
		return false
	}
}

// deliver performs the provider call and the exactly-once terminal write
func (d *Dispatcher) deliver(job deps.Job, workerID int) {
	start := time.Now()

	msg, err := d.repo.GetByID(context.Background(), job.MessageID)
	if err != nil {
		d.logger.Error().Err(err).Uint("message_id", job.MessageID).Msg("failed to load message for delivery")
		return
	}

	// Operator may have cancelled the row while it waited in the queue.
	if msg.Status.IsTerminal() {
		d.logger.Debug().
			Uint("message_id", msg.ID).
			Str("status", string(msg.Status)).
			Msg("message already terminal, skipping delivery")
		return
	}

	providerMessageID, sendErr := d.sender.SendMessage(d.ctx, job.SessionName, job.Recipient, job.Content)
	if sendErr != nil {
		d.fail(msg, sendErr.Error())
		return
	}

	now := time.Now()
	if err := d.repo.MarkSent(context.Background(), msg.ID, providerMessageID, now); err != nil {
		d.logger.Error().Err(err).Uint("message_id", msg.ID).Msg("failed to mark message sent")
		return
	}

	msg.Status = entities.StatusSent
	msg.ProviderMessageID = providerMessageID
	msg.SentAt = &now

	d.metrics.RecordMessageSent(time.Since(start).Seconds())
	d.publisher.PublishSent(msg)

	if job.OnSent != nil {
		job.OnSent(context.Background(), msg)
	}

	d.logger.Info().
		Int("worker", workerID).
		Uint("message_id", msg.ID).
		Str("provider_message_id", providerMessageID).
		Msg("message sent")
}

func (d *Dispatcher) fail(msg *entities.OutboundMessage, errText string) {
	now := time.Now()
	if err := d.repo.MarkFailed(context.Background(), msg.ID, errText, now); err != nil {
		d.logger.Error().Err(err).Uint("message_id", msg.ID).Msg("failed to mark message failed")
		return
	}

	msg.Status = entities.StatusFailed
	msg.ErrorMessage = errText
	msg.FailedAt = &now
	msg.RetryCount++

	d.metrics.RecordMessageFailed()
	d.publisher.PublishFailed(msg)

	d.logger.Warn().
		Uint("message_id", msg.ID).
		Str("error", errText).
		Msg("message delivery failed")
}
