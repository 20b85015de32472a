package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the messaging service
type Metrics struct {
	// Dispatch metrics
	MessagesQueued     prometheus.Counter
	MessagesSent       prometheus.Counter
	MessagesFailed     prometheus.Counter
	RecipientsSkipped  prometheus.Counter
	SendDuration       prometheus.Histogram
	DispatchQueueDepth prometheus.Gauge

	// Session metrics
	SessionTransitions *prometheus.CounterVec

	// Provider metrics
	ProviderRequests      *prometheus.CounterVec
	ProviderRequestErrors *prometheus.CounterVec

	// Reconciliation metrics
	Reconciliations   prometheus.Counter
	ReconciledMatches prometheus.Counter

	// Event metrics
	EventsPublished    *prometheus.CounterVec
	EventPublishErrors *prometheus.CounterVec
}

var (
	// DefaultMetrics is the default metrics instance
	DefaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the singleton metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		DefaultMetrics = NewMetrics()
	})
	return DefaultMetrics
}

// NewMetrics creates a new Metrics instance with all counters and gauges
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesQueued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "messaging_messages_queued_total",
			Help: "Total number of messages enqueued",
		}),
		MessagesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "messaging_messages_sent_total",
			Help: "Total number of messages confirmed sent by the provider",
		}),
		MessagesFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "messaging_messages_failed_total",
			Help: "Total number of message deliveries that failed",
		}),
		RecipientsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "messaging_recipients_skipped_total",
			Help: "Total number of recipients skipped for unnormalizable phone numbers",
		}),
		SendDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "messaging_send_duration_seconds",
			Help:    "Duration from job pickup to confirmed send, including stagger delay",
			Buckets: prometheus.DefBuckets,
		}),
		DispatchQueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "messaging_dispatch_queue_depth",
			Help: "Current number of jobs waiting in the dispatch queue",
		}),
		SessionTransitions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messaging_session_transitions_total",
				Help: "Total number of session status transitions",
			},
			[]string{"to"},
		),
		ProviderRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messaging_provider_requests_total",
				Help: "Total number of chat provider API requests",
			},
			[]string{"operation"},
		),
		ProviderRequestErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messaging_provider_request_errors_total",
				Help: "Total number of failed chat provider API requests",
			},
			[]string{"operation"},
		),
		Reconciliations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "messaging_reconciliations_total",
			Help: "Total number of attendance reconciliation passes",
		}),
		ReconciledMatches: promauto.NewCounter(prometheus.CounterOpts{
			Name: "messaging_reconciled_matches_total",
			Help: "Total number of roster members auto-matched to chat senders",
		}),
		EventsPublished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messaging_events_published_total",
				Help: "Total number of message-outcome events published to Kafka",
			},
			[]string{"topic"},
		),
		EventPublishErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "messaging_event_publish_errors_total",
				Help: "Total number of Kafka publish failures",
			},
			[]string{"topic"},
		),
	}
}

// RecordMessageQueued increments the queued counter
func (m *Metrics) RecordMessageQueued() {
	m.MessagesQueued.Inc()
}

// RecordMessageSent records a confirmed send and its duration
func (m *Metrics) RecordMessageSent(durationSeconds float64) {
	m.MessagesSent.Inc()
	m.SendDuration.Observe(durationSeconds)
}

// RecordMessageFailed increments the failure counter
func (m *Metrics) RecordMessageFailed() {
	m.MessagesFailed.Inc()
}

// RecordRecipientSkipped increments the skipped-recipient counter
func (m *Metrics) RecordRecipientSkipped() {
	m.RecipientsSkipped.Inc()
}

// SetDispatchQueueDepth updates the queue depth gauge
func (m *Metrics) SetDispatchQueueDepth(depth int) {
	m.DispatchQueueDepth.Set(float64(depth))
}

// RecordSessionTransition counts a status transition
func (m *Metrics) RecordSessionTransition(to string) {
	m.SessionTransitions.WithLabelValues(to).Inc()
}

// RecordProviderRequest counts a provider API call
func (m *Metrics) RecordProviderRequest(operation string, failed bool) {
	m.ProviderRequests.WithLabelValues(operation).Inc()
	if failed {
		m.ProviderRequestErrors.WithLabelValues(operation).Inc()
	}
}

// RecordReconciliation counts a reconciliation pass and its matches
func (m *Metrics) RecordReconciliation(matches int) {
	m.Reconciliations.Inc()
	m.ReconciledMatches.Add(float64(matches))
}

// RecordEventPublished counts a published event
func (m *Metrics) RecordEventPublished(topic string, failed bool) {
	if failed {
		m.EventPublishErrors.WithLabelValues(topic).Inc()
		return
	}
	m.EventsPublished.WithLabelValues(topic).Inc()
}
