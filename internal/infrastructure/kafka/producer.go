package kafka

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/entities"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
)

// MessageEvent is the payload published for every terminal ledger write.
// Downstream consumers (reporting, the admin UI's activity feed) key on
// message_id for deduplication.
type MessageEvent struct {
	MessageID         uint      `json:"message_id"`
	BatchID           string    `json:"batch_id,omitempty"`
	UserID            uint      `json:"user_id"`
	RecipientPhone    string    `json:"recipient_phone"`
	MessageType       string    `json:"message_type"`
	Status            string    `json:"status"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	ErrorMessage      string    `json:"error_message,omitempty"`
	RetryCount        int       `json:"retry_count"`
	OccurredAt        time.Time `json:"occurred_at"`
}

// ProducerConfig holds configuration for the Kafka producer
type ProducerConfig struct {
	Brokers     []string
	TopicSent   string
	TopicFailed string
	Logger      zerolog.Logger
	Metrics     *metrics.Metrics
}

// Producer publishes message-outcome events using an asynchronous producer
type Producer struct {
	producer    sarama.AsyncProducer
	topicSent   string
	topicFailed string
	logger      zerolog.Logger
	metrics     *metrics.Metrics
	wg          sync.WaitGroup
	closeOnce   sync.Once
	closeErr    error
}

// ValidateBrokers checks if Kafka brokers are accessible
func ValidateBrokers(brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no brokers specified")
	}

	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0

	client, err := sarama.NewClient(brokers, config)
	if err != nil {
		return fmt.Errorf("failed to connect to Kafka brokers: %w", err)
	}
	defer client.Close()

	if err := client.RefreshMetadata(); err != nil {
		return fmt.Errorf("failed to refresh metadata from Kafka: %w", err)
	}

	return nil
}

// NewProducer creates an asynchronous Kafka producer. Idempotent mode gives
// at-least-once delivery with broker-side deduplication; events for the same
// user hash to the same partition so the activity feed stays ordered per user.
func NewProducer(cfg ProducerConfig) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("no kafka brokers specified")
	}
	if cfg.TopicSent == "" || cfg.TopicFailed == "" {
		return nil, fmt.Errorf("kafka topics are required")
	}

	config := sarama.NewConfig()
	config.Version = sarama.V2_6_0_0
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Producer.Partitioner = sarama.NewHashPartitioner
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create async producer: %w", err)
	}

	p := &Producer{
		producer:    producer,
		topicSent:   cfg.TopicSent,
		topicFailed: cfg.TopicFailed,
		logger:      cfg.Logger.With().Str("component", "kafka_producer").Logger(),
		metrics:     cfg.Metrics,
	}

	p.wg.Add(2)
	go p.handleSuccesses()
	go p.handleErrors()

	return p, nil
}

// PublishSent emits an event for a confirmed send
func (p *Producer) PublishSent(msg *entities.OutboundMessage) {
	p.publish(p.topicSent, msg)
}

// PublishFailed emits an event for a failed delivery
func (p *Producer) PublishFailed(msg *entities.OutboundMessage) {
	p.publish(p.topicFailed, msg)
}

func (p *Producer) publish(topic string, msg *entities.OutboundMessage) {
	event := MessageEvent{
		MessageID:         msg.ID,
		BatchID:           msg.BatchID,
		UserID:            msg.UserID,
		RecipientPhone:    msg.RecipientPhone,
		MessageType:       string(msg.MessageType),
		Status:            string(msg.Status),
		ProviderMessageID: msg.ProviderMessageID,
		ErrorMessage:      msg.ErrorMessage,
		RetryCount:        msg.RetryCount,
		OccurredAt:        time.Now(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Uint("message_id", msg.ID).Msg("failed to marshal event")
		return
	}

	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(fmt.Sprintf("%d", msg.UserID)),
		Value: sarama.ByteEncoder(payload),
	}
}

func (p *Producer) handleSuccesses() {
	defer p.wg.Done()
	for pm := range p.producer.Successes() {
		p.metrics.RecordEventPublished(pm.Topic, false)
	}
}

func (p *Producer) handleErrors() {
	defer p.wg.Done()
	for perr := range p.producer.Errors() {
		p.metrics.RecordEventPublished(perr.Msg.Topic, true)
		p.logger.Error().Err(perr.Err).Str("topic", perr.Msg.Topic).Msg("failed to publish event")
	}
}

// Close flushes pending events and shuts the producer down
func (p *Producer) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.producer.Close()
		p.wg.Wait()
	})
	return p.closeErr
}
