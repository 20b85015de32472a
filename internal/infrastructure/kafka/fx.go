package kafka

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/HoceineEl/madrasa-messaging/config"
	dispatchdeps "github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/deps"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
)

// Module provides Kafka components for fx DI
var Module = fx.Module("kafka",
	fx.Provide(NewProducerFx),
)

// NewProducerFx creates the Kafka producer with fx lifecycle management
func NewProducerFx(
	lc fx.Lifecycle,
	cfg *config.KafkaConfig,
	logger zerolog.Logger,
	m *metrics.Metrics,
) (dispatchdeps.EventPublisher, error) {
	if err := ValidateBrokers(cfg.Brokers); err != nil {
		return nil, err
	}

	producer, err := NewProducer(ProducerConfig{
		Brokers:     cfg.Brokers,
		TopicSent:   cfg.TopicMessageSent,
		TopicFailed: cfg.TopicMessageFailed,
		Logger:      logger,
		Metrics:     m,
	})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return producer.Close()
		},
	})

	return producer, nil
}
