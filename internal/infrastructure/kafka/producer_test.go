package kafka

import (
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/rs/zerolog"

	"github.com/HoceineEl/madrasa-messaging/internal/domain/dispatch/entities"
	"github.com/HoceineEl/madrasa-messaging/internal/infrastructure/metrics"
)

func newMockedProducer(t *testing.T) (*mocks.AsyncProducer, *Producer) {
	t.Helper()

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true

	mp := mocks.NewAsyncProducer(t, config)

	p := &Producer{
		producer:    mp,
		topicSent:   "messaging.message.sent",
		topicFailed: "messaging.message.failed",
		logger:      zerolog.Nop(),
		metrics:     metrics.GetDefaultMetrics(),
	}
	p.wg.Add(2)
	go p.handleSuccesses()
	go p.handleErrors()

	return mp, p
}

func TestProducer_PublishSent(t *testing.T) {
	mp, p := newMockedProducer(t)

	mp.ExpectInputWithCheckerFunctionAndSucceed(func(payload []byte) error {
		var event MessageEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return err
		}
		if event.MessageID != 11 || event.Status != "SENT" || event.ProviderMessageID != "prov-1" {
			t.Errorf("unexpected event payload: %+v", event)
		}
		return nil
	})

	p.PublishSent(&entities.OutboundMessage{
		ID:                11,
		UserID:            3,
		RecipientPhone:    "212612345678",
		MessageType:       entities.TypeReminder,
		Status:            entities.StatusSent,
		ProviderMessageID: "prov-1",
	})

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}

func TestProducer_PublishFailed(t *testing.T) {
	mp, p := newMockedProducer(t)

	mp.ExpectInputWithCheckerFunctionAndSucceed(func(payload []byte) error {
		var event MessageEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return err
		}
		if event.Status != "FAILED" || event.ErrorMessage != "timeout" || event.RetryCount != 1 {
			t.Errorf("unexpected event payload: %+v", event)
		}
		return nil
	})

	p.PublishFailed(&entities.OutboundMessage{
		ID:             12,
		UserID:         3,
		RecipientPhone: "212612345678",
		MessageType:    entities.TypeReminder,
		Status:         entities.StatusFailed,
		ErrorMessage:   "timeout",
		RetryCount:     1,
	})

	if err := p.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
}
