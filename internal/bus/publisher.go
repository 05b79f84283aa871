// Package bus publishes alert events to Kafka so external consumers
// (dashboards, notifiers) can react without polling the API.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Alekperov-Vitalii/Diplom/internal/domain"
)

// Publisher emits alert events.
type Publisher interface {
	PublishAlert(ctx context.Context, alert *domain.Alert) error
	Close() error
}

// KafkaPublisher writes one JSON message per alert, keyed by alert type
// so same-cause alerts land in one partition in order.
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 100 * time.Millisecond,
	}
	return &KafkaPublisher{
		writer: writer,
		logger: logger.With("component", "alert_publisher", "topic", topic),
	}
}

func (p *KafkaPublisher) PublishAlert(ctx context.Context, alert *domain.Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(alert.Type),
		Value: data,
		Time:  alert.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("publish alert: %w", err)
	}
	p.logger.Debug("alert published", "type", alert.Type, "severity", alert.Severity)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when Kafka is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishAlert(context.Context, *domain.Alert) error { return nil }
func (NoopPublisher) Close() error                                      { return nil }
