// Package kafka publishes console activity to a Kafka topic through
// segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/config"
)

// Source is stamped on every message so consumers can tell console events
// apart from other producers on a shared topic.
const Source = "edi-console"

// Event is one message. Key selects the partition, Type is copied into the
// "event-type" header and Value is JSON-encoded.
type Event struct {
	Key   string
	Type  string
	Value any
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes events synchronously, one message per Publish.
type Producer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewProducer creates a Producer for cfg.Topic.
func NewProducer(cfg config.KafkaConfig) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    50,
		BatchTimeout: 50 * time.Millisecond,
		MaxAttempts:  3,
		RequiredAcks: kafka.RequireOne,
	}
	return newProducer(w, cfg.Topic)
}

func newProducer(w messageWriter, topic string) *Producer {
	return &Producer{
		writer: w,
		logger: slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

func encode(event Event) (kafka.Message, error) {
	value, err := json.Marshal(event.Value)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshaling %s event: %w", event.Type, err)
	}
	headers := []kafka.Header{{Key: "source", Value: []byte(Source)}}
	if event.Type != "" {
		headers = append(headers, kafka.Header{Key: "event-type", Value: []byte(event.Type)})
	}
	return kafka.Message{
		Key:     []byte(event.Key),
		Value:   value,
		Headers: headers,
	}, nil
}

// Publish encodes event and blocks until the writer acknowledges it.
func (p *Producer) Publish(ctx context.Context, event Event) error {
	msg, err := encode(event)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("publish failed", "type", event.Type, "key", event.Key, "error", err)
		return fmt.Errorf("publishing %s event: %w", event.Type, err)
	}
	p.logger.Debug("event published", "type", event.Type, "bytes", len(msg.Value))
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
