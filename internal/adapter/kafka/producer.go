package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"social-ads/internal/config/configs"
)

// messageWriter is the subset of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer writes JSON messages to Kafka. The topic is chosen per message.
type Producer struct {
	writer messageWriter
}

// NewProducer creates a producer for the configured brokers.
func NewProducer(cfg configs.Kafka) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka producer requires at least one broker")
	}
	return &Producer{writer: &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		BatchTimeout: cfg.BatchTimeout,
	}}, nil
}

// publish marshals payload and writes it under key, so messages sharing a
// key stay ordered within their partition.
func (p *Producer) publish(ctx context.Context, topic, key, kind string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   topic,
		Key:     []byte(key),
		Value:   value,
		Time:    time.Now().UTC(),
		Headers: []kafka.Header{{Key: "type", Value: []byte(kind)}},
	})
	if err != nil {
		return fmt.Errorf("write %s to %s: %w", kind, topic, err)
	}
	return nil
}

// Close flushes pending writes.
func (p *Producer) Close() error {
	return p.writer.Close()
}
