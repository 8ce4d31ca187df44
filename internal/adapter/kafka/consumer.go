package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"social-ads/internal/config/configs"
	"social-ads/internal/core/domain"
	"social-ads/internal/core/port"
)

// messageReader is the subset of *kafka.Reader the consumer needs.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer feeds ad events from the ingestion topic into the metering use
// case. Offsets are committed only after an event is recorded or found to be
// unprocessable, so a crash replays at most the in-flight message and the
// event id makes the replay a no-op.
type Consumer struct {
	reader  messageReader
	events  port.EventUseCase
	logger  *slog.Logger
	backoff time.Duration
}

// NewConsumer joins the configured consumer group on the events topic.
func NewConsumer(cfg configs.Kafka, events port.EventUseCase, logger *slog.Logger) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka consumer requires at least one broker")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.EventsTopic,
		GroupID:        cfg.GroupID,
		MinBytes:       10e3,
		MaxBytes:       10e6,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: 0,
	})
	return &Consumer{reader: reader, events: events, logger: logger, backoff: cfg.RetryBackoff}, nil
}

// Run consumes until ctx is cancelled. Infrastructure failures are retried
// on the same message; malformed or rejected events are logged and skipped.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("event consumer started")
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.logger.Info("event consumer stopped")
				return nil
			}
			c.logger.Error("fetch message", slog.Any("error", err))
			if !c.sleep(ctx) {
				return nil
			}
			continue
		}

		if !c.process(ctx, msg) {
			return nil
		}
		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.logger.Error("commit message",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Any("error", err))
		}
	}
}

// process records one message, retrying transient failures. It returns
// false only when ctx ends first.
func (c *Consumer) process(ctx context.Context, msg kafka.Message) bool {
	logger := c.logger.With(slog.Int("partition", msg.Partition), slog.Int64("offset", msg.Offset))

	var event domain.AdEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		logger.Warn("skipping malformed event", slog.Any("error", err))
		return true
	}

	for {
		receipt, err := c.events.RecordEvent(ctx, event)
		switch {
		case err == nil:
			logger.Debug("event recorded",
				slog.String("event_id", receipt.Event.ID.String()),
				slog.Bool("billed", receipt.Billed),
				slog.Bool("duplicate", receipt.Duplicate))
			return true
		case unprocessable(err):
			logger.Warn("skipping rejected event",
				slog.String("event_id", event.ID.String()),
				slog.Any("error", err))
			return true
		}
		logger.Error("record event", slog.String("event_id", event.ID.String()), slog.Any("error", err))
		if !c.sleep(ctx) {
			return false
		}
	}
}

func (c *Consumer) sleep(ctx context.Context) bool {
	backoff := c.backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	t := time.NewTimer(backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// unprocessable reports errors that replaying the message cannot fix.
func unprocessable(err error) bool {
	return errors.Is(err, domain.ErrInvalidInput) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrDuplicateEvent)
}

// Close leaves the consumer group.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
