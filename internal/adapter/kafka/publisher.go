package kafka

import (
	"context"

	"social-ads/internal/core/domain"
)

// EventPublisher streams ad events to the ingestion topic. Events are keyed
// by campaign so one campaign's spend is metered in order by a single
// consumer.
type EventPublisher struct {
	producer *Producer
	topic    string
}

func NewEventPublisher(producer *Producer, topic string) *EventPublisher {
	return &EventPublisher{producer: producer, topic: topic}
}

func (p *EventPublisher) PublishEvent(ctx context.Context, e domain.AdEvent) error {
	return p.producer.publish(ctx, p.topic, e.CampaignID.String(), string(e.EventType), e)
}
