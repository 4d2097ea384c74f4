package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/worklinkgh/tasker-onboarding/internal/application/service"
	"github.com/worklinkgh/tasker-onboarding/internal/config"
	"github.com/worklinkgh/tasker-onboarding/internal/domain/onboarding"
)

const TopicOnboardingEvents = "onboarding.events"

const (
	EventTypeSubmitted     = "onboarding.submitted"
	EventTypeMediaUploaded = "onboarding.media.uploaded"
)

type OnboardingEventPayload struct {
	EventType  string    `json:"event_type"`
	WorkerID   uuid.UUID `json:"worker_id"`
	Purpose    string    `json:"purpose,omitempty"`
	MediaURL   string    `json:"media_url,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// KafkaProducerClient publishes onboarding lifecycle events for downstream
// consumers (vetting queue, analytics). Publishing is best-effort; callers
// log failures and move on.
type KafkaProducerClient struct {
	writer *kafka.Writer
}

var _ service.EventPublisher = (*KafkaProducerClient)(nil)

func NewKafkaProducerClient(cfg config.Config) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    TopicOnboardingEvents,
		Balancer: &kafka.LeastBytes{},
	}

	return &KafkaProducerClient{writer: writer}, nil
}

func (c *KafkaProducerClient) PublishSubmitted(ctx context.Context, workerID uuid.UUID) error {
	return c.publish(ctx, OnboardingEventPayload{
		EventType:  EventTypeSubmitted,
		WorkerID:   workerID,
		OccurredAt: time.Now().UTC(),
	})
}

func (c *KafkaProducerClient) PublishMediaUploaded(ctx context.Context, workerID uuid.UUID, purpose onboarding.Purpose, url string) error {
	return c.publish(ctx, OnboardingEventPayload{
		EventType:  EventTypeMediaUploaded,
		WorkerID:   workerID,
		Purpose:    string(purpose),
		MediaURL:   url,
		OccurredAt: time.Now().UTC(),
	})
}

func (c *KafkaProducerClient) publish(ctx context.Context, payload OnboardingEventPayload) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal onboarding event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(payload.WorkerID.String()),
		Value: value,
	}
	if err := c.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write onboarding event: %w", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.writer != nil {
		c.writer.Close()
	}
}
