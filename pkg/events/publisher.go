package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"roomly/pkg/model"
)

// Reservation lifecycle event types, keyed by room id so all events for a
// room land on one partition in order.
const (
	TypeAdmitted    = "reservation.admitted"
	TypeRescheduled = "reservation.rescheduled"
	TypeConfirmed   = "reservation.confirmed"
	TypeCancelled   = "reservation.cancelled"
	TypeCompleted   = "reservation.completed"
	TypeRemoved     = "reservation.removed"
)

const (
	headerEventID       = "event-id"
	headerEventType     = "event-type"
	headerSchemaVersion = "schema-version"
	headerSource        = "source"

	schemaVersion = "1"
	source        = "reservations"
)

type Event struct {
	ID          string             `json:"id"`
	Type        string             `json:"type"`
	OccurredAt  time.Time          `json:"occurred_at"`
	Reservation *model.Reservation `json:"reservation"`
}

// Publisher emits reservation lifecycle events. Publishing is best-effort
// from the caller's point of view: an admission is durable once committed,
// whether or not its event made it out.
type Publisher interface {
	Publish(ctx context.Context, eventType string, r *model.Reservation) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{}, // hash by key keeps per-room ordering
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: cfg.BatchTimeout,
	}

	return &KafkaPublisher{writer: writer}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, r *model.Reservation) error {
	event := Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		OccurredAt:  time.Now().UTC(),
		Reservation: r,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(r.RoomID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: headerEventID, Value: []byte(event.ID)},
			{Key: headerEventType, Value: []byte(eventType)},
			{Key: headerSchemaVersion, Value: []byte(schemaVersion)},
			{Key: headerSource, Value: []byte(source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher is used when no brokers are configured, e.g. local
// development and tests.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, *model.Reservation) error { return nil }
func (NoopPublisher) Close() error                                              { return nil }
