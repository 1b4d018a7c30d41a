// Package events publishes booking lifecycle events to an audit stream.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Header keys attached to every message.
const (
	HeaderEventID   = "event-id"
	HeaderEventType = "event-type"
	HeaderSource    = "source"

	source = "room-booking-backend"
)

var ErrNoBrokers = errors.New("at least one broker is required")

// Event is one lifecycle fact. Key is the partition key; events sharing a key keep their order.
type Event struct {
	ID         string
	Type       string
	Key        string
	OccurredAt time.Time
	Payload    any
}

// New builds an event with a fresh id stamped at the current time.
func New(eventType, key string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events to the audit stream.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON messages to a single topic.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher writing to topic on the given brokers.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	if topic == "" {
		return nil, fmt.Errorf("topic cannot be empty")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{}, // same room, same partition
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
	}
	return &KafkaPublisher{writer: writer}, nil
}

type envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	value, err := json.Marshal(envelope{
		ID:         e.ID,
		Type:       e.Type,
		OccurredAt: e.OccurredAt,
		Payload:    e.Payload,
	})
	if err != nil {
		return fmt.Errorf("encode event %s failed: %w", e.Type, err)
	}

	msg := kafka.Message{
		Key:   []byte(e.Key),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: HeaderEventID, Value: []byte(e.ID)},
			{Key: HeaderEventType, Value: []byte(e.Type)},
			{Key: HeaderSource, Value: []byte(source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish event %s failed: %w", e.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
