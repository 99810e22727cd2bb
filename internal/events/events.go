package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types published for orders.
const (
	TypeOrderCreated       = "OrderCreated"
	TypeOrderRejected      = "OrderRejected"
	TypeOrderStatusChanged = "OrderStatusChanged"
)

// Event is the envelope written to the event stream.
type Event struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	EventVersion  int             `json:"eventVersion"`
	OccurredAt    time.Time       `json:"occurredAt"`
	Producer      string          `json:"producer,omitempty"`
	CorrelationID string          `json:"correlationId,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// New builds a version 1 envelope around payload. correlationID is the order
// ID when one exists and is used as the partition key.
func New(eventType, correlationID string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}

	return Event{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// Publisher delivers events to downstream consumers.
type Publisher interface {
	// Publish enqueues an event. It does not wait for delivery.
	Publish(ctx context.Context, event Event) error

	// Close flushes pending events and releases resources.
	Close() error
}

// NopPublisher discards every event. It is used when no broker is configured.
type NopPublisher struct{}

// Publish discards the event.
func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Close does nothing.
func (NopPublisher) Close() error { return nil }
