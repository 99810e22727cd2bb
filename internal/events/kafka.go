package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("event publisher closed")

// messageWriter is the subset of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher buffers events in an inbox drained by a single goroutine, so
// request handlers never wait on the broker.
type KafkaPublisher struct {
	writer   messageWriter
	producer string
	inbox    chan kafka.Message
	done     chan struct{}
	logger   zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewKafkaPublisher creates a publisher writing to topic on the given brokers.
// Messages are keyed by order ID so all events of one order stay ordered.
func NewKafkaPublisher(brokers []string, topic string, bufferSize int, producer string, logger zerolog.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}

	logger.Info().
		Strs("brokers", brokers).
		Str("topic", topic).
		Msg("kafka publisher initialised")

	return newKafkaPublisher(writer, bufferSize, producer, logger)
}

func newKafkaPublisher(writer messageWriter, bufferSize int, producer string, logger zerolog.Logger) *KafkaPublisher {
	p := &KafkaPublisher{
		writer:   writer,
		producer: producer,
		inbox:    make(chan kafka.Message, bufferSize),
		done:     make(chan struct{}),
		logger:   logger.With().Str("component", "kafka-publisher").Logger(),
	}
	go p.loop()
	return p
}

func (p *KafkaPublisher) loop() {
	defer close(p.done)

	for msg := range p.inbox {
		if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
			p.logger.Error().
				Err(err).
				Str("key", string(msg.Key)).
				Msg("failed to write event")
		}
	}
}

// Publish enqueues the event, blocking only while the inbox is full.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	event.Producer = p.producer

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.CorrelationID),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "x-event-type", Value: []byte(event.EventType)},
			{Key: "x-event-version", Value: []byte(strconv.Itoa(event.EventVersion))},
		},
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}

	select {
	case p.inbox <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events, flushes the inbox and closes the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.inbox)
	p.mu.Unlock()

	<-p.done

	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer: %w", err)
	}

	p.logger.Info().Msg("kafka publisher closed")
	return nil
}
