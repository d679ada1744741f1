// Package kafka forwards change notifications to a Kafka topic. Events are
// queued by the bus handler and written by a single goroutine, so publishing
// never waits on the broker.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"logistics/internal/core/application/events"
	"logistics/internal/pkg/errs"
	"logistics/internal/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

const defaultBuffer = 256

// ErrQueueFull is recorded when an event is dropped because the writer fell behind.
var ErrQueueFull = errors.New("kafka forward queue is full")

// MessageWriter is the part of *kafka.Writer the forwarder uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Forwarder struct {
	writer MessageWriter
	logger *slog.Logger
	inbox  chan events.Event
	done   chan struct{}

	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

// NewWriter builds the topic writer used in production.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
}

// NewForwarder starts the write loop. buffer <= 0 selects the default size.
func NewForwarder(writer MessageWriter, buffer int, logger *slog.Logger) (*Forwarder, error) {
	if writer == nil {
		return nil, errs.NewValueIsRequiredError("writer")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	f := &Forwarder{
		writer: writer,
		logger: logger.With("component", "kafka-forwarder"),
		inbox:  make(chan events.Event, buffer),
		done:   make(chan struct{}),
	}
	go f.loop()
	return f, nil
}

// Handle queues event for delivery. It has the events.Handler signature and
// drops the event when the queue is full or the forwarder is closed.
func (f *Forwarder) Handle(ctx context.Context, event events.Event) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return
	}
	select {
	case f.inbox <- event:
	default:
		metrics.ObserveEventForwarded(ErrQueueFull)
		f.logger.WarnContext(ctx, "event dropped", "kind", event.Kind, "id", event.ID)
	}
}

func (f *Forwarder) loop() {
	defer close(f.done)

	for event := range f.inbox {
		err := f.write(event)
		metrics.ObserveEventForwarded(err)
		if err != nil {
			f.logger.Error("failed to forward event", "kind", event.Kind, "id", event.ID, "error", err)
		}
	}
}

func (f *Forwarder) write(event events.Event) error {
	msg, err := Message(event)
	if err != nil {
		return err
	}
	return f.writer.WriteMessages(context.Background(), msg)
}

// Close stops accepting events, flushes the queue and closes the writer.
func (f *Forwarder) Close() error {
	var err error
	f.closeOnce.Do(func() {
		f.mu.Lock()
		f.closed = true
		close(f.inbox)
		f.mu.Unlock()

		<-f.done
		err = f.writer.Close()
	})
	return err
}

// Message encodes event as JSON, keyed by entity and id so that the changes
// of one record stay in one partition.
func Message(event events.Event) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode event %s: %w", event.ID, err)
	}

	return kafka.Message{
		Key:   []byte(event.Entity + ":" + strconv.FormatInt(event.EntityID, 10)),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(event.Kind)},
		},
	}, nil
}
