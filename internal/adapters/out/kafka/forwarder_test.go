package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	forwarder "logistics/internal/adapters/out/kafka"
	"logistics/internal/core/application/events"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	fail     error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail != nil {
		return w.fail
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var at = time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

func TestMessage(t *testing.T) {
	event := events.New(events.OrderStatusChanged, events.EntityOrder, 42, at)
	event.Status = "DELIVERED"

	msg, err := forwarder.Message(event)

	require.NoError(t, err)
	assert.Equal(t, "order:42", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "order.status_changed", string(msg.Headers[0].Value))

	var decoded events.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, "DELIVERED", decoded.Status)
}

func TestForwarder(t *testing.T) {
	t.Run("should write every published event in order", func(t *testing.T) {
		writer := &fakeWriter{}
		f, err := forwarder.NewForwarder(writer, 8, logger())
		require.NoError(t, err)

		bus := events.NewBus()
		bus.Subscribe(f.Handle)
		bus.Publish(t.Context(), events.New(events.CustomerCreated, events.EntityCustomer, 1, at))
		bus.Publish(t.Context(), events.New(events.OrderCreated, events.EntityOrder, 2, at))

		require.NoError(t, f.Close())

		assert.True(t, writer.closed)
		require.Len(t, writer.messages, 2)
		assert.Equal(t, "customer:1", string(writer.messages[0].Key))
		assert.Equal(t, "order:2", string(writer.messages[1].Key))
	})

	t.Run("should keep going after a write failure", func(t *testing.T) {
		writer := &fakeWriter{fail: errors.New("broker down")}
		f, err := forwarder.NewForwarder(writer, 0, logger())
		require.NoError(t, err)

		f.Handle(t.Context(), events.New(events.OrderDeleted, events.EntityOrder, 3, at))

		require.NoError(t, f.Close())
		assert.Empty(t, writer.messages)
	})

	t.Run("should ignore events after close", func(t *testing.T) {
		writer := &fakeWriter{}
		f, err := forwarder.NewForwarder(writer, 1, logger())
		require.NoError(t, err)
		require.NoError(t, f.Close())
		require.NoError(t, f.Close())

		f.Handle(t.Context(), events.New(events.OrderDeleted, events.EntityOrder, 3, at))

		assert.Empty(t, writer.messages)
	})

	t.Run("should require a writer", func(t *testing.T) {
		_, err := forwarder.NewForwarder(nil, 1, logger())
		assert.Error(t, err)
	})
}
