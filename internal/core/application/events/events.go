// Package events carries change notifications from the controllers to their
// subscribers: the HTTP cache, metrics, the Kafka forwarder and tests.
//
// Delivery is synchronous and in subscription order. A handler runs on the
// publishing goroutine, so it must not call back into the controller that
// published the event.
package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Kind identifies what happened.
type Kind string

const (
	CustomerCreated    Kind = "customer.created"
	CustomerUpdated    Kind = "customer.updated"
	CustomerDeleted    Kind = "customer.deleted"
	OrderCreated       Kind = "order.created"
	OrderUpdated       Kind = "order.updated"
	OrderDeleted       Kind = "order.deleted"
	OrderStatusChanged Kind = "order.status_changed"
	Error              Kind = "error"
)

// Entity names used in events.
const (
	EntityCustomer = "customer"
	EntityOrder    = "order"
)

// Event is a single change notification. Status is set for order status
// changes; Message carries the failure text for Error events.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Kind       Kind      `json:"kind"`
	Entity     string    `json:"entity"`
	EntityID   int64     `json:"entity_id,omitempty"`
	Status     string    `json:"status,omitempty"`
	Message    string    `json:"message,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// New stamps an event with a fresh id and the given time.
func New(kind Kind, entity string, entityID int64, at time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Kind:       kind,
		Entity:     entity,
		EntityID:   entityID,
		OccurredAt: at,
	}
}

// Failure builds an Error event for a failed operation on entity.
func Failure(entity string, entityID int64, message string, at time.Time) Event {
	e := New(Error, entity, entityID, at)
	e.Message = message
	return e
}

// Handler receives published events.
type Handler func(ctx context.Context, event Event)

// Bus is a synchronous publish/subscribe list. The zero value is ready to use.
type Bus struct {
	mu       sync.RWMutex
	nextID   int
	handlers map[int]Handler
	order    []int
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers handler and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (b *Bus) Subscribe(handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers == nil {
		b.handlers = make(map[int]Handler)
	}
	id := b.nextID
	b.nextID++
	b.handlers[id] = handler
	b.order = append(b.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.handlers, id)
			for i, v := range b.order {
				if v == id {
					b.order = append(b.order[:i], b.order[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers event to every current subscriber in subscription order.
// The subscriber list is snapshotted first, so handlers may subscribe or
// unsubscribe without deadlocking.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.order))
	for _, id := range b.order {
		handlers = append(handlers, b.handlers[id])
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(ctx, event)
	}
}

// Len reports the number of subscribers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.order)
}
