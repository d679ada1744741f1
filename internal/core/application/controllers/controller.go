// Package controllers contains the application operations on customers and
// orders. Controllers validate input, enforce the business gates that span
// more than one entity, keep an invalidate-on-write cache of the full lists
// and publish a change notification for every write and every failure.
//
// Every exported operation recovers panics at the controller boundary and
// turns them into *errs.InternalError. No transaction spans more than one
// repository write.
package controllers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"logistics/internal/core/application/events"
	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/pkg/errs"
	"logistics/internal/pkg/metrics"
)

// Publisher receives change notifications. *events.Bus implements it.
type Publisher interface {
	Publish(ctx context.Context, event events.Event)
}

// Clock returns the current time. Controllers derive "today" from it.
type Clock func() time.Time

// base carries what both controllers share: publisher, logger, clock and the
// operation wrapper.
type base struct {
	name      string
	entity    string
	publisher Publisher
	logger    *slog.Logger
	clock     Clock
}

func newBase(name, entity string, publisher Publisher, logger *slog.Logger, clock Clock) base {
	if clock == nil {
		clock = time.Now
	}
	return base{
		name:      name,
		entity:    entity,
		publisher: publisher,
		logger:    logger.With("component", name),
		clock:     clock,
	}
}

func (b base) today() kernel.Date {
	return kernel.DateOf(b.clock())
}

func (b base) publish(ctx context.Context, kind events.Kind, entityID int64, status, message string) {
	e := events.New(kind, b.entity, entityID, b.clock())
	e.Status = status
	e.Message = message
	b.publisher.Publish(ctx, e)
	metrics.ObserveEventPublished(string(kind))
}

// command runs a write operation. Any failure is logged and published as an
// Error event.
func command[T any](ctx context.Context, b base, operation string, entityID int64, fn func() (T, error)) (T, error) {
	return invoke(ctx, b, operation, entityID, true, fn)
}

// query runs a read operation. Failures are published too, except plain
// not-found answers, which are a normal outcome for a lookup.
func query[T any](ctx context.Context, b base, operation string, fn func() (T, error)) (T, error) {
	return invoke(ctx, b, operation, 0, false, fn)
}

func invoke[T any](
	ctx context.Context,
	b base,
	operation string,
	entityID int64,
	isCommand bool,
	fn func() (T, error),
) (result T, err error) {
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = errs.NewInternalError(operation, fmt.Errorf("panic: %v", r))
		}

		metrics.ObserveOperation(b.name, operation, err, time.Since(started))
		if err == nil {
			return
		}
		if !isCommand && errors.Is(err, errs.ErrObjectNotFound) {
			return
		}

		b.logger.ErrorContext(ctx, "operation failed", "operation", operation, "id", entityID, "error", err)
		b.publisher.Publish(ctx, events.Failure(b.entity, entityID, fmt.Sprintf("%s: %v", operation, err), b.clock()))
		metrics.ObserveEventPublished(string(events.Error))
	}()

	return fn()
}
