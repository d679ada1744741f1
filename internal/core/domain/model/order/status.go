package order

import (
	"fmt"

	"logistics/internal/pkg/errs"
)

// Status represents the lifecycle state of an order.
//
// State transitions:
//
//	Pending ──> Confirmed ──> Preparing ──> InTransit ──> Delivered
//	   │            │             │             │
//	   └────────────┴─────────────┴─────────────┴──────> Cancelled
//
// Moves go forward only (skipping steps is allowed). Cancelled is reachable from
// every non-terminal state. Delivered and Cancelled are terminal. Requesting the
// current status again is a no-op.
type Status int

const (
	// Unknown represents an invalid or undefined status. In search criteria it
	// means "any status".
	Unknown Status = iota

	// Pending is the initial status of a new order.
	Pending

	// Confirmed means the order was accepted.
	Confirmed

	// Preparing means the shipment is being assembled.
	Preparing

	// InTransit means the shipment left the warehouse.
	InTransit

	// Delivered is terminal: the shipment reached the customer.
	Delivered

	// Cancelled is terminal: the order will not be fulfilled.
	Cancelled
)

func getStatusCodes() map[Status]string {
	return map[Status]string{
		Pending:   "PENDING",
		Confirmed: "CONFIRMED",
		Preparing: "PREPARING",
		InTransit: "IN_TRANSIT",
		Delivered: "DELIVERED",
		Cancelled: "CANCELLED",
	}
}

// Statuses returns the valid statuses in workflow order.
func Statuses() []Status {
	return []Status{Pending, Confirmed, Preparing, InTransit, Delivered, Cancelled}
}

// Validate checks if the Status value is one of the six workflow states.
func (s Status) Validate() error {
	if _, ok := getStatusCodes()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the stored code ("PENDING", ...) or "UNKNOWN".
func (s Status) String() string {
	if code, ok := getStatusCodes()[s]; ok {
		return code
	}
	return "UNKNOWN"
}

// ParseStatus maps a stored code back to a Status.
func ParseStatus(code string) (Status, error) {
	for s, c := range getStatusCodes() {
		if c == code {
			return s, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", code))
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Cancelled
}

// CanBeModified is true for valid, non-terminal statuses.
func (s Status) CanBeModified() bool {
	return s.Validate() == nil && !s.IsTerminal()
}

// CanBeDeleted is true only for Pending and Cancelled orders.
func (s Status) CanBeDeleted() bool {
	return s == Pending || s == Cancelled
}

// TransitionTo returns the status reached by moving from s to next.
//
// Returns:
//   - (s, nil) when next equals s
//   - (next, nil) for forward moves and for cancellation of a non-terminal order
//   - (0, error) when s is terminal, the move goes backward, or next is invalid
func (s Status) TransitionTo(next Status) (Status, error) {
	if err := next.Validate(); err != nil {
		return 0, err
	}
	if next == s {
		return s, nil
	}
	if err := s.Validate(); err != nil {
		return 0, err
	}
	if s.IsTerminal() {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is a terminal status, cannot move to %s", s, next),
		)
	}
	if next == Cancelled || next > s {
		return next, nil
	}
	return 0, errs.NewValueIsInvalidErrorWithCause(
		"status is invalid",
		fmt.Errorf("cannot move back from %s to %s", s, next),
	)
}

// Cancel transitions the status to Cancelled.
//
// Invalid transitions:
//   - Delivered -> Cancelled (a delivered order cannot be cancelled)
//   - Cancelled -> Cancelled (already cancelled)
func (s Status) Cancel() (Status, error) {
	switch s {
	case Delivered:
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("a %s order cannot be cancelled", s),
		)
	case Cancelled:
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("order is already %s", s),
		)
	default:
		return s.TransitionTo(Cancelled)
	}
}
