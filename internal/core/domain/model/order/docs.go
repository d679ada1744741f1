// Package order provides domain entities and business logic for order management
// in the logistics core. It implements the Order aggregate root with lifecycle
// management and state transitions.
//
// The package includes:
//   - Order: the aggregate root that manages order identity, delivery details and lifecycle
//   - Status: a state machine that enforces valid order status transitions
//   - Priority: the closed, ordered set of urgencies
//   - SearchCriteria and Sort: filter and ordering rules shared by repositories and controllers
//
// Key business rules:
//   - Orders reference an existing customer and carry non-negative weight, volume and price
//   - Delivery dates are never before the order date
//   - Status follows Pending -> Confirmed -> Preparing -> InTransit -> Delivered,
//     with Cancelled reachable from any non-terminal state
//   - Delivered and Cancelled are terminal; a delivered order cannot be cancelled
//   - Reaching Delivered stamps the actual delivery date when it is missing
//   - Only non-terminal orders can be modified; only Pending or Cancelled orders can be deleted
//
// The package follows Domain-Driven Design principles, providing rich domain
// behavior, encapsulation, and validation to ensure business rules are enforced.
package order
