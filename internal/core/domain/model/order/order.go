package order

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/validation"
	"logistics/internal/pkg/errs"
	"logistics/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// UnsavedID marks an order that has not been persisted yet.
const UnsavedID int64 = -1

// NoDays is returned by the day-count helpers when a date is not set.
const NoDays = -1

// NumberFormat renders a sequence value as an order number, e.g. CMD001000.
const NumberFormat = "CMD%06d"

// CancellationPrefix starts the line appended to the comments on cancellation.
const CancellationPrefix = "CANCELLED: "

const (
	addressMaxLength = 500
	cityMaxLength    = 100
)

var (
	// ErrOrderIsNotConstructed is returned when an Order instance was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder or RestoreOrder constructor")
)

// Details groups the mutable descriptive fields of an order.
type Details struct {
	RequestedDeliveryAt kernel.Date
	DeliveryAddress     string
	DeliveryCity        string
	DeliveryPostalCode  string
	Priority            Priority
	WeightTotal         float64
	VolumeTotal         float64
	PriceTotal          decimal.Decimal
	Comments            string
}

// ChangeListener is notified after a mutation was accepted.
type ChangeListener func(o *Order, field string)

// Order represents a shipment placed by a customer. It is the aggregate root
// that manages the order lifecycle from creation to delivery or cancellation.
//
// Order follows these invariants:
//   - It references a customer id greater than 0
//   - The order number is assigned once by storage and never changes
//   - The order date is set at creation and never changes
//   - Requested and actual delivery dates, when set, are not before the order date
//   - Weight, volume and price totals are non-negative
//   - Status and priority are closed enumerations
//
// The Order struct uses private fields to ensure encapsulation and maintains
// its invariants through validated methods.
type Order struct {
	id                  int64
	number              string
	customerID          int64
	orderedAt           kernel.Date
	requestedDeliveryAt kernel.Date
	deliveredAt         kernel.Date
	deliveryAddress     string
	deliveryCity        string
	deliveryPostalCode  string
	status              Status
	priority            Priority
	weightTotal         float64
	volumeTotal         float64
	priceTotal          decimal.Decimal
	comments            string

	listeners []ChangeListener
	guard     guard.ConstructorGuard
}

// NewOrder creates an unsaved Pending order for customerID placed on orderedAt.
// The order number is left empty until storage assigns one. A zero priority
// defaults to Normal.
//
// Example:
//
//	o, err := order.NewOrder(customerID, today, order.Details{
//	    RequestedDeliveryAt: today.AddDays(3),
//	    DeliveryAddress: "123 Rue de la Paix", DeliveryCity: "Paris", DeliveryPostalCode: "75001",
//	    Priority: order.Normal, WeightTotal: 2.5, VolumeTotal: 0.1,
//	    PriceTotal: decimal.RequireFromString("89.99"),
//	})
func NewOrder(customerID int64, orderedAt kernel.Date, details Details) (*Order, error) {
	o := &Order{
		id:     UnsavedID,
		status: Pending,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setOrderedAt(orderedAt),
		o.SetCustomerID(customerID),
	); err != nil {
		return nil, err
	}
	if details.Priority == UnknownPriority {
		details.Priority = Normal
	}
	if err := o.setDetails(details); err != nil {
		return nil, err
	}

	return o, nil
}

// RestoreOrder rebuilds a persisted order. Used by repositories.
func RestoreOrder(
	id int64,
	number string,
	customerID int64,
	orderedAt kernel.Date,
	deliveredAt kernel.Date,
	status Status,
	details Details,
) (*Order, error) {
	o := &Order{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		o.setID(id),
		o.setNumber(number),
		o.setOrderedAt(orderedAt),
		o.SetCustomerID(customerID),
		status.Validate(),
	); err != nil {
		return nil, err
	}
	o.status = status

	if err := errors.Join(o.setDetails(details), o.SetDeliveredAt(deliveredAt)); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate re-checks the whole record. It returns ErrOrderIsNotConstructed for
// zero-value orders and an *errs.ValidationError listing every broken field.
func (o *Order) Validate() error {
	if o == nil {
		return ErrOrderIsNotConstructed
	}
	if err := o.guard.Validate(ErrOrderIsNotConstructed); err != nil {
		return err
	}

	checks := []error{
		checkCustomerID(o.customerID),
		checkDeliveryDate("requested delivery date", o.requestedDeliveryAt, o.orderedAt),
		checkDeliveryDate("delivered at", o.deliveredAt, o.orderedAt),
		checkRequired("delivery address", o.deliveryAddress, addressMaxLength),
		checkRequired("delivery city", o.deliveryCity, cityMaxLength),
		checkPostalCode(o.deliveryPostalCode),
		o.status.Validate(),
		o.priority.Validate(),
		checkNonNegative("weight total", o.weightTotal),
		checkNonNegative("volume total", o.volumeTotal),
		checkPrice(o.priceTotal),
	}
	if o.orderedAt.IsZero() {
		checks = append(checks, errs.NewValueIsRequiredError("ordered at"))
	}

	violations := make([]string, 0)
	for _, err := range checks {
		if err != nil {
			violations = append(violations, err.Error())
		}
	}
	if len(violations) > 0 {
		return errs.NewValidationError(violations)
	}
	return nil
}

// IsEqual compares two orders by identity. Unsaved orders are never equal.
func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.IsSaved() && o.id == other.id
}

// Clone returns a detached copy without change listeners.
func (o *Order) Clone() *Order {
	clone := *o
	clone.listeners = nil
	return &clone
}

// OnChange registers a listener for accepted mutations.
func (o *Order) OnChange(listener ChangeListener) {
	o.listeners = append(o.listeners, listener)
}

func (o *Order) ID() int64 {
	return o.id
}

func (o *Order) IsSaved() bool {
	return o.id > 0
}

func (o *Order) Number() string {
	return o.number
}

func (o *Order) CustomerID() int64 {
	return o.customerID
}

func (o *Order) OrderedAt() kernel.Date {
	return o.orderedAt
}

func (o *Order) RequestedDeliveryAt() kernel.Date {
	return o.requestedDeliveryAt
}

func (o *Order) DeliveredAt() kernel.Date {
	return o.deliveredAt
}

func (o *Order) DeliveryAddress() string {
	return o.deliveryAddress
}

func (o *Order) DeliveryCity() string {
	return o.deliveryCity
}

func (o *Order) DeliveryPostalCode() string {
	return o.deliveryPostalCode
}

func (o *Order) Status() Status {
	return o.status
}

func (o *Order) Priority() Priority {
	return o.priority
}

func (o *Order) WeightTotal() float64 {
	return o.weightTotal
}

func (o *Order) VolumeTotal() float64 {
	return o.volumeTotal
}

func (o *Order) PriceTotal() decimal.Decimal {
	return o.priceTotal
}

func (o *Order) Comments() string {
	return o.comments
}

func (o *Order) Details() Details {
	return Details{
		RequestedDeliveryAt: o.requestedDeliveryAt,
		DeliveryAddress:     o.deliveryAddress,
		DeliveryCity:        o.deliveryCity,
		DeliveryPostalCode:  o.deliveryPostalCode,
		Priority:            o.priority,
		WeightTotal:         o.weightTotal,
		VolumeTotal:         o.volumeTotal,
		PriceTotal:          o.priceTotal,
		Comments:            o.comments,
	}
}

// CanModify is true only while the order is in a non-terminal state.
func (o *Order) CanModify() bool {
	return o.status.CanBeModified()
}

// CanDelete is true only for Pending or Cancelled orders.
func (o *Order) CanDelete() bool {
	return o.status.CanBeDeleted()
}

// IsLate reports whether the requested delivery date has passed while the
// order is neither delivered nor cancelled.
func (o *Order) IsLate(today kernel.Date) bool {
	return !o.requestedDeliveryAt.IsZero() &&
		today.After(o.requestedDeliveryAt) &&
		!o.status.IsTerminal()
}

// LeadTimeDays is the number of days between the order date and the requested
// delivery date, or NoDays when no delivery date was requested.
func (o *Order) LeadTimeDays() int {
	if o.requestedDeliveryAt.IsZero() {
		return NoDays
	}
	return o.orderedAt.DaysUntil(o.requestedDeliveryAt)
}

// DeliveryDays is the number of days between the order date and the actual
// delivery, or NoDays when the order was not delivered.
func (o *Order) DeliveryDays() int {
	if o.deliveredAt.IsZero() {
		return NoDays
	}
	return o.orderedAt.DaysUntil(o.deliveredAt)
}

// ChangeStatus moves the order to next following the status rules. Reaching
// Delivered stamps the actual delivery date with today when it is not set.
// Requesting the current status changes nothing.
func (o *Order) ChangeStatus(next Status, today kernel.Date) error {
	newStatus, err := o.status.TransitionTo(next)
	if err != nil {
		return err
	}
	if newStatus == o.status {
		return nil
	}

	if newStatus == Delivered && o.deliveredAt.IsZero() {
		if err := checkDeliveryDate("delivered at", today, o.orderedAt); err != nil {
			return err
		}
		o.deliveredAt = today
	}

	o.status = newStatus
	o.changed("status")
	return nil
}

// Deliver marks the order delivered on date (today when date is zero).
func (o *Order) Deliver(date, today kernel.Date) error {
	if date.IsZero() {
		date = today
	}
	if _, err := o.status.TransitionTo(Delivered); err != nil {
		return err
	}
	if o.status == Delivered {
		return nil
	}
	if err := checkDeliveryDate("delivered at", date, o.orderedAt); err != nil {
		return err
	}

	o.deliveredAt = date
	return o.ChangeStatus(Delivered, today)
}

// Cancel moves the order to Cancelled and, when reason is not blank, appends
// "CANCELLED: <reason>" to the comments on its own line. Delivered and already
// cancelled orders are rejected without any change.
func (o *Order) Cancel(reason string) error {
	newStatus, err := o.status.Cancel()
	if err != nil {
		return err
	}

	if reason = strings.TrimSpace(reason); reason != "" {
		line := CancellationPrefix + reason
		if o.comments != "" {
			o.comments += "\n" + line
		} else {
			o.comments = line
		}
	}

	o.status = newStatus
	o.changed("status")
	return nil
}

// AssignIdentity records the key and order number produced by the first insert.
func (o *Order) AssignIdentity(id int64, number string) error {
	if o.IsSaved() {
		return errs.NewValueIsInvalidErrorWithCause("id is invalid", fmt.Errorf("order already has id %d", o.id))
	}
	return errors.Join(o.setID(id), o.setNumber(number))
}

// FormatNumber renders seq with NumberFormat.
func FormatNumber(seq int64) string {
	return fmt.Sprintf(NumberFormat, seq)
}

// MarkRemoved resets the identity after the row was deleted.
func (o *Order) MarkRemoved() {
	o.id = UnsavedID
}

func (o *Order) SetCustomerID(customerID int64) error {
	if err := checkCustomerID(customerID); err != nil {
		return err
	}
	o.customerID = customerID
	o.changed("customer id")
	return nil
}

// SetRequestedDeliveryAt accepts the zero date (no request) or a date not before the order date.
func (o *Order) SetRequestedDeliveryAt(date kernel.Date) error {
	if err := checkDeliveryDate("requested delivery date", date, o.orderedAt); err != nil {
		return err
	}
	o.requestedDeliveryAt = date
	o.changed("requested delivery date")
	return nil
}

// SetDeliveredAt accepts the zero date or a date not before the order date.
func (o *Order) SetDeliveredAt(date kernel.Date) error {
	if err := checkDeliveryDate("delivered at", date, o.orderedAt); err != nil {
		return err
	}
	o.deliveredAt = date
	o.changed("delivered at")
	return nil
}

func (o *Order) SetDeliveryAddress(address string) error {
	if err := checkRequired("delivery address", address, addressMaxLength); err != nil {
		return err
	}
	o.deliveryAddress = strings.TrimSpace(address)
	o.changed("delivery address")
	return nil
}

func (o *Order) SetDeliveryCity(city string) error {
	if err := checkRequired("delivery city", city, cityMaxLength); err != nil {
		return err
	}
	o.deliveryCity = strings.TrimSpace(city)
	o.changed("delivery city")
	return nil
}

func (o *Order) SetDeliveryPostalCode(postalCode string) error {
	if err := checkPostalCode(postalCode); err != nil {
		return err
	}
	o.deliveryPostalCode = strings.TrimSpace(postalCode)
	o.changed("delivery postal code")
	return nil
}

// SetStatus is the plain setter: it checks the value but not the transition rules.
func (o *Order) SetStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	o.status = status
	o.changed("status")
	return nil
}

func (o *Order) SetPriority(priority Priority) error {
	if err := priority.Validate(); err != nil {
		return err
	}
	o.priority = priority
	o.changed("priority")
	return nil
}

func (o *Order) SetWeightTotal(weight float64) error {
	if err := checkNonNegative("weight total", weight); err != nil {
		return err
	}
	o.weightTotal = weight
	o.changed("weight total")
	return nil
}

func (o *Order) SetVolumeTotal(volume float64) error {
	if err := checkNonNegative("volume total", volume); err != nil {
		return err
	}
	o.volumeTotal = volume
	o.changed("volume total")
	return nil
}

func (o *Order) SetPriceTotal(price decimal.Decimal) error {
	if err := checkPrice(price); err != nil {
		return err
	}
	o.priceTotal = price
	o.changed("price total")
	return nil
}

func (o *Order) SetComments(comments string) error {
	o.comments = comments
	o.changed("comments")
	return nil
}

// SetDetails applies every descriptive field, all or nothing.
func (o *Order) SetDetails(details Details) error {
	next := *o
	next.listeners = nil
	if err := next.setDetails(details); err != nil {
		return err
	}
	o.requestedDeliveryAt = next.requestedDeliveryAt
	o.deliveryAddress, o.deliveryCity, o.deliveryPostalCode = next.deliveryAddress, next.deliveryCity, next.deliveryPostalCode
	o.priority = next.priority
	o.weightTotal, o.volumeTotal, o.priceTotal = next.weightTotal, next.volumeTotal, next.priceTotal
	o.comments = next.comments
	o.changed("details")
	return nil
}

func (o *Order) changed(field string) {
	for _, listener := range o.listeners {
		listener(o, field)
	}
}

func (o *Order) setDetails(details Details) error {
	return errors.Join(
		o.SetRequestedDeliveryAt(details.RequestedDeliveryAt),
		o.SetDeliveryAddress(details.DeliveryAddress),
		o.SetDeliveryCity(details.DeliveryCity),
		o.SetDeliveryPostalCode(details.DeliveryPostalCode),
		o.SetPriority(details.Priority),
		o.SetWeightTotal(details.WeightTotal),
		o.SetVolumeTotal(details.VolumeTotal),
		o.SetPriceTotal(details.PriceTotal),
		o.SetComments(details.Comments),
	)
}

func (o *Order) setID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("id is invalid", fmt.Errorf("%d is not greater than 0", id))
	}
	o.id = id
	return nil
}

func (o *Order) setNumber(number string) error {
	if strings.TrimSpace(number) == "" {
		return errs.NewValueIsRequiredError("order number")
	}
	o.number = number
	return nil
}

func (o *Order) setOrderedAt(orderedAt kernel.Date) error {
	if orderedAt.IsZero() {
		return errs.NewValueIsRequiredError("ordered at")
	}
	o.orderedAt = orderedAt
	return nil
}

func checkCustomerID(customerID int64) error {
	if customerID <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("customer id is invalid",
			fmt.Errorf("%d is not greater than 0", customerID))
	}
	return nil
}

func checkDeliveryDate(field string, date, orderedAt kernel.Date) error {
	if date.IsZero() || orderedAt.IsZero() {
		return nil
	}
	if date.Before(orderedAt) {
		return errs.NewValueIsInvalidErrorWithCause(field+" is invalid",
			fmt.Errorf("%s is before the order date %s", date, orderedAt))
	}
	return nil
}

func checkRequired(field, value string, maxLength int) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return errs.NewValueIsRequiredError(field)
	}
	if n := utf8.RuneCountInString(trimmed); n > maxLength {
		return errs.NewValueIsOutOfRangeError(field+" length", n, 1, maxLength)
	}
	return nil
}

func checkPostalCode(postalCode string) error {
	trimmed := strings.TrimSpace(postalCode)
	if n := utf8.RuneCountInString(trimmed); n < validation.PostalCodeMinLength || n > validation.PostalCodeMaxLength {
		return errs.NewValueIsOutOfRangeError("delivery postal code length", n,
			validation.PostalCodeMinLength, validation.PostalCodeMaxLength)
	}
	return nil
}

func checkNonNegative(field string, value float64) error {
	if value < 0 || math.IsNaN(value) {
		return errs.NewValueIsInvalidErrorWithCause(field+" is invalid", fmt.Errorf("%g is negative", value))
	}
	return nil
}

func checkPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("price total is invalid", fmt.Errorf("%s is negative", price))
	}
	return nil
}
