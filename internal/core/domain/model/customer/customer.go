package customer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"logistics/internal/core/domain/model/kernel"
	"logistics/internal/core/domain/validation"
	"logistics/internal/pkg/errs"
	"logistics/internal/pkg/guard"
)

// UnsavedID marks a customer that has not been persisted yet.
const UnsavedID int64 = -1

const (
	nameMaxLength    = 100
	addressMaxLength = 500
	cityMaxLength    = 100
)

var (
	// ErrCustomerIsNotConstructed is returned when a Customer was not created through
	// NewCustomer or RestoreCustomer.
	ErrCustomerIsNotConstructed = errors.New("Customer must be created via NewCustomer or RestoreCustomer constructor")
)

// Contact groups the descriptive fields of a customer.
type Contact struct {
	Name       string
	Surname    string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
}

// ChangeListener is notified after a setter accepted a new value for field.
type ChangeListener func(c *Customer, field string)

// Customer is a client record.
//
// Customer follows these invariants:
//   - name, surname, address and city are non-empty after trimming and within bounds
//   - email is a valid address, stored trimmed and lowercased
//   - postal code has 4 to 10 characters
//   - the creation date is set once and never changes
//   - the identity is UnsavedID until the first save assigns a key
//
// Setters validate their single field and leave the customer untouched when
// they reject a value.
type Customer struct {
	id         int64
	name       string
	surname    string
	email      string
	phone      string
	address    string
	city       string
	postalCode string
	createdAt  kernel.Date
	status     Status

	listeners []ChangeListener
	guard     guard.ConstructorGuard
}

// NewCustomer creates an unsaved, active customer created on the given day.
//
// Example:
//
//	c, err := customer.NewCustomer(customer.Contact{
//	    Name: "Dupont", Surname: "Jean", Email: "JEAN.DUPONT@x.com",
//	    Phone: "0123456789", Address: "123 Rue X", City: "Paris", PostalCode: "75001",
//	}, kernel.DateOf(time.Now()))
//	// c.Email() == "jean.dupont@x.com"
func NewCustomer(contact Contact, createdAt kernel.Date) (*Customer, error) {
	c := &Customer{
		id:     UnsavedID,
		status: Active,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setContact(contact),
		c.setCreatedAt(createdAt),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// RestoreCustomer rebuilds a persisted customer. Used by repositories.
func RestoreCustomer(id int64, contact Contact, createdAt kernel.Date, status Status) (*Customer, error) {
	c := &Customer{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		c.setID(id),
		c.setContact(contact),
		c.setCreatedAt(createdAt),
		c.setStatus(status),
	); err != nil {
		return nil, err
	}

	return c, nil
}

// Validate re-checks the whole record. It returns ErrCustomerIsNotConstructed for
// zero-value customers and an *errs.ValidationError listing every broken field.
func (c *Customer) Validate() error {
	if c == nil {
		return ErrCustomerIsNotConstructed
	}
	if err := c.guard.Validate(ErrCustomerIsNotConstructed); err != nil {
		return err
	}

	checks := []error{
		checkRequired("name", c.name, nameMaxLength),
		checkRequired("surname", c.surname, nameMaxLength),
		checkEmail(c.email),
		checkPhone(c.phone),
		checkRequired("address", c.address, addressMaxLength),
		checkRequired("city", c.city, cityMaxLength),
		checkPostalCode(c.postalCode),
		c.status.Validate(),
	}
	if c.createdAt.IsZero() {
		checks = append(checks, errs.NewValueIsRequiredError("created at"))
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

// IsEqual compares two customers by identity. Unsaved customers are never equal.
func (c *Customer) IsEqual(other *Customer) bool {
	return other != nil && c.IsSaved() && c.id == other.id
}

// Clone returns a detached copy without change listeners.
func (c *Customer) Clone() *Customer {
	clone := *c
	clone.listeners = nil
	return &clone
}

// OnChange registers a listener for accepted field mutations.
func (c *Customer) OnChange(listener ChangeListener) {
	c.listeners = append(c.listeners, listener)
}

func (c *Customer) ID() int64 {
	return c.id
}

func (c *Customer) IsSaved() bool {
	return c.id > 0
}

func (c *Customer) Name() string {
	return c.name
}

func (c *Customer) Surname() string {
	return c.surname
}

// FullName returns "surname name".
func (c *Customer) FullName() string {
	return c.surname + " " + c.name
}

func (c *Customer) Email() string {
	return c.email
}

func (c *Customer) Phone() string {
	return c.phone
}

func (c *Customer) Address() string {
	return c.address
}

func (c *Customer) City() string {
	return c.city
}

func (c *Customer) PostalCode() string {
	return c.postalCode
}

func (c *Customer) CreatedAt() kernel.Date {
	return c.createdAt
}

func (c *Customer) Status() Status {
	return c.status
}

func (c *Customer) Contact() Contact {
	return Contact{
		Name:       c.name,
		Surname:    c.surname,
		Email:      c.email,
		Phone:      c.phone,
		Address:    c.address,
		City:       c.city,
		PostalCode: c.postalCode,
	}
}

// AssignID records the key generated by the first insert.
func (c *Customer) AssignID(id int64) error {
	if c.IsSaved() {
		return errs.NewValueIsInvalidErrorWithCause("id is invalid", fmt.Errorf("customer already has id %d", c.id))
	}
	return c.setID(id)
}

// MarkRemoved resets the identity after the row was deleted.
func (c *Customer) MarkRemoved() {
	c.id = UnsavedID
}

func (c *Customer) SetName(name string) error {
	if err := checkRequired("name", name, nameMaxLength); err != nil {
		return err
	}
	c.name = strings.TrimSpace(name)
	c.changed("name")
	return nil
}

func (c *Customer) SetSurname(surname string) error {
	if err := checkRequired("surname", surname, nameMaxLength); err != nil {
		return err
	}
	c.surname = strings.TrimSpace(surname)
	c.changed("surname")
	return nil
}

// SetEmail stores the address trimmed and lowercased.
func (c *Customer) SetEmail(email string) error {
	if err := checkEmail(email); err != nil {
		return err
	}
	c.email = validation.CleanEmail(email)
	c.changed("email")
	return nil
}

func (c *Customer) SetPhone(phone string) error {
	if err := checkPhone(phone); err != nil {
		return err
	}
	c.phone = validation.CleanPhone(phone)
	c.changed("phone")
	return nil
}

func (c *Customer) SetAddress(address string) error {
	if err := checkRequired("address", address, addressMaxLength); err != nil {
		return err
	}
	c.address = strings.TrimSpace(address)
	c.changed("address")
	return nil
}

func (c *Customer) SetCity(city string) error {
	if err := checkRequired("city", city, cityMaxLength); err != nil {
		return err
	}
	c.city = strings.TrimSpace(city)
	c.changed("city")
	return nil
}

func (c *Customer) SetPostalCode(postalCode string) error {
	if err := checkPostalCode(postalCode); err != nil {
		return err
	}
	c.postalCode = strings.TrimSpace(postalCode)
	c.changed("postal code")
	return nil
}

func (c *Customer) SetStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	c.status = status
	c.changed("status")
	return nil
}

// SetContact applies every contact field, all or nothing.
func (c *Customer) SetContact(contact Contact) error {
	next := *c
	next.listeners = nil
	if err := next.setContact(contact); err != nil {
		return err
	}
	c.name, c.surname, c.email = next.name, next.surname, next.email
	c.phone, c.address, c.city, c.postalCode = next.phone, next.address, next.city, next.postalCode
	c.changed("contact")
	return nil
}

func (c *Customer) changed(field string) {
	for _, listener := range c.listeners {
		listener(c, field)
	}
}

func (c *Customer) setID(id int64) error {
	if id <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("id is invalid", fmt.Errorf("%d is not greater than 0", id))
	}
	c.id = id
	return nil
}

func (c *Customer) setContact(contact Contact) error {
	return errors.Join(
		c.SetName(contact.Name),
		c.SetSurname(contact.Surname),
		c.SetEmail(contact.Email),
		c.SetPhone(contact.Phone),
		c.SetAddress(contact.Address),
		c.SetCity(contact.City),
		c.SetPostalCode(contact.PostalCode),
	)
}

func (c *Customer) setCreatedAt(createdAt kernel.Date) error {
	if createdAt.IsZero() {
		return errs.NewValueIsRequiredError("created at")
	}
	c.createdAt = createdAt
	return nil
}

func (c *Customer) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	c.status = status
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

func checkEmail(email string) error {
	if !validation.IsValidEmail(email) {
		return errs.NewValueIsInvalidErrorWithCause("email", fmt.Errorf("%q is not a valid email address", email))
	}
	return nil
}

func checkPhone(phone string) error {
	if !validation.IsValidPhone(phone) {
		return errs.NewValueIsInvalidErrorWithCause("phone", fmt.Errorf("%q is not a valid phone number", phone))
	}
	return nil
}

func checkPostalCode(postalCode string) error {
	trimmed := strings.TrimSpace(postalCode)
	if n := utf8.RuneCountInString(trimmed); n < validation.PostalCodeMinLength || n > validation.PostalCodeMaxLength {
		return errs.NewValueIsOutOfRangeError("postal code length", n,
			validation.PostalCodeMinLength, validation.PostalCodeMaxLength)
	}
	return nil
}
