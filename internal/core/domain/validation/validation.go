package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"logistics/internal/core/domain/model/kernel"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// LengthBounds is an inclusive rune-count interval.
type LengthBounds struct {
	Min int
	Max int
}

// RangeBounds is an inclusive numeric interval.
type RangeBounds struct {
	Min float64
	Max float64
}

// Default bounds. Address only has to be non-empty: short street forms such
// as "123 Rue X" are legitimate.
var (
	NameLength    = LengthBounds{Min: 2, Max: 100}
	CityLength    = LengthBounds{Min: 2, Max: 100}
	AddressLength = LengthBounds{Min: 1, Max: 500}
	AmountRange   = RangeBounds{Min: 0, Max: 999999.999}
	WeightRange   = RangeBounds{Min: 0, Max: 10000}
	VolumeRange   = RangeBounds{Min: 0, Max: 1000}
)

const (
	EmailMaxLength      = 150
	PhoneMinLength      = 8
	PhoneMaxLength      = 20
	PostalCodeMinLength = 4
	PostalCodeMaxLength = 10

	// messageValueLimit caps how much of an offending value is echoed back.
	messageValueLimit = 50
)

// Custom tags registered on top of the validator built-ins.
const (
	tagNameChars   = "name_chars"
	tagPhoneChars  = "phone_chars"
	tagPostalChars = "postal_chars"
	tagMailbox     = "mailbox"
)

var (
	mailboxPattern    = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	phonePattern      = regexp.MustCompile(`^[0-9+\-\s()]+$`)
	postalCodePattern = regexp.MustCompile(`^[0-9A-Za-z\-\s]+$`)
	namePattern       = regexp.MustCompile(`^[A-Za-zÀ-ÿ\s\-']+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	patterns := map[string]*regexp.Regexp{
		tagNameChars:   namePattern,
		tagPhoneChars:  phonePattern,
		tagPostalChars: postalCodePattern,
		tagMailbox:     mailboxPattern,
	}
	for tag, pattern := range patterns {
		if err := v.RegisterValidation(tag, matching(pattern)); err != nil {
			panic(fmt.Sprintf("validation: register %s: %v", tag, err))
		}
	}
	return v
}

func matching(pattern *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return pattern.MatchString(fl.Field().String())
	}
}

// check runs one tag expression against one value. Callers check fields one
// at a time so violations keep the field order.
func check(value any, tag string) bool {
	return validate.Var(value, tag) == nil
}

func lengthTag(b LengthBounds) string {
	return fmt.Sprintf("min=%d,max=%d", b.Min, b.Max)
}

func rangeTag(b RangeBounds) string {
	return fmt.Sprintf("gte=%s,lte=%s",
		strconv.FormatFloat(b.Min, 'f', -1, 64), strconv.FormatFloat(b.Max, 'f', -1, 64))
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

func inRange(v float64, b RangeBounds) bool {
	// NaN compares false with everything, so gte/lte reject it.
	return check(v, rangeTag(b))
}

// CleanText trims surrounding whitespace.
func CleanText(s string) string {
	return strings.TrimSpace(s)
}

// CleanEmail trims and lowercases an address; this is the canonical stored form.
func CleanEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func CleanPhone(phone string) string {
	return strings.TrimSpace(phone)
}

// IsValidName accepts letters (including Latin-1 accents), spaces, hyphens
// and apostrophes within b.
func IsValidName(name string, b LengthBounds) bool {
	return check(CleanText(name), lengthTag(b)+","+tagNameChars)
}

func IsValidEmail(email string) bool {
	return check(CleanEmail(email), fmt.Sprintf("required,max=%d,email,%s", EmailMaxLength, tagMailbox))
}

// IsValidPhone accepts 8 to 20 characters made of digits, '+', '-', parentheses and spaces.
func IsValidPhone(phone string) bool {
	bounds := LengthBounds{Min: PhoneMinLength, Max: PhoneMaxLength}
	return check(CleanPhone(phone), lengthTag(bounds)+","+tagPhoneChars)
}

func IsValidAddress(address string, b LengthBounds) bool {
	return check(CleanText(address), "required,"+lengthTag(b))
}

// IsValidPostalCode accepts 4 to 10 alphanumeric characters, hyphens or spaces.
func IsValidPostalCode(code string) bool {
	bounds := LengthBounds{Min: PostalCodeMinLength, Max: PostalCodeMaxLength}
	return check(CleanText(code), lengthTag(bounds)+","+tagPostalChars)
}

// IsValidCity applies the name rule to a city.
func IsValidCity(city string, b LengthBounds) bool {
	return IsValidName(city, b)
}

func IsValidAmount(amount float64, b RangeBounds) bool {
	return inRange(amount, b)
}

func IsValidWeight(weight float64, b RangeBounds) bool {
	return inRange(weight, b)
}

func IsValidVolume(volume float64, b RangeBounds) bool {
	return inRange(volume, b)
}

// IsValidDate reports whether d is set and, relative to today, respects the
// past/future allowances.
func IsValidDate(d, today kernel.Date, allowPast, allowFuture bool) bool {
	if d.IsZero() {
		return false
	}
	if !allowPast && d.Before(today) {
		return false
	}
	if !allowFuture && d.After(today) {
		return false
	}
	return true
}

// IsValidDateRange reports whether both dates are set and start <= end.
func IsValidDateRange(start, end kernel.Date) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return !end.Before(start)
}

// FormatErrorMessage renders a field violation, echoing at most 50 characters of the value.
func FormatErrorMessage(field, value, reason string) string {
	if runeLen(value) > messageValueLimit {
		value = string([]rune(value)[:messageValueLimit])
	}
	return fmt.Sprintf("field '%s' is invalid (value: '%s'): %s", field, value, reason)
}

// CustomerFields is the input of ValidateCustomer.
type CustomerFields struct {
	Name       string
	Surname    string
	Email      string
	Phone      string
	Address    string
	City       string
	PostalCode string
}

// ValidateCustomer returns the violations of f in field order; an empty slice means valid.
func ValidateCustomer(f CustomerFields) []string {
	violations := make([]string, 0)

	if !IsValidName(f.Name, NameLength) {
		violations = append(violations, FormatErrorMessage("name", f.Name,
			fmt.Sprintf("must contain %d to %d letters", NameLength.Min, NameLength.Max)))
	}
	if !IsValidName(f.Surname, NameLength) {
		violations = append(violations, FormatErrorMessage("surname", f.Surname,
			fmt.Sprintf("must contain %d to %d letters", NameLength.Min, NameLength.Max)))
	}
	if !IsValidEmail(f.Email) {
		violations = append(violations, FormatErrorMessage("email", f.Email, "invalid email format"))
	}
	if !IsValidPhone(f.Phone) {
		violations = append(violations, FormatErrorMessage("phone", f.Phone,
			fmt.Sprintf("must contain %d to %d digits", PhoneMinLength, PhoneMaxLength)))
	}
	if !IsValidAddress(f.Address, AddressLength) {
		violations = append(violations, FormatErrorMessage("address", f.Address,
			fmt.Sprintf("must contain %d to %d characters", AddressLength.Min, AddressLength.Max)))
	}
	if !IsValidCity(f.City, CityLength) {
		violations = append(violations, FormatErrorMessage("city", f.City,
			fmt.Sprintf("must contain %d to %d letters", CityLength.Min, CityLength.Max)))
	}
	if !IsValidPostalCode(f.PostalCode) {
		violations = append(violations, FormatErrorMessage("postal code", f.PostalCode,
			fmt.Sprintf("must contain %d to %d alphanumeric characters", PostalCodeMinLength, PostalCodeMaxLength)))
	}

	return violations
}

// OrderFields is the input of ValidateOrder.
type OrderFields struct {
	CustomerID          int64
	OrderedAt           kernel.Date
	RequestedDeliveryAt kernel.Date
	DeliveryAddress     string
	DeliveryCity        string
	DeliveryPostalCode  string
	WeightTotal         float64
	VolumeTotal         float64
	PriceTotal          decimal.Decimal
}

// ValidateOrder returns the violations of f in field order; an empty slice means valid.
// The order date may not lie after today.
func ValidateOrder(f OrderFields, today kernel.Date) []string {
	violations := make([]string, 0)

	if f.CustomerID <= 0 {
		violations = append(violations, "a customer must be selected")
	}
	if !IsValidDate(f.OrderedAt, today, true, false) {
		violations = append(violations, "order date is invalid")
	}
	if !f.RequestedDeliveryAt.IsZero() && !IsValidDateRange(f.OrderedAt, f.RequestedDeliveryAt) {
		violations = append(violations, "requested delivery date cannot be before the order date")
	}
	if !IsValidAddress(f.DeliveryAddress, AddressLength) {
		violations = append(violations, FormatErrorMessage("delivery address", f.DeliveryAddress,
			fmt.Sprintf("must contain %d to %d characters", AddressLength.Min, AddressLength.Max)))
	}
	if !IsValidCity(f.DeliveryCity, CityLength) {
		violations = append(violations, FormatErrorMessage("delivery city", f.DeliveryCity,
			fmt.Sprintf("must contain %d to %d letters", CityLength.Min, CityLength.Max)))
	}
	if !IsValidPostalCode(f.DeliveryPostalCode) {
		violations = append(violations, FormatErrorMessage("delivery postal code", f.DeliveryPostalCode,
			fmt.Sprintf("must contain %d to %d alphanumeric characters", PostalCodeMinLength, PostalCodeMaxLength)))
	}
	if !IsValidWeight(f.WeightTotal, WeightRange) {
		violations = append(violations, fmt.Sprintf("total weight (%g kg) must be between %g and %g kg",
			f.WeightTotal, WeightRange.Min, WeightRange.Max))
	}
	if !IsValidVolume(f.VolumeTotal, VolumeRange) {
		violations = append(violations, fmt.Sprintf("total volume (%g m3) must be between %g and %g m3",
			f.VolumeTotal, VolumeRange.Min, VolumeRange.Max))
	}
	if !IsValidAmount(f.PriceTotal.InexactFloat64(), AmountRange) {
		violations = append(violations, fmt.Sprintf("total price (%s) must be between %g and %g",
			f.PriceTotal.String(), AmountRange.Min, AmountRange.Max))
	}

	return violations
}
