package customer

import (
	"fmt"

	"logistics/internal/pkg/errs"
)

// Status is the account state of a customer. Any status may follow any
// other; only the set of values is closed.
type Status int

const (
	// Unknown is the zero value. In search criteria it means "any status".
	Unknown Status = iota
	Active
	Inactive
	Suspended
)

func getStatusCodes() map[Status]string {
	return map[Status]string{
		Active:    "ACTIVE",
		Inactive:  "INACTIVE",
		Suspended: "SUSPENDED",
	}
}

// Statuses returns the valid statuses in declaration order.
func Statuses() []Status {
	return []Status{Active, Inactive, Suspended}
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if _, ok := getStatusCodes()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the stored code ("ACTIVE", ...) or "UNKNOWN".
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
