package order

import (
	"fmt"

	"logistics/internal/pkg/errs"
)

// Priority is the urgency of an order. Values are ordered: Urgent > High > Normal > Low.
type Priority int

const (
	// UnknownPriority is the zero value. In search criteria it means "any priority".
	UnknownPriority Priority = iota
	Low
	Normal
	High
	Urgent
)

func getPriorityCodes() map[Priority]string {
	return map[Priority]string{
		Low:    "LOW",
		Normal: "NORMAL",
		High:   "HIGH",
		Urgent: "URGENT",
	}
}

// Priorities returns the valid priorities from lowest to highest.
func Priorities() []Priority {
	return []Priority{Low, Normal, High, Urgent}
}

func (p Priority) Validate() error {
	if _, ok := getPriorityCodes()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("priority is invalid", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

// String returns the stored code ("LOW", ...) or "UNKNOWN".
func (p Priority) String() string {
	if code, ok := getPriorityCodes()[p]; ok {
		return code
	}
	return "UNKNOWN"
}

// IsUrgent is true for High and Urgent.
func (p Priority) IsUrgent() bool {
	return p == High || p == Urgent
}

// ParsePriority maps a stored code back to a Priority.
func ParsePriority(code string) (Priority, error) {
	for p, c := range getPriorityCodes() {
		if c == code {
			return p, nil
		}
	}
	return UnknownPriority, errs.NewValueIsInvalidErrorWithCause(
		"priority is invalid", fmt.Errorf("%q is not a valid priority", code))
}
