package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrObjectNotFound      = errors.New("object not found")
	ErrValueIsInvalid      = errors.New("value is invalid")
	ErrValueIsOutOfRange   = errors.New("value is out of range")
	ErrValueIsRequired     = errors.New("value is required")
	ErrValidationFailed    = errors.New("validation failed")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStorageUnavailable  = errors.New("storage is unavailable")
	ErrInternal            = errors.New("internal error")
	ErrOperationNotAllowed = errors.New("operation is not allowed")
)

func sanitize(v any) string {
	return strings.ReplaceAll(fmt.Sprintf("%v", v), "\n", " ")
}

func withCause(msg string, cause error) string {
	if cause == nil {
		return msg
	}
	return fmt.Sprintf("%s (cause: %v)", msg, cause)
}

// ObjectNotFoundError reports that a record with the given identity does not exist.
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id}
}

func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{ParamName: paramName, ID: id, Cause: cause}
}

func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return withCause(
			fmt.Sprintf("%s: param is: %s, ID is: %v", ErrObjectNotFound, e.ParamName, e.ID),
			e.Cause,
		)
	}
	return fmt.Sprintf("%s: %s %v", ErrObjectNotFound, e.ParamName, e.ID)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that fails a format or business rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsInvalidError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName), e.Cause)
}

func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue}
}

func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{ParamName: paramName, Value: value, Min: minValue, Max: maxValue, Cause: cause}
}

func (e *ValueIsOutOfRangeError) Error() string {
	return withCause(
		fmt.Sprintf("%s: %s is %s, min value is %s, max value is %s",
			ErrValueIsOutOfRange, sanitize(e.Value), e.ParamName, sanitize(e.Min), sanitize(e.Max)),
		e.Cause,
	)
}

func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName, Cause: cause}
}

func (e *ValueIsRequiredError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName), e.Cause)
}

func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// ValidationError carries the ordered list of field-level violations produced
// by an aggregate validator. It is recoverable by correcting the input.
type ValidationError struct {
	Violations []string
}

func NewValidationError(violations []string) *ValidationError {
	return &ValidationError{Violations: violations}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidationFailed, strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// ConstraintViolationError reports a uniqueness or referential failure, either
// detected up front by a controller or rejected by the backend.
type ConstraintViolationError struct {
	Constraint string
	Cause      error
}

func NewConstraintViolationError(constraint string) *ConstraintViolationError {
	return &ConstraintViolationError{Constraint: constraint}
}

func NewConstraintViolationErrorWithCause(constraint string, cause error) *ConstraintViolationError {
	return &ConstraintViolationError{Constraint: constraint, Cause: cause}
}

func (e *ConstraintViolationError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrConstraintViolation, e.Constraint), e.Cause)
}

func (e *ConstraintViolationError) Unwrap() error {
	return ErrConstraintViolation
}

// ConnectivityError is returned when neither the primary nor the fallback engine
// could be reached.
type ConnectivityError struct {
	Engines []string
	Cause   error
}

func NewConnectivityError(engines []string, cause error) *ConnectivityError {
	return &ConnectivityError{Engines: engines, Cause: cause}
}

func (e *ConnectivityError) Error() string {
	return withCause(
		fmt.Sprintf("%s: tried %s", ErrStorageUnavailable, strings.Join(e.Engines, ", ")),
		e.Cause,
	)
}

func (e *ConnectivityError) Unwrap() error {
	return ErrStorageUnavailable
}

// OperationNotAllowedError reports a business-rule gate that refused an operation,
// such as deleting a customer that still has open orders.
type OperationNotAllowedError struct {
	Operation string
	Reason    string
}

func NewOperationNotAllowedError(operation, reason string) *OperationNotAllowedError {
	return &OperationNotAllowedError{Operation: operation, Reason: reason}
}

func (e *OperationNotAllowedError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrOperationNotAllowed, e.Operation, e.Reason)
}

func (e *OperationNotAllowedError) Unwrap() error {
	return ErrOperationNotAllowed
}

// InternalError wraps an unexpected failure recovered at an operation boundary.
type InternalError struct {
	Operation string
	Cause     error
}

func NewInternalError(operation string, cause error) *InternalError {
	return &InternalError{Operation: operation, Cause: cause}
}

func (e *InternalError) Error() string {
	return withCause(fmt.Sprintf("%s: %s", ErrInternal, e.Operation), e.Cause)
}

func (e *InternalError) Unwrap() error {
	return ErrInternal
}
