// Package errs provides standardized error types for the logistics core.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used by the domain model, the storage adapter and the controllers.
//
// The package includes error types for the whole error taxonomy:
//   - ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError: single field failures
//   - ValidationError: the ordered violation list of an aggregate validator
//   - ObjectNotFoundError: the requested identity is absent
//   - ConstraintViolationError: uniqueness or foreign key failures
//   - ConnectivityError: neither storage engine could be reached
//   - OperationNotAllowedError: a business-rule gate refused the operation
//   - InternalError: an unexpected failure recovered at an operation boundary
//
// Each error type follows a consistent pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel, so callers can use errors.Is
package errs
