package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"logistics/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("customer", int64(42))

		assert.Equal(t, "customer", err.ParamName)
		assert.Equal(t, int64(42), err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: customer 42", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("record not found")
		err := errs.NewObjectNotFoundErrorWithCause("order", "CMD001000", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: order, ID is: CMD001000 (cause: record not found)",
			err.Error())
	})
}

func TestValueIsInvalidError(t *testing.T) {
	t.Run("NewValueIsInvalidError", func(t *testing.T) {
		err := errs.NewValueIsInvalidError("email")

		assert.Equal(t, "email", err.ParamName)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is invalid: email", err.Error())
		assert.Equal(t, errs.ErrValueIsInvalid, err.Unwrap())
	})

	t.Run("NewValueIsInvalidErrorWithCause", func(t *testing.T) {
		cause := errors.New("invalid format")
		err := errs.NewValueIsInvalidErrorWithCause("email", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t, "value is invalid: email (cause: invalid format)", err.Error())
	})
}

func TestValueIsOutOfRangeError(t *testing.T) {
	t.Run("NewValueIsOutOfRangeError", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("weight", 12000, 0, 10000)

		assert.Equal(t, "weight", err.ParamName)
		assert.Equal(t, 12000, err.Value)
		require.NoError(t, err.Cause)
		assert.Equal(t, "value is out of range: 12000 is weight, min value is 0, max value is 10000", err.Error())
		assert.Equal(t, errs.ErrValueIsOutOfRange, err.Unwrap())
	})

	t.Run("NewValueIsOutOfRangeErrorWithCause", func(t *testing.T) {
		cause := errors.New("negative")
		err := errs.NewValueIsOutOfRangeErrorWithCause("volume", -5, 0, 1000, cause)

		assert.Equal(t,
			"value is out of range: -5 is volume, min value is 0, max value is 1000 (cause: negative)",
			err.Error())
	})

	t.Run("newlines in values are flattened", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("comments", "hello\nworld", 0, 10)
		assert.Contains(t, err.Error(), "hello world")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestValueIsRequiredError(t *testing.T) {
	err := errs.NewValueIsRequiredError("surname")
	assert.Equal(t, "value is required: surname", err.Error())

	withCause := errs.NewValueIsRequiredErrorWithCause("surname", errors.New("blank"))
	assert.Equal(t, "value is required: surname (cause: blank)", withCause.Error())
}

func TestValidationError(t *testing.T) {
	err := errs.NewValidationError([]string{"name is invalid", "email is invalid"})

	assert.Equal(t, "validation failed: name is invalid; email is invalid", err.Error())
	require.ErrorIs(t, err, errs.ErrValidationFailed)

	var target *errs.ValidationError
	require.ErrorAs(t, fmt.Errorf("create customer: %w", err), &target)
	assert.Len(t, target.Violations, 2)
}

func TestConstraintViolationError(t *testing.T) {
	err := errs.NewConstraintViolationErrorWithCause("customers.email", errors.New("duplicated key"))

	assert.Equal(t, "constraint violation: customers.email (cause: duplicated key)", err.Error())
	require.ErrorIs(t, err, errs.ErrConstraintViolation)
}

func TestConnectivityError(t *testing.T) {
	err := errs.NewConnectivityError([]string{"postgres", "sqlite"}, errors.New("refused"))

	assert.Equal(t, "storage is unavailable: tried postgres, sqlite (cause: refused)", err.Error())
	require.ErrorIs(t, err, errs.ErrStorageUnavailable)
}

func TestOperationNotAllowedError(t *testing.T) {
	err := errs.NewOperationNotAllowedError("delete customer", "customer has open orders")

	assert.Equal(t, "operation is not allowed: delete customer: customer has open orders", err.Error())
	require.ErrorIs(t, err, errs.ErrOperationNotAllowed)
}

func TestInternalError(t *testing.T) {
	err := errs.NewInternalError("create order", errors.New("boom"))

	assert.Equal(t, "internal error: create order (cause: boom)", err.Error())
	require.ErrorIs(t, err, errs.ErrInternal)
}

func TestErrorsCanBeUnwrapped(t *testing.T) {
	require.ErrorIs(t, errs.NewObjectNotFoundError("customer", 1), errs.ErrObjectNotFound)
	require.ErrorIs(t, errs.NewValueIsInvalidError("email"), errs.ErrValueIsInvalid)
	require.ErrorIs(t, errs.NewValueIsOutOfRangeError("age", 150, 0, 120), errs.ErrValueIsOutOfRange)
	require.ErrorIs(t, errs.NewValueIsRequiredError("username"), errs.ErrValueIsRequired)
}
