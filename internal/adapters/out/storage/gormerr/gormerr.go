// Package gormerr maps gorm errors onto the domain error types. The storage
// connection is opened with TranslateError, so engine-specific constraint
// failures already arrive as gorm sentinels.
package gormerr

import (
	"errors"

	"logistics/internal/pkg/errs"

	"gorm.io/gorm"
)

// Translate converts duplicate key and foreign key failures into
// *errs.ConstraintViolationError named after constraint. Other errors are
// returned unchanged.
func Translate(err error, constraint string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return errs.NewConstraintViolationErrorWithCause(constraint, err)
	default:
		return err
	}
}

// NotFound converts gorm.ErrRecordNotFound into *errs.ObjectNotFoundError.
func NotFound(err error, paramName string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errs.NewObjectNotFoundError(paramName, id)
	}
	return err
}
