// Package apperr holds the error kinds shared by services and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("already exists")
	ErrAuthRequired = errors.New("authentication required")
	ErrUnavailable  = errors.New("service unavailable")
)

// Validation wraps ErrValidation with a caller-facing message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrValidation)
}

// NotFound wraps ErrNotFound with the entity name.
func NotFound(entity string) error {
	return fmt.Errorf("%s %w", entity, ErrNotFound)
}

// Forbidden wraps ErrForbidden with the denied action.
func Forbidden(action string) error {
	return fmt.Errorf("%s: %w", action, ErrForbidden)
}

// FromDB classifies a gorm error. The DB must be opened with TranslateError so unique
// violations surface as gorm.ErrDuplicatedKey.
func FromDB(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}

// Kind returns the sentinel err wraps, or ErrUnavailable for anything unclassified.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrConflict, ErrAuthRequired, ErrUnavailable} {
		if errors.Is(err, k) {
			return k
		}
	}
	return ErrUnavailable
}
