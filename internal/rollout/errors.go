// Package rollout implements create, read, update and delete operations for
// every rollout entity, with validation and plan status propagation. All
// writes run inside a single database transaction.
package rollout

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrPersistence = errors.New("persistence failure")
)

// Error is returned by every operation in this package.
type Error struct {
	Kind error  // one of the Err* kinds
	Msg  string // human-readable, safe to show to users
	Err  error  // underlying cause, if any
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rollout: %s: %v", e.Msg, e.Err)
	}
	return "rollout: " + e.Msg
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Message returns the user-facing message for err. Persistence failures
// are reported generically.
func Message(err error) string {
	var re *Error
	if errors.As(err, &re) && !errors.Is(re.Kind, ErrPersistence) {
		return re.Msg
	}
	return "internal error"
}

func validationf(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func notFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) error {
	return &Error{Kind: ErrConflict, Msg: fmt.Sprintf(format, args...)}
}

// wrap translates storage errors into the package taxonomy. Errors that
// already carry a kind pass through unchanged.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var re *Error
	if errors.As(err, &re) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &Error{Kind: ErrNotFound, Msg: op + ": record not found"}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &Error{Kind: ErrConflict, Msg: op + ": duplicate record", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &Error{Kind: ErrConflict, Msg: op + ": record is still referenced", Err: err}
	default:
		return &Error{Kind: ErrPersistence, Msg: op, Err: err}
	}
}

// exists returns a NotFound error when no row of model has the given id.
func exists(tx *gorm.DB, model any, what string, id uint) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return wrap("check "+what, err)
	}
	if n == 0 {
		return notFoundf("%s %d not found", what, id)
	}
	return nil
}

// required trims s and returns a Validation error when nothing is left.
func required(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", validationf("%s is required", field)
	}
	return s, nil
}

// optional trims s and maps the empty string to NULL.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound error naming the
// entity; other errors are wrapped.
func notFoundOr(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundf("%s %d not found", what, id)
	}
	return wrap("get "+what, err)
}
