// Package repository defines error types that are reused across multiple
// repositories. These sentinel values let handlers pick a status code
// without knowing which driver sits underneath.
package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when the requested row does not exist or is not
// owned by the caller. Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEmailExists is returned when an account with the same e-mail exists.
var ErrEmailExists = errors.New("email already exists")

// ErrDuplicate is returned when an insert violates a unique index, such as a
// second registration for the same event category.
var ErrDuplicate = errors.New("duplicate")

// ErrConflict is returned when an update cannot be applied because of the
// current state of the row. Handlers translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// translate maps gorm errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}
