package catalog

import "errors"

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned on domain-level uniqueness violations such
	// as a duplicate slug, code, membership, or dependency.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput is returned when a payload fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
