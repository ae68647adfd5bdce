// Package apperr defines the recoverable error taxonomy shared across Ansuz.
package apperr

import "errors"

var (
	// ErrNotFound is returned when an article id or category name does not
	// resolve in the merged view.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed or missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrDuplicateName is returned on a category name collision at create.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrReadOnly is returned on attempted mutation of site-origin content.
	ErrReadOnly = errors.New("read-only")
	// ErrImmutableField is returned on attempted rename of an existing category.
	ErrImmutableField = errors.New("immutable field")
)
