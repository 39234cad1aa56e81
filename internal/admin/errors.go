package admin

import "errors"

var (
	// ErrInvalidInput is returned when a submitted page or category fails
	// validation (missing title or name, malformed slug, invalid import).
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownCategory is returned when a page references a category slug
	// that does not exist.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrNotFound is returned by lookups on a missing id.
	ErrNotFound = errors.New("not found")
)
