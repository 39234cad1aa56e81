package domain

import "errors"

var (
	// ErrCorruptState is returned when a persisted document cannot be decoded.
	ErrCorruptState = errors.New("corrupt state")

	// ErrDuplicateSlug is returned when a write would give two pages (or two
	// categories) the same slug.
	ErrDuplicateSlug = errors.New("duplicate slug")

	// ErrDuplicateID is returned by Validate when ids collide.
	ErrDuplicateID = errors.New("duplicate id")

	ErrMissingID   = errors.New("missing id")
	ErrMissingSlug = errors.New("missing slug")
)
