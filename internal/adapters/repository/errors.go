package repository

import "errors"

// Sentinel kinds for record store errors.
var (
	ErrNotFound          = errors.New("entry not found")
	ErrConflict          = errors.New("entry already exists")
	ErrInvalidLimit      = errors.New("invalid limit")
	ErrUnsupportedDriver = errors.New("unsupported store driver")
)
