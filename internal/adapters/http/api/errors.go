package api

import (
	"errors"
	"fmt"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrServe      = errors.New("http serve failed")
)

// badRequest tags err with ErrBadRequest and the failing operation.
func badRequest(op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", op, ErrBadRequest)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err)
}
