package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidID          = errors.New("invalid id")
	ErrValidation         = errors.New("validation error")
	ErrTransient          = errors.New("backend temporarily unavailable")
	ErrMissingIndex       = errors.New("missing composite index")
	ErrUnauthorized       = errors.New("operation not permitted")
	ErrTransitionInFlight = errors.New("status transition already in flight")
)
