package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for every failure kind the API can surface. Components wrap
// these with context; the handler layer maps them to HTTP statuses with errors.Is.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrSessionExpired  = errors.New("session expired")
	ErrInvalidInput    = errors.New("invalid input")
	ErrStorageUpload   = errors.New("storage upload failed")
	ErrPersistence     = errors.New("persistence failed")
	ErrCompletion      = errors.New("completion failed")
)

// Input-shaped failures are a refinement of ErrInvalidInput so callers can
// match either the broad class or the specific cause.
var (
	ErrInvalidImageData = fmt.Errorf("%w: malformed image data", ErrInvalidInput)
	ErrTooManyImages    = fmt.Errorf("%w: too many images", ErrInvalidInput)
)
