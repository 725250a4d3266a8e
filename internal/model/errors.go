package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service wraps exactly one of these,
// so transports can pick a status code with errors.Is.
var (
	ErrValidation     = errors.New("validation failed")
	ErrNotFound       = errors.New("not found")
	ErrAuthorization  = errors.New("not authorized")
	ErrAuthentication = errors.New("not authenticated")
	ErrConflict       = errors.New("conflict")
	ErrTransient      = errors.New("temporarily unavailable")
	ErrSelfReference  = errors.New("self reference")
)

// kindError carries a client-safe message and the kind it belongs to.
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }

// NewError returns an error with message msg that matches kind under errors.Is.
func NewError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// Transient marks err as a failure of an external collaborator (store, media).
// The original error is kept in the chain for logging.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
}

// KindOf reports which error kind err belongs to, or nil for unexpected errors.
func KindOf(err error) error {
	for _, kind := range []error{
		ErrSelfReference,
		ErrValidation,
		ErrNotFound,
		ErrAuthorization,
		ErrAuthentication,
		ErrConflict,
		ErrTransient,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
