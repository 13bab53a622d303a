package domain

import (
	"errors"
	"fmt"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("asset not found or is private")
	ErrUnsupportedType = errors.New("asset type not supported")
	ErrUpstream        = errors.New("upstream failure")
	ErrPersistence     = errors.New("persistence failure")
	ErrHistoryDisabled = errors.New("history disabled")
)

// Error pairs one of the sentinel kinds above with the message shown to
// API clients. errors.Is matches on the kind.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
