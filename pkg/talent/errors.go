package talent

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies talent failures so they can be reported consistently.
type Kind string

const (
	// KindUnavailable means an optional dependency is missing.
	KindUnavailable Kind = "UNAVAILABLE"

	// KindInput means the command lacked a required piece.
	KindInput Kind = "INVALID_INPUT"

	// KindRemote means a remote service failed or timed out.
	KindRemote Kind = "REMOTE_FAILURE"

	// KindRateLimited means a remote service throttled us.
	KindRateLimited Kind = "RATE_LIMITED"

	// KindNotFound means an index or named resource does not exist.
	KindNotFound Kind = "NOT_FOUND"

	// KindPersistence means a local store could not be read or written.
	KindPersistence Kind = "PERSISTENCE"
)

// Error is a classified failure. Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewError creates a classified error.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Unavailable reports a missing dependency along with how to fix it.
func Unavailable(message string) *Error {
	return NewError(KindUnavailable, message, nil)
}

// InvalidInput reports a command that is missing a required argument.
func InvalidInput(message string) *Error {
	return NewError(KindInput, message, nil)
}

// NotFound reports a missing item.
func NotFound(message string) *Error {
	return NewError(KindNotFound, message, nil)
}

// Remote wraps a failed call to an external service.
func Remote(message string, cause error) *Error {
	return NewError(KindRemote, message, cause)
}

// RateLimited reports throttling by service.
func RateLimited(service string) *Error {
	return NewError(KindRateLimited, service+" rate limit reached. Please wait a minute and try again.", nil)
}

// KindOf returns the kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return ""
}

// Describe renders err as a sentence for the user.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "The request timed out. Please try again."
	}
	if errors.Is(err, context.Canceled) {
		return "The request was cancelled."
	}
	return "Something went wrong: " + err.Error()
}
