package api

import (
	"errors"
	"fmt"
)

// Kind classifies a backend failure into the closed set the resource stores
// and the CLI act on. Classification happens here, at the client boundary,
// so no caller ever branches on raw status codes or response shapes.
type Kind int

const (
	// KindNetwork is a transport-level failure with no HTTP response.
	KindNetwork Kind = iota + 1
	// KindAuth is a 401 or 403 response. Never retried.
	KindAuth
	// KindNotFound is a 404 response.
	KindNotFound
	// KindValidation is any other error response, carrying the backend
	// message verbatim when one is present.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

type Error struct {
	Kind       Kind
	StatusCode int
	// Message is the backend-provided error message, empty when the
	// backend sent none or the failure never reached it.
	Message string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("api error (%s, status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error (%s): %s", e.Kind, e.Message)
}

// UserMessage renders the transient notice shown for this failure.
func (e *Error) UserMessage() string {
	switch e.Kind {
	case KindAuth:
		return "You don't have permission to perform this action."
	case KindNotFound:
		return "Resource not found or you don't have permission to access it."
	case KindNetwork:
		return "Network error. Please check your connection and try again."
	}
	if e.Message != "" {
		return e.Message
	}
	return "The request failed. Please try again."
}

// KindOf reports the classification of err, or 0 when err is not an api error.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return 0
}

// IsAuth reports whether err is a 401/403 failure.
func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}

// UserMessage renders a user-facing notice for any error, falling back to the
// error text for non-api failures.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	return err.Error()
}
