// Package apperr defines the error taxonomy shared by the mutation
// pipeline, the blob store and the web layer.
package apperr

import (
	"errors"
	"strings"
)

// Kind classifies an error for user-facing reporting.
type Kind string

const (
	// KindValidation marks input that failed validation.
	KindValidation Kind = "validation"
	// KindDuplicate marks a uniqueness violation.
	KindDuplicate Kind = "duplicate"
	// KindNetwork marks a failed remote call.
	KindNetwork Kind = "network"
	// KindPermission marks an authorization failure.
	KindPermission Kind = "permission"
	// KindStorage marks a persistence failure, including quota exhaustion.
	KindStorage Kind = "storage"
	// KindUnknown is the fallback classification.
	KindUnknown Kind = "unknown"
)

// Error is a classified application error. Kinds are assigned at the
// throw site so callers never have to sniff message strings.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}

	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error wrapping an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Classify returns the Kind of err. Classified errors report their own
// kind. Errors from drivers and other foreign code are matched against
// well-known message fragments, the policy the product shipped with;
// anything else is KindUnknown.
func Classify(err error) Kind {
	if err == nil {
		return KindUnknown
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "validation") || strings.Contains(msg, "invalid"):
		return KindValidation
	case strings.Contains(msg, "duplicate") || strings.Contains(msg, "exists"):
		return KindDuplicate
	case strings.Contains(msg, "network") || strings.Contains(msg, "fetch"):
		return KindNetwork
	case strings.Contains(msg, "permission") || strings.Contains(msg, "access"):
		return KindPermission
	case strings.Contains(msg, "storage") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "disk") || strings.Contains(msg, "no space"):
		return KindStorage
	default:
		return KindUnknown
	}
}

// UserMessage maps a Kind to the message shown to the user.
func UserMessage(kind Kind) string {
	switch kind {
	case KindValidation:
		return "Please check your input and fix any validation errors."
	case KindDuplicate:
		return "An item with this name already exists. Please choose a different name."
	case KindNetwork:
		return "A network error occurred. Please check your connection and try again."
	case KindPermission:
		return "You do not have permission to perform this action."
	case KindStorage:
		return "Storage is full. Free up some space and try again."
	default:
		return "Something went wrong. Please try again."
	}
}
