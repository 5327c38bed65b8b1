// Package apperr defines the tagged error kinds shared by the storage,
// service and HTTP layers. Repositories and services return *Error values
// so that handlers and the outer error boundary can map failures to HTTP
// statuses without comparing error strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure. The zero value is Internal so that an
// unclassified error is never accidentally treated as a client fault.
type Kind int

const (
	Internal        Kind = iota // unexpected failure, store unreachable, bugs
	Unauthenticated             // missing/invalid/expired credential, inactive principal
	Forbidden                   // authenticated but role not allowed
	InvalidInput                // schema or business-rule validation failure
	NotFound                    // referenced entity absent
	Conflict                    // uniqueness or state conflict
)

// FieldError is one violated constraint, addressed by its dotted location
// in the request (e.g. "body.email", "params.id").
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error carries a kind, a caller-safe message and optionally the per-field
// violations that produced it.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an error of the given kind with a caller-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches an underlying cause. The cause is logged server-side but
// never serialized to clients.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Validation builds an InvalidInput error carrying field violations.
func Validation(fields []FieldError) *Error {
	return &Error{Kind: InvalidInput, Message: "Validation failed", Fields: fields}
}

// KindOf extracts the kind from err. Non-apperr errors report Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
