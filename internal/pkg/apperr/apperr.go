// Package apperr classifies request failures and maps them to HTTP statuses.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the failure class of an Error.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthorization
	KindDuplicate
	KindConfiguration
	KindUpstream
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindDuplicate:
		return "duplicate"
	case KindConfiguration:
		return "configuration"
	case KindUpstream:
		return "upstream"
	case KindTransport:
		return "transport"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Status  int
	Message string

	// UpstreamStatus and UpstreamBody describe a failed content-source call.
	UpstreamStatus int
	UpstreamBody   string

	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Validation is a 400 for malformed or missing client input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Status: http.StatusBadRequest, Message: message}
}

// Authorization is a 401 for a missing or wrong shared secret or token.
func Authorization(message string) *Error {
	return &Error{Kind: KindAuthorization, Status: http.StatusUnauthorized, Message: message}
}

// Duplicate is a 409 for an identity that already exists.
func Duplicate(message string) *Error {
	return &Error{Kind: KindDuplicate, Status: http.StatusConflict, Message: message}
}

// Misconfigured is a 500 for a required server setting that is absent.
func Misconfigured(message string) *Error {
	return &Error{Kind: KindConfiguration, Status: http.StatusInternalServerError, Message: message}
}

// NotImplemented is a 501 for a feature whose credentials are not provisioned.
func NotImplemented(message string) *Error {
	return &Error{Kind: KindConfiguration, Status: http.StatusNotImplemented, Message: message}
}

// Upstream is a 502 carrying the content source's status and body.
func Upstream(message string, status int, body string, err error) *Error {
	return &Error{
		Kind:           KindUpstream,
		Status:         http.StatusBadGateway,
		Message:        message,
		UpstreamStatus: status,
		UpstreamBody:   body,
		Err:            err,
	}
}

// Transport wraps a mail delivery failure. It is logged, never surfaced.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Status: http.StatusInternalServerError, Message: "mail delivery failed", Err: err}
}

// Internal wraps an unexpected failure behind a generic message.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: message, Err: err}
}

// As extracts an *Error from err, classifying unknown errors as internal.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("Internal server error", err)
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
