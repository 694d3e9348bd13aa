package provider

import (
	"errors"
	"fmt"
)

// Kind classifies an upload failure.
type Kind int

const (
	// KindValidation: the file breaks the provider's type or size policy.
	KindValidation Kind = iota + 1
	// KindMissingInput: the request carried no file.
	KindMissingInput
	// KindTransport: the upstream call failed or returned a non-2xx status.
	KindTransport
	// KindUpstream: the call succeeded but the provider reported failure.
	KindUpstream
	// KindConfig: the provider's endpoint or credential is not configured.
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindMissingInput:
		return "missing_input"
	case KindTransport:
		return "transport"
	case KindUpstream:
		return "upstream"
	case KindConfig:
		return "config"
	}
	return "unknown"
}

// Error is the single error type returned by adapters and the gateway.
// Message is safe to show to the end user; Detail is for logs only.
type Error struct {
	Provider ID
	Kind     Kind
	Message  string
	Detail   string
	Err      error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func newError(id ID, kind Kind, msg string) *Error {
	return &Error{Provider: id, Kind: kind, Message: msg}
}

func errorf(id ID, kind Kind, format string, args ...any) *Error {
	return newError(id, kind, fmt.Sprintf(format, args...))
}

// MissingInput reports a request without a file part.
func MissingInput() *Error {
	return newError("", KindMissingInput, "No file provided")
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

// IsClientError reports whether err was caused by the caller's input rather
// than by the gateway or an upstream host.
func IsClientError(err error) bool {
	switch KindOf(err) {
	case KindValidation, KindMissingInput:
		return true
	}
	return false
}
