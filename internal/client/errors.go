package client

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can switch on it instead of
// inspecting concrete error types.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation: bad input caught before any request was made.
	KindValidation
	// KindAuth: missing or expired token, or a 401 from the backend.
	KindAuth
	// KindServer: the backend answered with a non-2xx status.
	KindServer
	// KindNetwork: no response was obtained.
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// ServiceError is the single error type returned by every service wrapper.
type ServiceError struct {
	Service    string
	Kind       Kind
	Message    string
	StatusCode int    // HTTP status, zero when no response was obtained
	Code       string // backend or validation error code, if any
	Err        error
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Service, msg, e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Service, msg)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a KindValidation error. It is used by request
// validation and the media checks, never by the transport.
func NewValidationError(service, code, message string) *ServiceError {
	return &ServiceError{Service: service, Kind: KindValidation, Code: code, Message: message}
}

// KindOf returns the kind of the first ServiceError in err's chain, or
// KindUnknown.
func KindOf(err error) Kind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindUnknown
}

func IsNetwork(err error) bool {
	return KindOf(err) == KindNetwork
}

func IsAuth(err error) bool {
	return KindOf(err) == KindAuth
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// StatusCode returns the HTTP status carried by err, or zero.
func StatusCode(err error) int {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// Message returns the human-readable message of err without the service
// prefix.
func Message(err error) string {
	var se *ServiceError
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
