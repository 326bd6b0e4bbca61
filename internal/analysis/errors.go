package analysis

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a RequestError.
type ErrorKind string

const (
	// KindTransport is a failure to reach the service or read its response
	KindTransport ErrorKind = "transport"
	// KindStatus is a non-2xx response
	KindStatus ErrorKind = "status"
	// KindDecode is a 2xx response whose body is not the expected JSON
	KindDecode ErrorKind = "decode"
	// KindSchema is a 2xx JSON body that does not satisfy the response contract
	KindSchema ErrorKind = "schema"
	// KindInvalid is a request rejected before anything was sent
	KindInvalid ErrorKind = "invalid"
)

// RequestError is the single failure shape returned by the client.
// Message is always human-readable and is what callers show to users.
type RequestError struct {
	Kind       ErrorKind
	Endpoint   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// Describe returns a log-friendly description including kind, endpoint and cause.
func (e *RequestError) Describe() string {
	desc := fmt.Sprintf("%s error for %s", e.Kind, e.Endpoint)
	if e.StatusCode != 0 {
		desc += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	desc += ": " + e.Message
	if e.Cause != nil && e.Cause.Error() != e.Message {
		desc += fmt.Sprintf(": %v", e.Cause)
	}
	return desc
}

// IsKind reports whether err is a RequestError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr) && reqErr.Kind == kind
}
