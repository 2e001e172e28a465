package client

import (
	"fmt"
	"net/http"
)

// ErrorKind discriminates the origin of a failed extraction
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindHTTP      ErrorKind = "http"
	KindDecode    ErrorKind = "decode"
)

// RequestFailedMessage is the fixed text of every non-2xx failure
const RequestFailedMessage = "Failed to extract insights"

// Error is returned by ExtractInsights for every failure
type Error struct {
	Kind ErrorKind
	// Status is the HTTP status code for KindHTTP, zero otherwise
	Status int
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		return RequestFailedMessage
	case KindDecode:
		return fmt.Sprintf("failed to decode response: %v", e.Err)
	default:
		if e.Err == nil {
			return "request failed"
		}
		return e.Err.Error()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusText returns e.g. "500 Internal Server Error" for KindHTTP
func (e *Error) StatusText() string {
	if e.Kind != KindHTTP {
		return ""
	}
	return fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status))
}

// IsSuccessStatus returns true if status code is 2xx
func IsSuccessStatus(status int) bool {
	return status >= 200 && status < 300
}

// IsClientErrorStatus returns true if status code is 4xx
func IsClientErrorStatus(status int) bool {
	return status >= 400 && status < 500
}

// IsServerErrorStatus returns true if status code is 5xx
func IsServerErrorStatus(status int) bool {
	return status >= 500 && status < 600
}
