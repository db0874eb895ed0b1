package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the client.
var (
	// ErrRequestBlocked is returned when a request is refused locally because
	// the site asked us to back off and the cooldown has not elapsed yet.
	ErrRequestBlocked = errors.New("request blocked: cooldown active")

	// ErrUnexpectedStatus is wrapped by TransportError for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// ErrorClass represents a classification of transport failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses and locally blocked requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents connectivity errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassTimeout represents requests that exceeded their deadline.
	ErrorClassTimeout ErrorClass = "timeout"
)

// TransportError is returned for every failed GET: connectivity failures,
// timeouts and non-success statuses.
type TransportError struct {
	URL        string
	StatusCode int
	Class      ErrorClass
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("transport %s error (status %d %s): %s: %v",
			e.Class, e.StatusCode, http.StatusText(e.StatusCode), e.URL, e.Err)
	}
	return fmt.Sprintf("transport %s error: %s: %v", e.Class, e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether the site answered 404.
func (e *TransportError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// Temporary reports whether the same request may succeed later.
func (e *TransportError) Temporary() bool {
	switch e.Class {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork, ErrorClassTimeout:
		return true
	default:
		return false
	}
}
