package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ServerErrorMessage is reported for every 5xx response; upstream bodies are not trusted.
const ServerErrorMessage = "Server error"

// TransportError is a failure before any HTTP status was received.
type TransportError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("lenta network error (%s): %v", e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline or timeout.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// ServerError is an upstream 5xx response.
type ServerError struct {
	StatusCode int
	URL        string
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("lenta server error (status %d, %s): %s", e.StatusCode, e.URL, ServerErrorMessage)
}

// ClientError is any other non-200 upstream response.
type ClientError struct {
	StatusCode int
	Message    string
	URL        string
}

// Error implements the error interface.
func (e *ClientError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("lenta client error (status %d, %s)", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("lenta client error (status %d, %s): %s", e.StatusCode, e.URL, e.Message)
}

// IsNotFound reports whether err is a 404 ClientError.
func IsNotFound(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.StatusCode == http.StatusNotFound
}

// Classify returns the class of a pipeline error, or "" for other errors.
func Classify(err error) ErrorClass {
	var (
		transportErr *TransportError
		serverErr    *ServerError
		clientErr    *ClientError
	)
	switch {
	case errors.As(err, &transportErr):
		return ErrorClassNetwork
	case errors.As(err, &serverErr):
		return ErrorClassServer
	case errors.As(err, &clientErr):
		return ErrorClassClient
	default:
		return ""
	}
}
