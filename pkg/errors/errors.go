// Package errors provides the error types shared by the numisref packages.
// Sentinels support errors.Is checks; typed errors carry the context needed
// to map a failure onto a lookup status.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is and As are re-exported so callers need a single errors import.
var (
	Is = errors.Is
	As = errors.As
)

// Common sentinel errors
var (
	// ErrNotFound indicates that a requested type or reference was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrRateLimited indicates that a rate limit was hit, locally or upstream
	ErrRateLimited = errors.New("rate limited")

	// ErrTimeout indicates that an operation timed out
	ErrTimeout = errors.New("operation timed out")

	// ErrUnsupported indicates a catalog system with no lookup service
	ErrUnsupported = errors.New("unsupported")

	// ErrProviderUnavailable indicates that a remote service is temporarily unavailable
	ErrProviderUnavailable = errors.New("provider unavailable")
)

// APIError represents a non-success response from a remote catalog service.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Endpoint   string
	Err        error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API error from %s (status %d): %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error from %s: %s", e.Service, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *APIError) Is(target error) bool {
	switch {
	case e.StatusCode == http.StatusTooManyRequests:
		return target == ErrRateLimited
	case e.StatusCode == http.StatusNotFound:
		return target == ErrNotFound
	case e.StatusCode == http.StatusGatewayTimeout:
		return target == ErrTimeout || target == ErrProviderUnavailable
	case e.StatusCode >= 500:
		return target == ErrProviderUnavailable
	}
	return false
}

// NewAPIError creates a new APIError
func NewAPIError(service string, statusCode int, message string) *APIError {
	return &APIError{
		Service:    service,
		StatusCode: statusCode,
		Message:    message,
	}
}

// ParseError represents a failure to decode a service response or a
// malformed reference.
type ParseError struct {
	Format  string // "json", "jsonld", "html", "reference"
	Input   string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("%s parse error for %q: %s", e.Format, e.Input, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewParseError creates a new ParseError
func NewParseError(format, input, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		Input:   input,
		Message: message,
		Err:     err,
	}
}

// RateLimitError reports a request rejected by the local rate limiter.
type RateLimitError struct {
	Service    string
	Limit      int
	Window     time.Duration
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s: %d requests per %s (retry after %s)",
		e.Service, e.Limit, e.Window, e.RetryAfter.Round(time.Second))
}

// Is implements errors.Is support
func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimited
}

// UnsupportedError reports a recognised catalog system with no service.
type UnsupportedError struct {
	System string
}

// Error implements the error interface
func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("no lookup service registered for %s", e.System)
}

// Is implements errors.Is support
func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// Helper functions for error checking

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRateLimited checks if an error is a rate limit error
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}

// IsUnsupported checks if an error reports a missing service
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// IsProviderUnavailable checks if an error indicates service unavailability
func IsProviderUnavailable(err error) bool {
	return errors.Is(err, ErrProviderUnavailable)
}

// IsTimeout checks if an error is a timeout. Besides ErrTimeout it
// recognises context deadlines and network errors reporting Timeout().
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
