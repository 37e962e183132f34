// Package errors provides the error taxonomy for chat exchanges.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrEmptyMessage         = errors.New("message is empty")
	ErrInvalidResponse      = errors.New("invalid response format")
	ErrUnrecognizedResponse = errors.New("response has neither reply nor error")
	ErrClientClosed         = errors.New("client is closed")
)

// DomainError is a problem reported explicitly by the chat backend through
// the "error" field of its response. It is not a transport failure.
type DomainError struct {
	Message    string
	StatusCode int
}

// Error returns the backend's message verbatim
func (e *DomainError) Error() string {
	return e.Message
}

// Is allows comparison with another DomainError
func (e *DomainError) Is(target error) bool {
	_, ok := target.(*DomainError)
	return ok
}

// NewDomainError creates a new DomainError
func NewDomainError(statusCode int, message string) *DomainError {
	return &DomainError{Message: message, StatusCode: statusCode}
}

// NetworkError represents a failure to reach the endpoint or read its reply
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("%s failed at %s: %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// APIError represents a non-2xx answer without a usable body
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError carrying the (truncated) response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	e := NewAPIError(statusCode, endpoint, message)
	e.Body = body
	return e
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// IsDomainError reports whether err was reported by the backend itself
func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsParseError reports whether err comes from an unreadable body
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// IsUnrecognized reports whether the backend answered with neither field
func IsUnrecognized(err error) bool {
	return errors.Is(err, ErrUnrecognizedResponse)
}

// GetHTTPStatus extracts the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.StatusCode
	}
	return 0
}

// GetEndpoint extracts the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Endpoint
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Endpoint
	}
	return ""
}

// GetResponseBody extracts the response body carried by err, or ""
func GetResponseBody(err error) string {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Body
	}
	return ""
}
