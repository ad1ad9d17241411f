// Package errors provides the error taxonomy for the agent backend client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrNetwork         = errors.New("network error")
	ErrBackend         = errors.New("backend reported failure")
	ErrInvalidResponse = errors.New("invalid response format")
	ErrDownload        = errors.New("download failed")
	ErrEmptyPrompt     = errors.New("prompt cannot be empty")
)

// UnknownBackendError is the text used when the backend fails without an error message
const UnknownBackendError = "Unknown error"

// maxBodyLen bounds how much of a response body is kept for diagnostics
const maxBodyLen = 2048

// ChatError is the base error carried by every failure talking to the backend
type ChatError struct {
	Operation  string
	Endpoint   string
	HTTPStatus int
	Message    string
	Body       string
	Cause      error
}

func (e *ChatError) Error() string {
	var sb strings.Builder
	if e.Operation != "" {
		sb.WriteString(e.Operation)
		sb.WriteString(": ")
	}
	if e.Message != "" {
		sb.WriteString(e.Message)
	} else if e.Cause != nil {
		sb.WriteString(e.Cause.Error())
	} else {
		sb.WriteString("request failed")
	}
	if e.HTTPStatus > 0 {
		fmt.Fprintf(&sb, " (HTTP %d)", e.HTTPStatus)
	}
	return sb.String()
}

// Unwrap returns the underlying cause
func (e *ChatError) Unwrap() error {
	return e.Cause
}

// WithBody attaches a (truncated) response body for diagnostics
func (e *ChatError) WithBody(body string) *ChatError {
	if len(body) > maxBodyLen {
		body = body[:maxBodyLen]
	}
	e.Body = body
	return e
}

// NetworkError represents a transport failure: the request could not be sent
// or no response was received.
type NetworkError struct {
	ChatError
}

// Is allows comparison with sentinel errors
func (e *NetworkError) Is(target error) bool {
	if target == ErrNetwork {
		return true
	}
	_, ok := target.(*NetworkError)
	return ok
}

// Reason returns the bare transport failure text, without operation context
func (e *NetworkError) Reason() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}

// NewNetworkError creates a NetworkError for an endpoint
func NewNetworkError(operation, endpoint string, cause error) *NetworkError {
	return &NetworkError{ChatError{
		Operation: operation,
		Endpoint:  endpoint,
		Cause:     cause,
	}}
}

// BackendError represents an application failure reported in-band by the backend
type BackendError struct {
	ChatError
	Status string
}

func (e *BackendError) Error() string {
	return "Error: " + e.Message
}

// Is allows comparison with sentinel errors
func (e *BackendError) Is(target error) bool {
	if target == ErrBackend {
		return true
	}
	_, ok := target.(*BackendError)
	return ok
}

// NewBackendError creates a BackendError, falling back to a generic message
func NewBackendError(endpoint, status, message string) *BackendError {
	if message == "" {
		message = UnknownBackendError
	}
	return &BackendError{
		ChatError: ChatError{Endpoint: endpoint, Message: message},
		Status:    status,
	}
}

// APIError represents a non-success HTTP status where the status itself is the failure
type APIError struct {
	ChatError
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, operation, endpoint string) *APIError {
	return &APIError{ChatError{
		Operation:  operation,
		Endpoint:   endpoint,
		HTTPStatus: statusCode,
		Message:    "unexpected status",
	}}
}

// ParseError represents a response body that does not match the expected contract
type ParseError struct {
	ChatError
	Path string
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(endpoint, message, path string) *ParseError {
	return &ParseError{
		ChatError: ChatError{Operation: "parse response", Endpoint: endpoint, Message: message},
		Path:      path,
	}
}

// DownloadError represents a failure fetching or saving a generated file
type DownloadError struct {
	ChatError
	Filename string
}

// Is allows comparison with sentinel errors
func (e *DownloadError) Is(target error) bool {
	if target == ErrDownload {
		return true
	}
	_, ok := target.(*DownloadError)
	return ok
}

// NewDownloadError creates a new DownloadError
func NewDownloadError(filename, message string, cause error) *DownloadError {
	return &DownloadError{
		ChatError: ChatError{Operation: "download " + filename, Message: message, Cause: cause},
		Filename:  filename,
	}
}

// asChatError extracts the embedded ChatError from any error in the chain
func asChatError(err error) *ChatError {
	if err == nil {
		return nil
	}

	var ce *ChatError
	if errors.As(err, &ce) {
		return ce
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return &ne.ChatError
	}
	var be *BackendError
	if errors.As(err, &be) {
		return &be.ChatError
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return &ae.ChatError
	}
	var pe *ParseError
	if errors.As(err, &pe) {
		return &pe.ChatError
	}
	var de *DownloadError
	if errors.As(err, &de) {
		return &de.ChatError
	}
	return nil
}

// GetHTTPStatus returns the HTTP status attached to err, or 0
func GetHTTPStatus(err error) int {
	if ce := asChatError(err); ce != nil {
		return ce.HTTPStatus
	}
	return 0
}

// GetEndpoint returns the endpoint attached to err, or ""
func GetEndpoint(err error) string {
	if ce := asChatError(err); ce != nil {
		return ce.Endpoint
	}
	return ""
}

// GetResponseBody returns the response body attached to err, or ""
func GetResponseBody(err error) string {
	if ce := asChatError(err); ce != nil {
		return ce.Body
	}
	return ""
}

// IsNetworkError reports whether err is a transport failure
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

// IsBackendError reports whether err is a backend-reported application failure
func IsBackendError(err error) bool {
	return errors.Is(err, ErrBackend)
}

// IsParseError reports whether err is a malformed response
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// IsTimeoutError reports whether err was caused by a deadline or transport timeout
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timeout")
}

// NetworkReason returns the transport failure text for display in the chat log.
// For errors that are not network errors it returns err.Error().
func NetworkReason(err error) string {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Reason()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
