package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNetworkError(t *testing.T) {
	cause := errors.New("dial tcp 127.0.0.1:8001: connect: connection refused")
	err := NewNetworkError("send query", "/query", cause)

	if !errors.Is(err, ErrNetwork) {
		t.Error("Expected NetworkError to match ErrNetwork")
	}
	if errors.Is(err, ErrBackend) {
		t.Error("Expected NetworkError not to match ErrBackend")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected NetworkError to unwrap to its cause")
	}

	expected := "send query: " + cause.Error()
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}

	if err.Reason() != cause.Error() {
		t.Errorf("Reason() = %q, want %q", err.Reason(), cause.Error())
	}
}

func TestBackendError(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"with message", "timeout", "Error: timeout"},
		{"empty message falls back", "", "Error: Unknown error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewBackendError("/query", "failed", tt.message)
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
			if !IsBackendError(err) {
				t.Error("Expected IsBackendError to be true")
			}
			if IsNetworkError(err) {
				t.Error("Expected IsNetworkError to be false")
			}
			if err.Status != "failed" {
				t.Errorf("Status = %q, want failed", err.Status)
			}
		})
	}
}

func TestAPIError(t *testing.T) {
	err := NewAPIError(503, "check health", "/health")

	expected := "check health: unexpected status (HTTP 503)"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
	if GetHTTPStatus(err) != 503 {
		t.Errorf("GetHTTPStatus() = %d, want 503", GetHTTPStatus(err))
	}
	if GetEndpoint(err) != "/health" {
		t.Errorf("GetEndpoint() = %q, want /health", GetEndpoint(err))
	}
	if IsNetworkError(err) {
		t.Error("APIError must not be classified as a network error")
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("/files", "response is not JSON", "files")

	if !IsParseError(err) {
		t.Error("Expected IsParseError to be true")
	}
	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("Expected ParseError to match ErrInvalidResponse")
	}
	if err.Path != "files" {
		t.Errorf("Path = %q, want files", err.Path)
	}
}

func TestDownloadError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewDownloadError("report.csv", "failed to save file", cause)

	if !errors.Is(err, ErrDownload) {
		t.Error("Expected DownloadError to match ErrDownload")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected DownloadError to unwrap to its cause")
	}
	if !strings.Contains(err.Error(), "report.csv") {
		t.Errorf("Error() = %q, expected filename", err.Error())
	}
}

func TestHelpersOnWrappedErrors(t *testing.T) {
	base := NewAPIError(404, "list files", "/files")
	base.WithBody("not found")
	wrapped := fmt.Errorf("refresh: %w", base)

	if GetHTTPStatus(wrapped) != 404 {
		t.Errorf("GetHTTPStatus() = %d, want 404", GetHTTPStatus(wrapped))
	}
	if GetEndpoint(wrapped) != "/files" {
		t.Errorf("GetEndpoint() = %q, want /files", GetEndpoint(wrapped))
	}
	if GetResponseBody(wrapped) != "not found" {
		t.Errorf("GetResponseBody() = %q, want 'not found'", GetResponseBody(wrapped))
	}

	plain := errors.New("plain")
	if GetHTTPStatus(plain) != 0 || GetEndpoint(plain) != "" || GetResponseBody(plain) != "" {
		t.Error("Expected zero values for a plain error")
	}
	if GetHTTPStatus(nil) != 0 {
		t.Error("Expected 0 for nil error")
	}
}

func TestWithBodyTruncates(t *testing.T) {
	err := NewAPIError(500, "query", "/query")
	err.WithBody(strings.Repeat("x", maxBodyLen*2))

	if len(err.Body) != maxBodyLen {
		t.Errorf("len(Body) = %d, want %d", len(err.Body), maxBodyLen)
	}
}

func TestIsTimeoutError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", NewNetworkError("query", "/query", context.DeadlineExceeded), true},
		{"timeout text", errors.New("Client.Timeout exceeded while awaiting headers"), true},
		{"other", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTimeoutError(tt.err); got != tt.want {
				t.Errorf("IsTimeoutError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNetworkReason(t *testing.T) {
	cause := errors.New("Failed to fetch")
	if got := NetworkReason(NewNetworkError("send query", "/query", cause)); got != "Failed to fetch" {
		t.Errorf("NetworkReason() = %q, want 'Failed to fetch'", got)
	}
	if got := NetworkReason(errors.New("other")); got != "other" {
		t.Errorf("NetworkReason() = %q, want 'other'", got)
	}
	if got := NetworkReason(nil); got != "" {
		t.Errorf("NetworkReason(nil) = %q, want empty", got)
	}
}
