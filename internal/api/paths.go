// Package api provides the HTTP client for the agent backend.
package api

// Backend endpoints, relative to the configured base URL.
const (
	EndpointHealth = "/health"
	EndpointQuery  = "/query"
	EndpointFiles  = "/files"
)

// GJSON paths for extracting values from backend responses.
const (
	// Query response: {"status": "success", "response": "..."} or {"status": "...", "error": "..."}
	PathStatus   = "status"
	PathResponse = "response"
	PathError    = "error"

	// File listing: {"files": [{"filename": "..."}, ...]}
	PathFiles    = "files"
	PathFilename = "filename"
)
