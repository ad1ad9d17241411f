// Package fakebackend is an in-memory implementation of the agent backend
// HTTP contract. It backs the client tests and the mock-backend command.
package fakebackend

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/diogo/agentchat/internal/logging"
	"github.com/diogo/agentchat/internal/models"
)

// Reply is what a Responder produces for one query
type Reply struct {
	Status   string
	Response string
	Error    string
	// Files are added to the backend's file store after the reply is sent.
	Files map[string][]byte
}

// Responder computes the reply to a query
type Responder func(req models.QueryRequest) Reply

// EchoResponder answers every query with its prompt and stores the answer as a file
func EchoResponder(req models.QueryRequest) Reply {
	text := "Echo: " + req.Prompt
	return Reply{
		Status:   models.StatusSuccess,
		Response: text,
		Files:    map[string][]byte{"echo.txt": []byte(text + "\n")},
	}
}

// Backend holds the fake backend state
type Backend struct {
	mu           sync.Mutex
	responder    Responder
	healthStatus int
	files        map[string][]byte
	order        []string
	queries      []models.QueryRequest
	logger       *slog.Logger
}

// Option configures a Backend
type Option func(*Backend)

// WithResponder sets the query responder
func WithResponder(r Responder) Option {
	return func(b *Backend) {
		b.responder = r
	}
}

// WithLogger sets the access logger
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = logger
	}
}

// WithFile seeds a generated file
func WithFile(name string, content []byte) Option {
	return func(b *Backend) {
		b.putFile(name, content)
	}
}

// New creates a healthy backend with no files
func New(opts ...Option) *Backend {
	b := &Backend{
		responder:    EchoResponder,
		healthStatus: http.StatusOK,
		files:        make(map[string][]byte),
		logger:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SetHealthStatus changes the status returned by the health endpoint
func (b *Backend) SetHealthStatus(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.healthStatus = status
}

// Queries returns the query requests received so far
func (b *Backend) Queries() []models.QueryRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.QueryRequest, len(b.queries))
	copy(out, b.queries)
	return out
}

// Filenames returns the stored filenames in creation order
func (b *Backend) Filenames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// putFile stores content under name; the caller must hold mu or own b exclusively
func (b *Backend) putFile(name string, content []byte) {
	if _, exists := b.files[name]; !exists {
		b.order = append(b.order, name)
	}
	b.files[name] = content
}

// Router returns the HTTP handler serving the backend contract
func (b *Backend) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(accessLog(b.logger))
	r.Use(recoverer(b.logger))

	r.Get("/health", b.handleHealth)
	r.Post("/query", b.handleQuery)
	r.Get("/files", b.handleListFiles)
	r.Get("/files/{filename}", b.handleGetFile)
	return r
}

func (b *Backend) handleHealth(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status := b.healthStatus
	b.mu.Unlock()

	body := map[string]any{"status": "healthy"}
	if status < 200 || status >= 300 {
		body = map[string]any{"status": "unhealthy"}
	}
	writeJSON(w, status, body)
}

func (b *Backend) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"status": "error", "error": "prompt is required"})
		return
	}

	b.mu.Lock()
	b.queries = append(b.queries, req)
	responder := b.responder
	b.mu.Unlock()

	reply := responder(req)

	b.mu.Lock()
	for name, content := range reply.Files {
		b.putFile(name, content)
	}
	b.mu.Unlock()

	body := map[string]any{"status": reply.Status}
	if reply.Status == models.StatusSuccess {
		body["response"] = reply.Response
	} else if reply.Error != "" {
		body["error"] = reply.Error
	}
	writeJSON(w, http.StatusOK, body)
}

func (b *Backend) handleListFiles(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	files := make([]models.FileEntry, 0, len(b.order))
	for _, name := range b.order {
		files = append(files, models.FileEntry{Filename: name})
	}
	b.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (b *Backend) handleGetFile(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "filename"))
	if err != nil {
		http.Error(w, "bad filename", http.StatusBadRequest)
		return
	}

	b.mu.Lock()
	content, ok := b.files[name]
	b.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": fmt.Sprintf("file %q not found", name)})
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// writeJSON writes a JSON response with status and sensible headers.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
