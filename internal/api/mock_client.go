package api

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/diogo/agentchat/internal/models"
)

// MockAgentClient is a mock implementation of AgentClientInterface for testing
type MockAgentClient struct {
	mu sync.Mutex

	// Mock return values
	HealthErr       error
	QueryResultVal  *models.QueryResult
	QueryErr        error
	FilesVal        []models.FileEntry
	FilesErr        error
	DownloadPathVal string
	DownloadErr     error
	BaseURLVal      string
	MaxTurnsVal     int

	// Call counters/recorders
	HealthCalls    int
	QueryCalls     int
	ListFilesCalls int
	DownloadCalls  int
	LastPrompt     string
	LastDownload   string
}

// Ensure MockAgentClient implements AgentClientInterface
var _ AgentClientInterface = (*MockAgentClient)(nil)

func (m *MockAgentClient) Health(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HealthCalls++
	return m.HealthErr
}

func (m *MockAgentClient) Query(ctx context.Context, prompt string) (*models.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueryCalls++
	m.LastPrompt = prompt
	return m.QueryResultVal, m.QueryErr
}

func (m *MockAgentClient) ListFiles(ctx context.Context) ([]models.FileEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListFilesCalls++
	return m.FilesVal, m.FilesErr
}

func (m *MockAgentClient) DownloadFile(ctx context.Context, filename, dir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DownloadCalls++
	m.LastDownload = filename
	if m.DownloadPathVal == "" && m.DownloadErr == nil {
		return filepath.Join(dir, SanitizeFilename(filename)), nil
	}
	return m.DownloadPathVal, m.DownloadErr
}

func (m *MockAgentClient) FileURL(filename string) string {
	return m.BaseURL() + EndpointFiles + "/" + filename
}

func (m *MockAgentClient) BaseURL() string {
	if m.BaseURLVal == "" {
		return "http://localhost:8001"
	}
	return m.BaseURLVal
}

func (m *MockAgentClient) MaxTurns() int {
	if m.MaxTurnsVal == 0 {
		return models.DefaultMaxTurns
	}
	return m.MaxTurnsVal
}

// Calls returns a snapshot of the call counters: health, query, list files, download
func (m *MockAgentClient) Calls() (health, query, listFiles, download int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.HealthCalls, m.QueryCalls, m.ListFilesCalls, m.DownloadCalls
}
