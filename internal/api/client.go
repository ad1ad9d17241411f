package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/agentchat/internal/errors"
	"github.com/diogo/agentchat/internal/logging"
	"github.com/diogo/agentchat/internal/models"
)

// maxErrorBody bounds how much of a failed response is read for diagnostics
const maxErrorBody = 2048

// HTTPDoer is the subset of tls_client.HttpClient used by AgentClient
type HTTPDoer interface {
	Do(req *fhttp.Request) (*fhttp.Response, error)
}

// AgentClientInterface is the set of backend operations used by the TUI and commands
type AgentClientInterface interface {
	Health(ctx context.Context) error
	Query(ctx context.Context, prompt string) (*models.QueryResult, error)
	ListFiles(ctx context.Context) ([]models.FileEntry, error)
	DownloadFile(ctx context.Context, filename, dir string) (string, error)
	FileURL(filename string) string
	BaseURL() string
	MaxTurns() int
}

// AgentClient talks to the agent backend over HTTP.
// It holds no mutable state after construction and is safe for concurrent use.
type AgentClient struct {
	httpClient HTTPDoer
	baseURL    string
	maxTurns   int
	timeout    time.Duration
	proxy      string
	logger     *slog.Logger
}

// Ensure AgentClient implements AgentClientInterface
var _ AgentClientInterface = (*AgentClient)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*AgentClient)

// WithHTTPClient replaces the default TLS client transport
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *AgentClient) {
		c.httpClient = doer
	}
}

// WithMaxTurns sets the turn limit sent with every query
func WithMaxTurns(n int) ClientOption {
	return func(c *AgentClient) {
		c.maxTurns = n
	}
}

// WithTimeout sets the transport timeout. Zero disables it.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *AgentClient) {
		c.timeout = d
	}
}

// WithProxy routes requests through an HTTP proxy
func WithProxy(proxyURL string) ClientOption {
	return func(c *AgentClient) {
		c.proxy = proxyURL
	}
}

// WithLogger sets the logger used for request diagnostics
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *AgentClient) {
		c.logger = logger
	}
}

// NewClient creates a new AgentClient for the backend at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*AgentClient, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}

	client := &AgentClient{
		baseURL:  strings.TrimRight(u.String(), "/"),
		maxTurns: models.DefaultMaxTurns,
		timeout:  300 * time.Second,
		logger:   logging.Discard(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.maxTurns <= 0 {
		return nil, fmt.Errorf("max turns must be positive, got %d", client.maxTurns)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}
		if client.proxy != "" {
			options = append(options, tls_client.WithProxyUrl(client.proxy))
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// BaseURL returns the backend base address without a trailing slash
func (c *AgentClient) BaseURL() string {
	return c.baseURL
}

// MaxTurns returns the turn limit sent with every query
func (c *AgentClient) MaxTurns() int {
	return c.maxTurns
}

// FileURL returns the retrieval URL of a generated file
func (c *AgentClient) FileURL(filename string) string {
	return c.baseURL + EndpointFiles + "/" + url.PathEscape(filename)
}

// Health checks backend liveness. Any 2xx status is healthy.
func (c *AgentClient) Health(ctx context.Context) error {
	resp, err := c.do(ctx, fhttp.MethodGet, EndpointHealth, nil)
	if err != nil {
		return apierrors.NewNetworkError("check health", EndpointHealth, err)
	}
	defer closeBody(resp)

	if !isSuccess(resp.StatusCode) {
		apiErr := apierrors.NewAPIError(resp.StatusCode, "check health", EndpointHealth)
		apiErr.WithBody(readErrorBody(resp))
		return apiErr
	}
	return nil
}

// Query submits a prompt and returns the decoded result.
// Backend-reported failures are returned in the result, not as an error;
// an error means the request failed or the body was not a query result.
func (c *AgentClient) Query(ctx context.Context, prompt string) (*models.QueryResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, apierrors.ErrEmptyPrompt
	}

	payload, err := json.Marshal(models.QueryRequest{Prompt: prompt, MaxTurns: c.maxTurns})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	resp, err := c.do(ctx, fhttp.MethodPost, EndpointQuery, payload)
	if err != nil {
		return nil, apierrors.NewNetworkError("send query", EndpointQuery, err)
	}
	defer closeBody(resp)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError("read query response", EndpointQuery, err)
	}

	// Non-2xx bodies are still decoded: the backend reports failures in-band.
	if !gjson.ValidBytes(body) || !gjson.ParseBytes(body).IsObject() {
		parseErr := apierrors.NewParseError(EndpointQuery, "response is not a JSON object", "")
		parseErr.HTTPStatus = resp.StatusCode
		parseErr.WithBody(string(body))
		return nil, parseErr
	}

	result := gjson.ParseBytes(body)
	return &models.QueryResult{
		Status:   result.Get(PathStatus).String(),
		Response: result.Get(PathResponse).String(),
		Error:    result.Get(PathError).String(),
	}, nil
}

// ResultError converts a backend-reported failure into a BackendError.
// It returns nil for a successful result.
func ResultError(result *models.QueryResult) error {
	if result.Succeeded() {
		return nil
	}
	if result == nil {
		return apierrors.NewBackendError(EndpointQuery, "", "")
	}
	return apierrors.NewBackendError(EndpointQuery, result.Status, result.Error)
}

// ListFiles returns the files the backend has generated.
// A response without a files array is an empty listing.
func (c *AgentClient) ListFiles(ctx context.Context) ([]models.FileEntry, error) {
	resp, err := c.do(ctx, fhttp.MethodGet, EndpointFiles, nil)
	if err != nil {
		return nil, apierrors.NewNetworkError("list files", EndpointFiles, err)
	}
	defer closeBody(resp)

	if !isSuccess(resp.StatusCode) {
		apiErr := apierrors.NewAPIError(resp.StatusCode, "list files", EndpointFiles)
		apiErr.WithBody(readErrorBody(resp))
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierrors.NewNetworkError("read file listing", EndpointFiles, err)
	}
	if !gjson.ValidBytes(body) {
		parseErr := apierrors.NewParseError(EndpointFiles, "response is not valid JSON", "")
		parseErr.WithBody(string(body))
		return nil, parseErr
	}

	files := gjson.GetBytes(body, PathFiles)
	entries := make([]models.FileEntry, 0, len(files.Array()))
	if !files.Exists() || files.Type == gjson.Null {
		return entries, nil
	}
	if !files.IsArray() {
		return nil, apierrors.NewParseError(EndpointFiles, "files is not an array", PathFiles)
	}

	for i, item := range files.Array() {
		name := item.Get(PathFilename).String()
		if name == "" {
			c.logger.Debug("skipping file entry without filename", "index", i)
			continue
		}
		entries = append(entries, models.FileEntry{Filename: name})
	}
	return entries, nil
}

// do builds and executes a request against the backend
func (c *AgentClient) do(ctx context.Context, method, endpoint string, payload []byte) (*fhttp.Response, error) {
	return c.doURL(ctx, method, endpoint, c.baseURL+endpoint, payload)
}

func (c *AgentClient) doURL(ctx context.Context, method, endpoint, target string, payload []byte) (*fhttp.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := fhttp.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			"method", method, "endpoint", endpoint, "duration", time.Since(start), "err", err)
		return nil, err
	}
	c.logger.Debug("request",
		"method", method, "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func readErrorBody(resp *fhttp.Response) string {
	if resp == nil || resp.Body == nil {
		return ""
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return string(data)
}

func closeBody(resp *fhttp.Response) {
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
}
