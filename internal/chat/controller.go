// Package chat holds the chat client state machine: the message log, the
// generated file list, the connection status and the loading flag.
//
// A Controller is owned by a single event loop. Network calls happen
// elsewhere and their outcomes are applied here, so no locking is needed.
package chat

import (
	"log/slog"
	"strings"

	apierrors "github.com/diogo/agentchat/internal/errors"
	"github.com/diogo/agentchat/internal/logging"
	"github.com/diogo/agentchat/internal/models"
)

// NoFilesPlaceholder is shown in place of an empty file list
const NoFilesPlaceholder = "No files generated yet"

// Controller applies user actions and backend outcomes to the chat state
type Controller struct {
	messages []models.Message
	files    []models.FileEntry
	status   models.Status
	loading  bool
	logger   *slog.Logger
}

// NewController creates a controller in the initial state: no messages,
// no files, status unknown, not loading.
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		status: models.UnknownStatus(),
		logger: logger,
	}
}

// Submit accepts a prompt for sending. It returns the trimmed prompt and true
// when the caller should issue the query. Empty input, or input while a query
// is in flight, is ignored.
func (c *Controller) Submit(text string) (string, bool) {
	prompt := strings.TrimSpace(text)
	if prompt == "" || c.loading {
		return "", false
	}

	c.append(models.RoleUser, prompt)
	c.loading = true
	return prompt, true
}

// Complete applies the outcome of a query. It reports whether the file list
// should be refreshed, which is only the case after a successful response.
func (c *Controller) Complete(result *models.QueryResult, err error) (refreshFiles bool) {
	c.loading = false

	switch {
	case err != nil:
		c.append(models.RoleAssistantError, "Connection error: "+apierrors.NetworkReason(err))
		c.status = models.Status{State: models.StateError, Label: models.LabelConnectionError}
		c.logger.Warn("query failed", "error", err)
		return false

	case result.Succeeded():
		c.append(models.RoleAssistant, result.Response)
		return true

	default:
		var status, msg string
		if result != nil {
			status, msg = result.Status, result.Error
		}
		backendErr := apierrors.NewBackendError("", status, msg)
		c.append(models.RoleAssistantError, backendErr.Error())
		c.logger.Info("backend reported failure", "status", status, "error", backendErr.Message)
		return false
	}
}

// ApplyHealth applies the outcome of a health check
func (c *Controller) ApplyHealth(err error) {
	switch {
	case err == nil:
		c.status = models.Status{State: models.StateConnected, Label: models.LabelConnected}
	case apierrors.IsNetworkError(err):
		c.status = models.Status{State: models.StateError, Label: models.LabelDisconnected}
	default:
		c.status = models.Status{State: models.StateError, Label: models.LabelBackendError}
	}
}

// ApplyFiles applies the outcome of a file listing. On error the previous
// list is kept and the failure is only logged.
func (c *Controller) ApplyFiles(files []models.FileEntry, err error) {
	if err != nil {
		c.logger.Warn("error loading files", "error", err, "endpoint", apierrors.GetEndpoint(err))
		return
	}

	c.files = make([]models.FileEntry, len(files))
	copy(c.files, files)
}

// Messages returns the chat log in send/receive order
func (c *Controller) Messages() []models.Message {
	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Files returns the most recently fetched file list
func (c *Controller) Files() []models.FileEntry {
	out := make([]models.FileEntry, len(c.files))
	copy(out, c.files)
	return out
}

// Status returns the connection status
func (c *Controller) Status() models.Status {
	return c.status
}

// Loading reports whether a query is in flight
func (c *Controller) Loading() bool {
	return c.loading
}

// LastResponse returns the content of the newest successful assistant message
func (c *Controller) LastResponse() (string, bool) {
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Role == models.RoleAssistant {
			return c.messages[i].Content, true
		}
	}
	return "", false
}

func (c *Controller) append(role models.Role, content string) {
	c.messages = append(c.messages, models.Message{Role: role, Content: content})
}
