package commands

import (
	"log/slog"

	"github.com/atotto/clipboard"

	"github.com/diogo/agentchat/internal/api"
	"github.com/diogo/agentchat/internal/config"
	"github.com/diogo/agentchat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(client api.AgentClientInterface, opts tui.Options) error
}

// ClientFactory builds the backend client for a resolved configuration
type ClientFactory func(cfg config.Config, logger *slog.Logger) (api.AgentClientInterface, error)

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient creates the backend client.
	NewClient ClientFactory

	// LoadConfig returns the configuration before flag overrides.
	LoadConfig func() (config.Config, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Clipboard copies one-shot responses when copy_to_clipboard is set.
	Clipboard func(string) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(client api.AgentClientInterface, opts tui.Options) error {
	return tui.RunChat(client, opts)
}

// NewAgentClient builds an api.AgentClient from the configuration
func NewAgentClient(cfg config.Config, logger *slog.Logger) (api.AgentClientInterface, error) {
	return api.NewClient(cfg.BackendURL,
		api.WithMaxTurns(cfg.MaxTurns),
		api.WithTimeout(cfg.Timeout()),
		api.WithProxy(cfg.Proxy),
		api.WithLogger(logger),
	)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient:  NewAgentClient,
		LoadConfig: config.LoadConfig,
		TUI:        &DefaultTUI{},
		Clipboard:  clipboard.WriteAll,
	}
}

// withDefaults fills unset fields so tests only inject what they need
func (d *Dependencies) withDefaults() *Dependencies {
	out := NewDependencies()
	if d == nil {
		return out
	}
	if d.NewClient != nil {
		out.NewClient = d.NewClient
	}
	if d.LoadConfig != nil {
		out.LoadConfig = d.LoadConfig
	}
	if d.TUI != nil {
		out.TUI = d.TUI
	}
	if d.Clipboard != nil {
		out.Clipboard = d.Clipboard
	}
	return out
}
