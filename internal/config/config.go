// Package config handles configuration for agentchat.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/diogo/agentchat/internal/models"
)

const (
	// DefaultBackendURL is the address of a locally running agent backend
	DefaultBackendURL = "http://localhost:8001"

	// DefaultFileRefreshDelayMs is how long after a successful query the file list is refreshed
	DefaultFileRefreshDelayMs = 2000

	// DefaultRequestTimeout is the transport timeout in seconds
	DefaultRequestTimeout = 300

	configDirName = ".agentchat"
)

// Environment variables that override the config file
const (
	EnvBackendURL = "AGENTCHAT_BACKEND_URL"
	EnvMaxTurns   = "AGENTCHAT_MAX_TURNS"
	EnvLogLevel   = "AGENTCHAT_LOG_LEVEL"
)

// MarkdownConfig configures optional markdown rendering of assistant messages
type MarkdownConfig struct {
	Enabled          bool   `json:"enabled"`            // Render assistant text as markdown instead of plain text
	Style            string `json:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	BackendURL string `json:"backend_url"`
	// MaxTurns is sent with every query to bound backend processing.
	MaxTurns int `json:"max_turns"`
	// FileRefreshDelayMs is the delay of the one-shot file refresh after a successful query.
	FileRefreshDelayMs int `json:"file_refresh_delay_ms"`
	// RequestTimeout is the transport timeout in seconds. 0 disables it.
	RequestTimeout int    `json:"request_timeout"`
	Proxy          string `json:"proxy,omitempty"`
	DownloadDir    string `json:"download_dir,omitempty"`

	LogLevel string `json:"log_level"`
	LogJSON  bool   `json:"log_json"`
	LogFile  string `json:"log_file,omitempty"`
	// Verbose enables detailed diagnostics on stderr in CLI mode.
	Verbose bool `json:"verbose"`

	CopyToClipboard bool           `json:"copy_to_clipboard"`
	TUITheme        string         `json:"tui_theme,omitempty"`
	Markdown        MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Enabled:          false,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		BackendURL:         DefaultBackendURL,
		MaxTurns:           models.DefaultMaxTurns,
		FileRefreshDelayMs: DefaultFileRefreshDelayMs,
		RequestTimeout:     DefaultRequestTimeout,
		DownloadDir:        filepath.Join(homeDir, configDirName, "downloads"),
		LogLevel:           "info",
		LogFile:            filepath.Join(homeDir, configDirName, "agentchat.log"),
		TUITheme:           "tokyonight",
		Markdown:           DefaultMarkdownConfig(),
	}
}

// FileRefreshDelay returns the post-query refresh delay as a duration
func (c Config) FileRefreshDelay() time.Duration {
	return time.Duration(c.FileRefreshDelayMs) * time.Millisecond
}

// Timeout returns the transport timeout as a duration
func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate checks the values that the client cannot work without
func (c Config) Validate() error {
	u, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid backend_url %q: %w", c.BackendURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend_url %q: scheme must be http or https", c.BackendURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid backend_url %q: missing host", c.BackendURL)
	}
	if c.MaxTurns <= 0 {
		return fmt.Errorf("max_turns must be positive, got %d", c.MaxTurns)
	}
	if c.FileRefreshDelayMs < 0 {
		return fmt.Errorf("file_refresh_delay_ms must not be negative, got %d", c.FileRefreshDelayMs)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must not be negative, got %d", c.RequestTimeout)
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, configDirName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetDownloadDir returns the download directory from config, creating it if necessary
func GetDownloadDir(cfg Config) (string, error) {
	dir := cfg.DownloadDir
	if dir == "" {
		configDir, err := GetConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(configDir, "downloads")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	return dir, nil
}

// LoadConfig loads the configuration from disk and applies environment overrides
func LoadConfig() (Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return cfg, err
	}
	return ApplyEnv(cfg), nil
}

// LoadFile loads the configuration file without environment overrides.
// A missing file yields the defaults.
func LoadFile() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides config values with any set environment variables
func ApplyEnv(cfg Config) Config {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		cfg.BackendURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMaxTurns)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTurns = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// setters maps config keys accepted by Set to their parsers
var setters = map[string]func(*Config, string) error{
	"backend_url": func(c *Config, v string) error { c.BackendURL = strings.TrimRight(v, "/"); return nil },
	"max_turns":   func(c *Config, v string) error { return setInt(&c.MaxTurns, v) },
	"file_refresh_delay_ms": func(c *Config, v string) error {
		return setInt(&c.FileRefreshDelayMs, v)
	},
	"request_timeout":   func(c *Config, v string) error { return setInt(&c.RequestTimeout, v) },
	"proxy":             func(c *Config, v string) error { c.Proxy = v; return nil },
	"download_dir":      func(c *Config, v string) error { c.DownloadDir = v; return nil },
	"log_level":         func(c *Config, v string) error { c.LogLevel = v; return nil },
	"log_json":          func(c *Config, v string) error { return setBool(&c.LogJSON, v) },
	"log_file":          func(c *Config, v string) error { c.LogFile = v; return nil },
	"verbose":           func(c *Config, v string) error { return setBool(&c.Verbose, v) },
	"copy_to_clipboard": func(c *Config, v string) error { return setBool(&c.CopyToClipboard, v) },
	"tui_theme":         func(c *Config, v string) error { c.TUITheme = v; return nil },
	"markdown.enabled":  func(c *Config, v string) error { return setBool(&c.Markdown.Enabled, v) },
	"markdown.style":    func(c *Config, v string) error { c.Markdown.Style = v; return nil },
}

// Keys returns the config keys accepted by Set, sorted
func Keys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set parses value into the field named by key and validates the result
func (c *Config) Set(key, value string) error {
	setter, ok := setters[key]
	if !ok {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}

	updated := *c
	if err := setter(&updated, strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := updated.Validate(); err != nil {
		return err
	}
	*c = updated
	return nil
}

func setInt(dst *int, v string) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func setBool(dst *bool, v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
