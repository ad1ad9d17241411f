package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/agentchat/internal/config"
	"github.com/diogo/agentchat/internal/logging"
	"github.com/diogo/agentchat/internal/render"
	"github.com/diogo/agentchat/internal/tui"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the agent backend.

The backend status is checked on start and the generated files panel is
refreshed after every successful answer. Type 'exit', 'quit', or press
Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps)
		},
	}
}

func runChat(cmd *cobra.Command, deps *Dependencies) error {
	cfg, err := resolveConfig(cmd, deps)
	if err != nil {
		return err
	}

	// The TUI owns the terminal, so records go to the log file.
	logger, closeLog := chatLogger(cmd.ErrOrStderr(), cfg)
	defer closeLog()

	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		logger.Warn("unknown tui theme, using default", "theme", cfg.TUITheme)
	}
	tui.UpdateTheme()

	downloadDir, err := config.GetDownloadDir(cfg)
	if err != nil {
		return err
	}

	logger.Info("chat session started", "backend", client.BaseURL(), "max_turns", client.MaxTurns())
	defer logger.Info("chat session ended")

	return deps.TUI.RunChat(client, tui.Options{
		RefreshDelay:  cfg.FileRefreshDelay(),
		DownloadDir:   downloadDir,
		Markdown:      cfg.Markdown.Enabled,
		RenderOptions: render.OptionsFromConfig(cfg.Markdown, contentWidth(getTerminalWidth(os.Stdout))),
		Logger:        logger,
	})
}

// chatLogger opens the configured log file. Without a usable file the
// session logs nothing.
func chatLogger(stderr io.Writer, cfg config.Config) (*slog.Logger, func()) {
	if cfg.LogFile == "" {
		return logging.Discard(), func() {}
	}
	f, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: %v, logging disabled\n", err)
		return logging.Discard(), func() {}
	}

	level := cfg.LogLevel
	if cfg.Verbose {
		level = "debug"
	}
	return logging.New(level, cfg.LogJSON, f), func() { _ = f.Close() }
}
