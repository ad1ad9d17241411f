// Package commands provides CLI commands for agentchat.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/diogo/agentchat/internal/config"
	"github.com/diogo/agentchat/internal/logging"
	"github.com/diogo/agentchat/internal/tui"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()
	var qo queryOptions

	cmd := &cobra.Command{
		Use:   "agentchat [prompt]",
		Short: "Terminal client for an agent backend",
		Long: `agentchat talks to an agent backend over HTTP. Without input it opens an
interactive chat; with a prompt it sends a single query and prints the answer.

Examples:
  agentchat                             Start interactive chat
  agentchat "List the files in /tmp"    Send a single query
  agentchat -f prompt.md                Read prompt from file
  cat prompt.md | agentchat             Read prompt from stdin
  agentchat "Summarize" --format html -o out.html
  agentchat health                      Check the backend
  agentchat files                       List generated files`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "agentchat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			if qo.file != "" {
				data, err := os.ReadFile(qo.file)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return runQuery(cmd, deps, string(data), qo)
			}

			if len(args) > 0 {
				return runQuery(cmd, deps, args[0], qo)
			}

			if in := cmd.InOrStdin(); hasPipedInput(in) {
				data, err := io.ReadAll(in)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return runQuery(cmd, deps, string(data), qo)
			}

			return runChat(cmd, deps)
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("backend", "", "Backend base URL (overrides backend_url)")
	pf.Int("max-turns", 0, "Turn limit sent with every query (overrides max_turns)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.Bool("log-json", false, "Write log records as JSON")
	pf.Bool("verbose", false, "Print request diagnostics to stderr")

	cmd.Flags().StringVarP(&qo.output, "output", "o", "", "Save response to file")
	cmd.Flags().StringVarP(&qo.file, "file", "f", "", "Read prompt from file")
	cmd.Flags().StringVar(&qo.format, "format", formatText, "Output format: text, markdown, html")
	cmd.Flags().BoolVar(&qo.raw, "raw", false, "Print only the response, without decoration")
	cmd.Flags().BoolVar(&qo.listFiles, "list-files", false, "After the response, wait for the file refresh and list files")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(NewChatCmd(deps))
	cmd.AddCommand(NewHealthCmd(deps))
	cmd.AddCommand(NewFilesCmd(deps))
	cmd.AddCommand(NewDownloadCmd(deps))
	cmd.AddCommand(NewConfigCmd(deps))
	cmd.AddCommand(NewMockBackendCmd(deps))

	return cmd
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		tui.PrintError(err)
		os.Exit(1)
	}
}

// resolveConfig loads the configuration and applies global flag overrides.
// An unreadable config file falls back to the defaults with a warning.
func resolveConfig(cmd *cobra.Command, deps *Dependencies) (config.Config, error) {
	cfg, err := deps.LoadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v, using defaults\n", err)
		cfg = config.ApplyEnv(config.DefaultConfig())
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.BackendURL, _ = flags.GetString("backend")
	}
	if flags.Changed("max-turns") {
		cfg.MaxTurns, _ = flags.GetInt("max-turns")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		cfg.LogJSON, _ = flags.GetBool("log-json")
	}
	if flags.Changed("verbose") {
		cfg.Verbose, _ = flags.GetBool("verbose")
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// cliLogger returns the stderr logger for non-interactive commands.
// It stays at warn unless --verbose or --log-level asks for more.
func cliLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	level := "warn"
	if cfg.Verbose {
		level = "debug"
	}
	if cmd.Flags().Changed("log-level") {
		level = cfg.LogLevel
	}
	return logging.New(level, cfg.LogJSON, cmd.ErrOrStderr())
}

// hasPipedInput reports whether r carries piped data rather than a terminal
func hasPipedInput(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return r != nil
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
