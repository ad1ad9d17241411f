package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/diogo/agentchat/internal/api"
	"github.com/diogo/agentchat/internal/config"
	"github.com/diogo/agentchat/internal/render"
)

// Output formats accepted by --format
const (
	formatText     = "text"
	formatMarkdown = "markdown"
	formatHTML     = "html"
)

// queryOptions are the root command flags that shape a one-shot query
type queryOptions struct {
	output    string
	file      string
	format    string
	raw       bool
	listFiles bool
}

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#1dd1a1"), // Green
}

// spinner handles the animated loading indicator
type spinner struct {
	w       io.Writer
	enabled bool
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a spinner that draws on w. A disabled spinner prints nothing.
func newSpinner(w io.Writer, message string, enabled bool) *spinner {
	return &spinner{
		w:       w,
		enabled: enabled,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	if !s.enabled {
		close(s.done)
		return
	}
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.w, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.w, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinColor := gradientColors[s.frame%len(gradientColors)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[s.frame%len(chars)])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := gradientColors[(s.frame+i)%len(gradientColors)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(render.GetTUITheme().TextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(render.GetTUITheme().Text).Render(s.message)
	fmt.Fprintf(s.w, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done
	if !s.enabled {
		return
	}

	success := render.GetTUITheme().Connected
	checkmark := lipgloss.NewStyle().Foreground(success).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(success).Render(message)
	fmt.Fprintf(s.w, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner and shows error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// runQuery sends a single prompt and writes the formatted response.
// A transport failure returns a NetworkError and a backend-reported failure
// returns a BackendError, so the exit code is non-zero in both cases.
func runQuery(cmd *cobra.Command, deps *Dependencies, prompt string, qo queryOptions) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	format, err := parseFormat(qo.format)
	if err != nil {
		return err
	}

	cfg, err := resolveConfig(cmd, deps)
	if err != nil {
		return err
	}
	render.SetTUITheme(cfg.TUITheme)

	logger := cliLogger(cmd, cfg)
	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	decorate := !qo.raw
	ctx := cmd.Context()

	if cfg.Verbose && decorate {
		fmt.Fprintf(stderr, "[verbose] Backend: %s (max_turns=%d)\n", client.BaseURL(), client.MaxTurns())
	}

	spin := newSpinner(stderr, "Waiting for the agent", decorate && isTerminal(stderr))
	spin.start()

	startTime := time.Now()
	result, err := client.Query(ctx, prompt)
	requestDuration := time.Since(startTime)
	if err == nil {
		err = api.ResultError(result)
	}
	if err != nil {
		spin.stopWithError()
		return err
	}
	spin.stopWithSuccess("Done")

	if cfg.Verbose && decorate {
		fmt.Fprintf(stderr, "[verbose] Request took %s\n", requestDuration.Round(time.Millisecond))
	}

	if cfg.CopyToClipboard && decorate {
		copyToClipboard(stderr, deps.Clipboard, render.PlainText(result.Response))
	}

	stdoutTTY := isTerminal(stdout)
	width := contentWidth(getTerminalWidth(stdout))
	rendered, err := formatResponse(result.Response, format, render.OptionsFromConfig(cfg.Markdown, width), stdoutTTY && qo.output == "")
	if err != nil {
		return err
	}

	switch {
	case qo.output != "":
		if err := os.WriteFile(qo.output, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if decorate {
			fmt.Fprintln(stderr, lipgloss.NewStyle().Foreground(render.GetTUITheme().Connected).Render(
				fmt.Sprintf("✓ Response saved to %s", qo.output),
			))
		}
	case qo.raw:
		fmt.Fprint(stdout, rendered)
	case stdoutTTY && format != formatHTML:
		printBubble(stdout, rendered, width)
	default:
		fmt.Fprintln(stdout, strings.TrimRight(rendered, "\n"))
	}

	if qo.listFiles {
		return listFilesAfterRefresh(ctx, stdout, client, cfg, logger)
	}
	return nil
}

// parseFormat validates the --format value
func parseFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "", formatText:
		return formatText, nil
	case formatMarkdown, "md":
		return formatMarkdown, nil
	case formatHTML:
		return formatHTML, nil
	default:
		return "", fmt.Errorf("unknown format %q (valid: text, markdown, html)", format)
	}
}

// formatResponse converts a response for output. Backend text is always
// neutralized first. Markdown is only styled when styled is true.
func formatResponse(content, format string, opts render.Options, styled bool) (string, error) {
	switch format {
	case formatHTML:
		return render.HTML(render.PlainText(content))
	case formatMarkdown:
		return render.Response(content, opts, styled), nil
	default:
		return render.PlainText(content), nil
	}
}

// listFilesAfterRefresh waits the refresh delay and prints the file list.
// A listing failure is logged and does not fail the query.
func listFilesAfterRefresh(ctx context.Context, w io.Writer, client api.AgentClientInterface, cfg config.Config, logger *slog.Logger) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(cfg.FileRefreshDelay()):
	}

	files, err := client.ListFiles(ctx)
	if err != nil {
		logger.Warn("error loading files", "error", err)
		return nil
	}
	printFiles(w, client, files)
	return nil
}

// copyToClipboard copies text and reports the outcome on w
func copyToClipboard(w io.Writer, copyFn func(string) error, text string) {
	theme := render.GetTUITheme()
	if err := copyFn(text); err != nil {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(theme.Failure).Render(
			fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
		))
		return
	}
	fmt.Fprintln(w, lipgloss.NewStyle().Foreground(theme.Connected).Render("✓ Copied to clipboard"))
}

// printBubble prints the response framed like the chat TUI
func printBubble(w io.Writer, content string, width int) {
	theme := render.GetTUITheme()
	label := lipgloss.NewStyle().Foreground(theme.Assistant).Bold(true).Render("✦ Agent")
	bubble := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Assistant).
		Foreground(theme.Text).
		Padding(0, 1).
		Width(width + 4).
		Render(strings.TrimRight(content, "\n"))

	fmt.Fprintln(w, label)
	fmt.Fprintln(w, bubble)
}

// contentWidth clamps the bubble to a readable width and leaves room for the border
func contentWidth(termWidth int) int {
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	return bubbleWidth - 4
}

// getTerminalWidth returns the terminal width of w or a default value
func getTerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return 80
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isTerminal returns true if w is connected to a terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
