// Package tui provides the terminal user interface for agentchat.
package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/agentchat/internal/errors"
	"github.com/diogo/agentchat/internal/models"
	"github.com/diogo/agentchat/internal/render"
)

// Color variables (updated from theme)
var (
	colorBorder lipgloss.Color

	colorUser      lipgloss.Color
	colorAssistant lipgloss.Color
	colorFiles     lipgloss.Color
	colorFailure   lipgloss.Color

	colorText     lipgloss.Color
	colorTextDim  lipgloss.Color
	colorTextMute lipgloss.Color
)

// Style variables (rebuilt when theme changes)
var (
	headerStyle   lipgloss.Style
	titleStyle    lipgloss.Style
	subtitleStyle lipgloss.Style
	hintStyle     lipgloss.Style

	messagesAreaStyle lipgloss.Style

	userBubbleStyle      lipgloss.Style
	userLabelStyle       lipgloss.Style
	assistantBubbleStyle lipgloss.Style
	assistantLabelStyle  lipgloss.Style
	errorBubbleStyle     lipgloss.Style
	errorLabelStyle      lipgloss.Style

	// Files panel
	filesPanelStyle        lipgloss.Style
	filesPanelFocusedStyle lipgloss.Style
	filesTitleStyle        lipgloss.Style
	fileNameStyle          lipgloss.Style
	fileSelectedStyle      lipgloss.Style
	fileLinkStyle          lipgloss.Style
	noFilesStyle           lipgloss.Style

	inputPanelStyle lipgloss.Style
	inputLabelStyle lipgloss.Style
	loadingStyle    lipgloss.Style

	statusBarStyle  lipgloss.Style
	statusKeyStyle  lipgloss.Style
	statusDescStyle lipgloss.Style

	noticeStyle lipgloss.Style
	errorStyle  lipgloss.Style

	welcomeStyle      lipgloss.Style
	welcomeTitleStyle lipgloss.Style
	welcomeIconStyle  lipgloss.Style
)

func init() {
	UpdateTheme()
}

// UpdateTheme refreshes all styles based on the current TUI theme
func UpdateTheme() {
	theme := render.GetTUITheme()

	colorBorder = theme.Border
	colorUser = theme.User
	colorAssistant = theme.Assistant
	colorFiles = theme.Files
	colorFailure = theme.Failure
	colorText = theme.Text
	colorTextDim = theme.TextDim
	colorTextMute = theme.TextMute

	rebuildStyles()
}

// panel is a rounded box in the given border color
func panel(border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func rebuildStyles() {
	headerStyle = panel(colorBorder).Padding(0, 2)
	titleStyle = fg(colorUser).Bold(true)
	subtitleStyle = fg(colorTextDim)
	hintStyle = fg(colorTextMute).Italic(true)

	messagesAreaStyle = panel(colorBorder)

	// User bubbles sit right of assistant ones
	userBubbleStyle = panel(colorUser).Foreground(colorText).MarginLeft(4)
	userLabelStyle = fg(colorUser).Bold(true).MarginLeft(4)
	assistantBubbleStyle = panel(colorAssistant).Foreground(colorText).MarginRight(4)
	assistantLabelStyle = fg(colorAssistant).Bold(true)
	errorBubbleStyle = panel(colorFailure).Foreground(colorFailure).MarginRight(4)
	errorLabelStyle = fg(colorFailure).Bold(true)

	filesPanelStyle = panel(colorBorder)
	filesPanelFocusedStyle = panel(colorAssistant)
	filesTitleStyle = fg(colorFiles).Bold(true).MarginBottom(1)
	fileNameStyle = fg(colorText)
	fileSelectedStyle = fg(colorAssistant).Bold(true)
	fileLinkStyle = fg(colorUser).Underline(true)
	noFilesStyle = fg(colorTextMute).Italic(true)

	inputPanelStyle = panel(colorBorder)
	inputLabelStyle = fg(colorUser).Bold(true).MarginRight(1)
	loadingStyle = fg(colorAssistant).Bold(true)

	statusBarStyle = fg(colorTextMute)
	statusKeyStyle = fg(colorTextDim).Bold(true)
	statusDescStyle = fg(colorTextMute)

	noticeStyle = fg(colorFiles)
	errorStyle = fg(colorFailure).Bold(true)

	welcomeStyle = fg(colorTextDim).Align(lipgloss.Center)
	welcomeTitleStyle = fg(colorUser).Bold(true).Align(lipgloss.Center)
	welcomeIconStyle = fg(colorAssistant).Align(lipgloss.Center)
}

// StatusIndicator renders the connection status dot and label
func StatusIndicator(status models.Status) string {
	color := render.GetTUITheme().StatusColor(status.State)
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render("● " + status.Label)
}

// FormatError returns a styled error message with additional context.
// It extracts details from the structured error types if available.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	errStyle := fg(colorFailure)
	dimStyle := fg(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errStyle.Render(fmt.Sprintf("✗ %s", render.PlainText(err.Error()))))

	if status := errors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := errors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := errors.GetResponseBody(err); body != "" {
		body = render.PlainText(body)
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
	} else {
		switch {
		case errors.IsTimeoutError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: Request timed out. Raise request_timeout or try again"))
		case errors.IsNetworkError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: Is the backend running? Check backend_url with 'agentchat config show'"))
		case errors.IsParseError(err):
			sb.WriteString(dimStyle.Render("\n  Hint: The backend answered with something other than JSON"))
		}
	}

	return sb.String()
}

// PrintError prints a styled error message to stderr.
func PrintError(err error) {
	FprintError(os.Stderr, err)
}

// FprintError prints a styled error message to w.
func FprintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, FormatError(err))
}
