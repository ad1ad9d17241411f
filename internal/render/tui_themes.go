package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/agentchat/internal/models"
)

// TUITheme assigns colors to the parts of the chat screen
type TUITheme struct {
	Name string

	Border lipgloss.Color

	User      lipgloss.Color // user bubbles and the title
	Assistant lipgloss.Color // assistant bubbles and focus
	Files     lipgloss.Color // files panel and notices
	Connected lipgloss.Color
	Pending   lipgloss.Color // status before the first health check
	Failure   lipgloss.Color // error bubbles and failed status

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	TextMute lipgloss.Color
}

// Built-in TUI themes
var (
	// TokyoNightTheme is the default
	TokyoNightTheme = TUITheme{
		Name:      "tokyonight",
		Border:    lipgloss.Color("#414868"),
		User:      lipgloss.Color("#7aa2f7"),
		Assistant: lipgloss.Color("#bb9af7"),
		Files:     lipgloss.Color("#7dcfff"),
		Connected: lipgloss.Color("#9ece6a"),
		Pending:   lipgloss.Color("#e0af68"),
		Failure:   lipgloss.Color("#f7768e"),
		Text:      lipgloss.Color("#c0caf5"),
		TextDim:   lipgloss.Color("#565f89"),
		TextMute:  lipgloss.Color("#3b4261"),
	}

	DraculaTheme = TUITheme{
		Name:      "dracula",
		Border:    lipgloss.Color("#6272a4"),
		User:      lipgloss.Color("#8be9fd"),
		Assistant: lipgloss.Color("#ff79c6"),
		Files:     lipgloss.Color("#bd93f9"),
		Connected: lipgloss.Color("#50fa7b"),
		Pending:   lipgloss.Color("#f1fa8c"),
		Failure:   lipgloss.Color("#ff5555"),
		Text:      lipgloss.Color("#f8f8f2"),
		TextDim:   lipgloss.Color("#6272a4"),
		TextMute:  lipgloss.Color("#44475a"),
	}

	GruvboxTheme = TUITheme{
		Name:      "gruvbox",
		Border:    lipgloss.Color("#504945"),
		User:      lipgloss.Color("#83a598"),
		Assistant: lipgloss.Color("#d3869b"),
		Files:     lipgloss.Color("#8ec07c"),
		Connected: lipgloss.Color("#b8bb26"),
		Pending:   lipgloss.Color("#fabd2f"),
		Failure:   lipgloss.Color("#fb4934"),
		Text:      lipgloss.Color("#ebdbb2"),
		TextDim:   lipgloss.Color("#928374"),
		TextMute:  lipgloss.Color("#665c54"),
	}
)

var currentTUITheme = TokyoNightTheme

// GetTUITheme returns the currently active TUI theme
func GetTUITheme() TUITheme {
	return currentTUITheme
}

// SetTUITheme sets the active TUI theme by name. Unknown names leave it unchanged.
func SetTUITheme(name string) bool {
	theme, ok := GetTUIThemeByName(name)
	if ok {
		currentTUITheme = theme
	}
	return ok
}

// GetTUIThemeByName returns a TUI theme by its name
func GetTUIThemeByName(name string) (TUITheme, bool) {
	for _, t := range AvailableTUIThemes() {
		if t.Name == name {
			return t, true
		}
	}
	return TUITheme{}, false
}

// AvailableTUIThemes returns the built-in TUI themes, default first
func AvailableTUIThemes() []TUITheme {
	return []TUITheme{TokyoNightTheme, DraculaTheme, GruvboxTheme}
}

// TUIThemeNames returns just the theme names for selection
func TUIThemeNames() []string {
	themes := AvailableTUIThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// StatusColor returns the indicator color for a connection state
func (t TUITheme) StatusColor(state models.ConnectionState) lipgloss.Color {
	switch state {
	case models.StateConnected:
		return t.Connected
	case models.StateError:
		return t.Failure
	default:
		return t.Pending
	}
}

// RoleColor returns the label color for a message role
func (t TUITheme) RoleColor(role models.Role) lipgloss.Color {
	switch role {
	case models.RoleUser:
		return t.User
	case models.RoleAssistantError:
		return t.Failure
	default:
		return t.Assistant
	}
}
