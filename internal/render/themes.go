package render

// Markdown styles accepted in the markdown.style setting
const (
	ThemeDark       = "dark"
	ThemeLight      = "light"
	ThemeTokyoNight = "tokyonight"
	ThemeDracula    = "dracula"
	ThemePink       = "pink"
	ThemeNoTTY      = "notty"
	ThemeASCII      = "ascii"
)

// glamourStyleNames maps setting names to glamour's standard style names
var glamourStyleNames = map[string]string{
	ThemeDark:       "dark",
	ThemeLight:      "light",
	ThemeTokyoNight: "tokyo-night",
	ThemeDracula:    "dracula",
	ThemePink:       "pink",
	ThemeNoTTY:      "notty",
	ThemeASCII:      "ascii",
}

// IsBuiltinStyle returns true if the style is one of the standard styles
func IsBuiltinStyle(style string) bool {
	_, ok := glamourStyleNames[style]
	return ok
}

// resolveStyle returns the glamour style name for a setting value.
// Anything that is not a built-in name is passed through as a JSON style path.
func resolveStyle(style string) string {
	if name, ok := glamourStyleNames[style]; ok {
		return name
	}
	if style == "" {
		return glamourStyleNames[ThemeDark]
	}
	return style
}

// ThemeNames lists the built-in markdown styles, default first.
func ThemeNames() []string {
	return []string{ThemeDark, ThemeTokyoNight, ThemeDracula, ThemeLight, ThemePink, ThemeNoTTY, ThemeASCII}
}
