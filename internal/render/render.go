package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// PlainText neutralizes backend-supplied text for terminal display.
// Escape sequences are removed and so are control characters other
// than newline and tab, so the text is shown literally and cannot
// restyle, move the cursor or emit hyperlinks.
func PlainText(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f:
			return -1
		case r >= 0x80 && r <= 0x9f:
			return -1
		default:
			return r
		}
	}, s)
}

// Hyperlink wraps label in an OSC 8 terminal hyperlink to target.
// Terminals without OSC 8 support show the label only.
func Hyperlink(label, target string) string {
	return ansi.SetHyperlink(PlainText(target)) + label + ansi.ResetHyperlink()
}

// Markdown renders markdown content for terminal display.
// Uses a pooled renderer for better performance and thread safety.
func Markdown(content string, opts Options) (string, error) {
	renderer, err := globalPool.get(opts)
	if err != nil {
		return "", err
	}
	defer globalPool.put(opts, renderer)

	return renderer.Render(content)
}

// Response renders an assistant response as neutralized text, optionally
// through glamour. Renderer errors fall back to the plain text.
func Response(content string, opts Options, markdown bool) string {
	safe := PlainText(content)
	if !markdown {
		return safe
	}
	out, err := Markdown(safe, opts)
	if err != nil {
		return safe
	}
	return strings.Trim(out, "\n")
}
