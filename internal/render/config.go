package render

import (
	"os"

	"github.com/diogo/agentchat/internal/config"
)

// EnvGlamourStyle overrides the configured markdown style
const EnvGlamourStyle = "GLAMOUR_STYLE"

// OptionsFromConfig builds render options from the markdown settings.
// GLAMOUR_STYLE takes precedence over the configured style.
func OptionsFromConfig(md config.MarkdownConfig, width int) Options {
	opts := DefaultOptions().WithWidth(width)

	if md.Style != "" {
		opts.Style = md.Style
	}
	opts.EnableEmoji = md.EnableEmoji
	opts.PreserveNewLines = md.PreserveNewLines
	opts.TableWrap = md.TableWrap
	opts.InlineTableLinks = md.InlineTableLinks

	if style := os.Getenv(EnvGlamourStyle); style != "" {
		opts.Style = style
	}
	return opts
}
