package render

import (
	"bytes"
	"fmt"
	"sync"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// HTMLCodeStyle is the chroma style used for fenced code blocks
const HTMLCodeStyle = "dracula"

var (
	htmlOnce     sync.Once
	htmlMarkdown goldmark.Markdown
	htmlPolicy   *bluemonday.Policy
)

func initHTML() {
	htmlMarkdown = goldmark.New(
		goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		goldmark.WithExtensions(
			highlighting.NewHighlighting(
				highlighting.WithStyle(HTMLCodeStyle),
				highlighting.WithFormatOptions(
					chromahtml.WithLineNumbers(false),
				),
			),
		),
	)

	htmlPolicy = bluemonday.UGCPolicy()
	htmlPolicy.AllowAttrs("class").OnElements("code", "pre", "span")
	htmlPolicy.AllowAttrs("style").OnElements("span") // inline styles from the highlighter
}

// HTML converts a markdown response into a sanitized HTML fragment.
// Raw HTML in the source passes through goldmark and is then filtered
// by a UGC policy, so scripts and event handlers never survive.
func HTML(src string) (string, error) {
	htmlOnce.Do(initHTML)

	var buf bytes.Buffer
	if err := htmlMarkdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}
	return string(htmlPolicy.SanitizeBytes(buf.Bytes())), nil
}
