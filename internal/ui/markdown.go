package ui

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const defaultWordWrap = 100

var (
	markdownMu       sync.Mutex
	markdownRenderer *glamour.TermRenderer
	markdownStyle    = "auto"
	markdownWidth    = defaultWordWrap
	markdownDisabled bool
)

// newMarkdownRenderer builds a glamour renderer for a standard style name
// ("dark", "light", "dracula", "notty") or "auto".
func newMarkdownRenderer(style string, width int) (*glamour.TermRenderer, error) {
	styleOpt := glamour.WithAutoStyle()
	if style != "" && style != "auto" {
		styleOpt = glamour.WithStandardStyle(style)
	}
	return glamour.NewTermRenderer(
		styleOpt,
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
	)
}

func rebuildMarkdown() {
	r, err := newMarkdownRenderer(markdownStyle, markdownWidth)
	if err != nil {
		// Fallback: RenderMarkdown returns plain text
		markdownRenderer = nil
		return
	}
	markdownRenderer = r
}

// SetMarkdownStyle switches the glamour style used for replies.
func SetMarkdownStyle(style string) {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	markdownStyle = style
	rebuildMarkdown()
}

// SetWordWrap reinitializes the renderer with a new word wrap width
func SetWordWrap(width int) {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	if width <= 0 {
		width = defaultWordWrap
	}
	markdownWidth = width
	rebuildMarkdown()
}

// DisableMarkdown makes RenderMarkdown return plain text.
func DisableMarkdown() {
	markdownMu.Lock()
	defer markdownMu.Unlock()
	markdownDisabled = true
}

// RenderMarkdown renders markdown content with syntax highlighting
func RenderMarkdown(content string) string {
	markdownMu.Lock()
	r := markdownRenderer
	disabled := markdownDisabled
	markdownMu.Unlock()

	if r == nil || disabled {
		return content
	}
	rendered, err := r.Render(content)
	if err != nil {
		return content
	}
	// Trim extra whitespace that glamour sometimes adds
	return strings.TrimSpace(rendered)
}
