// Package render turns assistant markdown into terminal or HTML output.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// DefaultStyle is the glamour style used for terminal output.
const DefaultStyle = "dark"

// Terminal renders markdown for the terminal, one cached renderer per width.
// glamour.TermRenderer is not safe for concurrent Render calls, so each
// renderer is guarded by the cache mutex.
type Terminal struct {
	mu        sync.Mutex
	style     string
	renderers map[int]*glamour.TermRenderer
}

// NewTerminal returns a terminal renderer using style ("dark", "light", ...).
func NewTerminal(style string) *Terminal {
	if strings.TrimSpace(style) == "" {
		style = DefaultStyle
	}
	return &Terminal{style: style, renderers: make(map[int]*glamour.TermRenderer)}
}

// Render renders content wrapped at width. On failure the plain content is
// returned along with the error.
func (t *Terminal) Render(content string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.renderers[width]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(t.style),
			glamour.WithWordWrap(width),
			glamour.WithPreservedNewLines(),
		)
		if err != nil {
			return content, fmt.Errorf("create renderer: %w", err)
		}
		t.renderers[width] = r
	}
	out, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return strings.TrimRight(out, "\n"), nil
}

var (
	htmlMarkdown = goldmark.New(goldmark.WithExtensions(extension.GFM))
	htmlPolicy   = bluemonday.UGCPolicy()
)

// HTML converts markdown to sanitized HTML safe to embed in a page.
func HTML(content string) template.HTML {
	var buf bytes.Buffer
	if err := htmlMarkdown.Convert([]byte(content), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(content))
	}
	return template.HTML(htmlPolicy.SanitizeBytes(buf.Bytes()))
}
