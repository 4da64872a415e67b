package render

import (
	"strings"
	"testing"
)

func TestHTMLRendersMarkdown(t *testing.T) {
	out := string(HTML("**bold** and `code`"))
	if !strings.Contains(out, "<strong>bold</strong>") {
		t.Fatalf("expected bold markup, got %q", out)
	}
	if !strings.Contains(out, "<code>code</code>") {
		t.Fatalf("expected code markup, got %q", out)
	}
}

func TestHTMLStripsScripts(t *testing.T) {
	out := string(HTML("hi <script>alert(1)</script>"))
	if strings.Contains(out, "<script>") {
		t.Fatalf("expected script to be sanitized, got %q", out)
	}
}

func TestTerminalRenderKeepsText(t *testing.T) {
	term := NewTerminal("notty")
	out, err := term.Render("# Title\n\nhello world", 40)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "hello world") {
		t.Fatalf("expected text in output, got %q", out)
	}
	if len(term.renderers) != 1 {
		t.Fatalf("expected one cached renderer, got %d", len(term.renderers))
	}

	if _, err := term.Render("again", 40); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(term.renderers) != 1 {
		t.Fatalf("expected renderer reuse, got %d", len(term.renderers))
	}
}
