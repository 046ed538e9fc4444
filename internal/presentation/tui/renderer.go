package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a markdown-to-ANSI renderer for terminal reports.
// Width 0 lets glamour size to the terminal; a positive width forces word
// wrap, which keeps handler tables readable in narrow panes.
func NewRenderer(width int) func(string) (string, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(),
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		// Callers fall back to the raw markdown.
		return func(markdown string) (string, error) {
			return markdown, err
		}
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
