package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWidth = 100

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer when f is a terminal and a
// pass-through renderer otherwise, so piped output stays plain markdown.
func NewRenderer(f *os.File) (Renderer, error) {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return func(md string) (string, error) { return md, nil }, nil
	}
	width := defaultWidth
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = w
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}
