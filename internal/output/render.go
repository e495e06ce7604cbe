package output

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Render formats a prompt for terminal display. The prompt uses **bold** markers, so
// it is rendered as markdown. Any renderer failure falls back to the plain text.
func Render(prompt string, width int) string {
	if prompt == "" {
		return ""
	}
	if width < 20 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return prompt
	}

	out, err := r.Render(prompt)
	if err != nil {
		return prompt
	}
	return strings.TrimRight(out, "\n")
}
