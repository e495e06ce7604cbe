// Package form turns raw field values from the web form, the CLI, MCP tool calls and
// presets into promptbuild.Params.
package form

import (
	"strings"

	"github.com/kayz/promptdesk/internal/promptbuild"
)

// Catalog lists the options a form offers and the bounds of the length slider.
type Catalog struct {
	Roles     []string `json:"roles"`
	Tones     []string `json:"tones"`
	Audiences []string `json:"audiences"`
	Formats   []string `json:"formats"`

	MinLength     int `json:"min_length"`
	MaxLength     int `json:"max_length"`
	LengthStep    int `json:"length_step"`
	DefaultLength int `json:"default_length"`

	DefaultLanguage string `json:"default_language"`
}

// DefaultCatalog returns the stock option lists. The first entry of each list is
// the default selection.
func DefaultCatalog() Catalog {
	return Catalog{
		Roles: []string{
			"Customer support agent",
		},
		Tones: []string{
			"Professional and polite",
			"Polite and casual, colleague-oriented",
			"Professional, friendly, and empathetic",
		},
		Audiences: []string{
			"Customer",
			"Other Manychat employee",
		},
		Formats: []string{
			promptbuild.FormatEmail,
			promptbuild.FormatSlackMessage,
			promptbuild.FormatSlackPost,
			promptbuild.FormatKBDraft,
		},
		MinLength:       80,
		MaxLength:       800,
		LengthStep:      10,
		DefaultLength:   promptbuild.DefaultMaxLengthWords,
		DefaultLanguage: promptbuild.DefaultLanguage,
	}
}

// match returns the catalog spelling of v, ignoring case and surrounding space.
func match(options []string, v string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, o := range options {
		if strings.EqualFold(o, v) {
			return o, true
		}
	}
	return "", false
}

// ClampLength snaps n onto the slider: bounded by Min/MaxLength, rounded to LengthStep.
func (c Catalog) ClampLength(n int) int {
	if n < c.MinLength {
		n = c.MinLength
	}
	if c.MaxLength > 0 && n > c.MaxLength {
		n = c.MaxLength
	}
	if c.LengthStep > 1 {
		offset := n - c.MinLength
		offset = (offset + c.LengthStep/2) / c.LengthStep * c.LengthStep
		n = c.MinLength + offset
		if c.MaxLength > 0 && n > c.MaxLength {
			n = c.MaxLength
		}
	}
	return n
}
