// Package presets stores named form presets: the built-in ones shipped with the
// binary and user presets kept in SQLite.
package presets

import (
	"errors"
	"regexp"
	"sort"

	"github.com/kayz/promptdesk/internal/form"
	"github.com/kayz/promptdesk/internal/promptbuild"
)

var (
	ErrNotFound = errors.New("preset not found")
	ErrBuiltin  = errors.New("built-in preset cannot be changed")
)

// Preset is a named set of form values.
type Preset struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      form.Input `json:"fields" yaml:"fields"`
	Builtin     bool       `json:"builtin" yaml:"-"`
}

var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{0,63}$`)

// ValidName reports whether name can be used for a user preset.
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

func builtinPresets() []Preset {
	return []Preset{
		{
			Name:        "customer-email",
			Description: "Polite email reply to a customer",
			Fields: form.Input{
				Role:         "Customer support agent",
				Audience:     "Customer",
				Tone:         "Professional, friendly, and empathetic",
				OutputFormat: promptbuild.FormatEmail,
			},
		},
		{
			Name:        "customer-slack",
			Description: "Short Slack message to a customer in a shared channel",
			Fields: form.Input{
				Role:           "Customer support agent",
				Audience:       "Customer",
				Tone:           "Professional and polite",
				OutputFormat:   promptbuild.FormatSlackMessage,
				MaxLengthWords: form.Int(120),
			},
		},
		{
			Name:        "colleague-slack-post",
			Description: "Internal Slack post for the support team",
			Fields: form.Input{
				Role:           "Customer support agent",
				Audience:       "Other Manychat employee",
				Tone:           "Polite and casual, colleague-oriented",
				OutputFormat:   promptbuild.FormatSlackPost,
				MaxLengthWords: form.Int(200),
				Checklist:      form.Bool(false),
			},
		},
		{
			Name:        "kb-article",
			Description: "Knowledge base article draft with sources",
			Fields: form.Input{
				Role:            "Customer support agent",
				Audience:        "Customer",
				Tone:            "Professional and polite",
				OutputFormat:    promptbuild.FormatKBDraft,
				MaxLengthWords:  form.Int(600),
				QualityBar:      form.Bool(true),
				ReferencePolicy: form.Bool(true),
			},
		},
	}
}

// Builtins returns the presets shipped with the binary, sorted by name.
func Builtins() []Preset {
	list := builtinPresets()
	for i := range list {
		list[i].Builtin = true
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func builtin(name string) (Preset, bool) {
	for _, p := range Builtins() {
		if p.Name == name {
			return p, true
		}
	}
	return Preset{}, false
}
