package promptbuild

import (
	"sort"
	"strings"
)

// Output format names offered by the stock form.
const (
	FormatEmail        = "Email"
	FormatSlackMessage = "Slack message"
	FormatSlackPost    = "Slack post"
	FormatKBDraft      = "Knowledge base article draft"
)

// DefaultFallbackGuidance is used for formats missing from the table.
const DefaultFallbackGuidance = "Structure the response clearly: a short introduction, the key points, and explicit next steps."

// GuidanceTable maps an output format to one guidance sentence.
// Unknown formats resolve to the fallback sentence, never to an error.
type GuidanceTable struct {
	entries  map[string]string
	fallback string
}

// NewGuidanceTable copies entries. An empty fallback becomes DefaultFallbackGuidance.
// Format names that differ only by case collapse to the first one in sorted order.
func NewGuidanceTable(entries map[string]string, fallback string) GuidanceTable {
	t := GuidanceTable{
		entries:  make(map[string]string, len(entries)),
		fallback: strings.TrimSpace(fallback),
	}
	if t.fallback == "" {
		t.fallback = DefaultFallbackGuidance
	}
	formats := make([]string, 0, len(entries))
	for format := range entries {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	for _, raw := range formats {
		format := strings.TrimSpace(raw)
		sentence := strings.TrimSpace(entries[raw])
		if format == "" || sentence == "" {
			continue
		}
		if _, ok := t.key(format); ok {
			continue
		}
		t.entries[format] = sentence
	}
	return t
}

// DefaultGuidance returns the stock table for the four built-in formats.
func DefaultGuidance() GuidanceTable {
	return NewGuidanceTable(map[string]string{
		FormatEmail:        "Structure with greeting, brief context, solution/next steps, and closing signature.",
		FormatSlackMessage: "Keep it concise with bullet points and action items.",
		FormatSlackPost:    "Use a clear headline, summary, bullets, and action items for visibility.",
		FormatKBDraft:      "Include title, summary, prerequisites, step-by-step instructions, and troubleshooting.",
	}, DefaultFallbackGuidance)
}

// Lookup returns the sentence for format, matched case-insensitively.
func (t GuidanceTable) Lookup(format string) (string, bool) {
	k, ok := t.key(strings.TrimSpace(format))
	if !ok {
		return "", false
	}
	return t.entries[k], true
}

// key finds the stored name equal to format under case folding.
// Tables never hold two such names, so at most one key matches.
func (t GuidanceTable) key(format string) (string, bool) {
	if _, ok := t.entries[format]; ok {
		return format, true
	}
	for k := range t.entries {
		if strings.EqualFold(k, format) {
			return k, true
		}
	}
	return "", false
}

// Sentence returns the guidance for format or the fallback sentence.
func (t GuidanceTable) Sentence(format string) string {
	if s, ok := t.Lookup(format); ok {
		return s
	}
	return t.Fallback()
}

// Fallback returns the sentence used for unknown formats.
func (t GuidanceTable) Fallback() string {
	if t.fallback == "" {
		return DefaultFallbackGuidance
	}
	return t.fallback
}

// Formats returns the known format names, sorted.
func (t GuidanceTable) Formats() []string {
	out := make([]string, 0, len(t.entries))
	for k := range t.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// With returns a copy of t with format mapped to sentence. An existing
// name equal to format under case folding is replaced.
func (t GuidanceTable) With(format, sentence string) GuidanceTable {
	format = strings.TrimSpace(format)
	entries := make(map[string]string, len(t.entries)+1)
	for k, v := range t.entries {
		if strings.EqualFold(k, format) {
			continue
		}
		entries[k] = v
	}
	entries[format] = sentence
	return NewGuidanceTable(entries, t.fallback)
}

// WithFallback returns a copy of t with a different fallback sentence.
func (t GuidanceTable) WithFallback(fallback string) GuidanceTable {
	return NewGuidanceTable(t.entries, fallback)
}
