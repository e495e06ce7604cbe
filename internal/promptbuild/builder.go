// Package promptbuild assembles support-agent prompts from form parameters,
// a format guidance table and fixed boilerplate blocks.
//
// Assembly is a pure function of its inputs: no I/O, no clock, no shared state.
package promptbuild

import (
	"fmt"
	"strings"
)

// genericFormat stands in for a blank output format in the prose lines.
const genericFormat = "response"

// Assembler renders prompts for one Profile. It is safe for concurrent use.
type Assembler struct {
	profile Profile
}

// NewAssembler creates an Assembler. Zero-valued profile parts fall back to the
// standard profile's.
func NewAssembler(p Profile) *Assembler {
	std := StandardProfile()
	if p.Guidance.entries == nil {
		p.Guidance = std.Guidance
	}
	if p.Blocks.texts == nil {
		p.Blocks = std.Blocks
	}
	if len(p.Layout) == 0 {
		p.Layout = std.Layout
	} else {
		p.Layout = p.Layout.clone()
	}
	if strings.TrimSpace(p.TaskPlaceholder) == "" {
		p.TaskPlaceholder = DefaultTaskPlaceholder
	}
	return &Assembler{profile: p}
}

var standard = NewAssembler(StandardProfile())

// Assemble renders p with the standard profile.
func Assemble(p Params) string {
	return standard.Assemble(p)
}

// Profile returns the profile the assembler was built with.
func (a *Assembler) Profile() Profile {
	p := a.profile
	p.Layout = p.Layout.clone()
	return p
}

// Section is one rendered part of a prompt.
type Section struct {
	ID      SectionID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}

// Assemble renders the prompt. It never fails: blanks degrade to defaults, an
// unknown output format to the fallback guidance, an empty task to the placeholder.
func (a *Assembler) Assemble(p Params) string {
	return renderSections(a.Sections(p))
}

// Sections returns the non-empty sections of the prompt in layout order.
func (a *Assembler) Sections(p Params) []Section {
	p = a.normalize(p)

	var sections []section
	for _, id := range a.profile.Layout {
		sections = appendSection(sections, id, a.sectionContent(id, p))
	}

	out := make([]Section, 0, len(sections))
	for _, s := range sections {
		out = append(out, Section{ID: s.id, Title: s.id.Title(), Content: s.content})
	}
	return out
}

type section struct {
	id      SectionID
	content string
}

func appendSection(list []section, id SectionID, content string) []section {
	content = strings.TrimSpace(content)
	if content == "" {
		return list
	}
	return append(list, section{id: id, content: content})
}

func renderSections(sections []Section) string {
	var out strings.Builder
	for i, s := range sections {
		if i > 0 {
			out.WriteString("\n\n")
		}
		out.WriteString(s.Content)
	}
	return strings.TrimSpace(out.String())
}

// normalize fills defaults. Role, audience and tone are interpolated as given.
func (a *Assembler) normalize(p Params) Params {
	p.OutputFormat = strings.TrimSpace(p.OutputFormat)
	p.Task = strings.TrimSpace(p.Task)
	p.ExtraContext = strings.TrimSpace(p.ExtraContext)
	p.Language = strings.TrimSpace(p.Language)

	if p.Task == "" {
		p.Task = a.profile.TaskPlaceholder
	}
	if p.Language == "" {
		p.Language = DefaultLanguage
	}
	if p.MaxLengthWords <= 0 {
		p.MaxLengthWords = DefaultMaxLengthWords
	}
	return p
}

func (a *Assembler) sectionContent(id SectionID, p Params) string {
	if block, ok := id.Block(); ok {
		if !p.Include.Enabled(block) {
			return ""
		}
		return a.profile.Blocks.Text(block)
	}

	format := p.OutputFormat
	if format == "" {
		format = genericFormat
	}
	formatNoun := strings.ToLower(format)

	switch id {
	case SectionBrief:
		return fmt.Sprintf("You are acting as a **%s**.\nWrite in **%s** for the **%s**.\nUse a **%s** tone.\nProduce a **%s**. Target length: ~%d words.",
			p.Role, p.Language, p.Audience, p.Tone, format, p.MaxLengthWords)
	case SectionObjective:
		return fmt.Sprintf("Objective:\n- Based on the Task above, produce a clear, accurate, and helpful %s.\n- %s",
			formatNoun, a.profile.Guidance.Sentence(p.OutputFormat))
	case SectionTask:
		return "Task (source information; may include placeholders; do not expose sensitive data):\n---\n" + p.Task + "\n---"
	case SectionContext:
		if p.ExtraContext == "" {
			return ""
		}
		return "Additional context:\n" + p.ExtraContext
	case SectionRequirements:
		reader := strings.ToLower(p.Audience)
		if strings.TrimSpace(reader) == "" {
			reader = "reader"
		}
		return "Requirements:\n" +
			"- Be self-contained and easy to understand for the " + reader + ".\n" +
			"- If data is missing, note assumptions and suggest what to request next.\n" +
			"- Use customer-safe language and avoid internal jargon.\n" +
			"- Include step-by-step guidance or next actions when relevant.\n" +
			"- Keep the structure scannable (short paragraphs, bullets).\n" +
			"- Do not fabricate details."
	case SectionOutput:
		return "Output:\n- Write only the final " + formatNoun + " with no extra preamble."
	default:
		return ""
	}
}
