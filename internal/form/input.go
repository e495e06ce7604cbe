package form

import (
	"fmt"
	"strings"

	"github.com/kayz/promptdesk/internal/promptbuild"
)

// Input holds raw, unvalidated field values. Nil pointers mean "not set", so a
// preset or profile default can fill them in.
type Input struct {
	Role         string `json:"role,omitempty" yaml:"role,omitempty"`
	Audience     string `json:"audience,omitempty" yaml:"audience,omitempty"`
	Tone         string `json:"tone,omitempty" yaml:"tone,omitempty"`
	OutputFormat string `json:"output_format,omitempty" yaml:"output_format,omitempty"`
	Task         string `json:"task,omitempty" yaml:"task,omitempty"`
	ExtraContext string `json:"extra_context,omitempty" yaml:"extra_context,omitempty"`
	Language     string `json:"language,omitempty" yaml:"language,omitempty"`

	MaxLengthWords *int `json:"max_length_words,omitempty" yaml:"max_length_words,omitempty"`

	Checklist       *bool `json:"checklist,omitempty" yaml:"checklist,omitempty"`
	Placeholders    *bool `json:"placeholders,omitempty" yaml:"placeholders,omitempty"`
	Safety          *bool `json:"safety,omitempty" yaml:"safety,omitempty"`
	QualityBar      *bool `json:"quality_bar,omitempty" yaml:"quality_bar,omitempty"`
	ReferencePolicy *bool `json:"reference_policy,omitempty" yaml:"reference_policy,omitempty"`
}

// Merge overlays the set fields of overlay on base.
func Merge(base, overlay Input) Input {
	out := base
	setString(&out.Role, overlay.Role)
	setString(&out.Audience, overlay.Audience)
	setString(&out.Tone, overlay.Tone)
	setString(&out.OutputFormat, overlay.OutputFormat)
	setString(&out.Task, overlay.Task)
	setString(&out.ExtraContext, overlay.ExtraContext)
	setString(&out.Language, overlay.Language)
	if overlay.MaxLengthWords != nil {
		out.MaxLengthWords = overlay.MaxLengthWords
	}
	for _, pair := range []struct{ dst, src **bool }{
		{&out.Checklist, &overlay.Checklist},
		{&out.Placeholders, &overlay.Placeholders},
		{&out.Safety, &overlay.Safety},
		{&out.QualityBar, &overlay.QualityBar},
		{&out.ReferencePolicy, &overlay.ReferencePolicy},
	} {
		if *pair.src != nil {
			*pair.dst = *pair.src
		}
	}
	return out
}

func setString(dst *string, v string) {
	if strings.TrimSpace(v) != "" {
		*dst = v
	}
}

// Int and Bool return pointers for building Input literals.
func Int(v int) *int    { return &v }
func Bool(v bool) *bool { return &v }

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field of one Input.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %q: %s", f.Field, f.Value, f.Message))
	}
	return "invalid form input: " + strings.Join(parts, "; ")
}

// Collector validates Input against a Catalog and fills defaults.
type Collector struct {
	catalog     Catalog
	defaults    promptbuild.Flags
	allowCustom bool
}

// NewCollector creates a Collector. defaults are the block flags applied when the
// input leaves a flag unset, usually the active profile's defaults. With allowCustom
// set, values outside the catalog are accepted as typed.
func NewCollector(catalog Catalog, defaults promptbuild.Flags, allowCustom bool) *Collector {
	return &Collector{catalog: catalog, defaults: defaults, allowCustom: allowCustom}
}

// Catalog returns the options the collector validates against.
func (c *Collector) Catalog() Catalog {
	return c.catalog
}

// Defaults returns the block flags used for unset inputs.
func (c *Collector) Defaults() promptbuild.Flags {
	return c.defaults
}

// Collect normalizes in into Params. Free text is only trimmed.
func (c *Collector) Collect(in Input) (promptbuild.Params, error) {
	var verr ValidationError

	pick := func(field string, options []string, v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			if len(options) > 0 {
				return options[0]
			}
			return ""
		}
		if canonical, ok := match(options, v); ok {
			return canonical
		}
		if c.allowCustom {
			return v
		}
		verr.Fields = append(verr.Fields, FieldError{
			Field:   field,
			Value:   v,
			Message: "must be one of: " + strings.Join(options, ", "),
		})
		return v
	}

	p := promptbuild.Params{
		Role:         pick("role", c.catalog.Roles, in.Role),
		Audience:     pick("audience", c.catalog.Audiences, in.Audience),
		Tone:         pick("tone", c.catalog.Tones, in.Tone),
		OutputFormat: pick("output_format", c.catalog.Formats, in.OutputFormat),
		Task:         strings.TrimSpace(in.Task),
		ExtraContext: strings.TrimSpace(in.ExtraContext),
		Language:     strings.TrimSpace(in.Language),
	}
	if p.Language == "" {
		p.Language = c.catalog.DefaultLanguage
	}

	length := c.catalog.DefaultLength
	if in.MaxLengthWords != nil {
		length = c.catalog.ClampLength(*in.MaxLengthWords)
	}
	p.MaxLengthWords = length

	p.Include = c.defaults
	flagFields := []struct {
		id promptbuild.BlockID
		v  *bool
	}{
		{promptbuild.BlockChecklist, in.Checklist},
		{promptbuild.BlockPlaceholders, in.Placeholders},
		{promptbuild.BlockSafety, in.Safety},
		{promptbuild.BlockQualityBar, in.QualityBar},
		{promptbuild.BlockReferencePolicy, in.ReferencePolicy},
	}
	for _, f := range flagFields {
		if f.v != nil {
			p.Include = p.Include.With(f.id, *f.v)
		}
	}

	if len(verr.Fields) > 0 {
		return p, &verr
	}
	return p, nil
}
