package promptbuild

const (
	// DefaultLanguage is used when Params.Language is blank.
	DefaultLanguage = "English"
	// DefaultMaxLengthWords is used when Params.MaxLengthWords is not positive.
	DefaultMaxLengthWords = 250
	// DefaultTaskPlaceholder replaces an empty task so the Task section is never blank.
	DefaultTaskPlaceholder = "<Task not provided>"
)

// Flags gates the optional boilerplate blocks. Each flag controls exactly one block.
type Flags struct {
	Checklist       bool `json:"checklist" yaml:"checklist"`
	Placeholders    bool `json:"placeholders" yaml:"placeholders"`
	Safety          bool `json:"safety" yaml:"safety"`
	QualityBar      bool `json:"quality_bar" yaml:"quality_bar"`
	ReferencePolicy bool `json:"reference_policy" yaml:"reference_policy"`
}

// Enabled reports whether the block with the given id is switched on.
func (f Flags) Enabled(id BlockID) bool {
	switch id {
	case BlockChecklist:
		return f.Checklist
	case BlockPlaceholders:
		return f.Placeholders
	case BlockSafety:
		return f.Safety
	case BlockQualityBar:
		return f.QualityBar
	case BlockReferencePolicy:
		return f.ReferencePolicy
	default:
		return false
	}
}

// With returns a copy of f with one block switched on or off.
func (f Flags) With(id BlockID, on bool) Flags {
	switch id {
	case BlockChecklist:
		f.Checklist = on
	case BlockPlaceholders:
		f.Placeholders = on
	case BlockSafety:
		f.Safety = on
	case BlockQualityBar:
		f.QualityBar = on
	case BlockReferencePolicy:
		f.ReferencePolicy = on
	}
	return f
}

// Params is one generation request. It is a plain value: build it, assemble it, drop it.
type Params struct {
	Role         string `json:"role"`
	Audience     string `json:"audience"`
	Tone         string `json:"tone"`
	OutputFormat string `json:"output_format"`
	Task         string `json:"task"`
	ExtraContext string `json:"extra_context,omitempty"`
	Language     string `json:"language"`

	// MaxLengthWords is interpolated as-is; range limits belong to the form.
	MaxLengthWords int `json:"max_length_words"`

	Include Flags `json:"include"`
}
