package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kayz/promptdesk/internal/form"
	"github.com/spf13/cobra"
)

// formFlags binds the form fields to command-line flags. Only flags the user
// sets override a request file or preset.
type formFlags struct {
	role, audience, tone, format string
	task, taskFile, extraContext string
	language                     string
	length                       int

	checklist, placeholders, safety, qualityBar, referencePolicy bool
}

func (f *formFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.role, "role", "", "Role the AI acts as")
	fs.StringVar(&f.audience, "audience", "", "Audience: Customer or Other Manychat employee")
	fs.StringVar(&f.tone, "tone", "", "Tone of the text")
	fs.StringVar(&f.format, "format", "", "Output format, e.g. Email or \"Slack message\"")
	fs.StringVar(&f.task, "task", "", "Task text (source information)")
	fs.StringVar(&f.taskFile, "task-file", "", "Read the task text from a file (- for stdin)")
	fs.StringVar(&f.extraContext, "context", "", "Additional context")
	fs.StringVar(&f.language, "language", "", "Output language (default English)")
	fs.IntVar(&f.length, "length", 0, "Target length in words (80-800, step 10)")
	fs.BoolVar(&f.checklist, "checklist", false, "Append the review checklist")
	fs.BoolVar(&f.placeholders, "placeholders", false, "Include placeholder guidance")
	fs.BoolVar(&f.safety, "safety", false, "Include the safety and privacy block")
	fs.BoolVar(&f.qualityBar, "quality-bar", false, "Include the quality bar")
	fs.BoolVar(&f.referencePolicy, "reference-policy", false, "Include the reference sources policy")
}

// input returns the fields the user set on cmd.
func (f *formFlags) input(cmd *cobra.Command) (form.Input, error) {
	var in form.Input
	changed := cmd.Flags().Changed

	in.Role = f.role
	in.Audience = f.audience
	in.Tone = f.tone
	in.OutputFormat = f.format
	in.Task = f.task
	in.ExtraContext = f.extraContext
	in.Language = f.language

	if f.taskFile != "" {
		if f.task != "" {
			return in, fmt.Errorf("use either --task or --task-file, not both")
		}
		data, err := readInput(cmd, f.taskFile)
		if err != nil {
			return in, fmt.Errorf("read task: %w", err)
		}
		in.Task = string(data)
	}

	if changed("length") {
		in.MaxLengthWords = form.Int(f.length)
	}
	for _, b := range []struct {
		name string
		dst  **bool
		v    bool
	}{
		{"checklist", &in.Checklist, f.checklist},
		{"placeholders", &in.Placeholders, f.placeholders},
		{"safety", &in.Safety, f.safety},
		{"quality-bar", &in.QualityBar, f.qualityBar},
		{"reference-policy", &in.ReferencePolicy, f.referencePolicy},
	} {
		if changed(b.name) {
			*b.dst = form.Bool(b.v)
		}
	}
	return in, nil
}

// readInput reads a file, or stdin for "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}
