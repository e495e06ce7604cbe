package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/kayz/promptdesk/internal/form"
	"github.com/kayz/promptdesk/internal/generator"
	"github.com/kayz/promptdesk/internal/logger"
	"github.com/kayz/promptdesk/internal/output"
	"github.com/spf13/cobra"
)

var (
	generateRequestPath string
	generatePreset      string
	generateProfile     string
	generateOutputPath  string
	generateCopy        bool
	generatePretty      bool
	generateRecord      bool
	generateAllowCustom bool
	generateFields      formFlags
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Assemble a prompt from flags, a preset or a JSON request",
	Example: `  promptdesk generate --format Email --task "Customer reports the refund failed twice."
  promptdesk generate --preset kb-article --task-file notes.txt --copy
  promptdesk generate --request request.json --output reply-prompt.txt`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&generateRequestPath, "request", "", "Path to JSON request file (- for stdin)")
	generateCmd.Flags().StringVar(&generatePreset, "preset", "", "Start from a named preset")
	generateCmd.Flags().StringVar(&generateProfile, "profile", "", "Profile name or YAML path (default from config)")
	generateCmd.Flags().StringVar(&generateOutputPath, "output", "", "Write the prompt to a file (default: stdout)")
	generateCmd.Flags().BoolVar(&generateCopy, "copy", false, "Copy the prompt to the system clipboard")
	generateCmd.Flags().BoolVar(&generatePretty, "pretty", false, "Render the prompt for the terminal")
	generateCmd.Flags().BoolVar(&generateRecord, "record", false, "Write an audit record even if auditing is off in config")
	generateCmd.Flags().BoolVar(&generateAllowCustom, "allow-custom", false, "Accept values outside the option lists")
	generateFields.register(generateCmd)
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()

	req, err := buildGenerateRequest(cmd)
	if err != nil {
		return err
	}

	auditor := newAuditor(cfg)
	if generateRecord && !auditor.Enabled() {
		recordCfg := *cfg
		recordCfg.Audit.Enabled = true
		auditor = newAuditor(&recordCfg)
	}

	setup := generatorSetup{
		profile:     generateProfile,
		allowCustom: generateAllowCustom,
		auditor:     auditor,
	}
	if req.Preset != "" && !isBuiltinPreset(req.Preset) {
		store, err := openPresetStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()
		setup.presets = store
	}

	gen, err := newGenerator(cfg, setup)
	if err != nil {
		return err
	}

	g, err := gen.Generate(cmd.Context(), req, "cli")
	if err != nil {
		return err
	}

	if generateOutputPath != "" {
		path, err := output.WriteFile(generateOutputPath, g.Prompt)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Prompt written to %s\n", path)
	} else if generatePretty {
		fmt.Fprintln(cmd.OutOrStdout(), output.Render(g.Prompt, 100))
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), g.Prompt)
	}

	if generateCopy {
		if err := (output.SystemClipboard{}).Copy(g.Prompt); err != nil {
			logger.Warn("copy failed, the prompt is still available above: %v", err)
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), "Prompt copied to clipboard.")
		}
	}
	return nil
}

// buildGenerateRequest layers the request file, --preset and the field flags,
// in that order.
func buildGenerateRequest(cmd *cobra.Command) (generator.Request, error) {
	var req generator.Request

	if generateRequestPath != "" {
		data, err := readInput(cmd, generateRequestPath)
		if err != nil {
			return req, fmt.Errorf("read request: %w", err)
		}
		if err := form.ValidateRequestJSON(data); err != nil {
			return req, err
		}
		if err := json.Unmarshal(data, &req); err != nil {
			return req, fmt.Errorf("parse request: %w", err)
		}
	}

	if generatePreset != "" {
		req.Preset = generatePreset
	}

	fields, err := generateFields.input(cmd)
	if err != nil {
		return req, err
	}
	req.Input = form.Merge(req.Input, fields)
	return req, nil
}
