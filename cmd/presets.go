package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/kayz/promptdesk/internal/presets"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	presetDescription string
	presetFields      formFlags
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage form presets",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List built-in and saved presets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPresetStore(currentConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := store.List(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderPresetList(list))
		return nil
	},
}

var presetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a preset as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPresetStore(currentConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		p, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode preset: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var presetsSaveCmd = &cobra.Command{
	Use:   "save <name>",
	Short: "Save the given field flags as a preset",
	Example: `  promptdesk presets save refund-reply --format Email --tone "Professional, friendly, and empathetic" --length 180`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := presetFields.input(cmd)
		if err != nil {
			return err
		}

		store, err := openPresetStore(currentConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		p := presets.Preset{Name: args[0], Description: presetDescription, Fields: fields}
		if err := store.Save(cmd.Context(), p); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved preset %s\n", p.Name)
		return nil
	},
}

var presetsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved preset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPresetStore(currentConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %s\n", args[0])
		return nil
	},
}

var presetsImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import presets from a YAML bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPresetStore(currentConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Import(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d preset(s)\n", n)
		return nil
	},
}

var presetsExportCmd = &cobra.Command{
	Use:   "export <file.yaml>",
	Short: "Export saved presets to a YAML bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openPresetStore(currentConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Export(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d preset(s) to %s\n", n, args[0])
		return nil
	},
}

func init() {
	presetsSaveCmd.Flags().StringVar(&presetDescription, "description", "", "Short description shown in lists")
	presetFields.register(presetsSaveCmd)

	presetsCmd.AddCommand(presetsListCmd, presetsShowCmd, presetsSaveCmd, presetsDeleteCmd, presetsImportCmd, presetsExportCmd)
	rootCmd.AddCommand(presetsCmd)
}

func isBuiltinPreset(name string) bool {
	for _, p := range presets.Builtins() {
		if p.Name == name {
			return true
		}
	}
	return false
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	nameStyle    = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func renderPresetList(list []presets.Preset) string {
	width := 0
	for _, p := range list {
		if len(p.Name) > width {
			width = len(p.Name)
		}
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render("Presets"))
	for _, p := range list {
		b.WriteString("\n  ")
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s", width, p.Name)))
		b.WriteString("  ")
		b.WriteString(p.Description)
		if p.Builtin {
			b.WriteString(mutedStyle.Render(" (built-in)"))
		}
	}
	return b.String()
}
