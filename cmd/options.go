package cmd

import (
	"fmt"
	"strings"

	"github.com/kayz/promptdesk/internal/form"
	"github.com/kayz/promptdesk/internal/promptbuild"
	"github.com/spf13/cobra"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Show the accepted form values and profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := currentConfig()
		active, err := resolveProfile(cfg, "")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderOptions(form.DefaultCatalog(), active))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(optionsCmd)
}

func renderOptions(cat form.Catalog, active promptbuild.Profile) string {
	var b strings.Builder
	list := func(title string, items []string) {
		b.WriteString(headingStyle.Render(title))
		b.WriteString("\n")
		for i, item := range items {
			b.WriteString("  ")
			b.WriteString(item)
			if i == 0 {
				b.WriteString(mutedStyle.Render(" (default)"))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	list("Roles", cat.Roles)
	list("Tones", cat.Tones)
	list("Audiences", cat.Audiences)
	list("Output formats", cat.Formats)

	b.WriteString(headingStyle.Render("Length"))
	fmt.Fprintf(&b, "\n  %d-%d words, step %d, default %d\n\n", cat.MinLength, cat.MaxLength, cat.LengthStep, cat.DefaultLength)

	b.WriteString(headingStyle.Render("Profiles"))
	b.WriteString("\n")
	for _, name := range promptbuild.BuiltinProfileNames() {
		p, _ := promptbuild.BuiltinProfile(name)
		b.WriteString("  ")
		b.WriteString(nameStyle.Render(name))
		if name == active.Name {
			b.WriteString(mutedStyle.Render(" (active)"))
		}
		fmt.Fprintf(&b, "  %s\n", p.Description)
	}
	if _, builtin := promptbuild.BuiltinProfile(active.Name); !builtin {
		fmt.Fprintf(&b, "  %s%s  %s\n", nameStyle.Render(active.Name), mutedStyle.Render(" (active)"), active.Description)
	}

	b.WriteString("\n")
	b.WriteString(headingStyle.Render("Blocks on by default"))
	b.WriteString("\n")
	var on []string
	for _, id := range promptbuild.BlockIDs() {
		if active.Defaults.Enabled(id) {
			on = append(on, string(id))
		}
	}
	if len(on) == 0 {
		on = []string{"none"}
	}
	b.WriteString("  " + strings.Join(on, ", "))
	return b.String()
}
