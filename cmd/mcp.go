package cmd

import (
	"github.com/kayz/promptdesk/internal/logger"
	"github.com/kayz/promptdesk/internal/mcpserver"
	"github.com/spf13/cobra"
)

var mcpProfile string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the prompt tools over MCP stdio",
	Long: `Serve assemble_prompt and list_options as MCP tools on stdin/stdout.

Logs go to stderr so they never mix with the protocol stream.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := currentConfig()
		store, err := openPresetStore(cfg)
		if err != nil {
			return err
		}
		defer store.Close()

		gen, err := newGenerator(cfg, generatorSetup{profile: mcpProfile, presets: store})
		if err != nil {
			return err
		}

		logger.Info("[mcp] serving promptdesk %s on stdio (profile %s)", Version, gen.Profile().Name)
		return mcpserver.Serve(gen, Version)
	},
}

func init() {
	mcpCmd.Flags().StringVar(&mcpProfile, "profile", "", "Profile name or YAML path (default from config)")
	rootCmd.AddCommand(mcpCmd)
}
