package cmd

import (
	"fmt"
	"os"

	"github.com/kayz/promptdesk/internal/config"
	"github.com/kayz/promptdesk/internal/logger"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	cfgFile  string

	// cfgManager is loaded before every command runs.
	cfgManager *config.Manager
)

var rootCmd = &cobra.Command{
	Use:   "promptdesk",
	Short: "Assemble support-agent prompts for AI chat tools",
	Long: `promptdesk builds a structured prompt from a role, tone, audience, output
format and task. Paste the result into the AI chat tool of your choice.

Surfaces:
  promptdesk generate   Assemble a prompt on the command line
  promptdesk web        Run the local web form
  promptdesk mcp        Serve the prompt tools over MCP stdio`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		m, err := config.NewManager(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfgManager = m

		// --log wins over the configured level
		raw := m.Get().Logging.Level
		if cmd.Flags().Changed("log") || raw == "" {
			raw = logLevel
		}
		level, err := logger.ParseLevel(raw)
		if err != nil {
			return err
		}
		logger.SetLevel(level)

		if f := m.ConfigFile(); f != "" {
			logger.Debug("[config] loaded %s", f)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error, fatal, panic")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Config file (default: ./promptdesk.yaml or ~/.promptdesk/promptdesk.yaml)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
