package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kayz/promptdesk/internal/config"
	"github.com/kayz/promptdesk/internal/form"
	"github.com/kayz/promptdesk/internal/generator"
	"github.com/kayz/promptdesk/internal/logger"
	"github.com/kayz/promptdesk/internal/output"
	"github.com/kayz/promptdesk/internal/webui"
	"github.com/spf13/cobra"
)

var (
	webPort    int
	webProfile string
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Run the local web form",
	Args:  cobra.NoArgs,
	RunE:  runWeb,
}

func init() {
	rootCmd.AddCommand(webCmd)
	webCmd.Flags().IntVar(&webPort, "port", 0, "Listen port (default from config)")
	webCmd.Flags().StringVar(&webProfile, "profile", "", "Profile name or YAML path (default from config)")
}

func runWeb(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()

	store, err := openPresetStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	auditor := newAuditor(cfg)
	gen, err := newGenerator(cfg, generatorSetup{profile: webProfile, presets: store, auditor: auditor})
	if err != nil {
		return err
	}

	if auditor.Enabled() && cfg.Audit.CleanupSchedule != "" {
		c, err := auditor.Schedule(cfg.Audit.CleanupSchedule, func(err error) {
			logger.Warn("[audit] cleanup failed: %v", err)
		})
		if err != nil {
			return err
		}
		defer c.Stop()
	}

	if cfgManager != nil && cfgManager.ConfigFile() != "" {
		cfgManager.OnChange(func(c *config.Config) {
			applyWebReload(c, gen)
		})
		cfgManager.WatchConfig(func(err error) {
			logger.Warn("[config] reload failed, keeping previous settings: %v", err)
		})
	}

	port := cfg.Web.Port
	if cmd.Flags().Changed("port") {
		port = webPort
	}

	server := webui.NewServer(gen, output.NewSlackSharer(cfg.Slack.WebhookURL, cfg.Slack.Retries))
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[web] listening on http://127.0.0.1:%d (profile %s)", port, gen.Profile().Name)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-sigCh:
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	}

	logger.Info("[web] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(ctx)
}

// applyWebReload applies the settings that can change while the server runs:
// log level, profile and allow_custom. An invalid profile keeps the old one.
func applyWebReload(c *config.Config, gen *generator.Generator) {
	if level, err := logger.ParseLevel(c.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	profile, err := resolveProfile(c, webProfile)
	if err != nil {
		logger.Warn("[config] %v, keeping profile %s", err, gen.Profile().Name)
		return
	}
	gen.Reconfigure(profile, form.DefaultCatalog(), c.Form.AllowCustom)
	logger.Info("[config] reloaded (profile %s)", profile.Name)
}
