package cmd

import (
	"fmt"
	"strings"

	"github.com/kayz/promptdesk/internal/config"
	"github.com/kayz/promptdesk/internal/form"
	"github.com/kayz/promptdesk/internal/generator"
	"github.com/kayz/promptdesk/internal/output"
	"github.com/kayz/promptdesk/internal/presets"
	"github.com/kayz/promptdesk/internal/promptbuild"
)

// currentConfig returns the loaded configuration, or defaults when the root
// pre-run did not run (tests calling helpers directly).
func currentConfig() *config.Config {
	if cfgManager == nil {
		return config.DefaultConfig()
	}
	return cfgManager.Get()
}

func openPresetStore(cfg *config.Config) (*presets.Store, error) {
	store, err := presets.Open(cfg.Presets.Path)
	if err != nil {
		return nil, fmt.Errorf("open preset store %s: %w", cfg.Presets.Path, err)
	}
	return store, nil
}

func newAuditor(cfg *config.Config) *output.Auditor {
	return output.NewAuditor(output.AuditConfig{
		Enabled:       cfg.Audit.Enabled,
		Dir:           cfg.Audit.Dir,
		Prefix:        cfg.Audit.FilePrefix,
		RetentionDays: cfg.Audit.RetentionDays,
	})
}

// resolveProfile loads the profile named by override, falling back to the
// configured one.
func resolveProfile(cfg *config.Config, override string) (promptbuild.Profile, error) {
	name := strings.TrimSpace(override)
	if name == "" {
		name = cfg.Profile
	}
	p, err := promptbuild.ResolveProfile(name)
	if err != nil {
		return promptbuild.Profile{}, fmt.Errorf("load profile %q: %w", name, err)
	}
	return p, nil
}

type generatorSetup struct {
	profile     string
	allowCustom bool
	auditor     *output.Auditor
	presets     generator.PresetSource
}

func newGenerator(cfg *config.Config, s generatorSetup) (*generator.Generator, error) {
	profile, err := resolveProfile(cfg, s.profile)
	if err != nil {
		return nil, err
	}
	auditor := s.auditor
	if auditor == nil {
		auditor = newAuditor(cfg)
	}
	return generator.New(generator.Options{
		Profile:     profile,
		Catalog:     form.DefaultCatalog(),
		AllowCustom: s.allowCustom || cfg.Form.AllowCustom,
		Presets:     s.presets,
		Auditor:     auditor,
	}), nil
}
