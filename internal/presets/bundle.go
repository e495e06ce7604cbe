package presets

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const bundleVersion = 1

type bundle struct {
	Version int      `yaml:"version"`
	Presets []Preset `yaml:"presets"`
}

// Export writes the user presets to path as a YAML bundle. Built-ins are skipped.
func (s *Store) Export(ctx context.Context, path string) (int, error) {
	all, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	b := bundle{Version: bundleVersion}
	for _, p := range all {
		if !p.Builtin {
			b.Presets = append(b.Presets, p)
		}
	}

	data, err := yaml.Marshal(&b)
	if err != nil {
		return 0, fmt.Errorf("encode presets: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, fmt.Errorf("write presets: %w", err)
	}
	return len(b.Presets), nil
}

// Import reads a YAML bundle from path and saves every preset in it. The bundle is
// checked in full before anything is written.
func (s *Store) Import(ctx context.Context, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read presets: %w", err)
	}

	var b bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return 0, fmt.Errorf("parse presets: %w", err)
	}
	if b.Version != 0 && b.Version != bundleVersion {
		return 0, fmt.Errorf("unsupported preset bundle version %d", b.Version)
	}

	seen := make(map[string]bool, len(b.Presets))
	for _, p := range b.Presets {
		if _, ok := builtin(p.Name); ok {
			return 0, fmt.Errorf("%w: %s", ErrBuiltin, p.Name)
		}
		if !ValidName(p.Name) {
			return 0, fmt.Errorf("invalid preset name %q", p.Name)
		}
		if seen[p.Name] {
			return 0, fmt.Errorf("duplicate preset %q in bundle", p.Name)
		}
		seen[p.Name] = true
	}

	for _, p := range b.Presets {
		if err := s.Save(ctx, p); err != nil {
			return 0, err
		}
	}
	return len(b.Presets), nil
}
