package promptbuild

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// profileFile is the YAML shape of a custom profile. Every field is optional and
// overrides the base profile it names (standard when empty).
type profileFile struct {
	Version         string            `yaml:"version"`
	Name            string            `yaml:"name"`
	Description     string            `yaml:"description,omitempty"`
	Base            string            `yaml:"base,omitempty"`
	TaskPlaceholder string            `yaml:"task_placeholder,omitempty"`
	Guidance        guidanceFile      `yaml:"guidance,omitempty"`
	Order           []string          `yaml:"order,omitempty"`
	Blocks          map[string]string `yaml:"blocks,omitempty"`
	Defaults        *Flags            `yaml:"defaults,omitempty"`
}

type guidanceFile struct {
	Fallback string            `yaml:"fallback,omitempty"`
	Formats  map[string]string `yaml:"formats,omitempty"`
}

// ResolveProfile returns the built-in profile called nameOrPath, or loads it as a
// YAML file. An empty value selects the standard profile.
func ResolveProfile(nameOrPath string) (Profile, error) {
	nameOrPath = strings.TrimSpace(nameOrPath)
	if nameOrPath == "" {
		return StandardProfile(), nil
	}
	if p, ok := BuiltinProfile(nameOrPath); ok {
		return p, nil
	}
	return LoadProfile(nameOrPath)
}

// LoadProfile reads and validates a YAML profile file.
func LoadProfile(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("read profile file %s: %w", path, err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return Profile{}, fmt.Errorf("profile file %s: %w", path, err)
	}
	return p, nil
}

// ParseProfile builds a Profile from YAML.
func ParseProfile(data []byte) (Profile, error) {
	var pf profileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return Profile{}, fmt.Errorf("parse profile: %w", err)
	}
	if err := validateProfileFile(&pf); err != nil {
		return Profile{}, fmt.Errorf("invalid profile: %w", err)
	}

	base := ProfileStandard
	if b := strings.TrimSpace(pf.Base); b != "" {
		base = b
	}
	p, _ := BuiltinProfile(base)
	p.Name = strings.TrimSpace(pf.Name)
	if pf.Description != "" {
		p.Description = strings.TrimSpace(pf.Description)
	}
	if pf.TaskPlaceholder != "" {
		p.TaskPlaceholder = strings.TrimSpace(pf.TaskPlaceholder)
	}

	if pf.Guidance.Fallback != "" {
		p.Guidance = p.Guidance.WithFallback(pf.Guidance.Fallback)
	}
	for format, sentence := range pf.Guidance.Formats {
		p.Guidance = p.Guidance.With(format, sentence)
	}

	if len(pf.Order) > 0 {
		layout, err := ParseLayout(pf.Order)
		if err != nil {
			return Profile{}, fmt.Errorf("invalid profile: %w", err)
		}
		p.Layout = layout
	}

	for id, text := range pf.Blocks {
		p.Blocks = p.Blocks.With(BlockID(strings.TrimSpace(id)), text)
	}

	if pf.Defaults != nil {
		p.Defaults = *pf.Defaults
	}

	if err := p.Validate(); err != nil {
		return Profile{}, fmt.Errorf("invalid profile: %w", err)
	}
	return p, nil
}

func validateProfileFile(pf *profileFile) error {
	if strings.TrimSpace(pf.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if b := strings.TrimSpace(pf.Base); b != "" {
		if _, ok := BuiltinProfile(b); !ok {
			return fmt.Errorf("unknown base profile: %s", b)
		}
	}
	for id, text := range pf.Blocks {
		bid := BlockID(strings.TrimSpace(id))
		if !isBlockID(bid) {
			return fmt.Errorf("unknown block: %s", id)
		}
		if strings.TrimSpace(text) == "" {
			return fmt.Errorf("block %s text is empty", id)
		}
	}
	seen := make(map[string]string, len(pf.Guidance.Formats))
	for format, sentence := range pf.Guidance.Formats {
		if strings.TrimSpace(format) == "" {
			return fmt.Errorf("guidance format name is empty")
		}
		folded := strings.ToLower(strings.TrimSpace(format))
		if prev, ok := seen[folded]; ok {
			return fmt.Errorf("guidance formats %q and %q differ only by case", prev, format)
		}
		seen[folded] = format
		if strings.TrimSpace(sentence) == "" {
			return fmt.Errorf("guidance for %s is empty", format)
		}
	}
	return nil
}

// Validate checks the layout and that every gated section in it has block text.
func (p Profile) Validate() error {
	if err := p.Layout.Validate(); err != nil {
		return err
	}
	for _, id := range p.Layout {
		if b, ok := id.Block(); ok && p.Blocks.Text(b) == "" {
			return fmt.Errorf("section %s has no block text", id)
		}
	}
	return nil
}
