// Package generator ties the form collector, presets, assembler and output sinks
// together. The CLI, the web server and the MCP server all generate through it.
package generator

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kayz/promptdesk/internal/form"
	"github.com/kayz/promptdesk/internal/logger"
	"github.com/kayz/promptdesk/internal/output"
	"github.com/kayz/promptdesk/internal/presets"
	"github.com/kayz/promptdesk/internal/promptbuild"
)

// PresetSource looks up named presets.
type PresetSource interface {
	Get(ctx context.Context, name string) (presets.Preset, error)
	List(ctx context.Context) ([]presets.Preset, error)
}

// Request is a generate request: optional preset name plus form fields that
// override it.
type Request struct {
	Preset string `json:"preset,omitempty" yaml:"preset,omitempty"`
	form.Input `yaml:",inline"`
}

// Options configures a Generator.
type Options struct {
	Profile     promptbuild.Profile
	Catalog     form.Catalog
	AllowCustom bool
	Presets     PresetSource
	Cache       *output.Cache
	Auditor     *output.Auditor
}

// Generator produces prompts and records them. It is safe for concurrent use.
type Generator struct {
	mu        sync.RWMutex
	assembler *promptbuild.Assembler
	collector *form.Collector

	presets PresetSource
	cache   *output.Cache
	auditor *output.Auditor
}

// New creates a Generator. A nil cache gets a private one; a nil preset source
// serves built-ins only.
func New(opts Options) *Generator {
	if opts.Cache == nil {
		opts.Cache = &output.Cache{}
	}
	if opts.Presets == nil {
		opts.Presets = builtinSource{}
	}
	g := &Generator{
		presets: opts.Presets,
		cache:   opts.Cache,
		auditor: opts.Auditor,
	}
	g.Reconfigure(opts.Profile, opts.Catalog, opts.AllowCustom)
	return g
}

// Reconfigure swaps the profile and catalog, e.g. after a config reload. A zero
// profile or catalog means the standard one.
func (g *Generator) Reconfigure(profile promptbuild.Profile, catalog form.Catalog, allowCustom bool) {
	if profile.Name == "" {
		profile = promptbuild.StandardProfile()
	}
	if len(catalog.Roles) == 0 && len(catalog.Formats) == 0 {
		catalog = form.DefaultCatalog()
	}
	assembler := promptbuild.NewAssembler(profile)
	collector := form.NewCollector(catalog, assembler.Profile().Defaults, allowCustom)

	g.mu.Lock()
	g.assembler = assembler
	g.collector = collector
	g.mu.Unlock()
}

func (g *Generator) parts() (*promptbuild.Assembler, *form.Collector) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.assembler, g.collector
}

// Profile returns the active profile.
func (g *Generator) Profile() promptbuild.Profile {
	a, _ := g.parts()
	return a.Profile()
}

// Catalog returns the active option catalog.
func (g *Generator) Catalog() form.Catalog {
	_, c := g.parts()
	return c.Catalog()
}

// Defaults returns the block flags applied when a request leaves them unset.
func (g *Generator) Defaults() promptbuild.Flags {
	_, c := g.parts()
	return c.Defaults()
}

// Presets returns the preset source.
func (g *Generator) Presets() PresetSource {
	return g.presets
}

// Cache returns the last-generation cache.
func (g *Generator) Cache() *output.Cache {
	return g.cache
}

// Resolve merges the request's preset with its fields and validates the result.
func (g *Generator) Resolve(ctx context.Context, req Request) (promptbuild.Params, error) {
	in := req.Input
	if name := strings.TrimSpace(req.Preset); name != "" {
		p, err := g.presets.Get(ctx, name)
		if err != nil {
			return promptbuild.Params{}, err
		}
		in = form.Merge(p.Fields, req.Input)
	}

	_, c := g.parts()
	return c.Collect(in)
}

// Preview assembles the prompt and caches it without writing an audit record.
func (g *Generator) Preview(ctx context.Context, req Request) (output.Generation, error) {
	params, err := g.Resolve(ctx, req)
	if err != nil {
		return output.Generation{}, err
	}
	gen := g.assemble(params)
	g.cache.Store(gen)
	return gen, nil
}

// Generate assembles, caches and audits the prompt. source names the caller in
// the audit trail. Audit failures are logged and do not fail the generation.
func (g *Generator) Generate(ctx context.Context, req Request, source string) (output.Generation, error) {
	gen, err := g.Preview(ctx, req)
	if err != nil {
		return output.Generation{}, err
	}
	if err := g.auditor.Record(gen, source); err != nil {
		logger.Warn("[generator] audit record failed: %v", err)
	}
	logger.Debug("[generator] %s generated prompt %s (%d sections, %d chars)", source, gen.ID, len(gen.Sections), len(gen.Prompt))
	return gen, nil
}

func (g *Generator) assemble(p promptbuild.Params) output.Generation {
	a, _ := g.parts()
	return output.NewGeneration(p, a.Assemble(p), a.Sections(p))
}

type builtinSource struct{}

func (builtinSource) Get(_ context.Context, name string) (presets.Preset, error) {
	for _, p := range presets.Builtins() {
		if p.Name == name {
			return p, nil
		}
	}
	return presets.Preset{}, fmt.Errorf("%w: %s", presets.ErrNotFound, name)
}

func (builtinSource) List(context.Context) ([]presets.Preset, error) {
	return presets.Builtins(), nil
}
