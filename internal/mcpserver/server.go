// Package mcpserver exposes prompt assembly as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/kayz/promptdesk/internal/form"
	"github.com/kayz/promptdesk/internal/generator"
	"github.com/kayz/promptdesk/internal/promptbuild"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tools holds the tool handlers bound to one generator.
type Tools struct {
	gen *generator.Generator
}

func NewTools(gen *generator.Generator) *Tools {
	return &Tools{gen: gen}
}

// NewServer builds an MCP server with the promptdesk tools registered.
func NewServer(gen *generator.Generator, version string) *server.MCPServer {
	t := NewTools(gen)
	s := server.NewMCPServer("promptdesk", version, server.WithToolCapabilities(false))

	catalog := gen.Catalog()
	s.AddTool(mcp.NewTool("assemble_prompt",
		mcp.WithDescription("Assemble a support-agent prompt from form settings. Returns the prompt text to paste into an AI chat tool."),
		mcp.WithString("preset", mcp.Description("Optional preset name; other arguments override its values")),
		mcp.WithString("role", mcp.Description("Role the AI should act as"), mcp.Enum(catalog.Roles...)),
		mcp.WithString("audience", mcp.Description("Who the text is written for"), mcp.Enum(catalog.Audiences...)),
		mcp.WithString("tone", mcp.Description("Tone of the text"), mcp.Enum(catalog.Tones...)),
		mcp.WithString("output_format", mcp.Description("Kind of text to produce"), mcp.Enum(catalog.Formats...)),
		mcp.WithString("task", mcp.Description("Source information: the request, ticket details or notes")),
		mcp.WithString("extra_context", mcp.Description("Additional context")),
		mcp.WithString("language", mcp.Description("Output language (default English)")),
		mcp.WithNumber("max_length_words", mcp.Description("Target length in words")),
		mcp.WithBoolean("checklist", mcp.Description("Append the review checklist")),
		mcp.WithBoolean("placeholders", mcp.Description("Include placeholder guidance")),
		mcp.WithBoolean("safety", mcp.Description("Include the safety and privacy block")),
		mcp.WithBoolean("quality_bar", mcp.Description("Include the quality bar")),
		mcp.WithBoolean("reference_policy", mcp.Description("Include the reference sources policy")),
	), t.AssemblePrompt)

	s.AddTool(mcp.NewTool("list_options",
		mcp.WithDescription("List the roles, tones, audiences, output formats, presets and default settings the assemble_prompt tool accepts."),
	), t.ListOptions)

	return s
}

// Serve runs the server on stdin/stdout until the client disconnects.
func Serve(gen *generator.Generator, version string) error {
	return server.ServeStdio(NewServer(gen, version))
}

func (t *Tools) AssemblePrompt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	r, err := requestFromArgs(req.Params.Arguments)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	g, err := t.gen.Generate(ctx, r, "mcp")
	if err != nil {
		var verr *form.ValidationError
		if errors.As(err, &verr) {
			return mcp.NewToolResultError(verr.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("assemble prompt: %v", err)), nil
	}
	return mcp.NewToolResultText(g.Prompt), nil
}

type optionsResult struct {
	form.Catalog
	Profile  string            `json:"profile"`
	Defaults promptbuild.Flags `json:"defaults"`
	Presets  []presetSummary   `json:"presets"`
}

type presetSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (t *Tools) ListOptions(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := t.gen.Presets().List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list presets: %v", err)), nil
	}

	res := optionsResult{
		Catalog:  t.gen.Catalog(),
		Profile:  t.gen.Profile().Name,
		Defaults: t.gen.Defaults(),
	}
	for _, p := range list {
		res.Presets = append(res.Presets, presetSummary{Name: p.Name, Description: p.Description})
	}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode options: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func requestFromArgs(args map[string]any) (generator.Request, error) {
	var r generator.Request

	strs := map[string]*string{
		"preset":        &r.Preset,
		"role":          &r.Role,
		"audience":      &r.Audience,
		"tone":          &r.Tone,
		"output_format": &r.OutputFormat,
		"task":          &r.Task,
		"extra_context": &r.ExtraContext,
		"language":      &r.Language,
	}
	for key, dst := range strs {
		v, ok := args[key]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return r, fmt.Errorf("%s must be a string", key)
		}
		*dst = s
	}

	if v, ok := args["max_length_words"]; ok && v != nil {
		n, ok := v.(float64)
		if !ok || n != math.Trunc(n) {
			return r, fmt.Errorf("max_length_words must be a whole number")
		}
		r.MaxLengthWords = form.Int(int(n))
	}

	flags := map[string]**bool{
		"checklist":        &r.Checklist,
		"placeholders":     &r.Placeholders,
		"safety":           &r.Safety,
		"quality_bar":      &r.QualityBar,
		"reference_policy": &r.ReferencePolicy,
	}
	for key, dst := range flags {
		v, ok := args[key]
		if !ok || v == nil {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			return r, fmt.Errorf("%s must be a boolean", key)
		}
		*dst = form.Bool(b)
	}
	return r, nil
}
