// Package mcptool exposes the checker as a Model Context Protocol tool.
package mcptool

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/tsawler/docqc"
	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/report"
	"github.com/tsawler/docqc/rules"
)

// MetadataCheckDocument describes the check_document tool.
var MetadataCheckDocument = &mcp.Tool{
	Name: "check_document",
	Description: "Check a .docx document on the local file system against quality-control rules " +
		"(heading hierarchy, margins, font consistency, metadata, image resolution, hyperlinks). " +
		"Returns a verdict (pass, fail or error), per-category scores from 0 to 100, and every finding " +
		"with its rule, severity, message and location in the document. " +
		"Known rules: " + strings.Join(rules.Known(), ", ") + ".",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"path"},
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the .docx file to check",
			},
			"enabled_rules": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string", "enum": rules.Known()},
				"description": "Rule IDs to run. If omitted, every rule runs.",
			},
			"disabled_rules": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string", "enum": rules.Known()},
				"description": "Rule IDs to skip.",
			},
		},
	},
}

// InputCheckDocument is the input for the CheckDocument tool.
type InputCheckDocument struct {
	Path          string   `json:"path"`
	EnabledRules  []string `json:"enabled_rules,omitempty"`
	DisabledRules []string `json:"disabled_rules,omitempty"`
}

// OutputCheckDocument is the output for the CheckDocument tool.
type OutputCheckDocument struct {
	Verdict     string          `json:"verdict"`
	Summary     OutputSummary   `json:"summary"`
	Categories  map[string]int  `json:"categories"`
	Findings    []OutputFinding `json:"findings"`
	Rules       []string        `json:"rules"`
	GeneratedAt string          `json:"generated_at"`
}

// OutputSummary counts findings by severity.
type OutputSummary struct {
	Error   int `json:"error"`
	Warning int `json:"warning"`
	Info    int `json:"info"`
	Total   int `json:"total"`
}

// OutputFinding is one finding. Location is a human-readable label such
// as "section 0, block 3".
type OutputFinding struct {
	Rule     string         `json:"rule"`
	Category string         `json:"category,omitempty"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Location string         `json:"location"`
	Detail   map[string]any `json:"detail,omitempty"`
}

// Tools holds the configuration shared by every tool call.
type Tools struct {
	cfg    config.Config
	logger *slog.Logger
}

// NewTools returns the tool set for cfg.
func NewTools(cfg config.Config, logger *slog.Logger) *Tools {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tools{cfg: cfg, logger: logger}
}

// NewServer returns an MCP server with every tool registered.
func NewServer(version string, tools *Tools) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "docqc", Version: version}, nil)
	mcp.AddTool(server, MetadataCheckDocument, tools.CheckDocument)
	return server
}

// CheckDocument runs the checker on a local document. Rule selection in the
// input replaces the configured selection.
func (t *Tools) CheckDocument(ctx context.Context, _ *mcp.CallToolRequest, input InputCheckDocument) (*mcp.CallToolResult, OutputCheckDocument, error) {
	if strings.TrimSpace(input.Path) == "" {
		return nil, OutputCheckDocument{}, fmt.Errorf("path is required")
	}

	checker := docqc.Open(input.Path).WithConfig(t.cfg).WithLogger(t.logger)
	if len(input.EnabledRules) > 0 {
		checker = checker.Rules(input.EnabledRules...)
	}
	if len(input.DisabledRules) > 0 {
		checker = checker.Disable(input.DisabledRules...)
	}

	rep, err := checker.Check(ctx)
	if err != nil {
		return nil, OutputCheckDocument{}, fmt.Errorf("checking %s: %w", input.Path, err)
	}
	return nil, toOutput(rep), nil
}

func toOutput(rep *report.Report) OutputCheckDocument {
	out := OutputCheckDocument{
		Verdict: string(rep.Verdict),
		Summary: OutputSummary{
			Error:   rep.Summary.Errors,
			Warning: rep.Summary.Warnings,
			Info:    rep.Summary.Infos,
			Total:   rep.Summary.Total(),
		},
		Categories:  make(map[string]int, len(rep.Categories)),
		Findings:    make([]OutputFinding, 0, len(rep.Findings)),
		Rules:       append([]string{}, rep.Rules...),
		GeneratedAt: rep.GeneratedAt.Format(time.RFC3339),
	}
	for _, cs := range rep.Categories {
		out.Categories[cs.Category.String()] = cs.Score
	}
	for _, f := range rep.Findings {
		of := OutputFinding{
			Rule:     f.Rule,
			Severity: string(f.Severity),
			Message:  f.Message,
			Location: f.Location.String(),
			Detail:   f.Detail,
		}
		if f.Rule != report.EngineRuleID {
			of.Category = f.Category.String()
		}
		out.Findings = append(out.Findings, of)
	}
	return out
}

