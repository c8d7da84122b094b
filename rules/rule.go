// Package rules holds the quality-control rules and the registry that
// selects which of them run.
//
// Every rule is a pure function of a document model and a configuration
// value. Rules never mutate the model, never perform I/O, and return the
// same findings for the same input, so the runner may evaluate them on
// independent goroutines.
package rules

import (
	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/model"
)

// Rule is a single quality-control check.
type Rule interface {
	// ID is the stable identifier used in configuration and findings.
	ID() string
	// Category is the scoring group the rule contributes to.
	Category() model.Category
	// Evaluate inspects the document and returns its findings. An empty
	// result means the document passes. A returned error is a defect in
	// the rule, not a finding about the document.
	Evaluate(doc *model.Document, cfg config.Config) ([]model.Finding, error)
}

// newFinding builds a finding attributed to r.
func newFinding(r Rule, severity model.Severity, loc model.Location, message string, detail map[string]any) model.Finding {
	return model.Finding{
		Rule:     r.ID(),
		Category: r.Category(),
		Severity: severity,
		Message:  message,
		Location: loc,
		Detail:   detail,
	}
}
