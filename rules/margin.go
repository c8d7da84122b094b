package rules

import (
	"fmt"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/model"
)

// MarginConsistency checks every section's page margins against the
// configured bounds. A section with an override is checked against the
// override only.
type MarginConsistency struct{}

func (MarginConsistency) ID() string { return "margin-consistency" }

func (MarginConsistency) Category() model.Category { return model.CategoryLayout }

func (r MarginConsistency) Evaluate(doc *model.Document, cfg config.Config) ([]model.Finding, error) {
	if doc.SectionCount() == 0 {
		return []model.Finding{
			newFinding(r, model.SeverityWarning, model.DocumentLocation(),
				"document has no sections; page margins cannot be verified", nil),
		}, nil
	}

	var findings []model.Finding
	for _, section := range doc.Sections {
		lo, hi, override := cfg.Margins.Bounds(section.Index)
		for _, side := range section.Geometry.Margins.Sides() {
			if side.Value >= lo && side.Value <= hi {
				continue
			}
			findings = append(findings, newFinding(r, model.SeverityError,
				model.SectionLocation(section.Index),
				fmt.Sprintf("%s margin of %.1fpt is outside the allowed range %.1f-%.1fpt", side.Name, side.Value, lo, hi),
				map[string]any{
					"side":     side.Name,
					"measured": side.Value,
					"min":      lo,
					"max":      hi,
					"override": override,
				}))
		}
	}
	return findings, nil
}
