package rules

import (
	"fmt"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/model"
)

// HeadingHierarchy checks that heading levels descend one step at a time.
// The first heading sets the baseline: level 1 is expected, level 2 is
// tolerated with a warning, anything deeper is an error. After that a
// heading may go at most one level deeper than the one before it.
type HeadingHierarchy struct{}

func (HeadingHierarchy) ID() string { return "heading-hierarchy" }

func (HeadingHierarchy) Category() model.Category { return model.CategoryStructure }

func (r HeadingHierarchy) Evaluate(doc *model.Document, _ config.Config) ([]model.Finding, error) {
	if doc.SectionCount() == 0 {
		return []model.Finding{
			newFinding(r, model.SeverityWarning, model.DocumentLocation(),
				"document has no sections; heading structure cannot be checked", nil),
		}, nil
	}

	var findings []model.Finding
	previous := 0
	doc.Walk(func(b model.Block, loc model.Location) {
		p, ok := b.(*model.Paragraph)
		if !ok || !p.IsHeading() {
			return
		}
		level := p.OutlineLevel
		detail := map[string]any{
			"level":    level,
			"previous": previous,
			"text":     p.Text(),
		}

		switch {
		case previous == 0 && level == 2:
			findings = append(findings, newFinding(r, model.SeverityWarning, loc,
				"document does not start at level 1: first heading is level 2", detail))
		case previous == 0 && level > 2:
			findings = append(findings, newFinding(r, model.SeverityError, loc,
				fmt.Sprintf("first heading is level %d with no preceding level 1 or 2 heading", level), detail))
		case previous > 0 && level > previous+1:
			findings = append(findings, newFinding(r, model.SeverityError, loc,
				fmt.Sprintf("heading level jumps from %d to %d", previous, level), detail))
		}
		previous = level
	})

	return findings, nil
}
