package rules

import (
	"fmt"
	"strings"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/model"
)

// customFieldPrefix selects a custom document property by name.
const customFieldPrefix = "custom:"

// MetadataCompleteness reports each required metadata field that is empty.
type MetadataCompleteness struct{}

func (MetadataCompleteness) ID() string { return "metadata-completeness" }

func (MetadataCompleteness) Category() model.Category { return model.CategoryMetadata }

func (r MetadataCompleteness) Evaluate(doc *model.Document, cfg config.Config) ([]model.Finding, error) {
	var findings []model.Finding
	seen := make(map[string]bool)

	for _, field := range cfg.Metadata.RequiredFields {
		field = strings.ToLower(strings.TrimSpace(field))
		if field == "" || seen[field] {
			continue
		}
		seen[field] = true

		present, err := metadataPresent(doc.Metadata, field)
		if err != nil {
			return nil, err
		}
		if present {
			continue
		}
		findings = append(findings, newFinding(r, model.SeverityError, model.DocumentLocation(),
			fmt.Sprintf("required metadata field %q is empty", field),
			map[string]any{"field": field}))
	}
	return findings, nil
}

// metadataPresent reports whether the named field carries a value.
func metadataPresent(m model.Metadata, field string) (bool, error) {
	if name, ok := strings.CutPrefix(field, customFieldPrefix); ok {
		for k, v := range m.Custom {
			if strings.EqualFold(k, name) && strings.TrimSpace(v) != "" {
				return true, nil
			}
		}
		return false, nil
	}

	switch field {
	case "title":
		return m.Title != "", nil
	case "subject":
		return m.Subject != "", nil
	case "author", "creator":
		return m.Author != "", nil
	case "keywords":
		return len(m.Keywords) > 0, nil
	case "description":
		return m.Description != "", nil
	case "last_modified_by":
		return m.LastModifiedBy != "", nil
	case "revision":
		return m.Revision != "", nil
	case "application":
		return m.Application != "", nil
	case "company":
		return m.Company != "", nil
	case "created":
		return !m.Created.IsZero(), nil
	case "modified":
		return !m.Modified.IsZero(), nil
	}
	return false, fmt.Errorf("unknown metadata field %q", field)
}
