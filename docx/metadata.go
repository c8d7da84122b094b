package docx

import (
	"strings"
	"time"

	"github.com/tsawler/docqc/model"
)

// buildMetadata merges core, app and custom document properties. Any of
// the parts may be nil.
func buildMetadata(core *corePropertiesXML, app *appPropertiesXML, custom *customPropertiesXML) model.Metadata {
	var meta model.Metadata

	if core != nil {
		meta.Title = strings.TrimSpace(core.Title)
		meta.Subject = strings.TrimSpace(core.Subject)
		meta.Author = strings.TrimSpace(core.Creator)
		meta.Keywords = splitKeywords(core.Keywords)
		meta.Description = strings.TrimSpace(core.Description)
		meta.LastModifiedBy = strings.TrimSpace(core.LastModifiedBy)
		meta.Revision = strings.TrimSpace(core.Revision)
		meta.Created = parseW3CDTF(core.Created)
		meta.Modified = parseW3CDTF(core.Modified)
	}

	if app != nil {
		meta.Application = strings.TrimSpace(app.Application)
		meta.Company = strings.TrimSpace(app.Company)
	}

	if custom != nil && len(custom.Properties) > 0 {
		meta.Custom = make(map[string]string, len(custom.Properties))
		for _, p := range custom.Properties {
			if p.Name == "" {
				continue
			}
			meta.Custom[p.Name] = strings.TrimSpace(p.value())
		}
	}

	return meta
}

// splitKeywords splits a keyword list on commas or semicolons.
func splitKeywords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// w3cdtfLayouts are the W3C date/time profiles used by dcterms dates.
var w3cdtfLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006-01",
	"2006",
}

// parseW3CDTF parses a dcterms date. Unparsable values yield the zero time.
func parseW3CDTF(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range w3cdtfLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
