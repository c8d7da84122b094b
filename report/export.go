package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-runewidth"
	"github.com/xuri/excelize/v2"

	"github.com/tsawler/docqc/model"
)

// Format is a report serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
	FormatXLSX Format = "xlsx"
)

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatText, FormatXLSX}
}

// ParseFormat parses a format name. "yml" and "txt" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "text", "txt":
		return FormatText, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("report: unknown format %q", s)
}

// ToMap returns the flat, JSON-serializable mapping of the report:
// verdict, summary, categories, findings and generated_at.
func (r *Report) ToMap() map[string]any {
	categories := make(map[string]any, len(r.Categories))
	for _, cs := range r.Categories {
		categories[cs.Category.String()] = cs.Score
	}

	findings := make([]any, 0, len(r.Findings))
	for _, f := range r.Findings {
		entry := map[string]any{
			"rule":     f.Rule,
			"severity": string(f.Severity),
			"message":  f.Message,
			"location": locationMap(f.Location),
		}
		if f.Rule != EngineRuleID {
			entry["category"] = f.Category.String()
		}
		if len(f.Detail) > 0 {
			entry["detail"] = f.Detail
		}
		findings = append(findings, entry)
	}

	return map[string]any{
		"verdict": string(r.Verdict),
		"summary": map[string]any{
			"error":   r.Summary.Errors,
			"warning": r.Summary.Warnings,
			"info":    r.Summary.Infos,
			"total":   r.Summary.Total(),
		},
		"categories":   categories,
		"findings":     findings,
		"generated_at": r.GeneratedAt.Format(time.RFC3339),
	}
}

func locationMap(loc model.Location) map[string]any {
	m := map[string]any{
		"section": loc.Section,
		"block":   loc.Block,
		"label":   loc.String(),
	}
	if loc.Cell != nil {
		m["cell"] = map[string]any{"row": loc.Cell.Row, "col": loc.Cell.Col}
	}
	if loc.Run != nil {
		m["run"] = *loc.Run
	}
	return m
}

// MarshalJSON encodes the report as its mapping.
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.ToMap())
}

// Write serializes the report in the given format.
func (r *Report) Write(w io.Writer, format Format) error {
	switch format {
	case FormatJSON:
		return r.WriteJSON(w)
	case FormatYAML:
		return r.WriteYAML(w)
	case FormatText:
		return r.WriteText(w)
	case FormatXLSX:
		return r.WriteXLSX(w)
	}
	return fmt.Errorf("report: unknown format %q", format)
}

// WriteJSON writes the report mapping as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.ToMap())
}

// WriteYAML writes the report mapping as YAML.
func (r *Report) WriteYAML(w io.Writer) error {
	data, err := yaml.Marshal(r.ToMap())
	if err != nil {
		return fmt.Errorf("report: encoding yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// maxMessageWidth truncates long messages in the text table.
const maxMessageWidth = 100

// WriteText writes a human-readable summary followed by an aligned table
// of findings. Column widths account for wide (CJK) characters.
func (r *Report) WriteText(w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Verdict:   %s\n", strings.ToUpper(string(r.Verdict)))
	fmt.Fprintf(&sb, "Generated: %s\n", r.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Findings:  %d error, %d warning, %d info\n",
		r.Summary.Errors, r.Summary.Warnings, r.Summary.Infos)

	if len(r.Categories) > 0 {
		sb.WriteString("\n")
		rows := [][]string{{"CATEGORY", "SCORE", "ERRORS", "WARNINGS"}}
		for _, cs := range r.Categories {
			rows = append(rows, []string{
				cs.Category.String(),
				fmt.Sprint(cs.Score),
				fmt.Sprint(cs.Errors),
				fmt.Sprint(cs.Warnings),
			})
		}
		writeTable(&sb, rows)
	}

	if len(r.Findings) > 0 {
		sb.WriteString("\n")
		rows := [][]string{{"SEVERITY", "RULE", "LOCATION", "MESSAGE"}}
		for _, f := range r.Findings {
			rows = append(rows, []string{
				string(f.Severity),
				f.Rule,
				f.Location.String(),
				runewidth.Truncate(f.Message, maxMessageWidth, "..."),
			})
		}
		writeTable(&sb, rows)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeTable pads every column but the last to its widest cell.
func writeTable(sb *strings.Builder, rows [][]string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				sb.WriteString(cell)
				break
			}
			sb.WriteString(runewidth.FillRight(cell, widths[i]))
			sb.WriteString("  ")
		}
		sb.WriteString("\n")
	}
}

// Sheet names used by WriteXLSX.
const (
	SheetSummary  = "Summary"
	SheetFindings = "Findings"
)

// WriteXLSX writes a workbook with a Summary sheet (verdict, counts and
// category scores) and a Findings sheet with one row per finding.
func (r *Report) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("report: xlsx: %w", err)
	}
	if _, err := f.NewSheet(SheetFindings); err != nil {
		return fmt.Errorf("report: xlsx: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("report: xlsx: %w", err)
	}

	summary := [][]any{
		{"Verdict", string(r.Verdict)},
		{"Generated", r.GeneratedAt.Format(time.RFC3339)},
		{"Errors", r.Summary.Errors},
		{"Warnings", r.Summary.Warnings},
		{"Info", r.Summary.Infos},
		{},
		{"Category", "Score", "Errors", "Warnings"},
	}
	headerRow := len(summary)
	for _, cs := range r.Categories {
		summary = append(summary, []any{cs.Category.String(), cs.Score, cs.Errors, cs.Warnings})
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetSummary, "A1", fmt.Sprintf("A%d", 5), bold); err != nil {
		return fmt.Errorf("report: xlsx: %w", err)
	}
	if err := f.SetCellStyle(SheetSummary, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("D%d", headerRow), bold); err != nil {
		return fmt.Errorf("report: xlsx: %w", err)
	}

	findings := [][]any{{"Rule", "Category", "Severity", "Location", "Message"}}
	for _, fd := range r.Findings {
		category := ""
		if fd.Rule != EngineRuleID {
			category = fd.Category.String()
		}
		findings = append(findings, []any{fd.Rule, category, string(fd.Severity), fd.Location.String(), fd.Message})
	}
	if err := writeRows(f, SheetFindings, findings); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetFindings, "A1", "E1", bold); err != nil {
		return fmt.Errorf("report: xlsx: %w", err)
	}
	if err := f.SetColWidth(SheetFindings, "D", "D", 30); err != nil {
		return fmt.Errorf("report: xlsx: %w", err)
	}
	if err := f.SetColWidth(SheetFindings, "E", "E", 80); err != nil {
		return fmt.Errorf("report: xlsx: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("report: xlsx: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("report: xlsx: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("report: xlsx: %w", err)
		}
	}
	return nil
}
