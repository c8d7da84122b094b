package model

import "fmt"

// Severity is the importance of a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Category groups rules for scoring.
type Category int

// Categories in declaration order. The order is significant: it is the
// order rules are registered in, and therefore the order findings appear in
// a report.
const (
	CategoryStructure Category = iota
	CategoryLayout
	CategoryTypography
	CategoryMetadata
	CategoryMedia
	CategoryLinks
)

// Categories returns all categories in declaration order.
func Categories() []Category {
	return []Category{
		CategoryStructure,
		CategoryLayout,
		CategoryTypography,
		CategoryMetadata,
		CategoryMedia,
		CategoryLinks,
	}
}

func (c Category) String() string {
	switch c {
	case CategoryStructure:
		return "structure"
	case CategoryLayout:
		return "layout"
	case CategoryTypography:
		return "typography"
	case CategoryMetadata:
		return "metadata"
	case CategoryMedia:
		return "media"
	case CategoryLinks:
		return "links"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseCategory is the inverse of Category.String.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories() {
		if c.String() == s {
			return c, true
		}
	}
	return 0, false
}

// DocumentScope is the section/block index used for findings that concern
// the document as a whole.
const DocumentScope = -1

// CellOffset addresses a cell inside a table block.
type CellOffset struct {
	Row int `json:"row" yaml:"row"`
	Col int `json:"col" yaml:"col"`
}

// Location points at a place in the document.
type Location struct {
	Section int         `json:"section" yaml:"section"`
	Block   int         `json:"block" yaml:"block"`
	Cell    *CellOffset `json:"cell,omitempty" yaml:"cell,omitempty"`
	Run     *int        `json:"run,omitempty" yaml:"run,omitempty"`
}

// DocumentLocation returns the location used for document-wide findings.
func DocumentLocation() Location {
	return Location{Section: DocumentScope, Block: DocumentScope}
}

// SectionLocation returns the location of a whole section.
func SectionLocation(section int) Location {
	return Location{Section: section, Block: DocumentScope}
}

// BlockLocation returns the location of a top-level block.
func BlockLocation(section, block int) Location {
	return Location{Section: section, Block: block}
}

// WithCell returns a copy of l addressing a table cell.
func (l Location) WithCell(row, col int) Location {
	l.Cell = &CellOffset{Row: row, Col: col}
	return l
}

// WithRun returns a copy of l addressing a run.
func (l Location) WithRun(run int) Location {
	l.Run = &run
	return l
}

// IsDocument reports whether the location is document-wide.
func (l Location) IsDocument() bool {
	return l.Section == DocumentScope
}

func (l Location) String() string {
	if l.IsDocument() {
		return "document"
	}
	s := fmt.Sprintf("section %d", l.Section)
	if l.Block != DocumentScope {
		s += fmt.Sprintf(", block %d", l.Block)
	}
	if l.Cell != nil {
		s += fmt.Sprintf(", cell %d:%d", l.Cell.Row, l.Cell.Col)
	}
	if l.Run != nil {
		s += fmt.Sprintf(", run %d", *l.Run)
	}
	return s
}

// Compare orders locations by section, block, cell and run. Absent cell
// and run offsets sort before present ones. It returns -1, 0 or +1.
func (l Location) Compare(o Location) int {
	if c := compareInt(l.Section, o.Section); c != 0 {
		return c
	}
	if c := compareInt(l.Block, o.Block); c != 0 {
		return c
	}
	switch {
	case l.Cell == nil && o.Cell != nil:
		return -1
	case l.Cell != nil && o.Cell == nil:
		return 1
	case l.Cell != nil && o.Cell != nil:
		if c := compareInt(l.Cell.Row, o.Cell.Row); c != 0 {
			return c
		}
		if c := compareInt(l.Cell.Col, o.Cell.Col); c != 0 {
			return c
		}
	}
	switch {
	case l.Run == nil && o.Run != nil:
		return -1
	case l.Run != nil && o.Run == nil:
		return 1
	case l.Run != nil && o.Run != nil:
		return compareInt(*l.Run, *o.Run)
	}
	return 0
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Finding is one quality-control observation.
type Finding struct {
	Rule     string         `json:"rule" yaml:"rule"`
	Category Category       `json:"category" yaml:"category"`
	Severity Severity       `json:"severity" yaml:"severity"`
	Message  string         `json:"message" yaml:"message"`
	Location Location       `json:"location" yaml:"location"`
	Detail   map[string]any `json:"detail,omitempty" yaml:"detail,omitempty"`
}
