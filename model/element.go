package model

import "strings"

// BlockKind represents the type of a block
type BlockKind int

const (
	BlockParagraph BlockKind = iota
	BlockTable
	BlockImage
)

func (k BlockKind) String() string {
	switch k {
	case BlockParagraph:
		return "Paragraph"
	case BlockTable:
		return "Table"
	case BlockImage:
		return "Image"
	default:
		return "Unknown"
	}
}

// Block is the interface for all section content.
type Block interface {
	Kind() BlockKind
}

// Paragraph represents a paragraph of styled runs.
type Paragraph struct {
	Style StyleRef
	// OutlineLevel is the heading level (1-9), or 0 for body text.
	OutlineLevel   int
	Numbering      NumberingRef
	NumberingLevel int
	Alignment      string
	Runs           []Run
}

func (p *Paragraph) Kind() BlockKind { return BlockParagraph }

// IsHeading reports whether the paragraph is a heading.
func (p *Paragraph) IsHeading() bool { return p.OutlineLevel > 0 }

// IsListItem reports whether the paragraph belongs to a numbered or bulleted list.
func (p *Paragraph) IsListItem() bool { return p.Numbering != NoNumbering }

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Run is a span of text sharing one set of resolved character properties.
type Run struct {
	Text string
	// Style is the character style applied to the run, or NoStyle.
	Style     StyleRef
	Font      string
	Size      float64 // points
	Bold      bool
	Italic    bool
	Underline bool
	// Hyperlink indexes Document.Hyperlinks, or -1.
	Hyperlink int
}

// Table represents a table of rows and cells.
type Table struct {
	Style StyleRef
	Grid  []float64 // column widths in points
	Rows  []Row
}

func (t *Table) Kind() BlockKind { return BlockTable }

// Row is a table row.
type Row struct {
	Header bool
	Cells  []Cell
}

// Cell is a table cell containing its own blocks.
type Cell struct {
	ColSpan int
	// RowSpan counts the rows a vertically merged cell covers.
	RowSpan int
	// MergedContinuation marks the covered cells below a vertical merge.
	MergedContinuation bool
	Blocks             []Block
}

// Text returns the text of the paragraphs directly inside the cell.
func (c *Cell) Text() string {
	var parts []string
	for _, b := range c.Blocks {
		if p, ok := b.(*Paragraph); ok {
			if t := p.Text(); t != "" {
				parts = append(parts, t)
			}
		}
	}
	return strings.Join(parts, "\n")
}

// AnchorType describes how an image is placed.
type AnchorType int

const (
	AnchorInline AnchorType = iota
	AnchorFloating
)

func (a AnchorType) String() string {
	if a == AnchorFloating {
		return "floating"
	}
	return "inline"
}

// Image represents a picture placed in the document.
type Image struct {
	Name    string
	AltText string
	// Source is the container part path, or the external target.
	Source string
	// Missing is set when the referenced part is not embedded in the
	// container. Pixel dimensions and DPI are zero in that case.
	Missing bool
	Format  string
	Anchor  AnchorType

	PixelWidth  int
	PixelHeight int
	// Display size in inches, from the drawing extent.
	DisplayWidth  float64
	DisplayHeight float64
	// DPI is the effective resolution at display size (the lower of the
	// horizontal and vertical values). Zero when it cannot be measured.
	DPI float64

	// Text recognised inside the image, when OCR is enabled.
	Text string
}

func (i *Image) Kind() BlockKind { return BlockImage }
