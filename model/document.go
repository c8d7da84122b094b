package model

import "time"

// Document represents a complete document with resolved structure.
type Document struct {
	Sections   []Section
	Styles     StyleCatalog
	Metadata   Metadata
	Hyperlinks []Hyperlink
	Numbering  []NumberingDefinition
	Bookmarks  []string
}

// Metadata contains document-level information.
type Metadata struct {
	Title          string
	Subject        string
	Author         string
	Keywords       []string
	Description    string
	LastModifiedBy string
	Revision       string
	Application    string
	Company        string
	Created        time.Time
	Modified       time.Time
	// Custom document properties (docProps/custom.xml)
	Custom map[string]string
}

// Hyperlink is one entry of the document's hyperlink index.
type Hyperlink struct {
	// Target is the external URL. Empty for internal links.
	Target string
	// Anchor is the bookmark name for internal links.
	Anchor   string
	External bool
	Text     string
	Location Location
}

// NumberingDefinition is a resolved list definition (w:num -> w:abstractNum).
type NumberingDefinition struct {
	NumID         string
	AbstractNumID string
	Levels        []NumberingLevel
}

// NumberingLevel describes one indentation level of a list definition.
type NumberingLevel struct {
	Level   int
	Format  string // decimal, bullet, lowerLetter, ...
	Text    string // e.g. "%1." or a bullet glyph
	StartAt int
}

// NumberingRef indexes Document.Numbering.
type NumberingRef int

// NoNumbering marks a paragraph that is not a list item.
const NoNumbering NumberingRef = -1

// SectionCount returns the number of sections.
func (d *Document) SectionCount() int {
	return len(d.Sections)
}

// HasBookmark reports whether a bookmark with the given name exists.
func (d *Document) HasBookmark(name string) bool {
	for _, b := range d.Bookmarks {
		if b == name {
			return true
		}
	}
	return false
}

// Images returns every image in document order together with its location.
func (d *Document) Images() []LocatedImage {
	var images []LocatedImage
	d.Walk(func(b Block, loc Location) {
		if img, ok := b.(*Image); ok {
			images = append(images, LocatedImage{Image: img, Location: loc})
		}
	})
	return images
}

// LocatedImage pairs an image with its position in the document.
type LocatedImage struct {
	Image    *Image
	Location Location
}

// Walk visits every block in document order, descending into table cells.
// Blocks nested in a cell report the location of the enclosing top-level
// table with the cell offset set.
func (d *Document) Walk(fn func(Block, Location)) {
	for si := range d.Sections {
		for bi, block := range d.Sections[si].Blocks {
			loc := BlockLocation(si, bi)
			fn(block, loc)
			if tbl, ok := block.(*Table); ok {
				walkTable(tbl, loc, fn)
			}
		}
	}
}

func walkTable(tbl *Table, loc Location, fn func(Block, Location)) {
	for ri, row := range tbl.Rows {
		for ci, cell := range row.Cells {
			cellLoc := loc
			if cellLoc.Cell == nil {
				cellLoc = loc.WithCell(ri, ci)
			}
			for _, block := range cell.Blocks {
				fn(block, cellLoc)
				if nested, ok := block.(*Table); ok {
					walkTable(nested, cellLoc, fn)
				}
			}
		}
	}
}
