package model

// StyleRef indexes a StyleCatalog.
type StyleRef int

// NoStyle marks the absence of a style reference.
const NoStyle StyleRef = -1

// Style is a fully resolved style definition (inheritance applied).
type Style struct {
	ID   string
	Name string
	Type string // paragraph, character, table, numbering

	Font        string
	Size        float64 // points
	Bold        bool
	Italic      bool
	SpaceBefore float64 // points
	SpaceAfter  float64 // points
	LineSpacing float64 // points, 0 = auto
	// OutlineLevel is the heading level the style confers (1-9), 0 for none.
	OutlineLevel int
	Default      bool
}

// StyleCatalog holds the document's styles. It is built once and then only read.
type StyleCatalog struct {
	entries []Style
	byID    map[string]StyleRef
}

// NewStyleCatalog builds a catalog from resolved styles. Later duplicates
// of the same ID are ignored.
func NewStyleCatalog(styles []Style) StyleCatalog {
	c := StyleCatalog{
		entries: make([]Style, 0, len(styles)),
		byID:    make(map[string]StyleRef, len(styles)),
	}
	for _, s := range styles {
		if _, dup := c.byID[s.ID]; dup {
			continue
		}
		c.byID[s.ID] = StyleRef(len(c.entries))
		c.entries = append(c.entries, s)
	}
	return c
}

// Lookup returns the reference for a style ID.
func (c StyleCatalog) Lookup(id string) (StyleRef, bool) {
	ref, ok := c.byID[id]
	return ref, ok
}

// Get returns the style for a reference. Passing NoStyle or an out of range
// reference returns the zero Style.
func (c StyleCatalog) Get(ref StyleRef) Style {
	if ref < 0 || int(ref) >= len(c.entries) {
		return Style{}
	}
	return c.entries[ref]
}

// Len returns the number of styles.
func (c StyleCatalog) Len() int {
	return len(c.entries)
}

// Styles returns a copy of all styles in catalog order.
func (c StyleCatalog) Styles() []Style {
	out := make([]Style, len(c.entries))
	copy(out, c.entries)
	return out
}
