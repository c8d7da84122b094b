package model

// Orientation is the page orientation of a section.
type Orientation int

const (
	Portrait Orientation = iota
	Landscape
)

func (o Orientation) String() string {
	if o == Landscape {
		return "landscape"
	}
	return "portrait"
}

// Margins holds page margins in points.
type Margins struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
	Header float64
	Footer float64
	Gutter float64
}

// PageGeometry describes the page setup of a section. All lengths are in points.
type PageGeometry struct {
	Width       float64
	Height      float64
	Orientation Orientation
	Margins     Margins
}

// Section represents a run of blocks sharing one page setup.
type Section struct {
	Index    int
	Geometry PageGeometry
	// DefaultGeometry is true when the document carried no section
	// properties and Word's defaults were assumed.
	DefaultGeometry bool
	Blocks          []Block
}

// DefaultPageGeometry returns Word's defaults: US Letter with one inch margins.
func DefaultPageGeometry() PageGeometry {
	return PageGeometry{
		Width:       612,
		Height:      792,
		Orientation: Portrait,
		Margins: Margins{
			Top:    72,
			Right:  72,
			Bottom: 72,
			Left:   72,
			Header: 36,
			Footer: 36,
		},
	}
}

// Sides returns the four page margins in a fixed order for iteration.
func (m Margins) Sides() []MarginSide {
	return []MarginSide{
		{Name: "top", Value: m.Top},
		{Name: "right", Value: m.Right},
		{Name: "bottom", Value: m.Bottom},
		{Name: "left", Value: m.Left},
	}
}

// MarginSide is a named margin value.
type MarginSide struct {
	Name  string
	Value float64
}
