package rules

import (
	"github.com/tsawler/docqc/model"
)

// para builds a paragraph of runs in the given font.
func para(level int, font string, size float64, texts ...string) *model.Paragraph {
	p := &model.Paragraph{
		Style:        model.NoStyle,
		OutlineLevel: level,
		Numbering:    model.NoNumbering,
	}
	for _, t := range texts {
		p.Runs = append(p.Runs, model.Run{Text: t, Style: model.NoStyle, Font: font, Size: size, Hyperlink: -1})
	}
	return p
}

func heading(level int, text string) *model.Paragraph {
	return para(level, "Cambria", 16, text)
}

func body(text string) *model.Paragraph {
	return para(0, "Calibri", 11, text)
}

// docWith returns a single-section document holding the blocks.
func docWith(blocks ...model.Block) *model.Document {
	return &model.Document{
		Sections: []model.Section{{
			Index:    0,
			Geometry: model.DefaultPageGeometry(),
			Blocks:   blocks,
		}},
	}
}

func severities(findings []model.Finding) []model.Severity {
	out := make([]model.Severity, len(findings))
	for i, f := range findings {
		out[i] = f.Severity
	}
	return out
}
