package docx

import (
	"sort"
	"strconv"
	"strings"

	"github.com/tsawler/docqc/model"
)

// NumberingResolver resolves numbering definitions from numbering.xml.
type NumberingResolver struct {
	abstractNums map[string]*abstractNumXML // abstractNumId -> definition
	nums         []numXML                   // in declaration order
}

// NewNumberingResolver creates a resolver from parsed numbering.xml.
func NewNumberingResolver(numbering *numberingXML) *NumberingResolver {
	nr := &NumberingResolver{
		abstractNums: make(map[string]*abstractNumXML),
	}

	if numbering == nil {
		return nr
	}

	for i := range numbering.AbstractNums {
		an := &numbering.AbstractNums[i]
		if _, dup := nr.abstractNums[an.AbstractNumID]; !dup {
			nr.abstractNums[an.AbstractNumID] = an
		}
	}
	nr.nums = numbering.Nums

	return nr
}

// Definitions resolves every w:num into a model definition, in declaration
// order, and returns the numId index. A num whose abstractNum is undefined
// is a ReferenceIntegrityError.
func (nr *NumberingResolver) Definitions() ([]model.NumberingDefinition, map[string]model.NumberingRef, error) {
	defs := make([]model.NumberingDefinition, 0, len(nr.nums))
	index := make(map[string]model.NumberingRef, len(nr.nums))

	for _, num := range nr.nums {
		if _, dup := index[num.NumID]; dup {
			continue
		}
		abstractID := num.AbstractNumID.Val
		an, ok := nr.abstractNums[abstractID]
		if !ok {
			return nil, nil, &ReferenceIntegrityError{Kind: RefAbstractNum, ID: abstractID, From: "num " + num.NumID}
		}

		index[num.NumID] = model.NumberingRef(len(defs))
		defs = append(defs, model.NumberingDefinition{
			NumID:         num.NumID,
			AbstractNumID: abstractID,
			Levels:        resolveLevels(an.Levels),
		})
	}

	return defs, index, nil
}

// resolveLevels converts level definitions, sorted by level.
func resolveLevels(levels []lvlXML) []model.NumberingLevel {
	out := make([]model.NumberingLevel, 0, len(levels))
	for _, lvl := range levels {
		level, err := strconv.Atoi(lvl.ILvl)
		if err != nil {
			continue
		}
		startAt := 1
		if lvl.Start.Val != "" {
			if s, err := strconv.Atoi(lvl.Start.Val); err == nil {
				startAt = s
			}
		}
		format := lvl.NumFmt.Val
		if format == "" {
			format = "bullet"
		}
		text := lvl.LvlText.Val
		if format == "bullet" {
			text = getBulletChar(text, level)
		}
		out = append(out, model.NumberingLevel{
			Level:   level,
			Format:  format,
			Text:    text,
			StartAt: startAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// isListNumID reports whether a numId marks a list item. numId 0 removes
// numbering inherited from a style.
func isListNumID(numID string) bool {
	numID = strings.TrimSpace(numID)
	return numID != "" && numID != "0"
}

// getBulletChar returns the appropriate bullet character for the level.
func getBulletChar(lvlText string, level int) string {
	// Common Word bullet characters (standard Unicode)
	bullets := []string{"•", "○", "■", "□", "▪", "▫", "►", "◦"}

	// If lvlText specifies a character, check if it's usable
	if lvlText != "" && !strings.Contains(lvlText, "%") {
		// Word often uses Symbol/Wingdings fonts with PUA characters (U+F000-U+F0FF)
		if isRenderableBullet(lvlText) {
			return lvlText
		}
	}

	// Default based on level
	if level >= 0 && level < len(bullets) {
		return bullets[level]
	}
	return "•"
}

// isRenderableBullet checks if a bullet character will render properly.
// Returns false for Private Use Area characters that require special fonts.
func isRenderableBullet(s string) bool {
	for _, r := range s {
		// Check for Private Use Area (U+E000-U+F8FF)
		if r >= 0xE000 && r <= 0xF8FF {
			return false
		}
		// Also reject control characters
		if r < 0x20 {
			return false
		}
	}
	return len(s) > 0
}
