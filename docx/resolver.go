package docx

import (
	"strconv"
	"strings"

	"github.com/tsawler/docqc/model"
)

// ResolvedStyle contains the fully resolved properties for a style.
type ResolvedStyle struct {
	// Identity
	ID      string
	Name    string
	Type    string // paragraph, character, table
	Default bool

	// Heading info
	IsHeading    bool
	HeadingLevel int // 1-9, 0 if not a heading

	// Paragraph properties
	Alignment   string  // left, center, right, both (justify)
	SpaceBefore float64 // points
	SpaceAfter  float64 // points
	LineSpacing float64 // points (0 = auto)

	// Run/character properties
	FontName  string
	FontSize  float64 // points
	Bold      bool
	Italic    bool
	Underline bool
}

// ToModel converts the resolved style into a catalog entry.
func (rs *ResolvedStyle) ToModel() model.Style {
	return model.Style{
		ID:           rs.ID,
		Name:         rs.Name,
		Type:         rs.Type,
		Font:         rs.FontName,
		Size:         rs.FontSize,
		Bold:         rs.Bold,
		Italic:       rs.Italic,
		SpaceBefore:  rs.SpaceBefore,
		SpaceAfter:   rs.SpaceAfter,
		LineSpacing:  rs.LineSpacing,
		OutlineLevel: rs.HeadingLevel,
		Default:      rs.Default,
	}
}

// StyleResolver resolves styles with inheritance support.
type StyleResolver struct {
	styles      map[string]*styleDefXML
	order       []string
	resolved    map[string]*ResolvedStyle
	defaultFont string
	defaultSize float64
}

// NewStyleResolver creates a new style resolver from parsed styles.
func NewStyleResolver(styles *stylesXML) *StyleResolver {
	sr := &StyleResolver{
		styles:      make(map[string]*styleDefXML),
		resolved:    make(map[string]*ResolvedStyle),
		defaultFont: "Calibri", // Word default
		defaultSize: 11,        // Word default (11pt)
	}

	if styles == nil {
		return sr
	}

	// Build style map; the first definition of an ID wins
	for i := range styles.Styles {
		style := &styles.Styles[i]
		if _, dup := sr.styles[style.StyleID]; dup {
			continue
		}
		sr.styles[style.StyleID] = style
		sr.order = append(sr.order, style.StyleID)
	}

	// Parse default font and size from docDefaults
	rpr := styles.DocDefaults.RPrDefault.RPr
	if font := rpr.Font.family(); font != "" {
		sr.defaultFont = font
	}
	if rpr.FontSize.Val != "" {
		if size := parseHalfPoints(rpr.FontSize.Val); size > 0 {
			sr.defaultSize = size
		}
	}

	return sr
}

// CheckReferences verifies that every basedOn names a defined style.
func (sr *StyleResolver) CheckReferences() error {
	for _, id := range sr.order {
		def := sr.styles[id]
		if base := def.BasedOn.Val; base != "" {
			if _, ok := sr.styles[base]; !ok {
				return &ReferenceIntegrityError{Kind: RefBaseStyle, ID: base, From: "style " + id}
			}
		}
	}
	return nil
}

// Catalog resolves every defined style, in definition order, into a model
// catalog. It also returns the default paragraph style reference, or
// model.NoStyle when none is declared.
func (sr *StyleResolver) Catalog() (model.StyleCatalog, model.StyleRef) {
	entries := make([]model.Style, 0, len(sr.order))
	defaultID := ""
	for _, id := range sr.order {
		rs := sr.Resolve(id)
		entries = append(entries, rs.ToModel())
		if defaultID == "" && rs.Default && rs.Type == "paragraph" {
			defaultID = id
		}
	}

	catalog := model.NewStyleCatalog(entries)
	if defaultID == "" {
		return catalog, model.NoStyle
	}
	ref, _ := catalog.Lookup(defaultID)
	return catalog, ref
}

// Resolve returns the fully resolved style for the given style ID.
// If the style doesn't exist, returns a default style.
func (sr *StyleResolver) Resolve(styleID string) *ResolvedStyle {
	if styleID == "" {
		return sr.defaultStyle()
	}

	// Check cache
	if resolved, ok := sr.resolved[styleID]; ok {
		return resolved
	}

	// Start with default style
	resolved := sr.defaultStyle()
	resolved.ID = styleID

	// Find the style definition
	styleDef, ok := sr.styles[styleID]
	if !ok {
		// Style not found - check for built-in heading styles
		resolved.IsHeading, resolved.HeadingLevel = detectBuiltInHeading(styleID)
		sr.resolved[styleID] = resolved
		return resolved
	}

	resolved.Name = styleDef.Name.Val
	resolved.Type = styleDef.Type
	resolved.Default = styleDef.isDefault()

	// Apply properties from base to derived
	for _, sid := range sr.buildInheritanceChain(styleID) {
		if def, ok := sr.styles[sid]; ok {
			sr.applyStyleDef(resolved, def)
		}
	}

	resolved.IsHeading, resolved.HeadingLevel = sr.detectHeading(styleID)

	sr.resolved[styleID] = resolved
	return resolved
}

// defaultStyle returns a style with default values.
func (sr *StyleResolver) defaultStyle() *ResolvedStyle {
	return &ResolvedStyle{
		FontName:    sr.defaultFont,
		FontSize:    sr.defaultSize,
		Alignment:   "left",
		SpaceAfter:  8, // Default paragraph spacing in Word
		LineSpacing: 0, // Auto
	}
}

// buildInheritanceChain returns style IDs from base to derived.
func (sr *StyleResolver) buildInheritanceChain(styleID string) []string {
	var chain []string
	visited := make(map[string]bool)

	current := styleID
	for current != "" && !visited[current] {
		visited[current] = true
		chain = append([]string{current}, chain...) // Prepend

		if def, ok := sr.styles[current]; ok {
			current = def.BasedOn.Val
		} else {
			break
		}
	}

	return chain
}

// applyStyleDef applies a style definition's properties to a resolved style.
func (sr *StyleResolver) applyStyleDef(resolved *ResolvedStyle, def *styleDefXML) {
	// Paragraph properties
	ppr := def.PPr
	if ppr.Justification.Val != "" {
		resolved.Alignment = ppr.Justification.Val
	}
	if ppr.Spacing.Before != "" {
		resolved.SpaceBefore = parseTwips(ppr.Spacing.Before)
	}
	if ppr.Spacing.After != "" {
		resolved.SpaceAfter = parseTwips(ppr.Spacing.After)
	}
	if ppr.Spacing.Line != "" {
		resolved.LineSpacing = parseTwips(ppr.Spacing.Line)
	}

	applyRunProps(&resolved.FontName, &resolved.FontSize, &resolved.Bold, &resolved.Italic, &resolved.Underline, def.RPr)
}

// applyRunProps overlays direct or style run properties.
func applyRunProps(font *string, size *float64, bold, italic, underline *bool, rpr runPropsXML) {
	if f := rpr.Font.family(); f != "" {
		*font = f
	}
	if rpr.FontSize.Val != "" {
		if s := parseHalfPoints(rpr.FontSize.Val); s > 0 {
			*size = s
		}
	}
	// Bold - present means true (unless val="false" or val="0")
	if rpr.Bold.set() {
		*bold = rpr.Bold.on()
	}
	if rpr.Italic.set() {
		*italic = rpr.Italic.on()
	}
	if rpr.Underline.Val != "" {
		*underline = rpr.Underline.Val != "none"
	}
}

// detectHeading determines the heading level a style confers. The outline
// level is inherited through basedOn; the built-in IDs and names are not.
func (sr *StyleResolver) detectHeading(styleID string) (bool, int) {
	def := sr.styles[styleID]

	// Check for built-in heading style ID
	if isHeading, level := detectBuiltInHeading(def.StyleID); isHeading {
		return true, level
	}

	// Check style name for heading patterns ("heading 2")
	name := strings.ToLower(def.Name.Val)
	if strings.HasPrefix(name, "heading") {
		for i := 1; i <= 9; i++ {
			if strings.HasSuffix(name, strconv.Itoa(i)) {
				return true, i
			}
		}
	}
	if name == "title" {
		return true, 1
	}

	// Walk the chain from derived to base for an outline level
	chain := sr.buildInheritanceChain(styleID)
	for i := len(chain) - 1; i >= 0; i-- {
		d, ok := sr.styles[chain[i]]
		if !ok || d.PPr.OutlineLvl.Val == "" {
			continue
		}
		if level := parseOutlineLevel(d.PPr.OutlineLvl.Val); level >= 0 {
			return true, level + 1 // OutlineLvl is 0-based
		}
		return false, 0 // outlineLvl 9 is body text
	}

	return false, 0
}

// detectBuiltInHeading checks for Word's built-in heading style IDs.
func detectBuiltInHeading(styleID string) (bool, int) {
	id := strings.ToLower(styleID)

	headingMap := map[string]int{
		"heading1": 1, "heading2": 2, "heading3": 3,
		"heading4": 4, "heading5": 5, "heading6": 6,
		"heading7": 7, "heading8": 8, "heading9": 9,
		"title": 1,
	}

	if level, ok := headingMap[id]; ok {
		return true, level
	}

	return false, 0
}

// parseOutlineLevel parses an outline level string. It returns -1 for body
// text (9) and anything unparsable.
func parseOutlineLevel(s string) int {
	level, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || level < 0 || level > 8 {
		return -1
	}
	return level
}

// parseHalfPoints parses a size in half-points to points.
// Word uses half-points for font sizes (e.g., "24" = 12pt).
func parseHalfPoints(s string) float64 {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val / 2
}

// parseTwips parses a size in twips to points.
// 1 point = 20 twips.
func parseTwips(s string) float64 {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return val / 20
}

// ResolvedRun contains resolved properties for a text run.
type ResolvedRun struct {
	FontName  string
	FontSize  float64
	Bold      bool
	Italic    bool
	Underline bool
}

// ResolveRun resolves run properties: paragraph style, then character
// style, then direct formatting.
func (sr *StyleResolver) ResolveRun(paragraphStyle, characterStyle string, runProps runPropsXML) *ResolvedRun {
	baseStyle := sr.Resolve(paragraphStyle)

	resolved := &ResolvedRun{
		FontName:  baseStyle.FontName,
		FontSize:  baseStyle.FontSize,
		Bold:      baseStyle.Bold,
		Italic:    baseStyle.Italic,
		Underline: baseStyle.Underline,
	}

	if characterStyle != "" {
		for _, sid := range sr.buildInheritanceChain(characterStyle) {
			if def, ok := sr.styles[sid]; ok {
				applyRunProps(&resolved.FontName, &resolved.FontSize, &resolved.Bold, &resolved.Italic, &resolved.Underline, def.RPr)
			}
		}
	}

	// Apply direct run formatting (overrides style)
	applyRunProps(&resolved.FontName, &resolved.FontSize, &resolved.Bold, &resolved.Italic, &resolved.Underline, runProps)

	return resolved
}
