package docx

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tsawler/docqc/model"
)

// TextRecognizer extracts text from image bytes. *ocr.Client satisfies it.
type TextRecognizer interface {
	RecognizeImage(data []byte) (string, error)
}

// Build turns loaded parts into a document model. Every style, numbering
// and relationship reference is resolved here; the first one that dangles
// aborts the build with a ReferenceIntegrityError. Images whose parts are
// not embedded are kept and marked Missing.
func Build(parts *RawParts, opts ...Option) (*model.Document, error) {
	if parts == nil {
		return nil, errors.New("docx: nil parts")
	}
	b := &builder{
		parts:     parts,
		opts:      newOptions(opts),
		rels:      make(map[string]relationshipXML),
		bookmarks: make(map[string]bool),
	}
	return b.build()
}

type builder struct {
	parts *RawParts
	opts  options

	resolver         *StyleResolver
	catalog          model.StyleCatalog
	defaultParagraph model.StyleRef
	numIndex         map[string]model.NumberingRef
	rels             map[string]relationshipXML
	tables           *tableParser
	bookmarks        map[string]bool

	doc *model.Document
}

func (b *builder) build() (*model.Document, error) {
	if b.parts.rels != nil {
		for _, rel := range b.parts.rels.Relationships {
			if _, dup := b.rels[rel.ID]; !dup {
				b.rels[rel.ID] = rel
			}
		}
	}

	b.resolver = NewStyleResolver(b.parts.styles)
	if err := b.resolver.CheckReferences(); err != nil {
		return nil, err
	}
	b.catalog, b.defaultParagraph = b.resolver.Catalog()

	defs, index, err := NewNumberingResolver(b.parts.numbering).Definitions()
	if err != nil {
		return nil, err
	}
	b.numIndex = index

	b.doc = &model.Document{
		Styles:    b.catalog,
		Numbering: defs,
		Metadata:  buildMetadata(b.parts.core, b.parts.app, b.parts.custom),
	}
	b.tables = newTableParser(b)

	if err := b.buildSections(); err != nil {
		return nil, err
	}

	b.opts.logger.Debug("built document model",
		"path", b.parts.path,
		"sections", len(b.doc.Sections),
		"styles", b.catalog.Len(),
		"hyperlinks", len(b.doc.Hyperlinks),
		"images", len(b.doc.Images()))

	return b.doc, nil
}

// buildSections splits the body into sections. A paragraph carrying
// section properties ends a section; the body-level properties describe
// the last one.
func (b *builder) buildSections() error {
	var body *bodyXML
	if b.parts.document != nil {
		body = b.parts.document.Body
	}
	if body == nil {
		return nil
	}

	var pending []model.Block
	for _, el := range body.Elements {
		loc := model.BlockLocation(len(b.doc.Sections), len(pending))
		blocks, err := b.buildElement(el, loc)
		if err != nil {
			return err
		}
		pending = append(pending, blocks...)

		if el.Paragraph != nil && el.Paragraph.Properties.SectPr != nil {
			b.closeSection(pending, el.Paragraph.Properties.SectPr)
			pending = nil
		}
	}
	b.addBookmarks(body.Bookmarks)

	if len(pending) > 0 || body.SectPr != nil {
		b.closeSection(pending, body.SectPr)
	}
	return nil
}

func (b *builder) closeSection(blocks []model.Block, props *sectPrXML) {
	section := model.Section{
		Index:  len(b.doc.Sections),
		Blocks: blocks,
	}
	if props == nil {
		section.Geometry = model.DefaultPageGeometry()
		section.DefaultGeometry = true
	} else {
		section.Geometry = pageGeometry(props)
	}
	b.doc.Sections = append(b.doc.Sections, section)
}

// pageGeometry converts section properties to points. Attributes that are
// absent keep Word's defaults.
func pageGeometry(s *sectPrXML) model.PageGeometry {
	g := model.DefaultPageGeometry()

	setTwips(&g.Width, s.PgSz.W)
	setTwips(&g.Height, s.PgSz.H)

	m := &g.Margins
	setTwips(&m.Top, s.PgMar.Top)
	setTwips(&m.Right, s.PgMar.Right)
	setTwips(&m.Bottom, s.PgMar.Bottom)
	setTwips(&m.Left, s.PgMar.Left)
	setTwips(&m.Header, s.PgMar.Header)
	setTwips(&m.Footer, s.PgMar.Footer)
	setTwips(&m.Gutter, s.PgMar.Gutter)

	switch {
	case s.PgSz.Orient == "landscape":
		g.Orientation = model.Landscape
	case s.PgSz.Orient == "portrait":
		g.Orientation = model.Portrait
	case g.Width > g.Height:
		g.Orientation = model.Landscape
	default:
		g.Orientation = model.Portrait
	}
	return g
}

func setTwips(dst *float64, s string) {
	if s == "" {
		return
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		*dst = v / 20
	}
}

// buildElement builds the blocks for one body element. A paragraph yields
// itself followed by the images drawn inside it.
func (b *builder) buildElement(el bodyElement, loc model.Location) ([]model.Block, error) {
	switch {
	case el.Paragraph != nil:
		return b.buildParagraph(el.Paragraph, loc)
	case el.Table != nil:
		tbl, err := b.tables.ParseTable(el.Table, loc)
		if err != nil {
			return nil, err
		}
		return []model.Block{tbl}, nil
	}
	return nil, nil
}

// buildBlocks builds the content of a table cell.
func (b *builder) buildBlocks(content *blockListXML, loc model.Location) ([]model.Block, error) {
	var blocks []model.Block
	for _, el := range content.Elements {
		built, err := b.buildElement(el, loc)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, built...)
	}
	b.addBookmarks(content.Bookmarks)
	return blocks, nil
}

// resolveStyle maps a style ID to its catalog reference.
func (b *builder) resolveStyle(id string, kind ReferenceKind, loc model.Location) (model.StyleRef, error) {
	ref, ok := b.catalog.Lookup(id)
	if !ok {
		return model.NoStyle, &ReferenceIntegrityError{Kind: kind, ID: id, From: loc.String()}
	}
	return ref, nil
}

func (b *builder) addBookmarks(bookmarks []bookmarkXML) {
	for _, bm := range bookmarks {
		if bm.Name == "" || b.bookmarks[bm.Name] {
			continue
		}
		b.bookmarks[bm.Name] = true
		b.doc.Bookmarks = append(b.doc.Bookmarks, bm.Name)
	}
}

func (b *builder) buildParagraph(p *paragraphXML, loc model.Location) ([]model.Block, error) {
	props := p.Properties
	para := &model.Paragraph{
		Style:     b.defaultParagraph,
		Numbering: model.NoNumbering,
	}

	styleID := props.Style.Val
	if styleID != "" {
		ref, err := b.resolveStyle(styleID, RefParagraphStyle, loc)
		if err != nil {
			return nil, err
		}
		para.Style = ref
	} else if b.defaultParagraph != model.NoStyle {
		styleID = b.catalog.Get(b.defaultParagraph).ID
	}

	resolved := b.resolver.Resolve(styleID)
	para.Alignment = resolved.Alignment
	if props.Justification.Val != "" {
		para.Alignment = props.Justification.Val
	}

	if props.OutlineLvl.Val != "" {
		para.OutlineLevel = parseOutlineLevel(props.OutlineLvl.Val) + 1
	} else if resolved.IsHeading {
		para.OutlineLevel = resolved.HeadingLevel
	}

	if numID := props.NumPr.NumID.Val; isListNumID(numID) {
		ref, ok := b.numIndex[numID]
		if !ok {
			return nil, &ReferenceIntegrityError{Kind: RefNumbering, ID: numID, From: loc.String()}
		}
		para.Numbering = ref
		if lvl, err := strconv.Atoi(props.NumPr.ILvl.Val); err == nil {
			para.NumberingLevel = lvl
		}
	}

	b.addBookmarks(p.Bookmarks)

	var images []model.Block
	for _, in := range p.Content {
		switch {
		case in.Run != nil:
			imgs, err := b.addRun(para, in.Run, styleID, -1, loc)
			if err != nil {
				return nil, err
			}
			images = append(images, imgs...)
		case in.Hyperlink != nil:
			imgs, err := b.addHyperlink(para, in.Hyperlink, styleID, loc)
			if err != nil {
				return nil, err
			}
			images = append(images, imgs...)
		}
	}

	return append([]model.Block{para}, images...), nil
}

// addHyperlink records a hyperlink in the index and appends its runs.
func (b *builder) addHyperlink(para *model.Paragraph, h *hyperlinkXML, styleID string, loc model.Location) ([]model.Block, error) {
	first := len(para.Runs)
	link := model.Hyperlink{
		Anchor:   h.Anchor,
		Location: loc.WithRun(first),
	}
	if h.ID != "" {
		rel, ok := b.rels[h.ID]
		if !ok {
			return nil, &ReferenceIntegrityError{Kind: RefHyperlink, ID: h.ID, From: link.Location.String()}
		}
		link.Target = rel.Target
		link.External = rel.external()
	} else if h.Target != "" {
		link.Target = h.Target
		link.External = true
	}

	index := len(b.doc.Hyperlinks)
	b.doc.Hyperlinks = append(b.doc.Hyperlinks, link)

	var images []model.Block
	for i := range h.Runs {
		imgs, err := b.addRun(para, &h.Runs[i], styleID, index, loc)
		if err != nil {
			return nil, err
		}
		images = append(images, imgs...)
	}

	var text strings.Builder
	for _, r := range para.Runs[first:] {
		text.WriteString(r.Text)
	}
	b.doc.Hyperlinks[index].Text = text.String()

	return images, nil
}

// addRun appends a text run to the paragraph and returns the images drawn
// in it. Runs without text are not recorded.
func (b *builder) addRun(para *model.Paragraph, r *runXML, paragraphStyle string, hyperlink int, loc model.Location) ([]model.Block, error) {
	runLoc := loc.WithRun(len(para.Runs))

	charStyle := r.Properties.Style.Val
	styleRef := model.NoStyle
	if charStyle != "" {
		ref, err := b.resolveStyle(charStyle, RefCharacterStyle, runLoc)
		if err != nil {
			return nil, err
		}
		styleRef = ref
	}

	var images []model.Block
	drawings := append([]drawingXML(nil), r.Drawing...)
	for _, ac := range r.AlternateContent {
		drawings = append(drawings, ac.Choice.Drawing...)
	}
	for _, d := range drawings {
		img, err := b.buildImage(d, runLoc)
		if err != nil {
			return nil, err
		}
		if img != nil {
			images = append(images, img)
		}
	}
	for _, p := range r.Pict {
		img, err := b.buildVMLImage(p, runLoc)
		if err != nil {
			return nil, err
		}
		if img != nil {
			images = append(images, img)
		}
	}

	text := extractRunText(r)
	if text == "" {
		return images, nil
	}

	rr := b.resolver.ResolveRun(paragraphStyle, charStyle, r.Properties)
	para.Runs = append(para.Runs, model.Run{
		Text:      text,
		Style:     styleRef,
		Font:      rr.FontName,
		Size:      rr.FontSize,
		Bold:      rr.Bold,
		Italic:    rr.Italic,
		Underline: rr.Underline,
		Hyperlink: hyperlink,
	})
	return images, nil
}

// extractRunText extracts text from a run element.
func extractRunText(run *runXML) string {
	var parts []string

	for _, t := range run.Text {
		parts = append(parts, t.Value)
	}

	// Emoji and symbols stored only in the fallback branch
	for _, ac := range run.AlternateContent {
		for _, t := range ac.Fallback.Text {
			parts = append(parts, t.Value)
		}
	}

	for range run.Tabs {
		parts = append(parts, "\t")
	}

	for _, br := range run.Breaks {
		if br.Type == "page" {
			parts = append(parts, "\n\n")
		} else {
			parts = append(parts, "\n")
		}
	}

	return strings.Join(parts, "")
}
