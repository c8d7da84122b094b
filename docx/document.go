package docx

import "encoding/xml"

// documentXML represents the structure of word/document.xml
type documentXML struct {
	XMLName xml.Name `xml:"document"`
	Body    *bodyXML `xml:"body"`
}

// blockListXML collects block-level content in document order. encoding/xml
// would group <w:p> and <w:tbl> into separate slices, so the body and table
// cells decode their children by hand.
type blockListXML struct {
	Elements  []bodyElement
	Bookmarks []bookmarkXML
	SectPr    *sectPrXML
}

// bodyElement is a paragraph or a table. Exactly one field is set.
type bodyElement struct {
	Paragraph *paragraphXML
	Table     *tableXML
}

// bodyXML represents the document body (<w:body>).
type bodyXML struct {
	blockListXML
}

func (b *bodyXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return b.decodeUntilEnd(d, nil)
}

// decodeUntilEnd consumes tokens up to the end of the current element.
// extra, when set, gets first refusal on each child element.
func (bl *blockListXML) decodeUntilEnd(d *xml.Decoder, extra func(xml.StartElement) (bool, error)) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if extra != nil {
				handled, err := extra(t)
				if err != nil {
					return err
				}
				if handled {
					continue
				}
			}
			if err := bl.decodeElement(d, t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (bl *blockListXML) decodeElement(d *xml.Decoder, t xml.StartElement) error {
	switch t.Name.Local {
	case "p":
		p := &paragraphXML{}
		if err := d.DecodeElement(p, &t); err != nil {
			return err
		}
		bl.Elements = append(bl.Elements, bodyElement{Paragraph: p})
	case "tbl":
		tbl := &tableXML{}
		if err := d.DecodeElement(tbl, &t); err != nil {
			return err
		}
		bl.Elements = append(bl.Elements, bodyElement{Table: tbl})
	case "sectPr":
		s := &sectPrXML{}
		if err := d.DecodeElement(s, &t); err != nil {
			return err
		}
		bl.SectPr = s
	case "bookmarkStart":
		var bm bookmarkXML
		if err := d.DecodeElement(&bm, &t); err != nil {
			return err
		}
		bl.Bookmarks = append(bl.Bookmarks, bm)
	case "sdt", "sdtContent", "customXml", "ins", "smartTag":
		// Content controls and revision marks wrap ordinary blocks.
		return bl.decodeUntilEnd(d, nil)
	default:
		return d.Skip()
	}
	return nil
}

// sectPrXML represents section properties (<w:sectPr>).
type sectPrXML struct {
	PgSz  pageSizeXML   `xml:"pgSz"`
	PgMar pageMarginXML `xml:"pgMar"`
}

// pageSizeXML represents page size in twips.
type pageSizeXML struct {
	W      string `xml:"w,attr"`
	H      string `xml:"h,attr"`
	Orient string `xml:"orient,attr"` // portrait, landscape
}

// pageMarginXML represents page margins in twips.
type pageMarginXML struct {
	Top    string `xml:"top,attr"`
	Right  string `xml:"right,attr"`
	Bottom string `xml:"bottom,attr"`
	Left   string `xml:"left,attr"`
	Header string `xml:"header,attr"`
	Footer string `xml:"footer,attr"`
	Gutter string `xml:"gutter,attr"`
}

// paragraphXML represents a paragraph element (<w:p>). Runs and hyperlinks
// are kept in document order in Content.
type paragraphXML struct {
	Properties paragraphPropsXML
	Content    []inlineXML
	Bookmarks  []bookmarkXML
}

// inlineXML is a run or a hyperlink. Exactly one field is set.
type inlineXML struct {
	Run       *runXML
	Hyperlink *hyperlinkXML
}

func (p *paragraphXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	if err := p.decodeContent(d); err != nil {
		return err
	}
	p.Content = groupFieldHyperlinks(p.Content)
	return nil
}

func (p *paragraphXML) decodeContent(d *xml.Decoder) error {
	for {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				if err := d.DecodeElement(&p.Properties, &t); err != nil {
					return err
				}
			case "r":
				r := &runXML{}
				if err := d.DecodeElement(r, &t); err != nil {
					return err
				}
				p.Content = append(p.Content, inlineXML{Run: r})
			case "hyperlink":
				h := &hyperlinkXML{}
				if err := d.DecodeElement(h, &t); err != nil {
					return err
				}
				p.Content = append(p.Content, inlineXML{Hyperlink: h})
			case "bookmarkStart":
				var bm bookmarkXML
				if err := d.DecodeElement(&bm, &t); err != nil {
					return err
				}
				p.Bookmarks = append(p.Bookmarks, bm)
			case "fldSimple":
				if err := p.decodeSimpleField(d, t); err != nil {
					return err
				}
			case "ins", "smartTag", "customXml", "sdt", "sdtContent":
				if err := p.decodeContent(d); err != nil {
					return err
				}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

// decodeSimpleField decodes <w:fldSimple>. A HYPERLINK field becomes a
// hyperlink over its result runs; other fields contribute their runs as-is.
func (p *paragraphXML) decodeSimpleField(d *xml.Decoder, start xml.StartElement) error {
	var instr string
	for _, a := range start.Attr {
		if a.Name.Local == "instr" {
			instr = a.Value
		}
	}
	target, anchor, ok := parseHyperlinkInstr(instr)
	if !ok {
		return p.decodeContent(d)
	}

	var inner paragraphXML
	if err := inner.decodeContent(d); err != nil {
		return err
	}
	link := &hyperlinkXML{Target: target, Anchor: anchor}
	for _, in := range inner.Content {
		if in.Run != nil {
			link.Runs = append(link.Runs, *in.Run)
		} else {
			link.Runs = append(link.Runs, in.Hyperlink.Runs...)
		}
	}
	p.Bookmarks = append(p.Bookmarks, inner.Bookmarks...)
	p.Content = append(p.Content, inlineXML{Hyperlink: link})
	return nil
}

// paragraphPropsXML represents paragraph properties (<w:pPr>).
type paragraphPropsXML struct {
	Style         styleRefXML       `xml:"pStyle"`
	NumPr         numberingPropsXML `xml:"numPr"`
	Justification justificationXML  `xml:"jc"`
	Spacing       spacingXML        `xml:"spacing"`
	OutlineLvl    outlineLvlXML     `xml:"outlineLvl"`
	SectPr        *sectPrXML        `xml:"sectPr"`
}

// styleRefXML represents a style reference.
type styleRefXML struct {
	Val string `xml:"val,attr"`
}

// numberingPropsXML represents numbering properties for lists.
type numberingPropsXML struct {
	ILvl  ilvlXML  `xml:"ilvl"`
	NumID numIDXML `xml:"numId"`
}

// ilvlXML represents indentation level.
type ilvlXML struct {
	Val string `xml:"val,attr"`
}

// numIDXML represents numbering ID.
type numIDXML struct {
	Val string `xml:"val,attr"`
}

// justificationXML represents text justification.
type justificationXML struct {
	Val string `xml:"val,attr"` // left, center, right, both
}

// spacingXML represents paragraph spacing.
type spacingXML struct {
	Before string `xml:"before,attr"` // Space before in twips
	After  string `xml:"after,attr"`  // Space after in twips
	Line   string `xml:"line,attr"`   // Line spacing
}

// outlineLvlXML represents outline level.
type outlineLvlXML struct {
	Val string `xml:"val,attr"`
}

// runXML represents a text run (<w:r>).
type runXML struct {
	XMLName          xml.Name              `xml:"r"`
	Properties       runPropsXML           `xml:"rPr"`
	Text             []textXML             `xml:"t"`
	Tabs             []tabXML              `xml:"tab"`
	Breaks           []breakXML            `xml:"br"`
	Drawing          []drawingXML          `xml:"drawing"`
	Pict             []pictXML             `xml:"pict"`
	AlternateContent []alternateContentXML `xml:"AlternateContent"`
	FldChar          []fldCharXML          `xml:"fldChar"`
	InstrText        []instrTextXML        `xml:"instrText"`
}

// alternateContentXML represents mc:AlternateContent. Word wraps newer
// drawing types in a Choice with a legacy Fallback.
type alternateContentXML struct {
	Choice   choiceXML   `xml:"Choice"`
	Fallback fallbackXML `xml:"Fallback"`
}

// choiceXML represents mc:Choice.
type choiceXML struct {
	Drawing []drawingXML `xml:"drawing"`
}

// fallbackXML represents mc:Fallback containing text.
type fallbackXML struct {
	Text []textXML `xml:"t"`
}

// runPropsXML represents run properties (<w:rPr>).
type runPropsXML struct {
	Style     styleRefXML  `xml:"rStyle"`
	Bold      boolXML      `xml:"b"`
	Italic    boolXML      `xml:"i"`
	Underline underlineXML `xml:"u"`
	FontSize  sizeXML      `xml:"sz"`
	Font      fontXML      `xml:"rFonts"`
}

// boolXML represents a boolean attribute.
type boolXML struct {
	XMLName xml.Name
	Val     string `xml:"val,attr"`
}

// set reports whether the element was present.
func (b boolXML) set() bool { return b.XMLName.Local != "" }

// on reports the toggle value of a present element.
func (b boolXML) on() bool { return b.Val != "false" && b.Val != "0" && b.Val != "off" }

// underlineXML represents underline style.
type underlineXML struct {
	Val string `xml:"val,attr"` // single, double, etc.
}

// sizeXML represents font size (in half-points).
type sizeXML struct {
	Val string `xml:"val,attr"`
}

// fontXML represents font settings.
type fontXML struct {
	ASCII    string `xml:"ascii,attr"`
	HAnsi    string `xml:"hAnsi,attr"`
	CS       string `xml:"cs,attr"`
	EastAsia string `xml:"eastAsia,attr"`
}

// family returns the Latin font family, preferring ascii over hAnsi.
func (f fontXML) family() string {
	if f.ASCII != "" {
		return f.ASCII
	}
	return f.HAnsi
}

// textXML represents text content (<w:t>).
type textXML struct {
	XMLName xml.Name `xml:"t"`
	Space   string   `xml:"space,attr"` // preserve
	Value   string   `xml:",chardata"`
}

// tabXML represents a tab character.
type tabXML struct {
	XMLName xml.Name `xml:"tab"`
}

// breakXML represents a break (line or page).
type breakXML struct {
	XMLName xml.Name `xml:"br"`
	Type    string   `xml:"type,attr"` // page, column, textWrapping
}

// drawingXML represents an embedded drawing/image.
type drawingXML struct {
	XMLName xml.Name   `xml:"drawing"`
	Inline  *placedXML `xml:"inline"`
	Anchor  *placedXML `xml:"anchor"`
}

// placedXML is the shared shape of wp:inline and wp:anchor.
type placedXML struct {
	Extent extentXML `xml:"extent"`
	DocPr  docPrXML  `xml:"docPr"`
	Blip   *blipXML  `xml:"graphic>graphicData>pic>blipFill>blip"`
}

// extentXML represents image dimensions.
type extentXML struct {
	CX string `xml:"cx,attr"` // Width in EMUs
	CY string `xml:"cy,attr"` // Height in EMUs
}

// docPrXML represents document properties of an image.
type docPrXML struct {
	ID    string `xml:"id,attr"`
	Name  string `xml:"name,attr"`
	Descr string `xml:"descr,attr"` // Alt text
	Title string `xml:"title,attr"`
}

// pictXML represents a legacy VML picture (<w:pict>).
type pictXML struct {
	Shapes []vmlShapeXML `xml:"shape"`
}

// vmlShapeXML represents v:shape. Style carries the display size.
type vmlShapeXML struct {
	ID        string           `xml:"id,attr"`
	Style     string           `xml:"style,attr"`
	Alt       string           `xml:"alt,attr"`
	ImageData *vmlImageDataXML `xml:"imagedata"`
}

// vmlImageDataXML represents v:imagedata.
type vmlImageDataXML struct {
	ID    string `xml:"id,attr"`    // r:id
	RelID string `xml:"relid,attr"` // o:relid
	Title string `xml:"title,attr"` // o:title
}

// blipXML represents an image reference.
type blipXML struct {
	Embed string `xml:"embed,attr"` // Relationship ID of an embedded part
	Link  string `xml:"link,attr"`  // Relationship ID of a linked file
}

// hyperlinkXML represents a hyperlink. Target is set instead of ID for
// links built from HYPERLINK fields.
type hyperlinkXML struct {
	ID     string   `xml:"id,attr"`
	Anchor string   `xml:"anchor,attr"`
	Runs   []runXML `xml:"r"`
	Target string   `xml:"-"`
}

// bookmarkXML represents a bookmark.
type bookmarkXML struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
}

// tableXML represents a table (<w:tbl>).
type tableXML struct {
	XMLName    xml.Name      `xml:"tbl"`
	Properties tablePropsXML `xml:"tblPr"`
	Grid       tableGridXML  `xml:"tblGrid"`
	Rows       []tableRowXML `xml:"tr"`
}

// tablePropsXML represents table properties.
type tablePropsXML struct {
	Style styleRefXML `xml:"tblStyle"`
}

// tableGridXML represents table grid definition.
type tableGridXML struct {
	Cols []gridColXML `xml:"gridCol"`
}

// gridColXML represents a grid column.
type gridColXML struct {
	W string `xml:"w,attr"` // Width in twips
}

// tableRowXML represents a table row (<w:tr>).
type tableRowXML struct {
	XMLName    xml.Name       `xml:"tr"`
	Properties rowPropsXML    `xml:"trPr"`
	Cells      []tableCellXML `xml:"tc"`
}

// rowPropsXML represents row properties.
type rowPropsXML struct {
	Header boolXML `xml:"tblHeader"` // Is this a header row?
}

// tableCellXML represents a table cell (<w:tc>). Cells hold block content
// of their own, including nested tables.
type tableCellXML struct {
	Properties cellPropsXML
	Content    blockListXML
}

func (c *tableCellXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	return c.Content.decodeUntilEnd(d, func(t xml.StartElement) (bool, error) {
		if t.Name.Local != "tcPr" {
			return false, nil
		}
		return true, d.DecodeElement(&c.Properties, &t)
	})
}

// cellPropsXML represents cell properties.
type cellPropsXML struct {
	GridSpan gridSpanXML `xml:"gridSpan"`
	VMerge   vMergeXML   `xml:"vMerge"`
}

// gridSpanXML represents column span.
type gridSpanXML struct {
	Val string `xml:"val,attr"` // Number of columns spanned
}

// vMergeXML represents vertical merge.
type vMergeXML struct {
	XMLName xml.Name `xml:"vMerge"`
	Val     string   `xml:"val,attr"` // "restart" or empty (continue)
}
