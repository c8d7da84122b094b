// Package testdocx builds small DOCX containers for tests of the packages
// above the loader.
package testdocx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const namespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"`

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const styles = `<w:styles ` + namespaces + `>
<w:docDefaults><w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault></w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:outlineLvl w:val="0"/></w:pPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/><w:basedOn w:val="Normal"/><w:pPr><w:outlineLvl w:val="1"/></w:pPr></w:style>
<w:style w:type="paragraph" w:styleId="Heading3"><w:name w:val="heading 3"/><w:basedOn w:val="Normal"/><w:pPr><w:outlineLvl w:val="2"/></w:pPr></w:style>
</w:styles>`

const numbering = `<w:numbering ` + namespaces + `></w:numbering>`

// Doc describes a single-section fixture document.
type Doc struct {
	Title  string
	Author string
	// Margin applies to all four sides, in points.
	Margin float64
	// Body is raw WordprocessingML placed before the section properties.
	Body string
	// Links maps relationship IDs to external hyperlink targets.
	Links map[string]string
}

// Clean returns a document that passes every rule under the default
// configuration.
func Clean() Doc {
	return Doc{
		Title:  "Quarterly Report",
		Author: "Jordan Lee",
		Margin: 72,
		Body: Paragraph("Heading1", "Overview") +
			Paragraph("", "The quarter closed ahead of plan.") +
			Paragraph("Heading2", "Revenue") +
			Paragraph("", "Revenue grew in every region."),
	}
}

// Flawed returns a document with a heading jump, a narrow margin and no
// title: two errors across structure, layout and metadata.
func Flawed() Doc {
	return Doc{
		Author: "Jordan Lee",
		Margin: 18,
		Body: Paragraph("Heading1", "Overview") +
			Paragraph("Heading3", "Detail") +
			Paragraph("", "Body text."),
	}
}

// Paragraph returns a single-run paragraph, optionally styled.
func Paragraph(style, text string) string {
	ppr := ""
	if style != "" {
		ppr = `<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`
	}
	return `<w:p>` + ppr + `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r></w:p>`
}

// Hyperlink returns a paragraph holding one external hyperlink.
func Hyperlink(relID, text string) string {
	return `<w:p><w:hyperlink r:id="` + relID + `"><w:r><w:t>` + text + `</w:t></w:r></w:hyperlink></w:p>`
}

// Bytes encodes the document as a DOCX container.
func (d Doc) Bytes() ([]byte, error) {
	twips := int(d.Margin * 20)
	sect := fmt.Sprintf(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/>`+
		`<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>`,
		twips, twips, twips, twips)

	var rels strings.Builder
	rels.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	rels.WriteString(`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	for id, target := range d.Links {
		fmt.Fprintf(&rels, `<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink" Target="%s" TargetMode="External"/>`, id, target)
	}
	rels.WriteString(`</Relationships>`)

	core := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">` +
		`<dc:title>` + d.Title + `</dc:title><dc:creator>` + d.Author + `</dc:creator></cp:coreProperties>`

	files := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypes},
		{"word/document.xml", `<w:document ` + namespaces + `><w:body>` + d.Body + sect + `</w:body></w:document>`},
		{"word/styles.xml", styles},
		{"word/numbering.xml", numbering},
		{"word/_rels/document.xml.rels", rels.String()},
		{"docProps/core.xml", core},
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(f.data)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes the document into a temp file and returns its path.
func (d Doc) Write(t testing.TB) string {
	t.Helper()
	data, err := d.Bytes()
	if err != nil {
		t.Fatalf("failed to encode fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.docx")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}
