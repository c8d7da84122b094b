package docx

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/tsawler/docqc/model"
)

const testNamespaces = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" ` +
	`xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships" ` +
	`xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing" ` +
	`xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" ` +
	`xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture" ` +
	`xmlns:v="urn:schemas-microsoft-com:vml" ` +
	`xmlns:o="urn:schemas-microsoft-com:office:office"`

const testContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Default Extension="png" ContentType="image/png"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const testStyles = `
<w:docDefaults>
  <w:rPrDefault><w:rPr><w:rFonts w:ascii="Calibri" w:hAnsi="Calibri"/><w:sz w:val="22"/></w:rPr></w:rPrDefault>
</w:docDefaults>
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading1">
  <w:name w:val="heading 1"/><w:basedOn w:val="Normal"/>
  <w:pPr><w:outlineLvl w:val="0"/></w:pPr>
  <w:rPr><w:rFonts w:ascii="Cambria"/><w:b/><w:sz w:val="32"/></w:rPr>
</w:style>
<w:style w:type="paragraph" w:styleId="Heading2">
  <w:name w:val="heading 2"/><w:basedOn w:val="Heading1"/>
  <w:pPr><w:outlineLvl w:val="1"/></w:pPr>
  <w:rPr><w:sz w:val="26"/></w:rPr>
</w:style>
<w:style w:type="paragraph" w:styleId="Heading3">
  <w:name w:val="heading 3"/><w:basedOn w:val="Heading1"/>
  <w:pPr><w:outlineLvl w:val="2"/></w:pPr>
</w:style>
<w:style w:type="character" w:styleId="Emphasis">
  <w:name w:val="Emphasis"/><w:rPr><w:i/></w:rPr>
</w:style>
<w:style w:type="table" w:styleId="TableGrid"><w:name w:val="Table Grid"/></w:style>`

const testNumbering = `
<w:abstractNum w:abstractNumId="0">
  <w:lvl w:ilvl="0"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="` + "\uF0B7" + `"/></w:lvl>
  <w:lvl w:ilvl="1"><w:start w:val="1"/><w:numFmt w:val="bullet"/><w:lvlText w:val="o"/></w:lvl>
</w:abstractNum>
<w:abstractNum w:abstractNumId="1">
  <w:lvl w:ilvl="0"><w:start w:val="3"/><w:numFmt w:val="decimal"/><w:lvlText w:val="%1."/></w:lvl>
</w:abstractNum>
<w:num w:numId="1"><w:abstractNumId w:val="0"/></w:num>
<w:num w:numId="2"><w:abstractNumId w:val="1"/></w:num>`

const testCore = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <dc:title>Quarterly Report</dc:title>
  <dc:creator>Jordan Lee</dc:creator>
  <cp:keywords>finance, q3; audit</cp:keywords>
  <dcterms:created xsi:type="dcterms:W3CDTF">2024-03-01T09:30:00Z</dcterms:created>
  <dcterms:modified xsi:type="dcterms:W3CDTF">2024-03-02</dcterms:modified>
</cp:coreProperties>`

// testDOCX describes the parts of a fixture container. Empty strings
// omit the part.
type testDOCX struct {
	Body      string
	Styles    string
	Numbering string
	Core      string
	Rels      string
	App       string
	Custom    string
	Extra     map[string][]byte
}

// defaultTestDOCX returns a fixture with every whitelisted part present.
func defaultTestDOCX(body string) testDOCX {
	return testDOCX{
		Body:      body,
		Styles:    testStyles,
		Numbering: testNumbering,
		Core:      testCore,
		Rels:      `<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`,
	}
}

// writeTestDOCX writes the fixture to a temp file and returns its path.
func writeTestDOCX(t *testing.T, d testDOCX) string {
	t.Helper()

	files := map[string][]byte{
		"[Content_Types].xml": []byte(testContentTypes),
	}
	files[PartDocument] = []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document ` + testNamespaces + `><w:body>` + d.Body + `</w:body></w:document>`)
	if d.Styles != "" {
		files[PartStyles] = []byte(`<w:styles ` + testNamespaces + `>` + d.Styles + `</w:styles>`)
	}
	if d.Numbering != "" {
		files[PartNumbering] = []byte(`<w:numbering ` + testNamespaces + `>` + d.Numbering + `</w:numbering>`)
	}
	if d.Core != "" {
		files[PartCoreProps] = []byte(d.Core)
	}
	if d.Rels != "" {
		files[PartRelationships] = []byte(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + d.Rels + `</Relationships>`)
	}
	if d.App != "" {
		files[PartAppProps] = []byte(d.App)
	}
	if d.Custom != "" {
		files[PartCustomProps] = []byte(d.Custom)
	}
	for name, data := range d.Extra {
		files[name] = data
	}

	return writeZip(t, files)
}

func writeZip(t *testing.T, files map[string][]byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.docx")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for name, data := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close zip: %v", err)
	}
	return path
}

// loadAndBuild runs Load and Build on a fixture.
func loadAndBuild(t *testing.T, d testDOCX, opts ...Option) (*model.Document, error) {
	t.Helper()
	parts, err := Load(writeTestDOCX(t, d), opts...)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return Build(parts, opts...)
}

// testPNG encodes a blank PNG of the given size.
func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

// drawingXMLFor returns a run holding an inline picture.
func drawingXMLFor(relID string, cx, cy int, descr string) string {
	return `<w:r><w:drawing><wp:inline>` +
		`<wp:extent cx="` + strconv.Itoa(cx) + `" cy="` + strconv.Itoa(cy) + `"/>` +
		`<wp:docPr id="1" name="Picture 1" descr="` + descr + `"/>` +
		`<a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="` + relID + `"/></pic:blipFill></pic:pic></a:graphicData></a:graphic>` +
		`</wp:inline></w:drawing></w:r>`
}

// pictXMLFor returns a run holding a legacy VML picture.
func pictXMLFor(relID, style, title string) string {
	return `<w:r><w:pict><v:shape id="_x0000_i1025" type="#_x0000_t75" style="` + style + `">` +
		`<v:imagedata r:id="` + relID + `" o:title="` + title + `"/>` +
		`</v:shape></w:pict></w:r>`
}

func paragraph(style, text string) string {
	ppr := ""
	if style != "" {
		ppr = `<w:pPr><w:pStyle w:val="` + style + `"/></w:pPr>`
	}
	return `<w:p>` + ppr + `<w:r><w:t>` + text + `</w:t></w:r></w:p>`
}
