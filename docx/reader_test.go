package docx

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	path := writeTestDOCX(t, defaultTestDOCX(paragraph("", "Hello World")))

	parts, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if parts.Path() != path {
		t.Errorf("Path() = %q, want %q", parts.Path(), path)
	}
	for _, name := range WhitelistedParts() {
		if !parts.Has(name) {
			t.Errorf("Has(%q) = false, want true", name)
		}
	}
	if parts.Has(PartAppProps) {
		t.Error("Has(app.xml) = true for a container without it")
	}
	if parts.document == nil || parts.document.Body == nil {
		t.Fatal("document body not parsed")
	}
	if len(parts.document.Body.Elements) != 1 {
		t.Errorf("body elements = %d, want 1", len(parts.document.Body.Elements))
	}
}

func TestLoad_NotZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fake.docx")
	if err := os.WriteFile(path, []byte("this is plain text"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if !errors.Is(err, ErrCorruptContainer) {
		t.Fatalf("Load() error = %v, want ErrCorruptContainer", err)
	}
	var cce *CorruptContainerError
	if !errors.As(err, &cce) {
		t.Fatalf("Load() error type = %T, want *CorruptContainerError", err)
	}
	if cce.Path != path {
		t.Errorf("Path = %q, want %q", cce.Path, path)
	}
}

func TestLoad_TruncatedZip(t *testing.T) {
	path := writeTestDOCX(t, defaultTestDOCX(paragraph("", "text")))
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)-30], 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); !errors.Is(err, ErrCorruptContainer) {
		t.Errorf("Load() error = %v, want ErrCorruptContainer", err)
	}
}

func TestLoad_NotWordprocessing(t *testing.T) {
	path := writeZip(t, map[string][]byte{
		"[Content_Types].xml": []byte(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
</Types>`),
		"xl/workbook.xml": []byte(`<workbook/>`),
	})

	_, err := Load(path)
	if !errors.Is(err, ErrCorruptContainer) {
		t.Fatalf("Load() error = %v, want ErrCorruptContainer", err)
	}
	if !strings.Contains(err.Error(), "XLSX") {
		t.Errorf("error %q should name the detected format", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.docx"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if errors.Is(err, ErrCorruptContainer) {
		t.Errorf("missing file reported as corrupt container: %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestLoad_MissingPart(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*testDOCX)
		want   string
	}{
		{"styles", func(d *testDOCX) { d.Styles = "" }, PartStyles},
		{"numbering", func(d *testDOCX) { d.Numbering = "" }, PartNumbering},
		{"core properties", func(d *testDOCX) { d.Core = "" }, PartCoreProps},
		{"relationships", func(d *testDOCX) { d.Rels = "" }, PartRelationships},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := defaultTestDOCX(paragraph("", "x"))
			tt.mutate(&d)

			_, err := Load(writeTestDOCX(t, d))
			if !errors.Is(err, ErrMissingPart) {
				t.Fatalf("Load() error = %v, want ErrMissingPart", err)
			}
			var mpe *MissingPartError
			if !errors.As(err, &mpe) {
				t.Fatalf("error type = %T, want *MissingPartError", err)
			}
			if mpe.Part != tt.want {
				t.Errorf("Part = %q, want %q", mpe.Part, tt.want)
			}
		})
	}
}

func TestLoad_OptionalPart(t *testing.T) {
	d := defaultTestDOCX(paragraph("", "x"))
	d.Numbering = ""
	d.Core = ""

	parts, err := Load(writeTestDOCX(t, d), WithRequiredParts(PartDocument, PartStyles, PartRelationships))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if parts.Has(PartNumbering) || parts.Has(PartCoreProps) {
		t.Error("absent optional parts reported as present")
	}

	doc, err := Build(parts)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if doc.Metadata.Title != "" {
		t.Errorf("Title = %q, want empty", doc.Metadata.Title)
	}
	if len(doc.Numbering) != 0 {
		t.Errorf("Numbering = %d definitions, want 0", len(doc.Numbering))
	}
}

func TestLoad_MalformedPart(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*testDOCX)
		want   string
	}{
		{"styles", func(d *testDOCX) { d.Styles = `<w:style w:styleId="Broken">` }, PartStyles},
		{"document", func(d *testDOCX) { d.Body = `<w:p><w:r>` }, PartDocument},
		{"core", func(d *testDOCX) { d.Core = `<cp:coreProperties>` }, PartCoreProps},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := defaultTestDOCX(paragraph("", "x"))
			tt.mutate(&d)

			_, err := Load(writeTestDOCX(t, d))
			if !errors.Is(err, ErrMalformedPart) {
				t.Fatalf("Load() error = %v, want ErrMalformedPart", err)
			}
			var mpe *MalformedPartError
			if !errors.As(err, &mpe) {
				t.Fatalf("error type = %T, want *MalformedPartError", err)
			}
			if mpe.Part != tt.want {
				t.Errorf("Part = %q, want %q", mpe.Part, tt.want)
			}
			if mpe.Unwrap() == nil {
				t.Error("Unwrap() = nil, want parser error")
			}
		})
	}
}

func TestLoad_PartSizeLimit(t *testing.T) {
	d := defaultTestDOCX(paragraph("", strings.Repeat("long text ", 200)))

	_, err := Load(writeTestDOCX(t, d), WithMaxPartSize(512))
	if !errors.Is(err, ErrCorruptContainer) {
		t.Fatalf("Load() error = %v, want ErrCorruptContainer", err)
	}
	if !errors.Is(err, errPartTooLarge) {
		t.Errorf("Load() error = %v, want errPartTooLarge in chain", err)
	}
}

func TestLoad_Media(t *testing.T) {
	d := defaultTestDOCX(paragraph("", "x"))
	d.Rels += `<Relationship Id="rId7" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="../extra/logo.png"/>`
	d.Rels += `<Relationship Id="rId8" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="http://example.com/x.png" TargetMode="External"/>`
	d.Extra = map[string][]byte{
		"word/media/image1.png": testPNG(t, 4, 4),
		"extra/logo.png":        testPNG(t, 2, 2),
		"word/theme/theme1.xml": []byte(`<a:theme/>`),
	}

	parts, err := Load(writeTestDOCX(t, d))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"extra/logo.png", "word/media/image1.png"}
	if got := parts.MediaNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("MediaNames() = %v, want %v", got, want)
	}
}

func TestResolveTarget(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"media/image1.png", "word/media/image1.png"},
		{"../media/image1.png", "media/image1.png"},
		{"/word/media/image2.jpeg", "word/media/image2.jpeg"},
		{"./media/a.gif", "word/media/a.gif"},
	}

	for _, tt := range tests {
		if got := resolveTarget(tt.target); got != tt.want {
			t.Errorf("resolveTarget(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}
