package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/model"
)

func TestRuleIdentity(t *testing.T) {
	want := []struct {
		id       string
		category model.Category
	}{
		{"heading-hierarchy", model.CategoryStructure},
		{"margin-consistency", model.CategoryLayout},
		{"font-consistency", model.CategoryTypography},
		{"metadata-completeness", model.CategoryMetadata},
		{"image-resolution", model.CategoryMedia},
		{"hyperlink-validity", model.CategoryLinks},
	}

	all := All()
	require.Len(t, all, len(want))
	for i, r := range all {
		assert.Equal(t, want[i].id, r.ID())
		assert.Equal(t, want[i].category, r.Category())
	}
}

func TestHeadingHierarchy(t *testing.T) {
	tests := []struct {
		name           string
		doc            *model.Document
		wantSeverities []model.Severity
		validate       func(t *testing.T, findings []model.Finding)
	}{
		{
			name:           "well formed",
			doc:            docWith(heading(1, "Intro"), body("x"), heading(2, "Part"), heading(3, "Detail"), heading(1, "Next"), heading(2, "Again")),
			wantSeverities: []model.Severity{},
		},
		{
			name:           "no headings",
			doc:            docWith(body("just text")),
			wantSeverities: []model.Severity{},
		},
		{
			name:           "zero sections",
			doc:            &model.Document{},
			wantSeverities: []model.Severity{model.SeverityWarning},
			validate: func(t *testing.T, findings []model.Finding) {
				assert.True(t, findings[0].Location.IsDocument())
			},
		},
		{
			name:           "starts at level 2",
			doc:            docWith(heading(2, "Sub"), heading(3, "Deeper")),
			wantSeverities: []model.Severity{model.SeverityWarning},
			validate: func(t *testing.T, findings []model.Finding) {
				assert.Contains(t, findings[0].Message, "does not start at level 1")
			},
		},
		{
			name:           "starts at level 3",
			doc:            docWith(body("preamble"), heading(3, "Deep")),
			wantSeverities: []model.Severity{model.SeverityError},
			validate: func(t *testing.T, findings []model.Finding) {
				assert.Equal(t, 0, findings[0].Location.Compare(model.BlockLocation(0, 1)))
				assert.Equal(t, 3, findings[0].Detail["level"])
			},
		},
		{
			name:           "skipped level",
			doc:            docWith(heading(1, "A"), heading(3, "C"), heading(4, "D"), heading(2, "B"), heading(4, "skip")),
			wantSeverities: []model.Severity{model.SeverityError, model.SeverityError},
			validate: func(t *testing.T, findings []model.Finding) {
				assert.Equal(t, "heading level jumps from 1 to 3", findings[0].Message)
				assert.Equal(t, "heading level jumps from 2 to 4", findings[1].Message)
			},
		},
		{
			name: "headings inside tables",
			doc: docWith(heading(1, "A"), &model.Table{Style: model.NoStyle, Rows: []model.Row{{
				Cells: []model.Cell{{ColSpan: 1, RowSpan: 1, Blocks: []model.Block{heading(3, "in cell")}}},
			}}}),
			wantSeverities: []model.Severity{model.SeverityError},
			validate: func(t *testing.T, findings []model.Finding) {
				require.NotNil(t, findings[0].Location.Cell)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := HeadingHierarchy{}.Evaluate(tt.doc, config.Default())
			require.NoError(t, err)
			assert.Equal(t, tt.wantSeverities, severities(findings))
			for _, f := range findings {
				assert.Equal(t, "heading-hierarchy", f.Rule)
				assert.Equal(t, model.CategoryStructure, f.Category)
			}
			if tt.validate != nil {
				tt.validate(t, findings)
			}
		})
	}
}

func TestMarginConsistency(t *testing.T) {
	narrow := model.DefaultPageGeometry()
	narrow.Margins.Left = 18
	narrow.Margins.Right = 18

	doc := &model.Document{Sections: []model.Section{
		{Index: 0, Geometry: model.DefaultPageGeometry()},
		{Index: 1, Geometry: narrow},
		{Index: 2, Geometry: narrow},
	}}

	t.Run("default bounds", func(t *testing.T) {
		findings, err := MarginConsistency{}.Evaluate(doc, config.Default())
		require.NoError(t, err)
		require.Len(t, findings, 4)

		f := findings[0]
		assert.Equal(t, model.SeverityError, f.Severity)
		assert.Equal(t, model.SectionLocation(1), f.Location)
		assert.Equal(t, "right", f.Detail["side"])
		assert.Equal(t, 18.0, f.Detail["measured"])
		assert.Equal(t, 36.0, f.Detail["min"])
		assert.Equal(t, false, f.Detail["override"])
		assert.Equal(t, "left", findings[1].Detail["side"])
	})

	t.Run("section override", func(t *testing.T) {
		cfg := config.Default()
		cfg.Margins.Overrides = []config.MarginOverride{{Section: 2, MinPoints: 18, MaxPoints: 72}}

		findings, err := MarginConsistency{}.Evaluate(doc, cfg)
		require.NoError(t, err)
		require.Len(t, findings, 2)
		for _, f := range findings {
			assert.Equal(t, 1, f.Location.Section)
		}
	})

	t.Run("override checked instead of default", func(t *testing.T) {
		cfg := config.Default()
		cfg.Margins.Overrides = []config.MarginOverride{{Section: 0, MinPoints: 90, MaxPoints: 120}}

		findings, err := MarginConsistency{}.Evaluate(&model.Document{Sections: doc.Sections[:1]}, cfg)
		require.NoError(t, err)
		require.Len(t, findings, 4)
		assert.Equal(t, true, findings[0].Detail["override"])
		assert.Equal(t, 90.0, findings[0].Detail["min"])
	})

	t.Run("zero sections", func(t *testing.T) {
		findings, err := MarginConsistency{}.Evaluate(&model.Document{}, config.Default())
		require.NoError(t, err)
		assert.Equal(t, []model.Severity{model.SeverityWarning}, severities(findings))
		assert.Contains(t, findings[0].Message, "cannot be verified")
	})
}

func TestFontConsistency(t *testing.T) {
	cfg := config.Default()
	cfg.Fonts.MaxDistinctPairs = 2

	t.Run("within limit", func(t *testing.T) {
		doc := docWith(body("a"), body("b"), para(0, "calibri", 11, "case folded"), para(0, "Arial", 12, "c"))
		findings, err := FontConsistency{}.Evaluate(doc, cfg)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("excess pairs", func(t *testing.T) {
		doc := docWith(
			heading(1, "Headings are ignored"),
			body("one"), body("two"), body("three"),
			para(0, "Arial", 12, "a", "b"),
			para(0, "Times New Roman", 10, "x"),
			para(0, "Courier New", 9, "   "),
			&model.Table{Style: model.NoStyle, Rows: []model.Row{{Cells: []model.Cell{{
				ColSpan: 1, RowSpan: 1, Blocks: []model.Block{para(0, "Verdana", 8, "cell")},
			}}}}},
		)

		findings, err := FontConsistency{}.Evaluate(doc, cfg)
		require.NoError(t, err)
		require.Len(t, findings, 1)

		f := findings[0]
		assert.Equal(t, model.SeverityWarning, f.Severity)
		assert.True(t, f.Location.IsDocument())
		assert.Equal(t, 4, f.Detail["distinct"])
		assert.Equal(t, []string{"Calibri 11pt", "Arial 12pt"}, f.Detail["kept"])
		assert.Equal(t, []string{"Times New Roman 10pt", "Verdana 8pt"}, f.Detail["excess"])
		assert.Contains(t, f.Message, "Times New Roman 10pt, Verdana 8pt")
	})

	t.Run("half point rounding", func(t *testing.T) {
		doc := docWith(para(0, "Calibri", 11.02, "a"), para(0, "Calibri", 10.98, "b"), para(0, "Calibri", 11.5, "c"))
		findings, err := FontConsistency{}.Evaluate(doc, cfg)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("limit disabled", func(t *testing.T) {
		off := cfg
		off.Fonts.MaxDistinctPairs = 0
		doc := docWith(para(0, "A", 1, "a"), para(0, "B", 2, "b"), para(0, "C", 3, "c"))
		findings, err := FontConsistency{}.Evaluate(doc, off)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})
}

func TestMetadataCompleteness(t *testing.T) {
	tests := []struct {
		name       string
		meta       model.Metadata
		required   []string
		wantFields []string
		wantErr    bool
	}{
		{
			name:     "complete",
			meta:     model.Metadata{Title: "T", Author: "A"},
			required: []string{"title", "author"},
		},
		{
			name:       "one finding per field",
			meta:       model.Metadata{},
			required:   []string{"title", "author"},
			wantFields: []string{"title", "author"},
		},
		{
			name:       "duplicates and case",
			meta:       model.Metadata{Title: "T"},
			required:   []string{"Author", "author", " title "},
			wantFields: []string{"author"},
		},
		{
			name: "extended fields",
			meta: model.Metadata{
				Keywords: []string{"k"},
				Custom:   map[string]string{"Department": "Finance", "Owner": " "},
			},
			required:   []string{"keywords", "created", "custom:department", "custom:owner"},
			wantFields: []string{"created", "custom:owner"},
		},
		{
			name:     "unknown field",
			required: []string{"colour"},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Metadata.RequiredFields = tt.required

			findings, err := MetadataCompleteness{}.Evaluate(&model.Document{Metadata: tt.meta}, cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			var fields []string
			for _, f := range findings {
				assert.Equal(t, model.SeverityError, f.Severity)
				assert.True(t, f.Location.IsDocument())
				fields = append(fields, f.Detail["field"].(string))
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestImageResolution(t *testing.T) {
	lowRes := func(name string, dpi float64) *model.Image {
		return &model.Image{Name: name, AltText: "chart", Source: "word/media/" + name, Format: "png",
			PixelWidth: 100, PixelHeight: 100, DisplayWidth: 1, DisplayHeight: 1, DPI: dpi}
	}

	t.Run("K low resolution images give K warnings", func(t *testing.T) {
		doc := docWith(body("x"), lowRes("a.png", 72), lowRes("b.png", 96), lowRes("c.png", 149.5), lowRes("d.png", 150))

		findings, err := ImageResolution{}.Evaluate(doc, config.Default())
		require.NoError(t, err)
		require.Len(t, findings, 3)
		for i, want := range []float64{72, 96, 149.5} {
			assert.Equal(t, model.SeverityWarning, findings[i].Severity)
			assert.Equal(t, want, findings[i].Detail["measured_dpi"])
			assert.Equal(t, 150.0, findings[i].Detail["min_dpi"])
			assert.Equal(t, i+1, findings[i].Location.Block)
		}
	})

	t.Run("missing image is an error", func(t *testing.T) {
		doc := docWith(&model.Image{Name: "Logo", Source: "http://example.com/logo.png", Missing: true})

		findings, err := ImageResolution{}.Evaluate(doc, config.Default())
		require.NoError(t, err)
		assert.Equal(t, []model.Severity{model.SeverityError}, severities(findings))
	})

	t.Run("alt text", func(t *testing.T) {
		noAlt := lowRes("scan.png", 300)
		noAlt.AltText = ""
		noAlt.Text = "Q3 revenue"

		findings, err := ImageResolution{}.Evaluate(docWith(noAlt), config.Default())
		require.NoError(t, err)
		require.Len(t, findings, 1)
		assert.Equal(t, model.SeverityInfo, findings[0].Severity)
		assert.Contains(t, findings[0].Message, "Q3 revenue")
		assert.Equal(t, "Q3 revenue", findings[0].Detail["detected_text"])

		cfg := config.Default()
		cfg.Images.RequireAltText = false
		findings, err = ImageResolution{}.Evaluate(docWith(noAlt), cfg)
		require.NoError(t, err)
		assert.Empty(t, findings)
	})

	t.Run("unmeasurable format", func(t *testing.T) {
		emf := &model.Image{Name: "diagram", AltText: "flow", Source: "word/media/image1.emf", Format: "emf"}
		findings, err := ImageResolution{}.Evaluate(docWith(emf), config.Default())
		require.NoError(t, err)
		assert.Equal(t, []model.Severity{model.SeverityInfo}, severities(findings))
	})
}

func TestHyperlinkValidity(t *testing.T) {
	tests := []struct {
		name   string
		link   model.Hyperlink
		want   model.Severity // empty means no finding
		substr string
	}{
		{"https", model.Hyperlink{Target: "https://example.com/path?q=1", External: true}, "", ""},
		{"idn host", model.Hyperlink{Target: "https://bücher.example/", External: true}, "", ""},
		{"mailto", model.Hyperlink{Target: "mailto:team@example.com?subject=hi", External: true}, "", ""},
		{"tel", model.Hyperlink{Target: "tel:+1-555-0100", External: true}, "", ""},
		{"public ip", model.Hyperlink{Target: "http://93.184.216.34/", External: true}, "", ""},
		{"bookmark", model.Hyperlink{Anchor: "intro"}, "", ""},
		{"top of document", model.Hyperlink{Anchor: "_top"}, "", ""},
		{"missing bookmark", model.Hyperlink{Anchor: "nowhere"}, model.SeverityWarning, "missing bookmark"},
		{"empty", model.Hyperlink{}, model.SeverityWarning, "empty target"},
		{"space in host", model.Hyperlink{Target: "https://exa mple.com", External: true}, model.SeverityWarning, "well-formed"},
		{"invalid idn", model.Hyperlink{Target: "https://bad_host.example.com", External: true}, model.SeverityWarning, "invalid host"},
		{"no host", model.Hyperlink{Target: "https://", External: true}, model.SeverityWarning, "no host"},
		{"scheme not allowed", model.Hyperlink{Target: "javascript:alert(1)", External: true}, model.SeverityWarning, "not allowed"},
		{"bad email", model.Hyperlink{Target: "mailto:not-an-address", External: true}, model.SeverityWarning, "email"},
		{"bad phone", model.Hyperlink{Target: "tel:call-me", External: true}, model.SeverityWarning, "telephone"},
		{"whitespace", model.Hyperlink{Target: " https://example.com", External: true}, model.SeverityWarning, "whitespace"},
		{"relative", model.Hyperlink{Target: "docs/guide.docx", External: true}, model.SeverityInfo, "relative"},
		{"file", model.Hyperlink{Target: "file:///C:/share/report.docx", External: true}, model.SeverityInfo, "local file"},
		{"loopback", model.Hyperlink{Target: "http://127.0.0.1:8080/", External: true}, model.SeverityInfo, "private or loopback"},
		{"private", model.Hyperlink{Target: "http://10.1.2.3/", External: true}, model.SeverityInfo, "private or loopback"},
		{"localhost", model.Hyperlink{Target: "http://localhost/", External: true}, model.SeverityInfo, "local host"},
		{"intranet", model.Hyperlink{Target: "http://wiki/", External: true}, model.SeverityInfo, "local host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := tt.link
			link.Location = model.BlockLocation(0, 0).WithRun(2)
			doc := docWith(body("x"))
			doc.Hyperlinks = []model.Hyperlink{link}
			doc.Bookmarks = []string{"intro"}

			findings, err := HyperlinkValidity{}.Evaluate(doc, config.Default())
			require.NoError(t, err)

			if tt.want == "" {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, tt.want, findings[0].Severity)
			assert.Contains(t, findings[0].Message, tt.substr)
			assert.Equal(t, link.Location, findings[0].Location)
		})
	}
}

func TestRulesDoNotMutateModel(t *testing.T) {
	doc := docWith(heading(3, "deep"), body("x"), &model.Image{Missing: true})
	doc.Hyperlinks = []model.Hyperlink{{Anchor: "gone", Location: model.BlockLocation(0, 1)}}

	before := len(doc.Sections[0].Blocks)
	for _, r := range All() {
		first, err := r.Evaluate(doc, config.Default())
		require.NoError(t, err)
		second, err := r.Evaluate(doc, config.Default())
		require.NoError(t, err)
		assert.Equal(t, first, second, "rule %s is not deterministic", r.ID())
	}
	assert.Equal(t, before, len(doc.Sections[0].Blocks))
}
