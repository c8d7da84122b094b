package docx

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/tsawler/docqc/model"
)

// emuPerInch is the number of English Metric Units in an inch.
const emuPerInch = 914400

// buildImage converts a drawing into an image block. Drawings that are not
// pictures (charts, shapes) return nil.
func (b *builder) buildImage(d drawingXML, loc model.Location) (*model.Image, error) {
	placed, anchor := d.Inline, model.AnchorInline
	if placed == nil {
		placed, anchor = d.Anchor, model.AnchorFloating
	}
	if placed == nil || placed.Blip == nil {
		return nil, nil
	}

	img := &model.Image{
		Name:          placed.DocPr.Name,
		AltText:       strings.TrimSpace(placed.DocPr.Descr),
		Anchor:        anchor,
		DisplayWidth:  emuToInches(placed.Extent.CX),
		DisplayHeight: emuToInches(placed.Extent.CY),
	}
	if img.AltText == "" {
		img.AltText = strings.TrimSpace(placed.DocPr.Title)
	}

	relID := placed.Blip.Embed
	if relID == "" {
		relID = placed.Blip.Link
	}
	return b.resolveImage(img, relID, loc)
}

// buildVMLImage converts a legacy VML picture (<w:pict>) into an image
// block. Shapes without image data return nil.
func (b *builder) buildVMLImage(p pictXML, loc model.Location) (*model.Image, error) {
	var shape *vmlShapeXML
	for i := range p.Shapes {
		if p.Shapes[i].ImageData != nil {
			shape = &p.Shapes[i]
			break
		}
	}
	if shape == nil {
		return nil, nil
	}

	style := parseVMLStyle(shape.Style)
	img := &model.Image{
		Name:          shape.ID,
		AltText:       strings.TrimSpace(shape.Alt),
		Anchor:        model.AnchorInline,
		DisplayWidth:  vmlLengthToInches(style["width"]),
		DisplayHeight: vmlLengthToInches(style["height"]),
	}
	if style["position"] == "absolute" {
		img.Anchor = model.AnchorFloating
	}
	if img.AltText == "" {
		img.AltText = strings.TrimSpace(shape.ImageData.Title)
	}

	relID := shape.ImageData.ID
	if relID == "" {
		relID = shape.ImageData.RelID
	}
	return b.resolveImage(img, relID, loc)
}

// resolveImage follows the image relationship and measures the media part.
func (b *builder) resolveImage(img *model.Image, relID string, loc model.Location) (*model.Image, error) {
	if relID == "" {
		img.Missing = true
		return img, nil
	}

	rel, ok := b.rels[relID]
	if !ok {
		return nil, &ReferenceIntegrityError{Kind: RefImage, ID: relID, From: loc.String()}
	}
	if rel.external() {
		img.Source = rel.Target
		img.Missing = true
		return img, nil
	}

	img.Source = resolveTarget(rel.Target)
	data, ok := b.parts.media[img.Source]
	if !ok {
		img.Missing = true
		return img, nil
	}

	b.measure(img, data)
	b.recognize(img, data)
	return img, nil
}

// measure fills pixel size, format and effective DPI. Formats without a
// registered decoder (EMF, WMF, SVG) keep zero pixel size and DPI.
func (b *builder) measure(img *model.Image, data []byte) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		img.Format = strings.TrimPrefix(strings.ToLower(path.Ext(img.Source)), ".")
		b.opts.logger.Debug("cannot measure image", "part", img.Source, "error", err)
		return
	}
	img.Format = format
	img.PixelWidth = cfg.Width
	img.PixelHeight = cfg.Height
	img.DPI = effectiveDPI(cfg.Width, cfg.Height, img.DisplayWidth, img.DisplayHeight)
}

func (b *builder) recognize(img *model.Image, data []byte) {
	if b.opts.recognizer == nil {
		return
	}
	text, err := b.opts.recognizer.RecognizeImage(data)
	if err != nil {
		b.opts.logger.Warn("image text recognition failed", "part", img.Source, "error", err)
		return
	}
	img.Text = text
}

// effectiveDPI is the lower of the horizontal and vertical resolutions at
// display size, or zero when either dimension is unknown.
func effectiveDPI(pxW, pxH int, inW, inH float64) float64 {
	if pxW <= 0 || pxH <= 0 || inW <= 0 || inH <= 0 {
		return 0
	}
	return min(float64(pxW)/inW, float64(pxH)/inH)
}

// parseVMLStyle splits a VML style attribute ("width:72pt;height:36pt")
// into lower-cased properties.
func parseVMLStyle(style string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		name, value, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		props[strings.ToLower(strings.TrimSpace(name))] = strings.ToLower(strings.TrimSpace(value))
	}
	return props
}

// vmlUnitsPerInch maps CSS length units to units per inch. A bare number
// is in pixels.
var vmlUnitsPerInch = map[string]float64{
	"in": 1,
	"pt": 72,
	"pc": 6,
	"cm": 2.54,
	"mm": 25.4,
	"px": 96,
	"":   96,
}

// vmlLengthToInches converts a VML length such as "72pt" or "1.5in".
func vmlLengthToInches(s string) float64 {
	num := strings.TrimRightFunc(s, func(r rune) bool { return r >= 'a' && r <= 'z' })
	perInch, ok := vmlUnitsPerInch[s[len(num):]]
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v / perInch
}

func emuToInches(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v / emuPerInch
}
