package rules

import (
	"fmt"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/model"
)

// ImageResolution checks every image in the document. An image whose part
// is not embedded is an error; one below the minimum effective DPI is a
// warning carrying the measured value. Missing alternative text is
// informational.
type ImageResolution struct{}

func (ImageResolution) ID() string { return "image-resolution" }

func (ImageResolution) Category() model.Category { return model.CategoryMedia }

func (r ImageResolution) Evaluate(doc *model.Document, cfg config.Config) ([]model.Finding, error) {
	var findings []model.Finding

	for _, li := range doc.Images() {
		img, loc := li.Image, li.Location

		if img.Missing {
			findings = append(findings, newFinding(r, model.SeverityError, loc,
				fmt.Sprintf("image %s is not embedded in the document", imageLabel(img)),
				map[string]any{"source": img.Source, "name": img.Name}))
			continue
		}

		switch {
		case img.DPI == 0:
			findings = append(findings, newFinding(r, model.SeverityInfo, loc,
				fmt.Sprintf("resolution of image %s could not be measured", imageLabel(img)),
				map[string]any{"source": img.Source, "format": img.Format}))
		case img.DPI < cfg.Images.MinDPI:
			findings = append(findings, newFinding(r, model.SeverityWarning, loc,
				fmt.Sprintf("image %s has an effective resolution of %.0f DPI, below the minimum of %.0f",
					imageLabel(img), img.DPI, cfg.Images.MinDPI),
				map[string]any{
					"measured_dpi":   img.DPI,
					"min_dpi":        cfg.Images.MinDPI,
					"pixel_width":    img.PixelWidth,
					"pixel_height":   img.PixelHeight,
					"display_width":  img.DisplayWidth,
					"display_height": img.DisplayHeight,
				}))
		}

		if cfg.Images.RequireAltText && img.AltText == "" {
			msg := fmt.Sprintf("image %s has no alternative text", imageLabel(img))
			detail := map[string]any{"source": img.Source}
			if img.Text != "" {
				msg += fmt.Sprintf(" (it appears to contain text: %q)", img.Text)
				detail["detected_text"] = img.Text
			}
			findings = append(findings, newFinding(r, model.SeverityInfo, loc, msg, detail))
		}
	}

	return findings, nil
}

func imageLabel(img *model.Image) string {
	switch {
	case img.Name != "":
		return fmt.Sprintf("%q", img.Name)
	case img.Source != "":
		return img.Source
	}
	return "(unnamed)"
}
