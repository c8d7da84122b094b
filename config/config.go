// Package config holds the single configuration value consumed by a check
// run. The engine never reads files or the environment itself; callers
// (the CLI, the HTTP server) build a Config and pass it in.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidConfig is returned by Validate for out-of-range values.
var ErrInvalidConfig = errors.New("docqc: invalid configuration")

// Config holds all configuration for a check run.
type Config struct {
	// EnabledRules lists the rule IDs to run. Empty means every known rule.
	EnabledRules []string `json:"enabled_rules" yaml:"enabled_rules"`
	// DisabledRules is subtracted from the enabled set.
	DisabledRules []string `json:"disabled_rules" yaml:"disabled_rules"`

	// RuleTimeout bounds the evaluation of a single rule. Zero disables it.
	RuleTimeout time.Duration `json:"rule_timeout" yaml:"rule_timeout"`
	// Parallelism bounds concurrent rule evaluation. Zero means one worker
	// per rule, one means sequential.
	Parallelism int `json:"parallelism" yaml:"parallelism"`

	Margins  MarginConfig   `json:"margins" yaml:"margins"`
	Fonts    FontConfig     `json:"fonts" yaml:"fonts"`
	Images   ImageConfig    `json:"images" yaml:"images"`
	Metadata MetadataConfig `json:"metadata" yaml:"metadata"`
	Links    LinkConfig     `json:"links" yaml:"links"`
	Scoring  ScoringConfig  `json:"scoring" yaml:"scoring"`
	Loader   LoaderConfig   `json:"loader" yaml:"loader"`
}

// MarginConfig configures the margin-consistency rule. Values are points
// and apply to each of the four page margins.
type MarginConfig struct {
	MinPoints float64          `json:"min_points" yaml:"min_points"`
	MaxPoints float64          `json:"max_points" yaml:"max_points"`
	Overrides []MarginOverride `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// MarginOverride replaces the document bounds for one section.
type MarginOverride struct {
	Section   int     `json:"section" yaml:"section"`
	MinPoints float64 `json:"min_points" yaml:"min_points"`
	MaxPoints float64 `json:"max_points" yaml:"max_points"`
}

// Bounds returns the margin bounds for a section and whether they come from an override.
func (m MarginConfig) Bounds(section int) (min, max float64, override bool) {
	for _, o := range m.Overrides {
		if o.Section == section {
			return o.MinPoints, o.MaxPoints, true
		}
	}
	return m.MinPoints, m.MaxPoints, false
}

// FontConfig configures the font-consistency rule.
type FontConfig struct {
	MaxDistinctPairs int `json:"max_distinct_pairs" yaml:"max_distinct_pairs"`
}

// ImageConfig configures the image-resolution rule.
type ImageConfig struct {
	MinDPI         float64 `json:"min_dpi" yaml:"min_dpi"`
	RequireAltText bool    `json:"require_alt_text" yaml:"require_alt_text"`
	// OCR runs text recognition on embedded images while the model is
	// built. Requires a binary built with the "ocr" tag.
	OCR bool `json:"ocr" yaml:"ocr"`
}

// MetadataConfig configures the metadata-completeness rule.
type MetadataConfig struct {
	// RequiredFields names metadata fields that must be non-empty. Known
	// names: title, author, subject, keywords, description, created,
	// modified, last_modified_by, company. A "custom:" prefix names a
	// custom document property.
	RequiredFields []string `json:"required_fields" yaml:"required_fields"`
}

// LinkConfig configures the hyperlink-validity rule.
type LinkConfig struct {
	AllowedSchemes []string `json:"allowed_schemes" yaml:"allowed_schemes"`
}

// ScoringConfig configures the report scorer.
type ScoringConfig struct {
	ErrorPenalty   int `json:"error_penalty" yaml:"error_penalty"`
	WarningPenalty int `json:"warning_penalty" yaml:"warning_penalty"`
	PassThreshold  int `json:"pass_threshold" yaml:"pass_threshold"`
}

// LoaderConfig configures the document loader.
type LoaderConfig struct {
	// RequiredParts lists container parts whose absence fails the load.
	// Empty means every whitelisted part is required.
	RequiredParts []string `json:"required_parts" yaml:"required_parts"`
	// MaxPartBytes caps the decompressed size of any single part.
	MaxPartBytes int64 `json:"max_part_bytes" yaml:"max_part_bytes"`
}

// Default returns a Config with the stock thresholds.
func Default() Config {
	return Config{
		RuleTimeout: 5 * time.Second,
		Margins: MarginConfig{
			MinPoints: 36,  // 0.5in
			MaxPoints: 108, // 1.5in
		},
		Fonts: FontConfig{
			MaxDistinctPairs: 4,
		},
		Images: ImageConfig{
			MinDPI:         150,
			RequireAltText: true,
		},
		Metadata: MetadataConfig{
			RequiredFields: []string{"title", "author"},
		},
		Links: LinkConfig{
			AllowedSchemes: []string{"http", "https", "mailto", "ftp", "tel"},
		},
		Scoring: ScoringConfig{
			ErrorPenalty:   20,
			WarningPenalty: 5,
			PassThreshold:  60,
		},
		Loader: LoaderConfig{
			MaxPartBytes: 64 << 20,
		},
	}
}

// Validate checks the configuration for out-of-range values.
func (c Config) Validate() error {
	var problems []string

	if c.RuleTimeout < 0 {
		problems = append(problems, "rule_timeout must not be negative")
	}
	if c.Parallelism < 0 {
		problems = append(problems, "parallelism must not be negative")
	}
	if c.Margins.MinPoints < 0 || c.Margins.MaxPoints < 0 {
		problems = append(problems, "margin bounds must not be negative")
	}
	if c.Margins.MaxPoints < c.Margins.MinPoints {
		problems = append(problems, "margins.max_points is below margins.min_points")
	}
	for _, o := range c.Margins.Overrides {
		if o.MaxPoints < o.MinPoints || o.MinPoints < 0 {
			problems = append(problems, fmt.Sprintf("margin override for section %d has invalid bounds", o.Section))
		}
	}
	if c.Fonts.MaxDistinctPairs < 0 {
		problems = append(problems, "fonts.max_distinct_pairs must not be negative")
	}
	if c.Images.MinDPI < 0 {
		problems = append(problems, "images.min_dpi must not be negative")
	}
	if c.Scoring.ErrorPenalty < 0 || c.Scoring.WarningPenalty < 0 {
		problems = append(problems, "scoring penalties must not be negative")
	}
	if c.Scoring.PassThreshold < 0 || c.Scoring.PassThreshold > 100 {
		problems = append(problems, "scoring.pass_threshold must be within [0,100]")
	}
	if c.Loader.MaxPartBytes < 0 {
		problems = append(problems, "loader.max_part_bytes must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
