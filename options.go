package docqc

import (
	"log/slog"
	"time"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/docx"
)

// CheckOptions holds configuration for a check run.
type CheckOptions struct {
	config config.Config

	// Rule selection set through the fluent API replaces the lists in config
	enabled    []string
	enabledSet bool
	disabled   []string

	parallelism *int
	timeout     *time.Duration

	logger     *slog.Logger
	clock      func() time.Time
	recognizer docx.TextRecognizer
}

// defaultOptions returns the default check options.
func defaultOptions() CheckOptions {
	return CheckOptions{
		config: config.Default(),
		logger: slog.Default(),
	}
}

// clone creates a deep copy of CheckOptions.
func (o CheckOptions) clone() CheckOptions {
	newOpts := o
	newOpts.config = cloneConfig(o.config)
	newOpts.enabled = append([]string(nil), o.enabled...)
	newOpts.disabled = append([]string(nil), o.disabled...)
	if o.parallelism != nil {
		p := *o.parallelism
		newOpts.parallelism = &p
	}
	if o.timeout != nil {
		t := *o.timeout
		newOpts.timeout = &t
	}
	return newOpts
}

// resolve returns the configuration for a run with fluent overrides applied.
func (o CheckOptions) resolve() config.Config {
	cfg := cloneConfig(o.config)
	if o.enabledSet {
		cfg.EnabledRules = append([]string(nil), o.enabled...)
	}
	cfg.DisabledRules = append(cfg.DisabledRules, o.disabled...)
	if o.parallelism != nil {
		cfg.Parallelism = *o.parallelism
	}
	if o.timeout != nil {
		cfg.RuleTimeout = *o.timeout
	}
	return cfg
}

// cloneConfig copies the slices of a Config so a Checker never shares
// them with its caller.
func cloneConfig(c config.Config) config.Config {
	c.EnabledRules = append([]string(nil), c.EnabledRules...)
	c.DisabledRules = append([]string(nil), c.DisabledRules...)
	c.Margins.Overrides = append([]config.MarginOverride(nil), c.Margins.Overrides...)
	c.Metadata.RequiredFields = append([]string(nil), c.Metadata.RequiredFields...)
	c.Links.AllowedSchemes = append([]string(nil), c.Links.AllowedSchemes...)
	c.Loader.RequiredParts = append([]string(nil), c.Loader.RequiredParts...)
	return c
}
