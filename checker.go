package docqc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/docx"
	"github.com/tsawler/docqc/model"
	"github.com/tsawler/docqc/ocr"
	"github.com/tsawler/docqc/report"
	"github.com/tsawler/docqc/rules"
	"github.com/tsawler/docqc/runner"
)

// Checker provides a fluent interface for checking a DOCX document.
// Each configuration method returns a new Checker instance, making it
// safe for concurrent use and allowing method chaining.
type Checker struct {
	path string

	// Configuration
	options CheckOptions

	// Accumulated error (fail-fast)
	err error
}

// clone creates a shallow copy of the Checker with a deep copy of options.
// This ensures immutability - each chain method returns a new instance.
func (c *Checker) clone() *Checker {
	return &Checker{
		path:    c.path,
		options: c.options.clone(),
		err:     c.err,
	}
}

// Path returns the path of the document being checked.
func (c *Checker) Path() string {
	return c.path
}

// Config returns the configuration a run would use, with every fluent
// override applied.
func (c *Checker) Config() config.Config {
	return c.options.resolve()
}

// WithConfig replaces the whole configuration. Rule selection and
// execution settings applied later in the chain still take precedence.
func (c *Checker) WithConfig(cfg config.Config) *Checker {
	newC := c.clone()
	newC.options.config = cloneConfig(cfg)
	return newC
}

// Rules restricts the run to the given rule IDs. Calling it with no IDs
// selects every known rule.
func (c *Checker) Rules(ids ...string) *Checker {
	newC := c.clone()
	newC.options.enabled = append([]string(nil), ids...)
	newC.options.enabledSet = true
	return newC
}

// Disable removes rule IDs from the run.
func (c *Checker) Disable(ids ...string) *Checker {
	newC := c.clone()
	newC.options.disabled = append(newC.options.disabled, ids...)
	return newC
}

// Parallelism bounds the number of rules evaluated at once. Zero means
// one worker per rule.
func (c *Checker) Parallelism(n int) *Checker {
	newC := c.clone()
	if n < 0 {
		newC.err = fmt.Errorf("%w: parallelism must not be negative", config.ErrInvalidConfig)
		return newC
	}
	newC.options.parallelism = &n
	return newC
}

// Sequential evaluates rules one at a time.
func (c *Checker) Sequential() *Checker {
	return c.Parallelism(1)
}

// Timeout bounds the evaluation of a single rule. Zero disables the bound.
func (c *Checker) Timeout(d time.Duration) *Checker {
	newC := c.clone()
	if d < 0 {
		newC.err = fmt.Errorf("%w: rule timeout must not be negative", config.ErrInvalidConfig)
		return newC
	}
	newC.options.timeout = &d
	return newC
}

// WithLogger sets the logger used by every stage of the run.
func (c *Checker) WithLogger(logger *slog.Logger) *Checker {
	newC := c.clone()
	if logger != nil {
		newC.options.logger = logger
	}
	return newC
}

// WithClock sets the function used to timestamp reports.
func (c *Checker) WithClock(now func() time.Time) *Checker {
	newC := c.clone()
	newC.options.clock = now
	return newC
}

// WithTextRecognizer sets the recognizer used on embedded images. It takes
// precedence over the images.ocr setting.
func (c *Checker) WithTextRecognizer(r docx.TextRecognizer) *Checker {
	newC := c.clone()
	newC.options.recognizer = r
	return newC
}

// ============================================================================
// Terminal Operations
// ============================================================================

// Model loads the document and builds its in-memory model without running
// any rule.
func (c *Checker) Model(ctx context.Context) (*model.Document, error) {
	if c.err != nil {
		return nil, c.err
	}
	cfg := c.options.resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return c.build(ctx, cfg)
}

// Check runs the configured rules and returns the scored report. The error
// is non-nil only when the run as a whole could not happen; rule failures
// are reported as findings.
func (c *Checker) Check(ctx context.Context) (*report.Report, error) {
	if c.err != nil {
		return nil, c.err
	}

	start := time.Now()
	logger := c.options.logger
	cfg := c.options.resolve()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	registry, err := rules.NewRegistry(cfg.EnabledRules, cfg.DisabledRules)
	if err != nil {
		return nil, err
	}

	doc, err := c.build(ctx, cfg)
	if err != nil {
		logger.Error("document could not be loaded", "path", c.path, "error", err)
		return nil, err
	}

	result := runner.New(cfg, runner.WithLogger(logger)).Run(ctx, doc, registry)

	var builderOpts []report.Option
	if c.options.clock != nil {
		builderOpts = append(builderOpts, report.WithClock(c.options.clock))
	}
	rep := report.NewBuilder(cfg.Scoring, builderOpts...).Build(result)

	logger.Info("check complete",
		"path", c.path,
		"rules", registry.Len(),
		"findings", len(rep.Findings),
		"verdict", rep.Verdict,
		"duration", time.Since(start),
	)
	return rep, nil
}

// build runs the loader and model builder.
func (c *Checker) build(ctx context.Context, cfg config.Config) (*model.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := c.options.logger

	opts := []docx.Option{
		docx.WithRequiredParts(cfg.Loader.RequiredParts...),
		docx.WithMaxPartSize(cfg.Loader.MaxPartBytes),
		docx.WithLogger(logger),
	}

	recognizer := c.options.recognizer
	if recognizer == nil && cfg.Images.OCR {
		client, err := ocr.New()
		switch {
		case errors.Is(err, ocr.ErrOCRNotEnabled):
			logger.Warn("image text recognition requested but not available", "error", err)
		case err != nil:
			logger.Warn("image text recognition could not start", "error", err)
		default:
			defer client.Close()
			recognizer = client
		}
	}
	if recognizer != nil {
		opts = append(opts, docx.WithTextRecognizer(recognizer))
	}

	parts, err := docx.Load(c.path, opts...)
	if err != nil {
		return nil, err
	}
	return docx.Build(parts, opts...)
}
