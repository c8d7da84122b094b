// Package runner evaluates the enabled rules against one document model.
//
// Every rule runs in isolation: a returned error, a panic or an exceeded
// timeout becomes a synthetic error-severity finding for that rule and the
// remaining rules still run. The result is ordered by rule registration
// order, then by document location, so it does not depend on which rule
// finished first.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/model"
	"github.com/tsawler/docqc/rules"
)

// Failure reasons recorded in synthetic findings.
const (
	ReasonError    = "error"
	ReasonPanic    = "panic"
	ReasonTimeout  = "timeout"
	ReasonCanceled = "canceled"
)

// RuleSet is an ordered collection of rules. *rules.Registry satisfies it.
type RuleSet interface {
	Rules() []rules.Rule
}

// RuleRun describes one executed rule.
type RuleRun struct {
	ID       string
	Category model.Category
	Findings int
	Duration time.Duration
	Failed   bool
}

// Failure records a rule that did not complete normally.
type Failure struct {
	Rule   string
	Reason string
	Err    error
}

// Result is the outcome of one run.
type Result struct {
	Findings []model.Finding
	// Rules lists every rule that was dispatched, in registration order.
	Rules    []RuleRun
	Failures []Failure
}

// Runner dispatches rules. It holds no state between runs and may be used
// concurrently.
type Runner struct {
	cfg    config.Config
	logger *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for rule failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a Runner for the given configuration.
func New(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run evaluates every rule in set against doc. It always returns a
// complete Result: cancelling ctx turns the rules that have not finished
// into synthetic findings instead of aborting the run.
func (r *Runner) Run(ctx context.Context, doc *model.Document, set RuleSet) Result {
	var list []rules.Rule
	if set != nil {
		list = set.Rules()
	}
	if len(list) == 0 {
		return Result{}
	}

	limit := r.cfg.Parallelism
	if limit <= 0 || limit > len(list) {
		limit = len(list)
	}

	outcomes := make([]outcome, len(list))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, rule := range list {
		g.Go(func() error {
			outcomes[i] = r.evaluate(ctx, rule, doc)
			return nil
		})
	}
	_ = g.Wait()

	var result Result
	for i, o := range outcomes {
		result.Rules = append(result.Rules, RuleRun{
			ID:       list[i].ID(),
			Category: list[i].Category(),
			Findings: len(o.findings),
			Duration: o.duration,
			Failed:   o.failure != nil,
		})
		if o.failure != nil {
			result.Failures = append(result.Failures, *o.failure)
		}
		result.Findings = append(result.Findings, o.findings...)
	}

	order := make(map[string]int, len(list))
	for i, rule := range list {
		order[rule.ID()] = i
	}
	sort.SliceStable(result.Findings, func(i, j int) bool {
		a, b := result.Findings[i], result.Findings[j]
		if order[a.Rule] != order[b.Rule] {
			return order[a.Rule] < order[b.Rule]
		}
		return a.Location.Compare(b.Location) < 0
	})

	r.logger.Debug("rules evaluated",
		"rules", len(list),
		"parallelism", limit,
		"findings", len(result.Findings),
		"failures", len(result.Failures))

	return result
}

type outcome struct {
	findings []model.Finding
	failure  *Failure
	duration time.Duration
}

type evaluation struct {
	findings []model.Finding
	err      error
	panicked any
	stack    []byte
}

// evaluate runs one rule under the per-rule timeout. A rule that times out
// is abandoned, not stopped: its goroutine finishes in the background and
// its result is discarded.
func (r *Runner) evaluate(ctx context.Context, rule rules.Rule, doc *model.Document) outcome {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return r.fail(rule, ReasonCanceled, err, start)
	}

	rctx, cancel := ctx, context.CancelFunc(func() {})
	if r.cfg.RuleTimeout > 0 {
		rctx, cancel = context.WithTimeout(ctx, r.cfg.RuleTimeout)
	}
	defer cancel()

	done := make(chan evaluation, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- evaluation{panicked: p, stack: debug.Stack()}
			}
		}()
		findings, err := rule.Evaluate(doc, r.cfg)
		done <- evaluation{findings: findings, err: err}
	}()

	select {
	case ev := <-done:
		switch {
		case ev.panicked != nil:
			r.logger.Warn("rule panicked", "rule", rule.ID(), "panic", ev.panicked, "stack", string(ev.stack))
			return r.fail(rule, ReasonPanic, fmt.Errorf("panic: %v", ev.panicked), start)
		case ev.err != nil:
			return r.fail(rule, ReasonError, ev.err, start)
		}
		return outcome{findings: attribute(rule, ev.findings), duration: time.Since(start)}

	case <-rctx.Done():
		err := rctx.Err()
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return r.fail(rule, ReasonTimeout, fmt.Errorf("exceeded %s", r.cfg.RuleTimeout), start)
		}
		return r.fail(rule, ReasonCanceled, err, start)
	}
}

// fail converts a rule failure into a synthetic finding.
func (r *Runner) fail(rule rules.Rule, reason string, err error, start time.Time) outcome {
	if reason != ReasonPanic {
		r.logger.Warn("rule failed", "rule", rule.ID(), "reason", reason, "error", err)
	}
	return outcome{
		findings: []model.Finding{{
			Rule:     rule.ID(),
			Category: rule.Category(),
			Severity: model.SeverityError,
			Message:  fmt.Sprintf("rule %s could not complete (%s): %v", rule.ID(), reason, err),
			Location: model.DocumentLocation(),
			Detail: map[string]any{
				"reason": reason,
				"error":  err.Error(),
			},
		}},
		failure:  &Failure{Rule: rule.ID(), Reason: reason, Err: err},
		duration: time.Since(start),
	}
}

// attribute stamps the rule's identity on its findings so a finding is
// always scored under the category of the rule that produced it.
func attribute(rule rules.Rule, findings []model.Finding) []model.Finding {
	for i := range findings {
		findings[i].Rule = rule.ID()
		findings[i].Category = rule.Category()
	}
	return findings
}
