// Package report turns the findings of a check run into a scored, immutable
// Report and serializes it.
//
// Each category that had at least one rule executed receives a score: 100
// minus a penalty per error and per warning finding, clamped to [0,100].
// The verdict is fail when any score is below the pass threshold or any
// error finding exists, pass otherwise, and error when no rule ran at all.
package report

import (
	"time"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/model"
	"github.com/tsawler/docqc/runner"
)

// Verdict is the overall outcome of a run.
type Verdict string

const (
	VerdictPass  Verdict = "pass"
	VerdictFail  Verdict = "fail"
	VerdictError Verdict = "error"
)

// EngineRuleID attributes findings produced by the engine itself rather
// than by a rule.
const EngineRuleID = "docqc"

// Summary counts findings by severity.
type Summary struct {
	Errors   int `json:"error" yaml:"error"`
	Warnings int `json:"warning" yaml:"warning"`
	Infos    int `json:"info" yaml:"info"`
}

// Total returns the number of findings.
func (s Summary) Total() int {
	return s.Errors + s.Warnings + s.Infos
}

// CategoryScore is the score of one category.
type CategoryScore struct {
	Category model.Category
	Score    int
	Errors   int
	Warnings int
}

// Report is the result of one check run. It is not modified after Build
// returns it.
type Report struct {
	Verdict Verdict
	Summary Summary
	// Categories holds one entry per category with an executed rule, in
	// category order.
	Categories  []CategoryScore
	Findings    []model.Finding
	Rules       []string
	GeneratedAt time.Time
}

// Passed reports whether the verdict is pass.
func (r *Report) Passed() bool {
	return r.Verdict == VerdictPass
}

// Score returns the score of a category and whether it was scored.
func (r *Report) Score(c model.Category) (int, bool) {
	for _, cs := range r.Categories {
		if cs.Category == c {
			return cs.Score, true
		}
	}
	return 0, false
}

// Builder scores run results.
type Builder struct {
	scoring config.ScoringConfig
	now     func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the clock used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBuilder creates a Builder with the given penalties and threshold.
func NewBuilder(scoring config.ScoringConfig, opts ...Option) *Builder {
	b := &Builder{
		scoring: scoring,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build scores a run result. A run in which no rule executed yields the
// error verdict with a single finding saying so, never an empty pass.
func (b *Builder) Build(result runner.Result) *Report {
	r := &Report{
		GeneratedAt: b.now().UTC(),
	}

	if len(result.Rules) == 0 {
		r.Verdict = VerdictError
		r.Findings = []model.Finding{{
			Rule:     EngineRuleID,
			Severity: model.SeverityError,
			Message:  "no checks ran: no rules are enabled",
			Location: model.DocumentLocation(),
		}}
		r.Summary.Errors = 1
		return r
	}

	r.Findings = append([]model.Finding(nil), result.Findings...)

	executed := make(map[model.Category]bool)
	for _, run := range result.Rules {
		r.Rules = append(r.Rules, run.ID)
		executed[run.Category] = true
	}

	scores := make(map[model.Category]*CategoryScore)
	for _, c := range model.Categories() {
		if executed[c] {
			scores[c] = &CategoryScore{Category: c}
		}
	}

	for _, f := range r.Findings {
		cs := scores[f.Category]
		switch f.Severity {
		case model.SeverityError:
			r.Summary.Errors++
			if cs != nil {
				cs.Errors++
			}
		case model.SeverityWarning:
			r.Summary.Warnings++
			if cs != nil {
				cs.Warnings++
			}
		default:
			r.Summary.Infos++
		}
	}

	r.Verdict = VerdictPass
	if r.Summary.Errors > 0 {
		r.Verdict = VerdictFail
	}
	for _, c := range model.Categories() {
		cs, ok := scores[c]
		if !ok {
			continue
		}
		cs.Score = b.Score(cs.Errors, cs.Warnings)
		if cs.Score < b.scoring.PassThreshold {
			r.Verdict = VerdictFail
		}
		r.Categories = append(r.Categories, *cs)
	}

	return r
}

// Score applies the penalties to a perfect score and clamps the result
// to [0,100].
func (b *Builder) Score(errors, warnings int) int {
	score := 100 - errors*b.scoring.ErrorPenalty - warnings*b.scoring.WarningPenalty
	return min(max(score, 0), 100)
}
