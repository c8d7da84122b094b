// Package docqc provides a fluent API for checking DOCX documents against
// quality-control rules.
//
// Basic usage:
//
//	rep, err := docqc.Open("report.docx").Check(ctx)
//	if err != nil {
//	    // the document could not be loaded
//	}
//	fmt.Println(rep.Verdict)
//
// With options:
//
//	rep, err := docqc.Open("report.docx").
//	    WithConfig(cfg).
//	    Disable("font-consistency").
//	    Sequential().
//	    Check(ctx)
//
// A run either returns a complete report or a single run-level error
// (a corrupt container, a missing or malformed part, a dangling reference,
// an unknown rule ID). Failures inside individual rules never surface as
// errors; they become findings in the report.
//
// The lower-level docx, rules, runner and report packages are available
// for callers that need finer control.
package docqc

import (
	"context"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/report"
)

// Version is the engine version reported by the delivery shells.
const Version = "1.0.0"

// Open returns a Checker for the document at path.
//
// Example:
//
//	rep, err := docqc.Open("document.docx").Check(ctx)
func Open(path string) *Checker {
	return &Checker{
		path:    path,
		options: defaultOptions(),
	}
}

// Check runs every configured rule against the document at path.
func Check(ctx context.Context, path string, cfg config.Config) (*report.Report, error) {
	return Open(path).WithConfig(cfg).Check(ctx)
}

// Must is a helper that wraps a call to a function returning (T, error)
// and panics if the error is non-nil. It is intended for use in scripts
// or tests where error handling would be cumbersome.
//
// Example:
//
//	rep := docqc.Must(docqc.Open("document.docx").Check(ctx))
func Must[T any](val T, err error) T {
	if err != nil {
		panic(err)
	}
	return val
}
