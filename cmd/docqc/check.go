package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tsawler/docqc"
	"github.com/tsawler/docqc/report"
)

type checkOptions struct {
	format     string
	output     string
	rules      []string
	disable    []string
	sequential bool
	timeout    time.Duration
}

func newCheckCmd(a *app) *cobra.Command {
	var opts checkOptions

	cmd := &cobra.Command{
		Use:   "check [flags] FILE...",
		Short: "Check one or more documents and print their reports",
		Long: "Check one or more .docx documents and print a report for each.\n\n" +
			"Exit status is 0 when every report passes, 1 when any report fails\n" +
			"or has the error verdict, and 2 when a document could not be checked.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCheck(cmd.Context(), cmd, opts, args)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.format, "format", "f", "text", "report format: json, yaml, text, xlsx")
	flags.StringVarP(&opts.output, "output", "o", "", "write the report to a file instead of stdout")
	flags.StringSliceVar(&opts.rules, "rules", nil, "rule IDs to run (default: all)")
	flags.StringSliceVar(&opts.disable, "disable", nil, "rule IDs to skip")
	flags.BoolVar(&opts.sequential, "sequential", false, "evaluate rules one at a time")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-rule timeout (default from config)")
	return cmd
}

func (a *app) runCheck(ctx context.Context, cmd *cobra.Command, opts checkOptions, paths []string) error {
	ctx = contextOrBackground(ctx)
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return &exitError{code: exitRunFail, err: err}
	}
	if opts.output != "" && len(paths) > 1 {
		return &exitError{code: exitRunFail, err: errors.New("--output accepts a single input file")}
	}
	if format == report.FormatXLSX && len(paths) > 1 {
		return &exitError{code: exitRunFail, err: errors.New("xlsx format accepts a single input file")}
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		f, err := os.Create(opts.output)
		if err != nil {
			return &exitError{code: exitRunFail, err: err}
		}
		defer f.Close()
		out = f
	}

	newChecker := func(path string) *docqc.Checker {
		c := docqc.Open(path).WithConfig(a.cfg.Config).WithLogger(a.logger)
		if cmd.Flags().Changed("rules") {
			c = c.Rules(opts.rules...)
		}
		if len(opts.disable) > 0 {
			c = c.Disable(opts.disable...)
		}
		if opts.sequential {
			c = c.Sequential()
		}
		if cmd.Flags().Changed("timeout") {
			c = c.Timeout(opts.timeout)
		}
		return c
	}

	code := exitOK
	for i, path := range paths {
		rep, err := newChecker(path).Check(ctx)
		if err != nil {
			a.logger.Error("document could not be checked", "path", path, "error", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			code = exitRunFail
			continue
		}

		if err := writeReport(out, rep, format, path, i, len(paths)); err != nil {
			return &exitError{code: exitRunFail, err: err}
		}
		if !rep.Passed() && code == exitOK {
			code = exitFailed
		}
	}

	if code != exitOK {
		return &exitError{code: code}
	}
	return nil
}

// writeReport writes one report, separating reports when several files
// are checked.
func writeReport(w io.Writer, rep *report.Report, format report.Format, path string, i, n int) error {
	if n > 1 {
		switch format {
		case report.FormatText:
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "== %s ==\n", path)
		case report.FormatYAML:
			if i > 0 {
				fmt.Fprintln(w, "---")
			}
			fmt.Fprintf(w, "# %s\n", path)
		}
	}
	return rep.Write(w, format)
}
