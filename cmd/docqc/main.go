// Command docqc checks DOCX documents against quality-control rules.
//
// Usage:
//
//	docqc check [flags] FILE...
//	docqc rules
//	docqc serve [flags]
//	docqc mcp
//
// check exits with status 1 when any report is not a pass and 2 when a
// document could not be checked at all.
package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailed  = 1
	exitRunFail = 2
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// exitCode maps a command error to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitRunFail
}

func main() {
	cmd := newRootCmd()
	err := cmd.Execute()
	var ee *exitError
	if err != nil && (!errors.As(err, &ee) || ee.err != nil) {
		fmt.Fprintln(os.Stderr, "docqc:", err)
	}
	os.Exit(exitCode(err))
}
