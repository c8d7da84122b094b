package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/internal/testdocx"
)

// execute runs the root command and returns stdout, stderr and the exit code.
func execute(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), exitCode(err)
}

func TestCheck_Pass(t *testing.T) {
	path := testdocx.Clean().Write(t)

	stdout, _, code := execute(t, "check", "--format", "json", path)

	assert.Equal(t, exitOK, code)
	var rep map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &rep))
	assert.Equal(t, "pass", rep["verdict"])
}

func TestCheck_FailExitCode(t *testing.T) {
	path := testdocx.Flawed().Write(t)

	stdout, _, code := execute(t, "check", path)

	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stdout, "heading level jumps from 1 to 3")
}

func TestCheck_RuleFlags(t *testing.T) {
	path := testdocx.Flawed().Write(t)

	_, _, code := execute(t, "check", "--disable", "heading-hierarchy,margin-consistency,metadata-completeness", path)
	assert.Equal(t, exitOK, code)

	stdout, _, code := execute(t, "check", "--rules", "heading-hierarchy", "--sequential", "--format", "yaml", path)
	assert.Equal(t, exitFailed, code)
	assert.Contains(t, stdout, "verdict: fail")
	assert.NotContains(t, stdout, "margin-consistency")
}

func TestCheck_RunLevelError(t *testing.T) {
	broken := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(broken, []byte("not a zip"), 0644))
	clean := testdocx.Clean().Write(t)

	stdout, stderr, code := execute(t, "check", "--format", "text", broken, clean)

	assert.Equal(t, exitRunFail, code)
	assert.Contains(t, stderr, "broken.docx")
	assert.Contains(t, stdout, "== "+clean+" ==", "the remaining file is still checked")
}

func TestCheck_UnknownRule(t *testing.T) {
	path := testdocx.Clean().Write(t)

	_, stderr, code := execute(t, "check", "--rules", "spell-check", path)

	assert.Equal(t, exitRunFail, code)
	assert.Contains(t, stderr, "spell-check")
}

func TestCheck_BadFormat(t *testing.T) {
	path := testdocx.Clean().Write(t)

	_, _, code := execute(t, "check", "--format", "pdf", path)
	assert.Equal(t, exitRunFail, code)
}

func TestCheck_XLSXOutput(t *testing.T) {
	path := testdocx.Flawed().Write(t)
	out := filepath.Join(t.TempDir(), "report.xlsx")

	stdout, _, code := execute(t, "check", "--format", "xlsx", "--output", out, path)

	assert.Equal(t, exitFailed, code)
	assert.Empty(t, stdout)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "xlsx output should be a zip container")
}

func TestCheck_OutputRequiresSingleFile(t *testing.T) {
	a := testdocx.Clean().Write(t)
	b := testdocx.Clean().Write(t)

	_, _, code := execute(t, "check", "--output", filepath.Join(t.TempDir(), "r.json"), a, b)
	assert.Equal(t, exitRunFail, code)
}

func TestCheck_XLSXRequiresSingleFile(t *testing.T) {
	a := testdocx.Clean().Write(t)
	b := testdocx.Clean().Write(t)

	stdout, _, code := execute(t, "check", "--format", "xlsx", a, b)
	assert.Equal(t, exitRunFail, code)
	assert.Empty(t, stdout, "no partial workbook stream should be written")
}

func TestRulesCmd(t *testing.T) {
	stdout, _, code := execute(t, "rules")

	assert.Equal(t, exitOK, code)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 7)
	assert.Equal(t, "RULE                   CATEGORY", lines[0])
	assert.Equal(t, "heading-hierarchy      structure", lines[1])
	assert.Equal(t, "hyperlink-validity     links", lines[6])
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docqc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rule_timeout: 2s
parallelism: 2
disabled_rules:
  - font-consistency
margins:
  min_points: 50
  max_points: 100
metadata:
  required_fields: [title, company]
server:
  addr: ":9000"
  max_upload_bytes: 1024
`), 0644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.RuleTimeout)
	assert.Equal(t, 2, cfg.Parallelism)
	assert.Equal(t, []string{"font-consistency"}, cfg.DisabledRules)
	assert.Equal(t, 50.0, cfg.Margins.MinPoints)
	assert.Equal(t, 100.0, cfg.Margins.MaxPoints)
	assert.Equal(t, []string{"title", "company"}, cfg.Metadata.RequiredFields)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, int64(1024), cfg.Server.MaxUploadBytes)
	assert.Equal(t, 60, cfg.Scoring.PassThreshold, "absent sections keep their defaults")
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := loadConfig(filepath.Join(dir, "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("margins:\n  min_points: 90\n  max_points: 10\n"), 0644))
	_, err = loadConfig(bad)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))

	garbled := filepath.Join(dir, "garbled.yaml")
	require.NoError(t, os.WriteFile(garbled, []byte("margins: [unclosed\n"), 0644))
	_, err = loadConfig(garbled)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DOCQC_DISABLED_RULES":    "font-consistency, image-resolution,",
		"DOCQC_RULE_TIMEOUT":      "250ms",
		"DOCQC_MIN_DPI":           "300",
		"DOCQC_OCR":               "true",
		"DOCQC_REQUIRED_METADATA": "title,author,subject",
		"DOCQC_ADDR":              ":7000",
	}
	cfg := defaultFileConfig()

	require.NoError(t, applyEnv(&cfg, func(k string) string { return env[k] }))

	assert.Equal(t, []string{"font-consistency", "image-resolution"}, cfg.DisabledRules)
	assert.Equal(t, 250*time.Millisecond, cfg.RuleTimeout)
	assert.Equal(t, 300.0, cfg.Images.MinDPI)
	assert.True(t, cfg.Images.OCR)
	assert.Equal(t, []string{"title", "author", "subject"}, cfg.Metadata.RequiredFields)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestApplyEnv_Invalid(t *testing.T) {
	env := map[string]string{
		"DOCQC_PARALLELISM":  "many",
		"DOCQC_RULE_TIMEOUT": "soon",
	}
	cfg := defaultFileConfig()

	err := applyEnv(&cfg, func(k string) string { return env[k] })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOCQC_PARALLELISM")
	assert.Contains(t, err.Error(), "DOCQC_RULE_TIMEOUT")

	cfg = defaultFileConfig()
	err = applyEnv(&cfg, func(k string) string {
		if k == "DOCQC_PASS_THRESHOLD" {
			return "120"
		}
		return ""
	})
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger(&buf, "info", "json")
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"k":"v"`)

	_, err = newLogger(&buf, "loud", "text")
	assert.Error(t, err)
	_, err = newLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitFailed, exitCode(&exitError{code: exitFailed}))
	assert.Equal(t, exitRunFail, exitCode(errors.New("boom")))
}
