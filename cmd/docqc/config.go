package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/tsawler/docqc/config"
	"github.com/tsawler/docqc/internal/server"
)

// envPrefix prefixes every environment override.
const envPrefix = "DOCQC_"

// fileConfig is the layout of the YAML config file: the check settings at
// the top level plus a server section.
type fileConfig struct {
	config.Config `yaml:",inline"`
	Server        server.Config `yaml:"server"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Config: config.Default(),
		Server: server.DefaultConfig(),
	}
}

// loadConfig reads a YAML config file over the defaults.
func loadConfig(path string) (fileConfig, error) {
	cfg := defaultFileConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// applyEnv overrides configuration values from DOCQC_* environment variables.
func applyEnv(cfg *fileConfig, getenv func(string) string) error {
	var errs []string
	env := func(name string) string {
		return strings.TrimSpace(getenv(envPrefix + name))
	}
	setInt := func(name string, dst *int) {
		if v := env(name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	setFloat := func(name string, dst *float64) {
		if v := env(name); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", envPrefix, name, err))
				return
			}
			*dst = f
		}
	}
	setBool := func(name string, dst *bool) {
		if v := env(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s%s: %v", envPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	setList := func(name string, dst *[]string) {
		if v := env(name); v != "" {
			*dst = splitList(v)
		}
	}

	setList("ENABLED_RULES", &cfg.EnabledRules)
	setList("DISABLED_RULES", &cfg.DisabledRules)
	if v := env("RULE_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sRULE_TIMEOUT: %v", envPrefix, err))
		} else {
			cfg.RuleTimeout = d
		}
	}
	setInt("PARALLELISM", &cfg.Parallelism)
	setFloat("MARGIN_MIN_POINTS", &cfg.Margins.MinPoints)
	setFloat("MARGIN_MAX_POINTS", &cfg.Margins.MaxPoints)
	setInt("MAX_FONT_PAIRS", &cfg.Fonts.MaxDistinctPairs)
	setFloat("MIN_DPI", &cfg.Images.MinDPI)
	setBool("REQUIRE_ALT_TEXT", &cfg.Images.RequireAltText)
	setBool("OCR", &cfg.Images.OCR)
	setList("REQUIRED_METADATA", &cfg.Metadata.RequiredFields)
	setList("ALLOWED_SCHEMES", &cfg.Links.AllowedSchemes)
	setInt("PASS_THRESHOLD", &cfg.Scoring.PassThreshold)

	if v := env("ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := env("UPLOAD_DIR"); v != "" {
		cfg.Server.UploadDir = v
	}
	if v := env("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%sMAX_UPLOAD_BYTES: %v", envPrefix, err))
		} else {
			cfg.Server.MaxUploadBytes = n
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid environment: %s", strings.Join(errs, "; "))
	}
	return cfg.Validate()
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
