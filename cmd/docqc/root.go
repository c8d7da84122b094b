package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tsawler/docqc"
)

// app holds state shared by every subcommand once flags are parsed.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    fileConfig
	logger *slog.Logger
	getenv func(string) string
}

func newRootCmd() *cobra.Command {
	a := &app{getenv: os.Getenv}

	cmd := &cobra.Command{
		Use:           "docqc",
		Short:         "Check DOCX documents against quality-control rules",
		Version:       docqc.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "text", "log format: text or json")

	cmd.AddCommand(
		newCheckCmd(a),
		newRulesCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
	)
	return cmd
}

// setup configures logging and loads the configuration: defaults, then the
// config file, then DOCQC_* environment variables. Subcommand flags are
// applied on top by each command.
func (a *app) setup(logOut io.Writer) error {
	logger, err := newLogger(logOut, a.logLevel, a.logFormat)
	if err != nil {
		return err
	}
	a.logger = logger
	slog.SetDefault(logger)

	cfg := defaultFileConfig()
	if a.configPath != "" {
		if cfg, err = loadConfig(a.configPath); err != nil {
			return err
		}
	}
	if err := applyEnv(&cfg, a.getenv); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// newLogger builds the process logger. Logs always go to logOut so that
// stdout stays free for reports and the MCP protocol.
func newLogger(logOut io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(logOut, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(logOut, opts)), nil
	default:
		return nil, fmt.Errorf("invalid --log-format %q (want text or json)", format)
	}
}
