package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tsawler/docqc"
	"github.com/tsawler/docqc/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr      string
		uploadDir string
		maxUpload int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the checker over HTTP",
		Long: "Serve the checker over HTTP.\n\n" +
			"POST /api/check accepts a multipart upload in the \"file\" field and\n" +
			"returns the report as JSON. GET /api/health reports liveness.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Server
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("upload-dir") {
				cfg.UploadDir = uploadDir
			}
			if cmd.Flags().Changed("max-upload") {
				cfg.MaxUploadBytes = maxUpload
			}
			cfg.Version = docqc.Version
			cfg.Check = a.cfg.Config

			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, server.WithLogger(a.logger)).Start(ctx)
		},
	}

	defaults := server.DefaultConfig()
	flags := cmd.Flags()
	flags.StringVar(&addr, "addr", defaults.Addr, "listen address")
	flags.StringVar(&uploadDir, "upload-dir", "", "directory for uploads in flight (default: system temp dir)")
	flags.Int64Var(&maxUpload, "max-upload", defaults.MaxUploadBytes, "maximum request body size in bytes")
	return cmd
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
