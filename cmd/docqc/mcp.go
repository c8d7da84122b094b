package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/tsawler/docqc"
	"github.com/tsawler/docqc/internal/mcptool"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the check_document tool over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := mcptool.NewServer(docqc.Version, mcptool.NewTools(a.cfg.Config, a.logger))
			a.logger.Info("serving MCP on stdio", "version", docqc.Version)
			return server.Run(ctx, &mcp.StdioTransport{})
		},
	}
}
