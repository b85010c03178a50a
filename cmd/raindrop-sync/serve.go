package main

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
)

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run an MCP server over stdio exposing the sync commands as tools",
		Long: `serve runs a Model Context Protocol server on stdin/stdout. Each sync
command is a tool; notices are returned in the tool result instead of
being printed. Settings are read when the server starts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Notices go into tool results; stdout belongs to the protocol.
			svc, closeFn, err := a.service(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer closeFn()

			cfg, err := a.store.Load()
			if err != nil {
				return err
			}

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "raindrop-sync",
				Version: version,
			}, nil)
			h := &handlers{svc: svc, remote: a.client(cfg), store: a.store}
			registerTools(server, h)

			if err := server.Run(cmd.Context(), &mcp.StdioTransport{}); err != nil {
				return fmt.Errorf("error running server: %w", err)
			}
			return nil
		},
	}
}
