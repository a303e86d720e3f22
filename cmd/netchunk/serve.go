package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/netconfig-mcp/internal/mcp"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = a.cfg.DBPath
			}

			chunk, err := a.cfg.NewChunker()
			if err != nil {
				return err
			}
			detector, err := a.cfg.NewDetector()
			if err != nil {
				return err
			}

			server, err := mcp.Open(dbPath,
				mcp.WithLogger(a.log),
				mcp.WithChunker(chunk),
				mcp.WithDetector(detector),
				mcp.WithWorkers(a.cfg.Workers),
			)
			if err != nil {
				return fmt.Errorf("failed to create MCP server: %w", err)
			}
			defer func() { _ = server.Close() }()

			ctx := cmd.Context()
			if err := server.Serve(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("db", "", "SQLite chunk store (default from settings)")
	return cmd
}
