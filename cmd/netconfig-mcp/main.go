package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/netconfig-mcp/internal/config"
	"github.com/dshills/netconfig-mcp/internal/logger"
	"github.com/dshills/netconfig-mcp/internal/mcp"
	"github.com/dshills/netconfig-mcp/internal/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Handle version flag
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		fmt.Printf("NetConfig MCP Server\n")
		fmt.Printf("Version: %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", storage.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", storage.DriverName)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "netconfig-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Options{File: os.Getenv(config.EnvPrefix + "CONFIG_FILE")})
	if err != nil {
		return err
	}

	// Log to stderr (stdout reserved for MCP protocol)
	log, err := cfg.NewLogger(os.Stderr)
	if err != nil {
		return err
	}
	log.Info("starting",
		slog.String("version", version),
		slog.String("build_mode", storage.BuildMode),
		slog.String("driver", storage.DriverName),
		slog.String("db_path", cfg.DBPath))

	chunk, err := cfg.NewChunker()
	if err != nil {
		return err
	}
	detector, err := cfg.NewDetector()
	if err != nil {
		return err
	}

	server, err := mcp.Open(cfg.DBPath,
		mcp.WithLogger(log),
		mcp.WithChunker(chunk),
		mcp.WithDetector(detector),
		mcp.WithWorkers(cfg.Workers),
	)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer func() { _ = server.Close() }()

	// Set up graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx); err != nil && ctx.Err() == nil {
		log.Error("server error", logger.Error(err))
		return err
	}

	log.Info("server stopped")
	return nil
}
