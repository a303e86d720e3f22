package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dshills/netconfig-mcp/internal/config"
)

var version = "0.1.0"

// app carries the settings shared by every subcommand
type app struct {
	settings  string
	logLevel  string
	logFormat string

	cfg *config.Config
	log *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "netchunk",
		Short: "Segment network device configurations into chunks",
		Long: `netchunk splits network device configurations into self-contained chunks.

Each top-level stanza (interface, router, route-map, ...) becomes an explicit
chunk and the lines between stanzas become global chunks. Chunk sets can be
written as JSON, stored for search, mirrored to MongoDB, and merged back
into configuration text.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.settings, "settings", "", "YAML settings file (default ./config.yaml if present)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	// Add subcommands
	rootCmd.AddCommand(a.chunkCmd())
	rootCmd.AddCommand(a.mergeCmd())
	rootCmd.AddCommand(a.detectCmd())
	rootCmd.AddCommand(a.dialectsCmd())
	rootCmd.AddCommand(a.serveCmd())

	return rootCmd
}

// load reads settings and applies the global flag overrides
func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{File: a.settings})
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}
