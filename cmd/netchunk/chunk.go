package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/netconfig-mcp/internal/dialect"
	"github.com/dshills/netconfig-mcp/internal/docstore"
	"github.com/dshills/netconfig-mcp/internal/indexer"
	"github.com/dshills/netconfig-mcp/internal/logger"
	"github.com/dshills/netconfig-mcp/internal/storage"
)

// DefaultChunkDir receives <device>.json chunk files
const DefaultChunkDir = "config_chunks"

func (a *app) chunkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chunk",
		Short: "Chunk configuration files",
		Long: `Chunk one configuration file or every .cfg file in a directory.

The dialect of each file comes from --os-type, then --os-map (keyed by file
name or device name), then detection. Detection runs with --detect-os, or
when neither --os-type nor --os-map is given.

Example:
  netchunk chunk --config-dir configs --os-type ios
  netchunk chunk --config configs/R1.cfg --detect-os --db netconfig.db
  netchunk chunk --os-map os_map.json --mongo-dump --dry-run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			configDir, _ := cmd.Flags().GetString("config-dir")
			osType, _ := cmd.Flags().GetString("os-type")
			osMap, _ := cmd.Flags().GetString("os-map")
			detect, _ := cmd.Flags().GetBool("detect-os")
			outDir, _ := cmd.Flags().GetString("out-dir")
			dbPath, _ := cmd.Flags().GetString("db")
			force, _ := cmd.Flags().GetBool("force")
			workers, _ := cmd.Flags().GetInt("workers")
			mongoDump, _ := cmd.Flags().GetBool("mongo-dump")
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			mongoCfg := a.cfg.Mongo
			if v, _ := cmd.Flags().GetString("mongo-uri"); v != "" {
				mongoCfg.URI = v
			}
			if v, _ := cmd.Flags().GetString("mongo-db"); v != "" {
				mongoCfg.Database = v
			}
			if v, _ := cmd.Flags().GetString("collection"); v != "" {
				mongoCfg.Collection = v
			}
			if workers <= 0 {
				workers = a.cfg.Workers
			}

			chunk, err := a.cfg.NewChunker()
			if err != nil {
				return err
			}
			detector, err := a.cfg.NewDetector()
			if err != nil {
				return err
			}

			opts := []indexer.Option{
				indexer.WithRegistry(dialect.NewRegistry()),
				indexer.WithDetector(detector),
				indexer.WithChunker(chunk),
				indexer.WithLogger(a.log),
				indexer.WithWorkers(workers),
			}

			if dbPath != "" {
				store, err := storage.NewSQLiteStorage(dbPath)
				if err != nil {
					return fmt.Errorf("failed to open chunk store: %w", err)
				}
				defer func() { _ = store.Close() }()
				opts = append(opts, indexer.WithStorage(store))
			}

			if mongoDump || dryRun {
				sink, closeSink, err := a.openDocStore(cmd.Context(), mongoCfg, dryRun)
				if err != nil {
					return err
				}
				defer closeSink()
				opts = append(opts, indexer.WithSink(sink))
			}

			stats, err := indexer.New(opts...).Run(cmd.Context(), indexer.Request{
				Config:    configPath,
				ConfigDir: configDir,
				OSType:    osType,
				OSMap:     osMap,
				Detect:    detect,
				OutDir:    outDir,
				Force:     force,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, d := range stats.Devices {
				switch {
				case d.Err != nil:
					fmt.Fprintf(out, "[FAIL] %s: %v\n", d.Device, d.Err)
				case d.Skipped:
					fmt.Fprintf(out, "[SKIP] %s: unchanged (%s)\n", d.Device, d.OSType)
				default:
					fmt.Fprintf(out, "[OK] %s: %d chunks (%s, %s)", d.Device, d.Chunks, d.OSType, d.Source)
					if d.Output != "" {
						fmt.Fprintf(out, " -> %s", d.Output)
					}
					fmt.Fprintln(out)
				}
			}
			fmt.Fprintf(out, "\n[DONE] %d indexed, %d skipped, %d failed, %d chunks in %s\n",
				stats.DevicesIndexed, stats.DevicesSkipped, stats.DevicesFailed, stats.ChunksCreated, stats.Duration)

			if stats.DevicesFailed > 0 {
				return fmt.Errorf("%d of %d devices failed", stats.DevicesFailed, len(stats.Devices))
			}
			return nil
		},
	}

	cmd.Flags().String("config", "", "Path to a single config file")
	cmd.Flags().String("config-dir", indexer.DefaultConfigDir, "Directory of .cfg files")
	cmd.Flags().String("os-type", "", "OS type for every file (ios, iosxe, iosxr, nxos, eos, generic)")
	cmd.Flags().String("os-map", "", "JSON map of filename/device -> os_type")
	cmd.Flags().Bool("detect-os", false, "Auto-detect OS type when not provided")
	cmd.Flags().String("out-dir", DefaultChunkDir, "Output directory for chunk JSON files (cleared first)")
	cmd.Flags().String("db", "", "Also store chunk sets in this SQLite database")
	cmd.Flags().Bool("force", false, "Store devices even when their content is unchanged")
	cmd.Flags().Int("workers", 0, "Concurrent workers (default from settings)")
	cmd.Flags().Bool("mongo-dump", false, "Write chunk sets to MongoDB")
	cmd.Flags().String("mongo-uri", "", "MongoDB URI (default from settings)")
	cmd.Flags().String("mongo-db", "", "Mongo database name (default from settings)")
	cmd.Flags().String("collection", "", "Base collection name; chunks go to <name>_chunks")
	cmd.Flags().Bool("dry-run", false, "Preview Mongo writes without connecting")

	return cmd
}

// openDocStore returns the Mongo mirror and its cleanup. A dry run never connects.
func (a *app) openDocStore(ctx context.Context, cfg docstore.Config, dryRun bool) (*docstore.Store, func(), error) {
	if dryRun {
		store, err := docstore.NewStore(nil, cfg, docstore.WithDryRun(true), docstore.WithLogger(a.log))
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}

	client, err := docstore.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			a.log.Warn("mongo disconnect failed", logger.Error(err))
		}
	}

	store, err := docstore.NewStore(client.Database(cfg.Database), cfg, docstore.WithLogger(a.log))
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}
