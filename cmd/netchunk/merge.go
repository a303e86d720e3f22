package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dshills/netconfig-mcp/internal/chunkset"
	"github.com/dshills/netconfig-mcp/internal/logger"
	"github.com/dshills/netconfig-mcp/internal/merger"
)

// DefaultMergeDir receives reconstructed <device>.cfg files
const DefaultMergeDir = "merged_config"

func (a *app) mergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge chunk files back into configurations",
		Long: `Reassemble chunk JSON files into configuration text.

Chunks are ordered by chunk_index when every chunk has one, and joined with
the separator. Escape sequences such as \n in --separator are interpreted.

Example:
  netchunk merge --chunks-dir config_chunks --out-dir merged_config
  netchunk merge --chunks config_chunks/R1.json --out R1.cfg --no-separator`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chunksPath, _ := cmd.Flags().GetString("chunks")
			chunksDir, _ := cmd.Flags().GetString("chunks-dir")
			outDir, _ := cmd.Flags().GetString("out-dir")
			outPath, _ := cmd.Flags().GetString("out")
			rawSeparator, _ := cmd.Flags().GetString("separator")
			noSeparator, _ := cmd.Flags().GetBool("no-separator")

			if outPath != "" && chunksPath == "" {
				return fmt.Errorf("--out requires --chunks")
			}

			separator, err := unescape(rawSeparator)
			if err != nil {
				return fmt.Errorf("invalid --separator: %w", err)
			}
			if noSeparator {
				separator = merger.NoSeparator
			}

			files := []string{chunksPath}
			if chunksPath == "" {
				files, err = chunkset.ListFiles(chunksDir)
				if err != nil {
					return err
				}
			}

			for _, path := range files {
				target := outPath
				if target == "" {
					target = filepath.Join(outDir, chunkset.DeviceFromPath(path)+".cfg")
				}
				if err := a.mergeFile(path, target, separator); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "[OK] %s: config written to %s\n", chunkset.DeviceFromPath(path), target)
			}
			return nil
		},
	}

	cmd.Flags().String("chunks", "", "Path to a single chunks JSON file")
	cmd.Flags().String("chunks-dir", DefaultChunkDir, "Directory of chunks JSON files")
	cmd.Flags().String("out-dir", DefaultMergeDir, "Output directory for reconstructed configs")
	cmd.Flags().String("out", "", "Output file path (only with --chunks)")
	cmd.Flags().String("separator", `\n!\n`, "Separator between chunks")
	cmd.Flags().Bool("no-separator", false, "Join chunks with a single newline")

	return cmd
}

// mergeFile merges one chunk file into target
func (a *app) mergeFile(path, target, separator string) error {
	chunks, err := chunkset.ReadFile(path)
	if err != nil {
		return err
	}

	text, ordering := merger.MergeWithOrdering(chunks, separator)
	if err := ordering.Err(); err != nil {
		a.log.Warn("merging in input order", logger.Device(chunkset.DeviceFromPath(path)), logger.Error(err))
	}

	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(target, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	return nil
}

// unescape interprets Go escape sequences such as \n and \t
func unescape(s string) (string, error) {
	return strconv.Unquote(`"` + s + `"`)
}
