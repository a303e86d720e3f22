// Package indexer coordinates the pipeline from device configuration files
// to stored chunk sets.
//
// # Basic Usage
//
//	idx := indexer.New(
//	    indexer.WithStorage(store),
//	    indexer.WithLogger(log),
//	)
//
//	stats, err := idx.Run(ctx, indexer.Request{
//	    ConfigDir: "configs",
//	    OSMap:     "os_map.json",
//	    OutDir:    "config_chunks",
//	})
//
//	fmt.Printf("Indexed %d devices in %v\n", stats.DevicesIndexed, stats.Duration)
//
// # Pipeline
//
//  1. Discovery: the single named file, or the sorted *.cfg files of a directory
//  2. Dialect resolution: declared os type, then the os map, then detection
//  3. Segmentation and enrichment (parallel, bounded by the worker count)
//  4. Output: chunk-set JSON files, the SQLite chunk store and an optional sink
//
// # Dialect Resolution
//
// The os map is a JSON object keyed by file name ("R1.cfg") or device name
// ("R1"); the file name wins. Detection runs when requested, or when neither
// an os type nor an os map was supplied. An inconclusive detection is logged
// as a warning with the per-dialect scores and the device is segmented with
// the generic dialect. When detection is off and a file has no dialect, the
// run fails with ErrMissingDialect before any output is written.
//
// # Incremental Indexing
//
// Each device's SHA-256 content hash and dialect are stored. A device whose
// file and dialect are unchanged is counted as skipped and its stored chunks
// are left alone; Request.Force rewrites it anyway. JSON output is always
// regenerated because the output directory is cleared at the start of a run.
//
// # Concurrency
//
// Files are processed by an errgroup bounded by a semaphore. Each device is
// written to the store in its own transaction, so a failed device never leaves
// a partial chunk set behind. IndexLock lets callers such as the MCP server
// reject overlapping runs instead of queueing them.
package indexer
