package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/netconfig-mcp/internal/chunker"
	"github.com/dshills/netconfig-mcp/internal/chunkset"
	"github.com/dshills/netconfig-mcp/internal/dialect"
	"github.com/dshills/netconfig-mcp/internal/logger"
	"github.com/dshills/netconfig-mcp/internal/storage"
	"github.com/dshills/netconfig-mcp/pkg/types"
)

// DefaultConfigDir is scanned when a request names neither a file nor a directory
const DefaultConfigDir = "configs"

// ErrNoConfigs is returned when the config directory holds no .cfg files
var ErrNoConfigs = errors.New("no .cfg files found")

// Sink receives every indexed chunk set, e.g. a document store mirror
type Sink interface {
	ReplaceDevice(ctx context.Context, device, osType string, chunks []types.Chunk) error
}

// Indexer coordinates the pipeline: read -> resolve dialect -> chunk -> write
type Indexer struct {
	registry *dialect.Registry
	detector *dialect.Detector
	chunker  *chunker.Chunker
	storage  storage.Storage
	sink     Sink
	logger   *slog.Logger

	// Worker pool configuration
	workers int
}

// Option configures an Indexer
type Option func(*Indexer)

func WithRegistry(r *dialect.Registry) Option {
	return func(idx *Indexer) { idx.registry = r }
}

func WithDetector(d *dialect.Detector) Option {
	return func(idx *Indexer) { idx.detector = d }
}

func WithChunker(c *chunker.Chunker) Option {
	return func(idx *Indexer) { idx.chunker = c }
}

// WithStorage persists chunk sets to the chunk store
func WithStorage(s storage.Storage) Option {
	return func(idx *Indexer) { idx.storage = s }
}

// WithSink mirrors chunk sets to an additional destination
func WithSink(s Sink) Option {
	return func(idx *Indexer) { idx.sink = s }
}

func WithLogger(l *slog.Logger) Option {
	return func(idx *Indexer) { idx.logger = l }
}

// WithWorkers sets the number of concurrent workers (default: runtime.NumCPU())
func WithWorkers(n int) Option {
	return func(idx *Indexer) {
		if n > 0 {
			idx.workers = n
		}
	}
}

// Request describes one indexing run
type Request struct {
	Config       string            // Single config file; takes precedence over ConfigDir
	ConfigDir    string            // Directory of .cfg files (default: "configs")
	OSType       string            // Declared dialect for every file
	OSMap        string            // Path to a JSON os map
	OSMapEntries map[string]string // Inline os map, merged over the file
	Detect       bool              // Detect dialects not otherwise resolved
	OutDir       string            // Chunk-set JSON output directory, cleared first
	Force        bool              // Rewrite devices whose content is unchanged
}

// DeviceResult describes the outcome for one configuration file
type DeviceResult struct {
	Device  string
	Path    string
	OSType  string
	Source  DialectSource
	Chunks  int
	Skipped bool
	Output  string
	Err     error
}

// Statistics contains statistics about the indexing run
type Statistics struct {
	RunID          string
	DevicesIndexed int
	DevicesSkipped int
	DevicesFailed  int
	ChunksCreated  int
	Dialects       map[string]int
	Devices        []DeviceResult
	Duration       time.Duration
	ErrorMessages  []string
}

// New creates a new Indexer instance
func New(opts ...Option) *Indexer {
	idx := &Indexer{
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(idx)
	}

	if idx.registry == nil {
		idx.registry = dialect.NewRegistry()
	}
	if idx.detector == nil {
		idx.detector = dialect.MustDetector()
	}
	if idx.chunker == nil {
		idx.chunker = chunker.New()
	}
	idx.logger = logger.OrDiscard(idx.logger).With(logger.Component("indexer"))
	return idx
}

// prepared is a configuration file read and resolved, ready to chunk
type prepared struct {
	path       string
	device     string
	text       string
	hash       [32]byte
	resolution *resolution
	err        error
}

// Run indexes every configuration file named by req.
// Per-file failures are recorded in the statistics; the returned error is
// reserved for problems that stop the whole run.
func (idx *Indexer) Run(ctx context.Context, req Request) (*Statistics, error) {
	startTime := time.Now()
	stats := &Statistics{
		RunID:         uuid.NewString(),
		Dialects:      make(map[string]int),
		ErrorMessages: make([]string, 0),
	}
	log := idx.logger.With(logger.RunID(stats.RunID))

	files, err := discoverFiles(req)
	if err != nil {
		return nil, err
	}

	osMap, err := mergedOSMap(req)
	if err != nil {
		return nil, err
	}

	items, err := idx.prepare(&req, osMap, files)
	if err != nil {
		return nil, err
	}

	if req.OutDir != "" {
		removed, err := chunkset.ClearDir(req.OutDir)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare output directory: %w", err)
		}
		if removed > 0 {
			log.Info("cleared existing chunk files", slog.String("dir", req.OutDir), slog.Int("removed", removed))
		}
	}

	stats.Devices = make([]DeviceResult, len(items))
	if err := idx.indexAll(ctx, &req, stats, items, log); err != nil {
		return nil, err
	}

	for _, r := range stats.Devices {
		switch {
		case r.Err != nil:
			stats.DevicesFailed++
			stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", r.Path, r.Err))
		case r.Skipped:
			stats.DevicesSkipped++
		default:
			stats.DevicesIndexed++
		}
		if r.Err == nil {
			stats.ChunksCreated += r.Chunks
			stats.Dialects[r.OSType]++
		}
	}

	stats.Duration = time.Since(startTime)
	log.Info("indexing complete",
		slog.Int("indexed", stats.DevicesIndexed),
		slog.Int("skipped", stats.DevicesSkipped),
		slog.Int("failed", stats.DevicesFailed),
		slog.Int("chunks", stats.ChunksCreated),
		logger.Duration(stats.Duration))
	return stats, nil
}

// discoverFiles returns the single named file, or the sorted .cfg files of the directory
func discoverFiles(req Request) ([]string, error) {
	if req.Config != "" {
		info, err := os.Stat(req.Config)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			return nil, fmt.Errorf("%s is a directory", req.Config)
		}
		return []string{req.Config}, nil
	}

	dir := req.ConfigDir
	if dir == "" {
		dir = DefaultConfigDir
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ConfigExtension) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoConfigs, dir)
	}

	sort.Strings(files)
	return files, nil
}

func mergedOSMap(req Request) (map[string]string, error) {
	osMap, err := LoadOSMap(req.OSMap)
	if err != nil {
		return nil, err
	}
	if len(req.OSMapEntries) == 0 {
		return osMap, nil
	}
	if osMap == nil {
		osMap = make(map[string]string, len(req.OSMapEntries))
	}
	for k, v := range req.OSMapEntries {
		osMap[k] = v
	}
	return osMap, nil
}

// prepare reads every file and resolves its dialect in order.
// A file that cannot be read or has an unregistered dialect is marked failed;
// a file with no way to obtain a dialect stops the run.
func (idx *Indexer) prepare(req *Request, osMap map[string]string, files []string) ([]prepared, error) {
	items := make([]prepared, 0, len(files))
	for _, path := range files {
		item := prepared{path: path, device: DeviceName(path)}

		data, err := os.ReadFile(path)
		if err != nil {
			item.err = err
			items = append(items, item)
			continue
		}
		item.text = string(data)
		item.hash = sha256.Sum256(data)

		item.resolution, err = idx.resolveDialect(req, osMap, path, item.text)
		if errors.Is(err, ErrMissingDialect) {
			return nil, err
		}
		item.err = err
		items = append(items, item)
	}
	return items, nil
}

// indexAll chunks and writes the prepared files concurrently
func (idx *Indexer) indexAll(ctx context.Context, req *Request, stats *Statistics, items []prepared, log *slog.Logger) error {
	// Create worker pool with semaphore
	semaphore := make(chan struct{}, idx.workers)

	// The sink is not assumed to be safe for concurrent use
	var sinkMu sync.Mutex

	// Use errgroup for concurrent processing with cancellation
	g, gctx := errgroup.WithContext(ctx)

	for i := range items {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case semaphore <- struct{}{}:
				// Acquire semaphore
			}
			defer func() { <-semaphore }() // Release semaphore

			result := idx.indexDevice(gctx, req, stats.RunID, &items[i], &sinkMu)
			stats.Devices[i] = result

			if result.Err != nil {
				log.Error("failed to index device", logger.Device(result.Device), logger.Error(result.Err))
				return nil // Continue with other files
			}
			log.Info("indexed device",
				logger.Device(result.Device),
				logger.Dialect(result.OSType),
				slog.String("source", string(result.Source)),
				slog.Int("chunks", result.Chunks),
				slog.Bool("skipped", result.Skipped))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// indexDevice chunks one file and writes it to every configured destination
func (idx *Indexer) indexDevice(ctx context.Context, req *Request, runID string, item *prepared, sinkMu *sync.Mutex) DeviceResult {
	result := DeviceResult{Device: item.device, Path: item.path}
	if item.err != nil {
		result.Err = item.err
		return result
	}

	def := item.resolution.def
	osType := item.resolution.name
	result.OSType = osType
	result.Source = item.resolution.source

	chunks := idx.chunker.Build(item.device, item.text, def, osType)
	result.Chunks = len(chunks)

	if req.OutDir != "" {
		out, err := chunkset.WriteFile(req.OutDir, item.device, chunks)
		if err != nil {
			result.Err = err
			return result
		}
		result.Output = out
	}

	// An unchanged device skips the store write only; the sink always receives it
	if idx.storage != nil && !req.Force {
		unchanged, err := idx.unchanged(ctx, item.device, osType, item.hash)
		if err != nil {
			result.Err = err
			return result
		}
		result.Skipped = unchanged
	}

	if idx.storage != nil && !result.Skipped {
		if err := idx.store(ctx, runID, item, osType, chunks); err != nil {
			result.Err = err
			return result
		}
	}

	if idx.sink != nil {
		sinkMu.Lock()
		err := idx.sink.ReplaceDevice(ctx, item.device, osType, chunks)
		sinkMu.Unlock()
		if err != nil {
			result.Err = fmt.Errorf("sink: %w", err)
			return result
		}
	}

	return result
}

// unchanged reports whether the stored device has the same content and dialect
func (idx *Indexer) unchanged(ctx context.Context, device, osType string, hash [32]byte) (bool, error) {
	existing, err := idx.storage.GetDevice(ctx, device)
	if errors.Is(err, storage.ErrNotFound) {
		// New device, needs indexing
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return existing.ContentHash == hash && existing.OSType == osType, nil
}

// store upserts the device and replaces its chunks within one transaction
func (idx *Indexer) store(ctx context.Context, runID string, item *prepared, osType string, chunks []types.Chunk) error {
	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	device := &storage.Device{
		Name:        item.device,
		OSType:      osType,
		ContentHash: item.hash,
		SourcePath:  item.path,
		ChunkCount:  len(chunks),
		IndexRunID:  runID,
	}
	if err := tx.UpsertDevice(ctx, device); err != nil {
		return err
	}
	if err := tx.ReplaceDeviceChunks(ctx, device.ID, chunks); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
