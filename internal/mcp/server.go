package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/netconfig-mcp/internal/chunker"
	"github.com/dshills/netconfig-mcp/internal/dialect"
	"github.com/dshills/netconfig-mcp/internal/indexer"
	"github.com/dshills/netconfig-mcp/internal/logger"
	"github.com/dshills/netconfig-mcp/internal/storage"
	"github.com/dshills/netconfig-mcp/pkg/types"
)

const (
	// ServerName is the MCP server name
	ServerName = "netconfig-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
	// DefaultCacheSize bounds the chunk_config result cache
	DefaultCacheSize = 256
)

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp      *server.MCPServer
	storage  storage.Storage
	indexer  *indexer.Indexer
	registry *dialect.Registry
	detector *dialect.Detector
	chunker  *chunker.Chunker
	sink     indexer.Sink
	logger   *slog.Logger
	workers  int

	cacheSize int
	cache     *lru.Cache[[32]byte, []types.Chunk]

	// Guards index_configs; a second call fails instead of queueing
	lock indexer.IndexLock
}

// Option configures a Server
type Option func(*Server)

func WithRegistry(r *dialect.Registry) Option {
	return func(s *Server) { s.registry = r }
}

func WithDetector(d *dialect.Detector) Option {
	return func(s *Server) { s.detector = d }
}

func WithChunker(c *chunker.Chunker) Option {
	return func(s *Server) { s.chunker = c }
}

// WithSink mirrors chunk sets indexed through index_configs
func WithSink(sink indexer.Sink) Option {
	return func(s *Server) { s.sink = sink }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithWorkers sets the indexer worker count
func WithWorkers(n int) Option {
	return func(s *Server) { s.workers = n }
}

// WithCacheSize sets the number of cached chunk_config results
func WithCacheSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.cacheSize = n
		}
	}
}

// NewServer creates a new MCP server instance backed by store
func NewServer(store storage.Storage, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	s := &Server{
		storage:   store,
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.registry == nil {
		s.registry = dialect.NewRegistry()
	}
	if s.detector == nil {
		s.detector = dialect.MustDetector()
	}
	if s.chunker == nil {
		s.chunker = chunker.New()
	}
	base := logger.OrDiscard(s.logger)
	s.logger = base.With(logger.Component("mcp"))

	cache, err := lru.New[[32]byte, []types.Chunk](s.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunk cache: %w", err)
	}
	s.cache = cache

	idxOpts := []indexer.Option{
		indexer.WithRegistry(s.registry),
		indexer.WithDetector(s.detector),
		indexer.WithChunker(s.chunker),
		indexer.WithStorage(store),
		indexer.WithLogger(base),
		indexer.WithWorkers(s.workers),
	}
	if s.sink != nil {
		idxOpts = append(idxOpts, indexer.WithSink(s.sink))
	}
	s.indexer = indexer.New(idxOpts...)

	s.mcp = server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	// Register tools
	if err := s.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return s, nil
}

// Open creates the chunk store at dbPath and a server on top of it.
// The server owns the store; Close releases it.
func Open(dbPath string, opts ...Option) (*Server, error) {
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	s, err := NewServer(store, opts...)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until ctx is cancelled or stdin closes
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	s.logger.Info("serving on stdio", slog.String("version", ServerVersion))
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// Close releases the chunk store
func (s *Server) Close() error {
	return s.storage.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	// Engine tools, no store access
	s.mcp.AddTool(chunkConfigTool(), s.handleChunkConfig)
	s.mcp.AddTool(detectOSTool(), s.handleDetectOS)
	s.mcp.AddTool(mergeChunksTool(), s.handleMergeChunks)
	s.mcp.AddTool(listDialectsTool(), s.handleListDialects)

	// Store tools
	s.mcp.AddTool(indexConfigsTool(), s.handleIndexConfigs)
	s.mcp.AddTool(getDeviceChunksTool(), s.handleGetDeviceChunks)
	s.mcp.AddTool(searchChunksTool(), s.handleSearchChunks)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)

	return nil
}
