package mcp

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dshills/netconfig-mcp/internal/chunkset"
	"github.com/dshills/netconfig-mcp/internal/dialect"
	"github.com/dshills/netconfig-mcp/internal/indexer"
	"github.com/dshills/netconfig-mcp/internal/logger"
	"github.com/dshills/netconfig-mcp/internal/merger"
	"github.com/dshills/netconfig-mcp/internal/storage"
	"github.com/dshills/netconfig-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeUnsupportedDialect = -32001 // os_type names no registered dialect
	ErrorCodeIndexingInProgress = -32002 // Another indexing operation is already running
	ErrorCodeDeviceNotFound     = -32003 // Device has no stored chunk set
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
	ErrorCodeMalformedChunkSet  = -32005 // chunks argument is not a valid chunk set
)

const (
	// DefaultSearchLimit is used when search_chunks has no limit
	DefaultSearchLimit = 10
	// MaxSearchLimit caps search_chunks results
	MaxSearchLimit = 100

	// maxReportedErrors caps the per-file errors returned by index_configs
	maxReportedErrors = 5
)

// handleChunkConfig handles the chunk_config tool invocation
func (s *Server) handleChunkConfig(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	device, err := request.RequireString("device")
	if err != nil || device == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "device parameter is required", map[string]any{
			"param":  "device",
			"reason": "missing or empty",
		})
	}

	text, err := request.RequireString("text")
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "text parameter is required", map[string]any{
			"param":  "text",
			"reason": "missing",
		})
	}

	osType := request.GetString("os_type", "")
	detect := request.GetBool("detect_os", false)

	def := s.registry.Generic()
	source := indexer.SourceDeclared
	var detection *dialect.Detection

	switch {
	case osType != "":
		def, err = s.registry.Resolve(osType)
		if err != nil {
			return nil, dialectError(err, osType)
		}
		// Chunks carry the alias as requested
		osType = dialect.Normalize(osType)
	case detect:
		d := s.detector.Detect(text)
		detection = &d
		if d.Confident {
			if def, err = s.registry.Resolve(d.Dialect); err != nil {
				return nil, dialectError(err, d.Dialect)
			}
			source = indexer.SourceDetected
		} else {
			source = indexer.SourceFallback
			s.logger.Warn("os detection ambiguous, using generic",
				logger.Device(device), slog.String("scores", d.FormatScores()))
		}
	default:
		source = indexer.SourceFallback
	}

	if osType == "" {
		osType = def.Name()
	}
	chunks, cached := s.chunkCached(device, text, def, osType)

	response := map[string]any{
		"device":      device,
		"os_type":     osType,
		"dialect":     def.Name(),
		"source":      string(source),
		"chunk_count": len(chunks),
		"cached":      cached,
		"chunks":      chunks,
	}
	if detection != nil {
		response["detection"] = detectionResponse(*detection)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// chunkCached builds the chunk set, reusing a previous result for identical input
func (s *Server) chunkCached(device, text string, def *dialect.Definition, osType string) ([]types.Chunk, bool) {
	key := cacheKey(osType, device, text)
	if chunks, ok := s.cache.Get(key); ok {
		return chunks, true
	}

	chunks := s.chunker.Build(device, text, def, osType)
	if chunks == nil {
		chunks = []types.Chunk{}
	}
	s.cache.Add(key, chunks)
	return chunks, false
}

// cacheKey hashes the inputs that determine a chunk set
func cacheKey(osType, device, text string) [32]byte {
	h := sha256.New()
	h.Write([]byte(osType))
	h.Write([]byte{0})
	h.Write([]byte(device))
	h.Write([]byte{0})
	h.Write([]byte(text))

	var key [32]byte
	copy(key[:], h.Sum(nil))
	return key
}

// handleDetectOS handles the detect_os tool invocation
func (s *Server) handleDetectOS(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "text parameter is required", map[string]any{
			"param":  "text",
			"reason": "missing",
		})
	}

	return mcp.NewToolResultText(formatJSON(detectionResponse(s.detector.Detect(text)))), nil
}

func detectionResponse(d dialect.Detection) map[string]any {
	response := map[string]any{
		"confident":  d.Confident,
		"os_type":    dialect.Generic,
		"best_score": d.Best,
		"scores":     d.Scores,
	}
	if d.Confident {
		response["os_type"] = d.Dialect
	} else {
		response["reason"] = d.Err().Error()
	}
	if len(d.Tied) > 1 {
		response["tied"] = d.Tied
	}
	return response
}

// handleMergeChunks handles the merge_chunks tool invocation
func (s *Server) handleMergeChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	raw, hasChunks := args["chunks"]
	device := request.GetString("device", "")

	if hasChunks == (device != "") {
		return nil, newMCPError(ErrorCodeInvalidParams, "exactly one of chunks or device is required", map[string]any{
			"param":  "chunks",
			"reason": "provide either chunks or device",
		})
	}

	separator := request.GetString("separator", merger.DefaultSeparator)
	if request.GetBool("no_separator", false) {
		separator = merger.NoSeparator
	}

	var chunks []types.Chunk
	if hasChunks {
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, newMCPError(ErrorCodeInvalidParams, "invalid chunks", map[string]any{
				"param":  "chunks",
				"reason": err.Error(),
			})
		}
		chunks, err = chunkset.Unmarshal(data)
		if err != nil {
			return nil, newMCPError(ErrorCodeMalformedChunkSet, "malformed chunk set", map[string]any{
				"param":  "chunks",
				"reason": err.Error(),
			})
		}
	} else {
		stored, _, err := s.deviceChunks(ctx, device)
		if err != nil {
			return nil, err
		}
		chunks = stored
	}

	text, ordering := merger.MergeWithOrdering(chunks, separator)

	response := map[string]any{
		"text":        text,
		"chunk_count": len(chunks),
		"ordering":    ordering.String(),
	}
	if err := ordering.Err(); err != nil {
		s.logger.Warn("merging in input order", logger.Error(err))
		response["warning"] = err.Error()
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleListDialects handles the list_dialects tool invocation
func (s *Server) handleListDialects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	defs := s.registry.Dialects()
	dialects := make([]map[string]any, 0, len(defs))
	for _, def := range defs {
		dialects = append(dialects, map[string]any{
			"name":             def.Name(),
			"aliases":          s.registry.AliasesOf(def.Name()),
			"patterns":         def.Patterns(),
			"comment_prefixes": def.CommentPrefixes(),
			"ignore_lines":     def.IgnoreLines(),
		})
	}

	response := map[string]any{
		"dialects":         dialects,
		"detect_min_score": s.detector.MinScore(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleIndexConfigs handles the index_configs tool invocation
func (s *Server) handleIndexConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]any{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	isDir, err := validatePath(path)
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid path", map[string]any{
			"param":  "path",
			"reason": err.Error(),
		})
	}

	osMap, err := osMapArgument(request.GetArguments())
	if err != nil {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid os_map", map[string]any{
			"param":  "os_map",
			"reason": err.Error(),
		})
	}

	req := indexer.Request{
		OSType:       request.GetString("os_type", ""),
		OSMapEntries: osMap,
		Detect:       request.GetBool("detect_os", false),
		OutDir:       request.GetString("out_dir", ""),
		Force:        request.GetBool("force", false),
	}
	if isDir {
		req.ConfigDir = path
	} else {
		req.Config = path
	}

	if req.OSType != "" {
		if _, err := s.registry.Resolve(req.OSType); err != nil {
			return nil, dialectError(err, req.OSType)
		}
	}

	if !s.lock.TryAcquire(path) {
		return nil, newMCPError(ErrorCodeIndexingInProgress, "indexing already in progress", map[string]any{
			"path": s.lock.Owner(),
		})
	}
	defer s.lock.Release()

	stats, err := s.indexer.Run(ctx, req)
	if err != nil {
		if errors.Is(err, indexer.ErrMissingDialect) || errors.Is(err, indexer.ErrNoConfigs) {
			return nil, newMCPError(ErrorCodeInvalidParams, "indexing failed", map[string]any{
				"param":  "path",
				"reason": err.Error(),
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]any{
			"error": err.Error(),
		})
	}

	devices := make([]map[string]any, 0, len(stats.Devices))
	for _, d := range stats.Devices {
		entry := map[string]any{
			"device":  d.Device,
			"os_type": d.OSType,
			"source":  string(d.Source),
			"chunks":  d.Chunks,
			"skipped": d.Skipped,
		}
		if d.Err != nil {
			entry["error"] = d.Err.Error()
		}
		devices = append(devices, entry)
	}

	// Format response
	response := map[string]any{
		"run_id":          stats.RunID,
		"devices_indexed": stats.DevicesIndexed,
		"devices_skipped": stats.DevicesSkipped,
		"devices_failed":  stats.DevicesFailed,
		"chunks_created":  stats.ChunksCreated,
		"dialects":        stats.Dialects,
		"devices":         devices,
		"duration_ms":     stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > maxReportedErrors {
			response["errors"] = stats.ErrorMessages[:maxReportedErrors]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// osMapArgument reads the inline os_map object
func osMapArgument(args map[string]any) (map[string]string, error) {
	raw, ok := args["os_map"]
	if !ok || raw == nil {
		return nil, nil
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("must be an object")
	}

	osMap := make(map[string]string, len(obj))
	for k, v := range obj {
		name, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("entry %q must be a string", k)
		}
		osMap[k] = name
	}
	return osMap, nil
}

// handleGetDeviceChunks handles the get_device_chunks tool invocation
func (s *Server) handleGetDeviceChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	device := request.GetString("device", "")
	if device == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "device parameter is required", map[string]any{
			"param":  "device",
			"reason": "missing or empty",
		})
	}
	sectionType := request.GetString("section_type", "")

	chunks, stored, err := s.deviceChunks(ctx, device)
	if err != nil {
		return nil, err
	}

	if sectionType != "" {
		filtered := make([]types.Chunk, 0, len(chunks))
		for _, c := range chunks {
			if c.Metadata.SectionType == sectionType {
				filtered = append(filtered, c)
			}
		}
		chunks = filtered
	}

	response := map[string]any{
		"device":          stored.Name,
		"os_type":         stored.OSType,
		"source_path":     stored.SourcePath,
		"last_indexed_at": stored.LastIndexedAt.Format(time.RFC3339),
		"chunk_count":     len(chunks),
		"chunks":          chunks,
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// deviceChunks loads a stored chunk set in chunk_index order
func (s *Server) deviceChunks(ctx context.Context, device string) ([]types.Chunk, *storage.Device, error) {
	stored, err := s.storage.GetDevice(ctx, device)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, newMCPError(ErrorCodeDeviceNotFound, "device not found", map[string]any{
			"device":  device,
			"message": "Device not indexed. Use index_configs to index its configuration.",
		})
	}
	if err != nil {
		return nil, nil, newMCPError(ErrorCodeInternalError, "failed to get device", map[string]any{
			"error": err.Error(),
		})
	}

	rows, err := s.storage.ListChunksByDevice(ctx, stored.ID)
	if err != nil {
		return nil, nil, newMCPError(ErrorCodeInternalError, "failed to list chunks", map[string]any{
			"error": err.Error(),
		})
	}

	chunks := make([]types.Chunk, 0, len(rows))
	for _, row := range rows {
		chunks = append(chunks, row.ToTypesChunk(stored.Name))
	}
	return chunks, stored, nil
}

// handleSearchChunks handles the search_chunks tool invocation
func (s *Server) handleSearchChunks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]any{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := request.GetInt("limit", DefaultSearchLimit)
	if limit < 1 || limit > MaxSearchLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]any{
			"param": "limit",
			"value": limit,
		})
	}

	filters := &storage.SearchFilters{
		Devices:      request.GetStringSlice("devices", nil),
		SectionTypes: request.GetStringSlice("section_types", nil),
		OSTypes:      request.GetStringSlice("os_types", nil),
	}

	startTime := time.Now()
	results, err := s.storage.SearchText(ctx, query, limit, filters)
	if errors.Is(err, storage.ErrEmptyQuery) {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query has no searchable terms", map[string]any{
			"param": "query",
			"value": query,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]any{
			"error": err.Error(),
		})
	}

	items := make([]map[string]any, 0, len(results))
	for i, r := range results {
		items = append(items, map[string]any{
			"rank":            i + 1,
			"relevance_score": r.BM25Score,
			"device":          r.Device,
			"chunk_id":        r.Chunk.ChunkID,
			"chunk_index":     r.Chunk.ChunkIndex,
			"chunk_type":      r.Chunk.ChunkType,
			"section":         r.Chunk.Section,
			"section_type":    r.Chunk.SectionType,
			"os_type":         r.Chunk.OSType,
			"content":         r.Chunk.Content,
		})
	}

	response := map[string]any{
		"query":       query,
		"results":     items,
		"total":       len(items),
		"duration_ms": time.Since(startTime).Milliseconds(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status, err := s.storage.GetStatus(ctx)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get status", map[string]any{
			"error": err.Error(),
		})
	}

	indexing := map[string]any{
		"in_progress": false,
	}
	if owner := s.lock.Owner(); owner != "" {
		indexing["in_progress"] = true
		indexing["path"] = owner
	}

	// Format response
	response := map[string]any{
		"indexed": status.DevicesCount > 0,
		"statistics": map[string]any{
			"devices_count":  status.DevicesCount,
			"chunks_count":   status.ChunksCount,
			"dialects":       status.DialectCounts,
			"section_types":  status.SectionCounts,
			"index_size_mb":  fmt.Sprintf("%.2f", status.IndexSizeMB),
			"cached_results": s.cache.Len(),
		},
		"indexing": indexing,
		"health": map[string]any{
			"database_accessible": status.Health.DatabaseAccessible,
			"fts_indexes_built":   status.Health.FTSIndexesBuilt,
		},
	}
	if !status.LastIndexedAt.IsZero() {
		response["last_indexed_at"] = status.LastIndexedAt.Format(time.RFC3339)
		response["last_run_id"] = status.LastRunID
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data any) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    any
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// dialectError maps a registry failure to an MCP error
func dialectError(err error, name string) error {
	if errors.Is(err, types.ErrUnsupportedDialect) {
		return newMCPError(ErrorCodeUnsupportedDialect, "unsupported os_type", map[string]any{
			"param":  "os_type",
			"value":  name,
			"reason": err.Error(),
		})
	}
	return newMCPError(ErrorCodeInternalError, "failed to resolve os_type", map[string]any{
		"error": err.Error(),
	})
}

// validatePath checks that path is an absolute, readable file or directory
func validatePath(path string) (bool, error) {
	if !filepath.IsAbs(path) {
		return false, ErrPathNotAbsolute
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, ErrPathNotFound
	}
	if err != nil {
		return false, ErrPathNotReadable
	}

	if !info.IsDir() {
		return false, nil
	}

	// Check if directory is readable
	f, err := os.Open(path)
	if err != nil {
		return false, ErrPathNotReadable
	}
	_ = f.Close()

	return true, nil
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]any) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// Validation helpers

var (
	ErrPathNotAbsolute = errors.New("path must be absolute")
	ErrPathNotFound    = errors.New("path does not exist")
	ErrPathNotReadable = errors.New("path is not readable")
)
