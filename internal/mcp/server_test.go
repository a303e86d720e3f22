package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/netconfig-mcp/internal/storage"
)

const iosConfig = `version 15.2
service timestamps debug datetime
hostname R1
!
interface GigabitEthernet0/1
 description uplink
 ip address 10.0.0.1 255.255.255.0
!
router ospf 1
 network 10.0.0.0 0.0.0.255 area 0
!
end
`

func setupTestServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s, err := NewServer(store, opts...)
	require.NoError(t, err)
	return s
}

// callTool invokes a handler directly and decodes its JSON text result
func callTool(t *testing.T, handler server.ToolHandlerFunc, args map[string]any) (map[string]any, error) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args

	result, err := handler(context.Background(), req)
	if err != nil {
		return nil, err
	}
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out, nil
}

func requireCode(t *testing.T, err error, code int) {
	t.Helper()
	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, code, mcpErr.Code)
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewServer(t *testing.T) {
	t.Run("requires storage", func(t *testing.T) {
		_, err := NewServer(nil)
		assert.Error(t, err)
	})

	t.Run("defaults components", func(t *testing.T) {
		s := setupTestServer(t, WithCacheSize(8))
		assert.NotNil(t, s.indexer)
		assert.NotNil(t, s.registry)
		assert.NotNil(t, s.detector)
		assert.NotNil(t, s.chunker)
		assert.Equal(t, 8, s.cacheSize)
	})

	t.Run("open creates a file store", func(t *testing.T) {
		s, err := Open(filepath.Join(t.TempDir(), "chunks.db"))
		require.NoError(t, err)
		assert.NoError(t, s.Close())
	})
}

func TestChunkConfig(t *testing.T) {
	s := setupTestServer(t)
	args := map[string]any{
		"device":  "R1",
		"text":    "hostname R1\n!\ninterface Gi0/1\n ip address 10.0.0.1 255.255.255.0\n!\n",
		"os_type": "iosxe",
	}

	out, err := callTool(t, s.handleChunkConfig, args)
	require.NoError(t, err)

	assert.Equal(t, "R1", out["device"])
	assert.Equal(t, "iosxe", out["os_type"])
	assert.Equal(t, "ios", out["dialect"])
	assert.Equal(t, "declared", out["source"])
	assert.Equal(t, float64(2), out["chunk_count"])
	assert.Equal(t, false, out["cached"])

	chunks, ok := out["chunks"].([]any)
	require.True(t, ok)
	require.Len(t, chunks, 2)
	first := chunks[0].(map[string]any)
	assert.Equal(t, "hostname R1", first["content"])
	meta := chunks[1].(map[string]any)["metadata"].(map[string]any)
	assert.Equal(t, "interface Gi0/1", meta["section"])
	assert.Equal(t, "R1|interface Gi0/1|1", meta["chunk_id"])
	assert.Equal(t, "iosxe", meta["os_type"])

	t.Run("identical input is served from cache", func(t *testing.T) {
		again, err := callTool(t, s.handleChunkConfig, args)
		require.NoError(t, err)
		assert.Equal(t, true, again["cached"])
		assert.Equal(t, out["chunks"], again["chunks"])
	})

	t.Run("another alias of the same dialect is cached separately", func(t *testing.T) {
		canonical, err := callTool(t, s.handleChunkConfig, map[string]any{
			"device": args["device"], "text": args["text"], "os_type": "IOS",
		})
		require.NoError(t, err)
		assert.Equal(t, false, canonical["cached"])
		assert.Equal(t, "ios", canonical["os_type"])
		meta := canonical["chunks"].([]any)[0].(map[string]any)["metadata"].(map[string]any)
		assert.Equal(t, "ios", meta["os_type"])
	})

	t.Run("all-comment text yields no chunks", func(t *testing.T) {
		out, err := callTool(t, s.handleChunkConfig, map[string]any{
			"device": "R9", "text": "! only comments\n", "os_type": "ios",
		})
		require.NoError(t, err)
		assert.Equal(t, float64(0), out["chunk_count"])
		assert.Equal(t, []any{}, out["chunks"])
	})
}

func TestChunkConfigDialectSelection(t *testing.T) {
	s := setupTestServer(t)

	t.Run("detected", func(t *testing.T) {
		out, err := callTool(t, s.handleChunkConfig, map[string]any{
			"device": "SW1", "text": "feature bgp\ninterface Ethernet1/1\n no shutdown\n", "detect_os": true,
		})
		require.NoError(t, err)
		assert.Equal(t, "nxos", out["os_type"])
		assert.Equal(t, "detected", out["source"])
		detection := out["detection"].(map[string]any)
		assert.Equal(t, true, detection["confident"])
	})

	t.Run("ambiguous detection falls back to generic", func(t *testing.T) {
		out, err := callTool(t, s.handleChunkConfig, map[string]any{
			"device": "X1", "text": "hostname X1\n", "detect_os": true,
		})
		require.NoError(t, err)
		assert.Equal(t, "generic", out["os_type"])
		assert.Equal(t, "fallback", out["source"])
	})

	t.Run("no os type and no detection uses generic", func(t *testing.T) {
		out, err := callTool(t, s.handleChunkConfig, map[string]any{
			"device": "X1", "text": "feature bgp\n",
		})
		require.NoError(t, err)
		assert.Equal(t, "generic", out["os_type"])
		assert.Nil(t, out["detection"])
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := callTool(t, s.handleChunkConfig, map[string]any{
			"device": "R1", "text": "hostname R1\n", "os_type": "vyos",
		})
		requireCode(t, err, ErrorCodeUnsupportedDialect)
	})
}

func TestChunkConfigInvalidParams(t *testing.T) {
	s := setupTestServer(t)

	_, err := callTool(t, s.handleChunkConfig, map[string]any{"text": "hostname R1\n"})
	requireCode(t, err, ErrorCodeInvalidParams)

	_, err = callTool(t, s.handleChunkConfig, map[string]any{"device": "R1"})
	requireCode(t, err, ErrorCodeInvalidParams)
}

func TestDetectOS(t *testing.T) {
	s := setupTestServer(t)

	out, err := callTool(t, s.handleDetectOS, map[string]any{"text": "feature bgp\n"})
	require.NoError(t, err)
	assert.Equal(t, "nxos", out["os_type"])
	assert.Equal(t, true, out["confident"])

	out, err = callTool(t, s.handleDetectOS, map[string]any{"text": "hostname R1\n"})
	require.NoError(t, err)
	assert.Equal(t, "generic", out["os_type"])
	assert.Equal(t, false, out["confident"])
	assert.Contains(t, out["reason"], "ambiguous dialect")

	_, err = callTool(t, s.handleDetectOS, map[string]any{})
	requireCode(t, err, ErrorCodeInvalidParams)
}

func TestMergeChunks(t *testing.T) {
	s := setupTestServer(t)

	chunks := []any{
		map[string]any{
			"content":  "interface Gi0/1\n shutdown",
			"metadata": map[string]any{"device": "R1", "chunk_type": "explicit", "section": "interface Gi0/1", "chunk_index": 1},
		},
		map[string]any{
			"content":  "hostname R1",
			"metadata": map[string]any{"device": "R1", "chunk_type": "global", "chunk_index": 0},
		},
	}

	t.Run("indexed chunks are ordered", func(t *testing.T) {
		out, err := callTool(t, s.handleMergeChunks, map[string]any{"chunks": chunks})
		require.NoError(t, err)
		assert.Equal(t, "hostname R1\n!\ninterface Gi0/1\n shutdown\n", out["text"])
		assert.Equal(t, "indexed", out["ordering"])
		assert.Nil(t, out["warning"])
	})

	t.Run("no separator", func(t *testing.T) {
		out, err := callTool(t, s.handleMergeChunks, map[string]any{"chunks": chunks, "no_separator": true})
		require.NoError(t, err)
		assert.Equal(t, "hostname R1\ninterface Gi0/1\n shutdown\n", out["text"])
	})

	t.Run("partial indexing warns and keeps input order", func(t *testing.T) {
		mixed := []any{
			map[string]any{"content": "b", "metadata": map[string]any{"device": "R1", "chunk_type": "global", "chunk_index": 3}},
			map[string]any{"content": "a", "metadata": map[string]any{"device": "R1", "chunk_type": "global"}},
		}
		out, err := callTool(t, s.handleMergeChunks, map[string]any{"chunks": mixed})
		require.NoError(t, err)
		assert.Equal(t, "b\n!\na\n", out["text"])
		assert.Equal(t, "inconsistent", out["ordering"])
		assert.NotEmpty(t, out["warning"])
	})

	t.Run("empty set", func(t *testing.T) {
		out, err := callTool(t, s.handleMergeChunks, map[string]any{"chunks": []any{}})
		require.NoError(t, err)
		assert.Equal(t, "\n", out["text"])
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := callTool(t, s.handleMergeChunks, map[string]any{"chunks": []any{"not an object"}})
		requireCode(t, err, ErrorCodeMalformedChunkSet)

		_, err = callTool(t, s.handleMergeChunks, map[string]any{"chunks": []any{map[string]any{"metadata": map[string]any{}}}})
		requireCode(t, err, ErrorCodeMalformedChunkSet)
	})

	t.Run("requires exactly one source", func(t *testing.T) {
		_, err := callTool(t, s.handleMergeChunks, map[string]any{})
		requireCode(t, err, ErrorCodeInvalidParams)

		_, err = callTool(t, s.handleMergeChunks, map[string]any{"chunks": chunks, "device": "R1"})
		requireCode(t, err, ErrorCodeInvalidParams)
	})

	t.Run("unknown device", func(t *testing.T) {
		_, err := callTool(t, s.handleMergeChunks, map[string]any{"device": "missing"})
		requireCode(t, err, ErrorCodeDeviceNotFound)
	})
}

func TestListDialects(t *testing.T) {
	s := setupTestServer(t)

	out, err := callTool(t, s.handleListDialects, nil)
	require.NoError(t, err)

	dialects, ok := out["dialects"].([]any)
	require.True(t, ok)

	names := make([]string, 0, len(dialects))
	var ios map[string]any
	for _, d := range dialects {
		entry := d.(map[string]any)
		names = append(names, entry["name"].(string))
		if entry["name"] == "ios" {
			ios = entry
		}
	}
	assert.Contains(t, names, "generic")
	assert.Contains(t, names, "nxos")
	require.NotNil(t, ios)
	assert.Contains(t, ios["aliases"], "iosxe")
	assert.Equal(t, float64(3), out["detect_min_score"])
}

func TestIndexAndQuery(t *testing.T) {
	s := setupTestServer(t, WithWorkers(2))
	dir := t.TempDir()
	writeConfig(t, dir, "R1.cfg", iosConfig)
	writeConfig(t, dir, "SW1.cfg", "feature bgp\nhostname SW1\ninterface Ethernet1/1\n no shutdown\n")

	out, err := callTool(t, s.handleIndexConfigs, map[string]any{
		"path":      dir,
		"os_map":    map[string]any{"R1.cfg": "ios"},
		"detect_os": true,
	})
	require.NoError(t, err)
	assert.Equal(t, float64(2), out["devices_indexed"])
	assert.Equal(t, float64(0), out["devices_failed"])
	assert.Equal(t, map[string]any{"ios": float64(1), "nxos": float64(1)}, out["dialects"])
	assert.NotEmpty(t, out["run_id"])

	t.Run("unchanged files are skipped", func(t *testing.T) {
		again, err := callTool(t, s.handleIndexConfigs, map[string]any{
			"path": dir, "os_map": map[string]any{"R1.cfg": "ios"}, "detect_os": true,
		})
		require.NoError(t, err)
		assert.Equal(t, float64(2), again["devices_skipped"])

		forced, err := callTool(t, s.handleIndexConfigs, map[string]any{
			"path": dir, "os_map": map[string]any{"R1.cfg": "ios"}, "detect_os": true, "force": true,
		})
		require.NoError(t, err)
		assert.Equal(t, float64(2), forced["devices_indexed"])
	})

	t.Run("get device chunks", func(t *testing.T) {
		out, err := callTool(t, s.handleGetDeviceChunks, map[string]any{"device": "R1"})
		require.NoError(t, err)
		assert.Equal(t, "ios", out["os_type"])
		assert.Equal(t, float64(3), out["chunk_count"])

		filtered, err := callTool(t, s.handleGetDeviceChunks, map[string]any{"device": "R1", "section_type": "interface"})
		require.NoError(t, err)
		assert.Equal(t, float64(1), filtered["chunk_count"])
		chunk := filtered["chunks"].([]any)[0].(map[string]any)
		assert.True(t, strings.HasPrefix(chunk["content"].(string), "interface GigabitEthernet0/1"))
	})

	t.Run("search chunks", func(t *testing.T) {
		out, err := callTool(t, s.handleSearchChunks, map[string]any{"query": "ospf"})
		require.NoError(t, err)
		results := out["results"].([]any)
		require.Len(t, results, 1)
		first := results[0].(map[string]any)
		assert.Equal(t, "R1", first["device"])
		assert.Equal(t, "router", first["section_type"])
		assert.Equal(t, float64(1), first["rank"])

		none, err := callTool(t, s.handleSearchChunks, map[string]any{"query": "ospf", "devices": []any{"SW1"}})
		require.NoError(t, err)
		assert.Equal(t, float64(0), none["total"])
	})

	t.Run("merge stored device", func(t *testing.T) {
		out, err := callTool(t, s.handleMergeChunks, map[string]any{"device": "R1"})
		require.NoError(t, err)
		text := out["text"].(string)
		assert.Equal(t, "indexed", out["ordering"])
		assert.True(t, strings.HasPrefix(text, "version 15.2\n"))
		assert.Contains(t, text, "\n!\nrouter ospf 1\n")
		assert.True(t, strings.HasSuffix(text, "area 0\n"))
	})

	t.Run("status", func(t *testing.T) {
		out, err := callTool(t, s.handleGetStatus, nil)
		require.NoError(t, err)
		assert.Equal(t, true, out["indexed"])
		stats := out["statistics"].(map[string]any)
		assert.Equal(t, float64(2), stats["devices_count"])
		assert.NotEmpty(t, out["last_run_id"])
		indexing := out["indexing"].(map[string]any)
		assert.Equal(t, false, indexing["in_progress"])
	})
}

func TestIndexConfigsErrors(t *testing.T) {
	s := setupTestServer(t)
	dir := t.TempDir()
	writeConfig(t, dir, "R1.cfg", iosConfig)

	tests := []struct {
		name string
		args map[string]any
		code int
	}{
		{"missing path", map[string]any{}, ErrorCodeInvalidParams},
		{"relative path", map[string]any{"path": "configs"}, ErrorCodeInvalidParams},
		{"nonexistent path", map[string]any{"path": filepath.Join(dir, "nope")}, ErrorCodeInvalidParams},
		{"os_map not an object", map[string]any{"path": dir, "os_map": "ios"}, ErrorCodeInvalidParams},
		{"unsupported os_type", map[string]any{"path": dir, "os_type": "vyos"}, ErrorCodeUnsupportedDialect},
		{"no configs in directory", map[string]any{"path": t.TempDir(), "os_type": "ios"}, ErrorCodeInvalidParams},
		{"unmapped device without detection", map[string]any{"path": dir, "os_map": map[string]any{"other.cfg": "ios"}}, ErrorCodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := callTool(t, s.handleIndexConfigs, tt.args)
			requireCode(t, err, tt.code)
		})
	}
}

func TestIndexConfigsSingleFile(t *testing.T) {
	s := setupTestServer(t)
	path := writeConfig(t, t.TempDir(), "R1.cfg", iosConfig)

	out, err := callTool(t, s.handleIndexConfigs, map[string]any{"path": path, "os_type": "ios"})
	require.NoError(t, err)
	assert.Equal(t, float64(1), out["devices_indexed"])
	assert.Equal(t, float64(3), out["chunks_created"])
}

func TestIndexConfigsInProgress(t *testing.T) {
	s := setupTestServer(t)
	dir := t.TempDir()
	writeConfig(t, dir, "R1.cfg", iosConfig)

	require.True(t, s.lock.TryAcquire("/elsewhere"))
	defer s.lock.Release()

	_, err := callTool(t, s.handleIndexConfigs, map[string]any{"path": dir, "os_type": "ios"})
	requireCode(t, err, ErrorCodeIndexingInProgress)

	out, err := callTool(t, s.handleGetStatus, nil)
	require.NoError(t, err)
	indexing := out["indexing"].(map[string]any)
	assert.Equal(t, true, indexing["in_progress"])
	assert.Equal(t, "/elsewhere", indexing["path"])
}

func TestGetDeviceChunksNotFound(t *testing.T) {
	s := setupTestServer(t)

	_, err := callTool(t, s.handleGetDeviceChunks, map[string]any{"device": "R1"})
	requireCode(t, err, ErrorCodeDeviceNotFound)

	_, err = callTool(t, s.handleGetDeviceChunks, map[string]any{})
	requireCode(t, err, ErrorCodeInvalidParams)
}

func TestSearchChunksValidation(t *testing.T) {
	s := setupTestServer(t)

	tests := []struct {
		name string
		args map[string]any
		code int
	}{
		{"missing query", map[string]any{}, ErrorCodeEmptyQuery},
		{"empty query", map[string]any{"query": ""}, ErrorCodeEmptyQuery},
		{"whitespace query", map[string]any{"query": "   "}, ErrorCodeEmptyQuery},
		{"limit too small", map[string]any{"query": "bgp", "limit": float64(0)}, ErrorCodeInvalidParams},
		{"limit too large", map[string]any{"query": "bgp", "limit": float64(101)}, ErrorCodeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := callTool(t, s.handleSearchChunks, tt.args)
			requireCode(t, err, tt.code)
		})
	}
}

func TestGetStatusEmpty(t *testing.T) {
	s := setupTestServer(t)

	out, err := callTool(t, s.handleGetStatus, nil)
	require.NoError(t, err)
	assert.Equal(t, false, out["indexed"])
	assert.Nil(t, out["last_indexed_at"])
	health := out["health"].(map[string]any)
	assert.Equal(t, true, health["database_accessible"])
}

func TestCacheKey(t *testing.T) {
	base := cacheKey("ios", "R1", "hostname R1\n")
	assert.Equal(t, base, cacheKey("ios", "R1", "hostname R1\n"))
	assert.NotEqual(t, base, cacheKey("nxos", "R1", "hostname R1\n"))
	assert.NotEqual(t, base, cacheKey("ios", "R2", "hostname R1\n"))
	assert.NotEqual(t, base, cacheKey("io", "sR1", "hostname R1\n"))
}

func TestMCPError(t *testing.T) {
	err := newMCPError(ErrorCodeEmptyQuery, "query parameter is required", nil)
	assert.Equal(t, "MCP error -32004: query parameter is required", err.Error())
}
