// Package mcp implements the Model Context Protocol (MCP) server for netconfig.
//
// The server exposes the segmentation engine and the chunk store as tools:
//   - chunk_config: Segment one configuration text into chunks
//   - detect_os: Score a configuration against the dialect signatures
//   - merge_chunks: Reassemble a chunk set, passed inline or loaded by device
//   - list_dialects: List registered dialects, aliases and section patterns
//   - index_configs: Chunk .cfg files from disk into the store
//   - get_device_chunks: Return a stored chunk set
//   - search_chunks: Full-text search over stored chunks
//   - get_status: Store statistics and indexing state
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// Stdout carries protocol messages only; logs go to stderr.
//
// # Tool: chunk_config
//
//	Request:
//	{
//	  "name": "chunk_config",
//	  "arguments": {"device": "R1", "text": "hostname R1\n!\ninterface Gi0/1\n shutdown\n", "os_type": "ios"}
//	}
//
//	Response:
//	{
//	  "device": "R1",
//	  "os_type": "ios",
//	  "dialect": "ios",
//	  "source": "declared",
//	  "chunk_count": 2,
//	  "cached": false,
//	  "chunks": [
//	    {"content": "hostname R1", "metadata": {"device": "R1", "chunk_type": "global", ...}},
//	    {"content": "interface Gi0/1\n shutdown", "metadata": {"section": "interface Gi0/1", ...}}
//	  ]
//	}
//
// os_type echoes the requested alias; dialect is the canonical table name.
// Results are cached by os_type, device and text, so repeated calls with the
// same input do not re-segment.
//
// # Tool: index_configs
//
// Only one index_configs call runs at a time. A concurrent call fails with
// the indexing-in-progress code rather than waiting.
//
// # Error Handling
//
// Handlers return *MCPError values:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Unsupported dialect
//   - -32002: Indexing in progress
//   - -32003: Device not found
//   - -32004: Empty query
//   - -32005: Malformed chunk set
//
// # MCP Client Configuration
//
//	{
//	  "mcpServers": {
//	    "netconfig": {
//	      "command": "/usr/local/bin/netconfig-mcp",
//	      "env": {"NETCONFIG_DB_PATH": "/var/lib/netconfig/netconfig.db"}
//	    }
//	  }
//	}
package mcp
