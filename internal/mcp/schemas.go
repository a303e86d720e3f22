package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// chunkConfigTool returns the tool definition for chunk_config
func chunkConfigTool() mcp.Tool {
	return mcp.Tool{
		Name:        "chunk_config",
		Description: "Segment one device configuration into explicit section chunks and global chunks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"device": map[string]any{
					"type":        "string",
					"description": "Device name recorded in every chunk",
				},
				"text": map[string]any{
					"type":        "string",
					"description": "Full configuration text",
				},
				"os_type": map[string]any{
					"type":        "string",
					"description": "Dialect name or alias (ios, nxos, eos, iosxr, junos, ...). Defaults to generic",
				},
				"detect_os": map[string]any{
					"type":        "boolean",
					"description": "If true and os_type is empty, detect the dialect from the text",
					"default":     false,
				},
			},
			Required: []string{"device", "text"},
		},
	}
}

// detectOSTool returns the tool definition for detect_os
func detectOSTool() mcp.Tool {
	return mcp.Tool{
		Name:        "detect_os",
		Description: "Score configuration text against every dialect signature table",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"text": map[string]any{
					"type":        "string",
					"description": "Full configuration text",
				},
			},
			Required: []string{"text"},
		},
	}
}

// mergeChunksTool returns the tool definition for merge_chunks
func mergeChunksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "merge_chunks",
		Description: "Reassemble a chunk set into configuration text. Pass either chunks or a stored device name",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"chunks": map[string]any{
					"type":        "array",
					"description": "Chunk set as produced by chunk_config",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"content":  map[string]any{"type": "string"},
							"metadata": map[string]any{"type": "object"},
						},
						"required": []string{"content"},
					},
				},
				"device": map[string]any{
					"type":        "string",
					"description": "Merge the stored chunk set of this device",
				},
				"separator": map[string]any{
					"type":        "string",
					"description": "Text placed between chunks (default \"\\n!\\n\")",
				},
				"no_separator": map[string]any{
					"type":        "boolean",
					"description": "If true, join chunks with a single newline",
					"default":     false,
				},
			},
		},
	}
}

// listDialectsTool returns the tool definition for list_dialects
func listDialectsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_dialects",
		Description: "List registered dialects with their aliases and section patterns",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}
}

// indexConfigsTool returns the tool definition for index_configs
func indexConfigsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_configs",
		Description: "Chunk .cfg files from disk and store the chunk sets for lookup and search",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"path": map[string]any{
					"type":        "string",
					"description": "A .cfg file or a directory of .cfg files",
				},
				"os_type": map[string]any{
					"type":        "string",
					"description": "Dialect applied to every file",
				},
				"os_map": map[string]any{
					"type":                 "object",
					"description":          "Map of file name or device name to dialect",
					"additionalProperties": map[string]any{"type": "string"},
				},
				"detect_os": map[string]any{
					"type":        "boolean",
					"description": "Detect the dialect of files not covered by os_type or os_map",
					"default":     false,
				},
				"force": map[string]any{
					"type":        "boolean",
					"description": "If true, rewrite devices whose content is unchanged",
					"default":     false,
				},
				"out_dir": map[string]any{
					"type":        "string",
					"description": "Also write <device>.json chunk files here (existing .json files are removed)",
				},
			},
			Required: []string{"path"},
		},
	}
}

// getDeviceChunksTool returns the tool definition for get_device_chunks
func getDeviceChunksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_device_chunks",
		Description: "Return the stored chunk set of a device in chunk_index order",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"device": map[string]any{
					"type":        "string",
					"description": "Device name",
				},
				"section_type": map[string]any{
					"type":        "string",
					"description": "Only return chunks of this section type (interface, router, global, ...)",
				},
			},
			Required: []string{"device"},
		},
	}
}

// searchChunksTool returns the tool definition for search_chunks
func searchChunksTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_chunks",
		Description: "Full-text search over stored chunks",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "Search terms",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     DefaultSearchLimit,
					"minimum":     1,
					"maximum":     MaxSearchLimit,
				},
				"devices": map[string]any{
					"type":        "array",
					"description": "Restrict to these devices",
					"items":       map[string]any{"type": "string"},
				},
				"section_types": map[string]any{
					"type":        "array",
					"description": "Restrict to these section types",
					"items":       map[string]any{"type": "string"},
				},
				"os_types": map[string]any{
					"type":        "array",
					"description": "Restrict to these dialects",
					"items":       map[string]any{"type": "string"},
				},
			},
			Required: []string{"query"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report chunk store statistics and whether indexing is running",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]any{},
		},
	}
}
