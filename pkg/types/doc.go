// Package types provides shared type definitions for the netconfig MCP server.
//
// # Core Types
//
// Chunk is the unit of output of the segmentation engine: a slice of one device's
// configuration plus metadata. Its JSON form is the chunk-set wire format shared with
// every storage and indexing back end:
//
//	{
//	  "content": "interface Gi0/1\n ip address 10.0.0.1 255.255.255.0",
//	  "metadata": {
//	    "device": "R1",
//	    "chunk_type": "explicit",
//	    "section": "interface Gi0/1",
//	    "os_type": "ios",
//	    "chunk_index": 1,
//	    "section_type": "interface",
//	    "chunk_id": "R1|interface Gi0/1|1"
//	  }
//	}
//
// Global chunks hold top-level lines that belong to no stanza. They have no section,
// and their section_type is "global".
//
// # Chunk Identity
//
// chunk_index gives the total order used for reconstruction. chunk_id is unique only
// within one device's chunk set:
//
//	id := types.ChunkKey("R1", "interface Gi0/1", 1) // "R1|interface Gi0/1|1"
//
// ChunkIndex is a pointer so that externally produced chunk sets can omit it; the merge
// engine treats partially indexed sets as a best-effort case.
//
// # Errors
//
// Dialect and chunk-set failures are reported through sentinel errors and should be
// matched with errors.Is:
//
//	if errors.Is(err, types.ErrUnsupportedDialect) {
//	    // reject this file
//	}
package types
