package chunker

import (
	"github.com/dshills/netconfig-mcp/pkg/types"
)

// Enrich assigns chunk_index, os_type, section_type and chunk_id from each chunk's position.
// It returns a new slice and leaves the input untouched. Enriching twice yields the same values.
func Enrich(chunks []types.Chunk, osType string) []types.Chunk {
	out := make([]types.Chunk, len(chunks))
	for i, c := range chunks {
		c.SetIndex(i)
		c.Metadata.OSType = osType
		c.Metadata.SectionType = types.DeriveSectionType(c.Metadata.Section, c.Metadata.ChunkType)
		c.Metadata.ChunkID = types.ChunkKey(c.Metadata.Device, c.Metadata.Section, i)
		out[i] = c
	}
	return out
}

// Normalize fills missing metadata on an externally loaded chunk set.
// Present fields are kept; device defaults to the given name and
// chunk_index defaults to the chunk's position.
func Normalize(chunks []types.Chunk, device string) []types.Chunk {
	out := make([]types.Chunk, len(chunks))
	for i, c := range chunks {
		if c.Metadata.Device == "" {
			c.Metadata.Device = device
		}
		if !c.HasIndex() {
			c.SetIndex(i)
		}
		if c.Metadata.SectionType == "" {
			c.Metadata.SectionType = types.DeriveSectionType(c.Metadata.Section, c.Metadata.ChunkType)
		}
		if c.Metadata.ChunkID == "" {
			idx, _ := c.Index()
			c.Metadata.ChunkID = types.ChunkKey(c.Metadata.Device, c.Metadata.Section, idx)
		}
		out[i] = c
	}
	return out
}
