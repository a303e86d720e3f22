package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/netconfig-mcp/pkg/types"
)

func rawChunks() []types.Chunk {
	return []types.Chunk{
		types.NewGlobalChunk("R1", "hostname R1"),
		types.NewExplicitChunk("R1", "interface Gi0/1", "interface Gi0/1\n shutdown"),
		types.NewExplicitChunk("R1", "Router BGP 65000", "Router BGP 65000\n bgp log-neighbor-changes"),
	}
}

func TestEnrich(t *testing.T) {
	raw := rawChunks()

	chunks := Enrich(raw, "iosxe")
	require.Len(t, chunks, 3)

	expectedIDs := []string{"R1|global|0", "R1|interface Gi0/1|1", "R1|Router BGP 65000|2"}
	expectedTypes := []string{"global", "interface", "router"}

	for i, c := range chunks {
		idx, ok := c.Index()
		require.True(t, ok)
		assert.Equal(t, i, idx)
		assert.Equal(t, "iosxe", c.Metadata.OSType)
		assert.Equal(t, expectedIDs[i], c.Metadata.ChunkID)
		assert.Equal(t, expectedTypes[i], c.Metadata.SectionType)
	}

	for _, c := range raw {
		assert.False(t, c.HasIndex(), "input must not be modified")
		assert.Empty(t, c.Metadata.ChunkID)
	}
}

func TestEnrich_Idempotent(t *testing.T) {
	once := Enrich(rawChunks(), "ios")
	twice := Enrich(once, "ios")

	assert.Equal(t, once, twice)
}

func TestEnrich_Empty(t *testing.T) {
	assert.Empty(t, Enrich(nil, "ios"))
}

func TestNormalize(t *testing.T) {
	kept := types.NewExplicitChunk("R1", "interface Gi0/1", "interface Gi0/1")
	kept.SetIndex(7)
	kept.Metadata.ChunkID = "custom-id"
	kept.Metadata.SectionType = "custom"

	chunks := Normalize([]types.Chunk{
		{Content: "hostname R1", Metadata: types.Metadata{ChunkType: types.ChunkGlobal}},
		kept,
	}, "R1")

	require.Len(t, chunks, 2)

	first := chunks[0]
	assert.Equal(t, "R1", first.Metadata.Device)
	idx, ok := first.Index()
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "global", first.Metadata.SectionType)
	assert.Equal(t, "R1|global|0", first.Metadata.ChunkID)

	second := chunks[1]
	idx, _ = second.Index()
	assert.Equal(t, 7, idx)
	assert.Equal(t, "custom-id", second.Metadata.ChunkID)
	assert.Equal(t, "custom", second.Metadata.SectionType)
}

func TestNormalize_KeepsDevice(t *testing.T) {
	chunks := Normalize([]types.Chunk{types.NewGlobalChunk("core-1", "hostname core-1")}, "file-name")
	assert.Equal(t, "core-1", chunks[0].Metadata.Device)
	assert.Equal(t, "core-1|global|0", chunks[0].Metadata.ChunkID)
}
