package storage

import (
	"context"
	"time"

	"github.com/dshills/netconfig-mcp/pkg/types"
)

// Storage defines the interface for persisting and querying device chunk sets
type Storage interface {
	// Device operations
	UpsertDevice(ctx context.Context, device *Device) error
	GetDevice(ctx context.Context, name string) (*Device, error)
	ListDevices(ctx context.Context) ([]*Device, error)
	DeleteDevice(ctx context.Context, name string) error

	// Chunk operations
	ReplaceDeviceChunks(ctx context.Context, deviceID int64, chunks []types.Chunk) error
	ListChunksByDevice(ctx context.Context, deviceID int64) ([]*Chunk, error)
	GetChunkByKey(ctx context.Context, deviceID int64, chunkID string) (*Chunk, error)

	// Search operations
	SearchText(ctx context.Context, query string, limit int, filters *SearchFilters) ([]TextResult, error)

	// Status operations
	GetStatus(ctx context.Context) (*Status, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Device represents one configuration file and its indexing state
type Device struct {
	ID            int64
	Name          string
	OSType        string
	ContentHash   [32]byte
	SourcePath    string
	ChunkCount    int
	IndexRunID    string
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Chunk is the persisted form of types.Chunk
type Chunk struct {
	ID          int64
	DeviceID    int64
	ChunkID     string // device|section|index key
	ChunkIndex  int
	ChunkType   string
	Section     string
	SectionType string
	OSType      string
	Content     string
	ContentHash [32]byte
	CreatedAt   time.Time
}

// SearchFilters contains filters for narrowing search results
type SearchFilters struct {
	Devices      []string // Filter by device name
	SectionTypes []string // Filter by section_type (interface, router, global, ...)
	ChunkTypes   []string // Filter by chunk_type (explicit, global)
	OSTypes      []string // Filter by dialect
	MinRelevance float64  // Minimum normalized relevance score
}

// TextResult represents a result from full-text search
type TextResult struct {
	Chunk     *Chunk
	Device    string
	BM25Score float64 // Normalized to (0, 1], higher is better
}

// Status contains statistics about the chunk store
type Status struct {
	DevicesCount  int
	ChunksCount   int
	DialectCounts map[string]int // Devices per os_type
	SectionCounts map[string]int // Chunks per section_type
	IndexSizeMB   float64
	LastIndexedAt time.Time
	LastRunID     string
	Health        HealthStatus
}

// HealthStatus represents the health of the store
type HealthStatus struct {
	DatabaseAccessible bool
	FTSIndexesBuilt    bool
}

// ToTypesChunk converts a stored chunk back into its wire form
func (c *Chunk) ToTypesChunk(device string) types.Chunk {
	idx := c.ChunkIndex
	return types.Chunk{
		Content: c.Content,
		Metadata: types.Metadata{
			Device:      device,
			ChunkType:   types.ChunkType(c.ChunkType),
			Section:     c.Section,
			OSType:      c.OSType,
			ChunkIndex:  &idx,
			SectionType: c.SectionType,
			ChunkID:     c.ChunkID,
		},
	}
}

// FromTypesChunk converts an enriched chunk for storage under deviceID.
// position is used when the chunk carries no chunk_index.
func FromTypesChunk(c types.Chunk, deviceID int64, position int) *Chunk {
	idx, ok := c.Index()
	if !ok {
		idx = position
	}

	sectionType := c.Metadata.SectionType
	if sectionType == "" {
		sectionType = types.DeriveSectionType(c.Metadata.Section, c.Metadata.ChunkType)
	}

	chunkID := c.Metadata.ChunkID
	if chunkID == "" {
		chunkID = types.ChunkKey(c.Metadata.Device, c.Metadata.Section, idx)
	}

	return &Chunk{
		DeviceID:    deviceID,
		ChunkID:     chunkID,
		ChunkIndex:  idx,
		ChunkType:   string(c.Metadata.ChunkType),
		Section:     c.Metadata.Section,
		SectionType: sectionType,
		OSType:      c.Metadata.OSType,
		Content:     c.Content,
		ContentHash: c.ContentHash(),
	}
}
