package types

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
)

// ChunkType represents how a chunk was delimited in the source configuration
type ChunkType string

const (
	// ChunkExplicit is a chunk opened by a recognized section header
	ChunkExplicit ChunkType = "explicit"
	// ChunkGlobal is a chunk of unsectioned top-level lines
	ChunkGlobal ChunkType = "global"
)

// GlobalSection is the section_type and chunk_id placeholder used for global chunks
const GlobalSection = "global"

// Metadata carries the derived fields of a chunk.
// Field names follow the persisted chunk-set JSON format.
type Metadata struct {
	Device      string    `json:"device"`
	ChunkType   ChunkType `json:"chunk_type"`
	Section     string    `json:"section,omitempty"`
	OSType      string    `json:"os_type,omitempty"`
	ChunkIndex  *int      `json:"chunk_index,omitempty"` // Nullable - absent on unenriched chunks
	SectionType string    `json:"section_type,omitempty"`
	ChunkID     string    `json:"chunk_id,omitempty"`
}

// Chunk is an independently addressable slice of a device configuration
type Chunk struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// NewExplicitChunk creates an unenriched chunk belonging to a named section
func NewExplicitChunk(device, section, content string) Chunk {
	return Chunk{
		Content: content,
		Metadata: Metadata{
			Device:    device,
			ChunkType: ChunkExplicit,
			Section:   section,
		},
	}
}

// NewGlobalChunk creates an unenriched chunk of unsectioned lines
func NewGlobalChunk(device, content string) Chunk {
	return Chunk{
		Content: content,
		Metadata: Metadata{
			Device:    device,
			ChunkType: ChunkGlobal,
		},
	}
}

// Index returns the chunk index and whether it is set
func (c *Chunk) Index() (int, bool) {
	if c.Metadata.ChunkIndex == nil {
		return 0, false
	}
	return *c.Metadata.ChunkIndex, true
}

// HasIndex reports whether the chunk carries a chunk_index
func (c *Chunk) HasIndex() bool {
	return c.Metadata.ChunkIndex != nil
}

// SetIndex sets the chunk index
func (c *Chunk) SetIndex(idx int) {
	c.Metadata.ChunkIndex = &idx
}

// ContentHash returns the SHA-256 hash of the chunk content
func (c *Chunk) ContentHash() [32]byte {
	return sha256.Sum256([]byte(c.Content))
}

// DeriveSectionType returns the lower-cased first token of section,
// or "global" for global chunks and empty sections.
func DeriveSectionType(section string, chunkType ChunkType) string {
	if chunkType == ChunkGlobal {
		return GlobalSection
	}
	fields := strings.Fields(section)
	if len(fields) == 0 {
		return GlobalSection
	}
	return strings.ToLower(fields[0])
}

// ChunkKey builds the composite chunk_id "device|section|index".
// An empty section is written as "global".
func ChunkKey(device, section string, index int) string {
	if section == "" {
		section = GlobalSection
	}
	return fmt.Sprintf("%s|%s|%d", device, section, index)
}

// ValidateChunkType checks if the chunk type is valid
func (c *Chunk) ValidateChunkType() error {
	switch c.Metadata.ChunkType {
	case ChunkExplicit, ChunkGlobal:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidChunkType, c.Metadata.ChunkType)
	}
}

// Validate performs comprehensive validation of the chunk
func (c *Chunk) Validate() error {
	if c.Content == "" {
		return ErrEmptyContent
	}

	if err := c.ValidateChunkType(); err != nil {
		return err
	}

	if c.Metadata.Device == "" {
		return ErrMissingDevice
	}

	if c.Metadata.ChunkType == ChunkExplicit && c.Metadata.Section == "" {
		return errors.New("explicit chunks must carry a section header")
	}

	if idx, ok := c.Index(); ok && idx < 0 {
		return ErrInvalidChunkIndex
	}

	return nil
}
