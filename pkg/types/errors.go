package types

import "errors"

// Engine errors
var (
	// ErrUnsupportedDialect is returned when a requested or detected dialect is not registered
	ErrUnsupportedDialect = errors.New("unsupported dialect")
	// ErrAmbiguousDialect is returned when detection has no confident single answer
	ErrAmbiguousDialect = errors.New("ambiguous dialect")
	// ErrMalformedChunkSet is returned when a chunk collection is not an ordered sequence of chunk records
	ErrMalformedChunkSet = errors.New("malformed chunk set")
	// ErrInconsistentIndexing reports that only some chunks in a set carry chunk_index
	ErrInconsistentIndexing = errors.New("inconsistent chunk indexing")
)

// Validation errors
var (
	ErrEmptyContent      = errors.New("content cannot be empty")
	ErrInvalidChunkType  = errors.New("invalid chunk type")
	ErrMissingDevice     = errors.New("device is required")
	ErrInvalidChunkIndex = errors.New("chunk index must be >= 0")
)
