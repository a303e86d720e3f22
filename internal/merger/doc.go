// Package merger reassembles chunk sets into configuration text.
//
// Merging is the inverse of segmentation for chunks that were never
// size-split: chunks are ordered, each content is right-trimmed, and the
// parts are joined with a separator line.
//
//	text := merger.Merge(chunks, merger.DefaultSeparator)
//
// # Ordering
//
// A set where every chunk carries chunk_index is sorted by it. A set with no
// indexes keeps its input order. A set where only some chunks are indexed
// also keeps input order; Order reports OrderingInconsistent and
// Ordering.Err returns types.ErrInconsistentIndexing so callers can log the
// degraded result. Merging never fails on ordering.
//
// Overlap introduced by size splitting is not removed, so sets containing
// split chunks do not reproduce the source byte for byte.
package merger
