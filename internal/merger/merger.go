package merger

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/dshills/netconfig-mcp/internal/chunkset"
	"github.com/dshills/netconfig-mcp/pkg/types"
)

const (
	// DefaultSeparator places a comment terminator line between chunks
	DefaultSeparator = "\n!\n"

	// NoSeparator joins chunks with a bare line break
	NoSeparator = "\n"
)

// Ordering describes how a chunk set was ordered for merging
type Ordering int

const (
	// OrderingIndexed means every chunk carried chunk_index and the set was sorted by it
	OrderingIndexed Ordering = iota
	// OrderingInput means no chunk carried chunk_index and input order was kept
	OrderingInput
	// OrderingInconsistent means only some chunks carried chunk_index; input order was kept
	OrderingInconsistent
)

// String returns the ordering name
func (o Ordering) String() string {
	switch o {
	case OrderingIndexed:
		return "indexed"
	case OrderingInput:
		return "input"
	case OrderingInconsistent:
		return "inconsistent"
	default:
		return fmt.Sprintf("ordering(%d)", int(o))
	}
}

// Err returns types.ErrInconsistentIndexing for partially indexed sets.
// The error is informational; merging still proceeds in input order.
func (o Ordering) Err() error {
	if o == OrderingInconsistent {
		return fmt.Errorf("%w: merged in input order", types.ErrInconsistentIndexing)
	}
	return nil
}

// Order returns the chunks in merge order without modifying the input.
// Sets where every chunk has a chunk_index are stably sorted by it.
func Order(chunks []types.Chunk) ([]types.Chunk, Ordering) {
	ordered := append([]types.Chunk(nil), chunks...)

	indexed := 0
	for i := range ordered {
		if ordered[i].HasIndex() {
			indexed++
		}
	}

	switch {
	case len(ordered) == 0 || indexed == len(ordered):
		sort.SliceStable(ordered, func(i, j int) bool {
			a, _ := ordered[i].Index()
			b, _ := ordered[j].Index()
			return a < b
		})
		return ordered, OrderingIndexed
	case indexed == 0:
		return ordered, OrderingInput
	default:
		return ordered, OrderingInconsistent
	}
}

// Merge reassembles chunks into a configuration document.
// Each content is right-trimmed, the parts are joined with separator,
// and the result ends with exactly one line break.
func Merge(chunks []types.Chunk, separator string) string {
	text, _ := MergeWithOrdering(chunks, separator)
	return text
}

// MergeWithOrdering is like Merge but also reports the ordering applied
func MergeWithOrdering(chunks []types.Chunk, separator string) (string, Ordering) {
	ordered, ordering := Order(chunks)

	parts := make([]string, len(ordered))
	for i := range ordered {
		parts[i] = rightTrim(ordered[i].Content)
	}

	return rightTrim(strings.Join(parts, separator)) + "\n", ordering
}

// MergeJSON decodes a chunk set and merges it
func MergeJSON(r io.Reader, separator string) (string, Ordering, error) {
	chunks, err := chunkset.Decode(r)
	if err != nil {
		return "", OrderingInput, err
	}
	text, ordering := MergeWithOrdering(chunks, separator)
	return text, ordering, nil
}

func rightTrim(s string) string {
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
