package chunker

import (
	"strings"
	"unicode/utf8"

	"github.com/dshills/netconfig-mcp/internal/dialect"
	"github.com/dshills/netconfig-mcp/internal/splitter"
	"github.com/dshills/netconfig-mcp/pkg/types"
)

// MaxChunkSize is the content length in runes above which a flushed segment is size-split
const MaxChunkSize = splitter.DefaultSize

// Chunker segments device configurations into explicit and global chunks.
// A Chunker holds no per-call state and is safe for concurrent use.
type Chunker struct {
	splitter     *splitter.Splitter
	maxChunkSize int
}

// Option configures a Chunker
type Option func(*Chunker)

// WithSplitter sets the splitter used for oversized segments
func WithSplitter(s *splitter.Splitter) Option {
	return func(c *Chunker) {
		c.splitter = s
	}
}

// WithMaxChunkSize sets the length threshold that triggers size splitting
func WithMaxChunkSize(n int) Option {
	return func(c *Chunker) {
		c.maxChunkSize = n
	}
}

// New creates a new Chunker instance
func New(opts ...Option) *Chunker {
	c := &Chunker{
		splitter:     splitter.Default(),
		maxChunkSize: MaxChunkSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build segments text and enriches the result with index, dialect and identity fields
func (c *Chunker) Build(device, text string, def *dialect.Definition, osType string) []types.Chunk {
	return Enrich(c.Segment(device, text, def), osType)
}

// state is the accumulation bucket currently open
type state int

const (
	stateIdle    state = iota // no buffered lines
	stateSection              // explicit section open, buf holds its lines
	stateGlobal               // global lines buffered
)

// segmenter carries the mutable state of one Segment call
type segmenter struct {
	c      *Chunker
	device string
	state  state
	header string
	buf    []string
	out    []types.Chunk
}

// Segment splits a configuration into raw chunks in source order.
// The returned chunks carry device, chunk_type and section only. def must not be nil.
func (c *Chunker) Segment(device, text string, def *dialect.Definition) []types.Chunk {
	lines := splitLines(text)
	s := &segmenter{c: c, device: device}

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == "":
			continue

		case def.IsIgnored(line):
			continue

		case dialect.IsTopLevel(line) && def.IsComment(line):
			// A comment followed by indented lines sits inside the open stanza
			if s.state == stateSection {
				if next, ok := nextSignificant(lines, i, def); ok && !dialect.IsTopLevel(next) {
					continue
				}
			}
			s.flush()

		case def.IsComment(line):
			continue

		case dialect.IsTopLevel(line):
			if isSectionStart(lines, i, trimmed, def) {
				s.flush()
				s.open(trimmed, line)
				continue
			}
			if s.state == stateSection {
				s.flush()
			}
			s.appendGlobal(line)

		default:
			if s.state == stateIdle {
				s.state = stateGlobal
			}
			s.buf = append(s.buf, line)
		}
	}

	s.flush()
	return s.out
}

// open starts a new explicit section with line as its header and first line
func (s *segmenter) open(header, line string) {
	s.state = stateSection
	s.header = header
	s.buf = []string{line}
}

func (s *segmenter) appendGlobal(line string) {
	s.state = stateGlobal
	s.buf = append(s.buf, line)
}

// flush emits the open bucket, if any, and returns to idle
func (s *segmenter) flush() {
	switch s.state {
	case stateSection:
		for _, content := range s.c.emit(s.buf) {
			s.out = append(s.out, types.NewExplicitChunk(s.device, s.header, content))
		}
	case stateGlobal:
		for _, content := range s.c.emit(s.buf) {
			s.out = append(s.out, types.NewGlobalChunk(s.device, content))
		}
	}

	s.state = stateIdle
	s.header = ""
	s.buf = nil
}

// emit joins buffered lines and size-splits the result when it exceeds the threshold
func (c *Chunker) emit(lines []string) []string {
	content := strings.Join(trimBlankLines(lines), "\n")
	if content == "" {
		return nil
	}

	if utf8.RuneCountInString(content) <= c.maxChunkSize {
		return []string{content}
	}

	return c.splitter.SplitText(content)
}

// isSectionStart reports whether a top-level line opens a stanza, either by
// matching a section-start pattern or by being followed by indented lines.
func isSectionStart(lines []string, i int, trimmed string, def *dialect.Definition) bool {
	if def.IsSectionStart(trimmed) {
		return true
	}
	next, ok := nextSignificant(lines, i, def)
	return ok && !dialect.IsTopLevel(next)
}

// nextSignificant returns the first line after position i that is not blank,
// not an ignored literal and not a comment.
func nextSignificant(lines []string, i int, def *dialect.Definition) (string, bool) {
	for _, line := range lines[i+1:] {
		if strings.TrimSpace(line) == "" || def.IsIgnored(line) || def.IsComment(line) {
			continue
		}
		return line, true
	}
	return "", false
}

// splitLines splits text on newlines and drops a trailing carriage return from each line
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// trimBlankLines drops whitespace-only lines at both ends
func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}
