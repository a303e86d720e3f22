package splitter

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultSize is the maximum piece length in runes
	DefaultSize = 800

	// DefaultOverlap is the number of runes carried between consecutive pieces
	DefaultOverlap = 100
)

// ErrInvalidConfig is returned by New for unusable size/overlap combinations
var ErrInvalidConfig = errors.New("invalid splitter configuration")

// DefaultSeparators are tried in order: paragraphs, lines, words, characters
var DefaultSeparators = []string{"\n\n", "\n", " ", ""}

// Splitter breaks oversized text into bounded, overlapping pieces.
// It is stateless after construction and safe for concurrent use.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// Option configures a Splitter
type Option func(*Splitter)

// WithSeparators replaces the separator hierarchy.
// An empty final separator enables character-level splitting.
func WithSeparators(separators ...string) Option {
	return func(s *Splitter) {
		s.separators = append([]string(nil), separators...)
	}
}

// New creates a splitter producing pieces of at most size runes
func New(size, overlap int, opts ...Option) (*Splitter, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %d", ErrInvalidConfig, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", ErrInvalidConfig, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than size %d", ErrInvalidConfig, overlap, size)
	}

	s := &Splitter{
		size:       size,
		overlap:    overlap,
		separators: DefaultSeparators,
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.separators) == 0 {
		return nil, fmt.Errorf("%w: at least one separator is required", ErrInvalidConfig)
	}

	return s, nil
}

// Default returns the 800/100 splitter used for configuration sections
func Default() *Splitter {
	s, err := New(DefaultSize, DefaultOverlap)
	if err != nil {
		panic(err)
	}
	return s
}

// Size returns the maximum piece length in runes
func (s *Splitter) Size() int {
	return s.size
}

// Overlap returns the maximum carried-over length in runes
func (s *Splitter) Overlap() int {
	return s.overlap
}

// Split lazily yields the pieces of text in order.
// The sequence may be ranged over more than once.
func (s *Splitter) Split(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		s.split(text, s.separators, yield)
	}
}

// SplitText collects Split into a slice
func (s *Splitter) SplitText(text string) []string {
	var pieces []string
	for piece := range s.Split(text) {
		pieces = append(pieces, piece)
	}
	return pieces
}

// split recursively descends the separator hierarchy until every piece fits.
// It returns false once the consumer stops iterating.
func (s *Splitter) split(text string, separators []string, yield func(string) bool) bool {
	sep, rest := pickSeparator(text, separators)

	var fitting []string
	for _, part := range splitOn(text, sep) {
		if utf8.RuneCountInString(part) < s.size {
			fitting = append(fitting, part)
			continue
		}

		if len(fitting) > 0 {
			if !s.merge(fitting, sep, yield) {
				return false
			}
			fitting = nil
		}

		if len(rest) == 0 {
			if !emit(part, yield) {
				return false
			}
			continue
		}
		if !s.split(part, rest, yield) {
			return false
		}
	}

	if len(fitting) > 0 {
		return s.merge(fitting, sep, yield)
	}
	return true
}

// merge greedily joins adjacent parts up to size runes,
// keeping at most overlap runes of trailing parts for the next piece.
func (s *Splitter) merge(parts []string, sep string, yield func(string) bool) bool {
	sepLen := utf8.RuneCountInString(sep)

	var current []string
	total := 0

	for _, part := range parts {
		partLen := utf8.RuneCountInString(part)

		if len(current) > 0 && total+partLen+sepLen > s.size {
			if !emit(strings.Join(current, sep), yield) {
				return false
			}

			for total > s.overlap || (total > 0 && total+partLen+sepLen > s.size) {
				total -= utf8.RuneCountInString(current[0])
				if len(current) > 1 {
					total -= sepLen
				}
				current = current[1:]
			}
		}

		if len(current) > 0 {
			total += sepLen
		}
		current = append(current, part)
		total += partLen
	}

	if len(current) > 0 {
		return emit(strings.Join(current, sep), yield)
	}
	return true
}

// pickSeparator returns the first separator present in text and the finer ones after it
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return separators[len(separators)-1], nil
}

// splitOn splits text on sep, or into runes when sep is empty, dropping empty parts
func splitOn(text, sep string) []string {
	raw := strings.Split(text, sep)
	parts := raw[:0]
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func emit(piece string, yield func(string) bool) bool {
	piece = strings.TrimSpace(piece)
	if piece == "" {
		return true
	}
	return yield(piece)
}
