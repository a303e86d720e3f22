package dialect

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/dshills/netconfig-mcp/pkg/types"
)

// DefaultMinScore is the lowest winning score accepted as a confident detection
const DefaultMinScore = 3

// SignatureSpec is the uncompiled form of a Signature
type SignatureSpec struct {
	Pattern string
	Weight  int
}

// Signature is a weighted multiline pattern indicative of one dialect
type Signature struct {
	Pattern *regexp.Regexp
	Weight  int
}

// Detection is the outcome of scoring a configuration against every signature table
type Detection struct {
	Dialect   string         // Empty when no confident match
	Scores    map[string]int // Score per dialect with a signature table
	Best      int            // Highest score observed
	Tied      []string       // Dialects sharing the highest positive score, sorted
	Confident bool
}

// Err returns ErrAmbiguousDialect wrapped with the scores, or nil when confident
func (d Detection) Err() error {
	if d.Confident {
		return nil
	}
	if len(d.Tied) > 1 {
		return fmt.Errorf("%w: tie between %s at score %d (scores: %s)",
			types.ErrAmbiguousDialect, strings.Join(d.Tied, ", "), d.Best, d.FormatScores())
	}
	return fmt.Errorf("%w: best score %d below threshold (scores: %s)",
		types.ErrAmbiguousDialect, d.Best, d.FormatScores())
}

// FormatScores renders the scores as "name=score" pairs sorted by name
func (d Detection) FormatScores() string {
	names := make([]string, 0, len(d.Scores))
	for name := range d.Scores {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, d.Scores[name]))
	}
	return strings.Join(parts, " ")
}

// Detector scores raw configuration text against per-dialect signature tables.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	signatures map[string][]Signature
	names      []string
	minScore   int
}

// DetectorOption configures a Detector
type DetectorOption func(*detectorConfig)

type detectorConfig struct {
	minScore   int
	signatures map[string][]SignatureSpec
}

// WithMinScore overrides the confidence floor
func WithMinScore(score int) DetectorOption {
	return func(c *detectorConfig) {
		c.minScore = score
	}
}

// WithSignatures replaces the built-in signature tables
func WithSignatures(signatures map[string][]SignatureSpec) DetectorOption {
	return func(c *detectorConfig) {
		c.signatures = signatures
	}
}

// NewDetector compiles the signature tables.
// Patterns are matched case-insensitively with ^ and $ anchoring at line boundaries.
func NewDetector(opts ...DetectorOption) (*Detector, error) {
	cfg := detectorConfig{
		minScore:   DefaultMinScore,
		signatures: builtinSignatures(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	d := &Detector{
		signatures: make(map[string][]Signature, len(cfg.signatures)),
		names:      make([]string, 0, len(cfg.signatures)),
		minScore:   cfg.minScore,
	}

	for name, specs := range cfg.signatures {
		compiled := make([]Signature, 0, len(specs))
		for _, s := range specs {
			re, err := regexp.Compile(`(?im)` + s.Pattern)
			if err != nil {
				return nil, fmt.Errorf("dialect %s: invalid signature %q: %w", name, s.Pattern, err)
			}
			compiled = append(compiled, Signature{Pattern: re, Weight: s.Weight})
		}
		d.signatures[name] = compiled
		d.names = append(d.names, name)
	}
	sort.Strings(d.names)

	return d, nil
}

// MustDetector is like NewDetector but panics on invalid signatures
func MustDetector(opts ...DetectorOption) *Detector {
	d, err := NewDetector(opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// MinScore returns the confidence floor
func (d *Detector) MinScore() int {
	return d.minScore
}

// Detect scores text against every signature table.
// Each signature contributes its weight once if it matches anywhere.
// A dialect wins only with a unique maximum of at least the confidence floor.
func (d *Detector) Detect(text string) Detection {
	det := Detection{Scores: make(map[string]int, len(d.names))}

	for _, name := range d.names {
		score := 0
		for _, sig := range d.signatures[name] {
			if sig.Pattern.MatchString(text) {
				score += sig.Weight
			}
		}
		det.Scores[name] = score
		if score > det.Best {
			det.Best = score
		}
	}

	if det.Best > 0 {
		for _, name := range d.names {
			if det.Scores[name] == det.Best {
				det.Tied = append(det.Tied, name)
			}
		}
	}

	if det.Best >= d.minScore && len(det.Tied) == 1 {
		det.Dialect = det.Tied[0]
		det.Confident = true
	}

	return det
}
