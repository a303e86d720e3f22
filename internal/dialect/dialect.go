package dialect

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Definition is the immutable pattern table of one configuration dialect.
// It is safe for concurrent use once constructed.
type Definition struct {
	name            string
	patterns        []string
	sectionStart    []*regexp.Regexp
	commentPrefixes []string
	ignoreLines     map[string]struct{}
}

// Spec is the uncompiled form of a Definition
type Spec struct {
	Name                 string
	SectionStartPatterns []string
	CommentPrefixes      []string
	IgnoreLines          []string
}

// NewDefinition compiles a dialect from its spec.
// Section-start patterns are case-insensitive and anchored at the start of the trimmed line.
func NewDefinition(spec Spec) (*Definition, error) {
	if spec.Name == "" {
		return nil, errors.New("dialect name is required")
	}

	def := &Definition{
		name:            spec.Name,
		patterns:        append([]string(nil), spec.SectionStartPatterns...),
		sectionStart:    make([]*regexp.Regexp, 0, len(spec.SectionStartPatterns)),
		commentPrefixes: append([]string(nil), spec.CommentPrefixes...),
		ignoreLines:     make(map[string]struct{}, len(spec.IgnoreLines)),
	}

	for _, p := range spec.SectionStartPatterns {
		re, err := regexp.Compile(`(?i)^(?:` + p + `)`)
		if err != nil {
			return nil, fmt.Errorf("dialect %s: invalid section pattern %q: %w", spec.Name, p, err)
		}
		def.sectionStart = append(def.sectionStart, re)
	}

	for _, l := range spec.IgnoreLines {
		def.ignoreLines[l] = struct{}{}
	}

	return def, nil
}

// MustDefinition is like NewDefinition but panics on an invalid spec
func MustDefinition(spec Spec) *Definition {
	def, err := NewDefinition(spec)
	if err != nil {
		panic(err)
	}
	return def
}

// Name returns the dialect's canonical name
func (d *Definition) Name() string {
	return d.name
}

// Patterns returns the section-start patterns in match order
func (d *Definition) Patterns() []string {
	return append([]string(nil), d.patterns...)
}

// CommentPrefixes returns the literal comment prefixes
func (d *Definition) CommentPrefixes() []string {
	return append([]string(nil), d.commentPrefixes...)
}

// IgnoreLines returns the ignored literals, sorted
func (d *Definition) IgnoreLines() []string {
	lines := make([]string, 0, len(d.ignoreLines))
	for l := range d.ignoreLines {
		lines = append(lines, l)
	}
	sort.Strings(lines)
	return lines
}

// IsSectionStart reports whether a trimmed line matches any section-start pattern
func (d *Definition) IsSectionStart(trimmed string) bool {
	for _, re := range d.sectionStart {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// IsComment reports whether the line, ignoring leading whitespace, starts with a comment prefix
func (d *Definition) IsComment(line string) bool {
	stripped := strings.TrimLeftFunc(line, unicode.IsSpace)
	for _, p := range d.commentPrefixes {
		if strings.HasPrefix(stripped, p) {
			return true
		}
	}
	return false
}

// IsIgnored reports whether the trimmed line is one of the ignored literals
func (d *Definition) IsIgnored(line string) bool {
	_, ok := d.ignoreLines[strings.TrimSpace(line)]
	return ok
}

// IsTopLevel reports whether a line starts with a non-whitespace character
func IsTopLevel(line string) bool {
	if line == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(line)
	return !unicode.IsSpace(r)
}
