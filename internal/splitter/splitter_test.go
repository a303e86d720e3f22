package splitter

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("ip route 10.0.%02d.0 255.255.255.0 Null0", i)
	}
	return lines
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.size, tt.overlap)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}

	t.Run("no separators", func(t *testing.T) {
		_, err := New(10, 0, WithSeparators())
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, DefaultSize, s.Size())
	assert.Equal(t, DefaultOverlap, s.Overlap())
}

func TestSplitShortText(t *testing.T) {
	pieces := Default().SplitText("hello world")
	assert.Equal(t, []string{"hello world"}, pieces)
}

func TestSplitWhitespaceOnly(t *testing.T) {
	assert.Empty(t, Default().SplitText("   \n\n  "))
	assert.Empty(t, Default().SplitText(""))
}

func TestSplitPrefersParagraphs(t *testing.T) {
	p1 := strings.TrimSpace(strings.Repeat("alpha ", 80))
	p2 := strings.TrimSpace(strings.Repeat("bravo ", 80))

	pieces := Default().SplitText(p1 + "\n\n" + p2)

	assert.Equal(t, []string{p1, p2}, pieces)
}

func TestSplitLinesWithOverlap(t *testing.T) {
	lines := routeLines(30)
	text := strings.Join(lines, "\n")
	require.Greater(t, len(text), DefaultSize)

	pieces := Default().SplitText(text)
	require.Len(t, pieces, 2)

	for _, p := range pieces {
		assert.LessOrEqual(t, utf8.RuneCountInString(p), DefaultSize)
	}

	for _, line := range lines {
		found := false
		for _, p := range pieces {
			if strings.Contains(p, line) {
				found = true
				break
			}
		}
		assert.True(t, found, "line %q lost", line)
	}

	first := strings.Split(pieces[1], "\n")[0]
	assert.Contains(t, pieces[0], first, "consecutive pieces should overlap")
	assert.Equal(t, lines[18], first)
}

func TestSplitCharacters(t *testing.T) {
	text := strings.Repeat("a", 2000)

	pieces := Default().SplitText(text)

	require.Len(t, pieces, 3)
	assert.Equal(t, 800, len(pieces[0]))
	assert.Equal(t, 800, len(pieces[1]))
	assert.Equal(t, 600, len(pieces[2]))
}

func TestSplitCountsRunes(t *testing.T) {
	text := strings.Repeat("é", 900)

	pieces := Default().SplitText(text)

	require.NotEmpty(t, pieces)
	for _, p := range pieces {
		assert.True(t, utf8.ValidString(p))
		assert.LessOrEqual(t, utf8.RuneCountInString(p), DefaultSize)
	}
	assert.Equal(t, DefaultSize, utf8.RuneCountInString(pieces[0]))
}

func TestSplitCustomSeparators(t *testing.T) {
	s, err := New(10, 0, WithSeparators(","))
	require.NoError(t, err)

	assert.Equal(t, []string{"aaa,bbb", "ccc"}, s.SplitText("aaa,bbb,ccc"))

	// a part that cannot be cut further is emitted whole
	assert.Equal(t, []string{"abcdefghijklmno"}, s.SplitText("abcdefghijklmno"))
}

func TestSplitRestartable(t *testing.T) {
	seq := Default().Split(strings.Join(routeLines(30), "\n"))

	var first, second []string
	for p := range seq {
		first = append(first, p)
	}
	for p := range seq {
		second = append(second, p)
	}

	assert.Equal(t, first, second)
}

func TestSplitEarlyStop(t *testing.T) {
	count := 0
	for range Default().Split(strings.Repeat("a", 5000)) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}
