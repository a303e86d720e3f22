package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/netconfig-mcp/internal/dialect"
	"github.com/dshills/netconfig-mcp/internal/merger"
	"github.com/dshills/netconfig-mcp/internal/splitter"
	"github.com/dshills/netconfig-mcp/pkg/types"
)

func mustResolve(t testing.TB, name string) *dialect.Definition {
	t.Helper()
	def, err := dialect.NewRegistry().Resolve(name)
	require.NoError(t, err)
	return def
}

func TestNew(t *testing.T) {
	c := New()
	assert.NotNil(t, c)
	assert.Equal(t, MaxChunkSize, c.maxChunkSize)
	assert.NotNil(t, c.splitter)
}

func TestSegment_HostnameAndInterface(t *testing.T) {
	text := "hostname R1\n!\ninterface Gi0/1\n ip address 10.0.0.1 255.255.255.0\n!\n"

	chunks := New().Build("R1", text, mustResolve(t, "ios"), "ios")

	require.Len(t, chunks, 2)

	assert.Equal(t, types.ChunkGlobal, chunks[0].Metadata.ChunkType)
	assert.Equal(t, "hostname R1", chunks[0].Content)
	assert.Empty(t, chunks[0].Metadata.Section)

	assert.Equal(t, types.ChunkExplicit, chunks[1].Metadata.ChunkType)
	assert.Equal(t, "interface Gi0/1", chunks[1].Metadata.Section)
	assert.Equal(t, "interface Gi0/1\n ip address 10.0.0.1 255.255.255.0", chunks[1].Content)

	for i, c := range chunks {
		idx, ok := c.Index()
		require.True(t, ok)
		assert.Equal(t, i, idx)
	}
	assert.Equal(t, "R1|global|0", chunks[0].Metadata.ChunkID)
	assert.Equal(t, "R1|interface Gi0/1|1", chunks[1].Metadata.ChunkID)
	assert.Equal(t, "interface", chunks[1].Metadata.SectionType)
}

func TestSegment_AllComments(t *testing.T) {
	chunks := New().Segment("R1", "! only comments\n! more\n", mustResolve(t, "ios"))
	assert.Empty(t, chunks)
}

func TestSegment_EmptyInput(t *testing.T) {
	def := mustResolve(t, "generic")
	assert.Empty(t, New().Segment("R1", "", def))
	assert.Empty(t, New().Segment("R1", "\n\n   \n", def))
}

func TestSegment_Classification(t *testing.T) {
	tests := []struct {
		name     string
		dialect  string
		text     string
		expected []types.Chunk
	}{
		{
			name:    "consecutive top-level lines form one global chunk",
			dialect: "ios",
			text:    "hostname R1\nip cef\nservice password-encryption\n",
			expected: []types.Chunk{
				types.NewGlobalChunk("R1", "hostname R1\nip cef\nservice password-encryption"),
			},
		},
		{
			name:    "unknown header with indented children is a section",
			dialect: "generic",
			text:    "snmp-server view ALL\n include iso\n",
			expected: []types.Chunk{
				types.NewExplicitChunk("R1", "snmp-server view ALL", "snmp-server view ALL\n include iso"),
			},
		},
		{
			name:    "comment followed by indented line stays inside the section",
			dialect: "ios",
			text:    "router bgp 65000\n neighbor 1.1.1.1 remote-as 1\n!\n address-family ipv4\n  network 10.0.0.0\n",
			expected: []types.Chunk{
				types.NewExplicitChunk("R1", "router bgp 65000",
					"router bgp 65000\n neighbor 1.1.1.1 remote-as 1\n address-family ipv4\n  network 10.0.0.0"),
			},
		},
		{
			name:    "indented comments are dropped",
			dialect: "ios",
			text:    "interface Gi0/1\n ! uplink\n shutdown\n",
			expected: []types.Chunk{
				types.NewExplicitChunk("R1", "interface Gi0/1", "interface Gi0/1\n shutdown"),
			},
		},
		{
			name:    "top-level directive closes the open section",
			dialect: "ios",
			text:    "interface Gi0/1\n shutdown\nhostname R1\n",
			expected: []types.Chunk{
				types.NewExplicitChunk("R1", "interface Gi0/1", "interface Gi0/1\n shutdown"),
				types.NewGlobalChunk("R1", "hostname R1"),
			},
		},
		{
			name:    "section start flushes buffered globals first",
			dialect: "ios",
			text:    "hostname R1\ninterface Gi0/1\n shutdown\ninterface Gi0/2\n no shutdown\n",
			expected: []types.Chunk{
				types.NewGlobalChunk("R1", "hostname R1"),
				types.NewExplicitChunk("R1", "interface Gi0/1", "interface Gi0/1\n shutdown"),
				types.NewExplicitChunk("R1", "interface Gi0/2", "interface Gi0/2\n no shutdown"),
			},
		},
		{
			name:    "ignored end line",
			dialect: "ios",
			text:    "hostname R1\nend\n",
			expected: []types.Chunk{
				types.NewGlobalChunk("R1", "hostname R1"),
			},
		},
		{
			name:    "iosxr keeps end as a directive",
			dialect: "iosxr",
			text:    "hostname R1\nend\n",
			expected: []types.Chunk{
				types.NewGlobalChunk("R1", "hostname R1\nend"),
			},
		},
		{
			name:    "indented line with nothing open starts a global run",
			dialect: "ios",
			text:    " description orphan\nhostname R1\n",
			expected: []types.Chunk{
				types.NewGlobalChunk("R1", " description orphan\nhostname R1"),
			},
		},
		{
			name:    "crlf line endings",
			dialect: "ios",
			text:    "hostname R1\r\n!\r\ninterface Gi0/1\r\n shutdown\r\n",
			expected: []types.Chunk{
				types.NewGlobalChunk("R1", "hostname R1"),
				types.NewExplicitChunk("R1", "interface Gi0/1", "interface Gi0/1\n shutdown"),
			},
		},
		{
			name:    "section header is trimmed",
			dialect: "ios",
			text:    "interface Gi0/1   \n shutdown\n",
			expected: []types.Chunk{
				types.NewExplicitChunk("R1", "interface Gi0/1", "interface Gi0/1   \n shutdown"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := New().Segment("R1", tt.text, mustResolve(t, tt.dialect))
			assert.Equal(t, tt.expected, chunks)
		})
	}
}

func TestSegment_OversizedSection(t *testing.T) {
	var b strings.Builder
	b.WriteString("interface Gi0/1\n")
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&b, " description %s%02d\n", strings.Repeat("x", 40), i)
	}
	text := b.String()
	require.Greater(t, len(text), MaxChunkSize)

	chunks := New().Build("R1", text, mustResolve(t, "ios"), "ios")

	require.GreaterOrEqual(t, len(chunks), 2)
	prev := -1
	for _, c := range chunks {
		assert.Equal(t, types.ChunkExplicit, c.Metadata.ChunkType)
		assert.Equal(t, "interface Gi0/1", c.Metadata.Section)
		assert.LessOrEqual(t, len(c.Content), MaxChunkSize)

		idx, ok := c.Index()
		require.True(t, ok)
		assert.Greater(t, idx, prev)
		prev = idx
	}
}

func TestSegment_CustomSplitter(t *testing.T) {
	s, err := splitter.New(20, 5)
	require.NoError(t, err)
	c := New(WithSplitter(s), WithMaxChunkSize(20))

	chunks := c.Segment("R1", "interface Gi0/1\n shutdown\n description uplink\n", mustResolve(t, "ios"))

	require.Len(t, chunks, 3)
	assert.Equal(t, "interface Gi0/1", chunks[0].Content)
	assert.Equal(t, "shutdown", chunks[1].Content)
	assert.Equal(t, "description uplink", chunks[2].Content)
	for _, ch := range chunks {
		assert.Equal(t, "interface Gi0/1", ch.Metadata.Section)
	}
}

func TestBuild_RoundTrip(t *testing.T) {
	text := "hostname R1\n" +
		"!\n" +
		"interface Gi0/1\n" +
		" ip address 10.0.0.1 255.255.255.0\n" +
		"!\n" +
		"interface Gi0/2\n" +
		" shutdown\n"

	chunks := New().Build("R1", text, mustResolve(t, "ios"), "ios")
	require.Len(t, chunks, 3)

	assert.Equal(t, text, merger.Merge(chunks, merger.DefaultSeparator))
}

func TestBuild_OrderPreservation(t *testing.T) {
	text := "version 15.2\nhostname R1\n!\ninterface Gi0/1\n shutdown\n!\nrouter ospf 1\n network 10.0.0.0 0.0.0.255 area 0\n!\nline vty 0 4\n login\n!\nntp server 1.1.1.1\n"

	chunks := New().Build("R1", text, mustResolve(t, "ios"), "ios")
	require.Len(t, chunks, 5)

	ordered, ordering := merger.Order(chunks)
	assert.Equal(t, merger.OrderingIndexed, ordering)
	assert.Equal(t, chunks, ordered, "sorting by chunk_index must be a no-op")

	sections := make([]string, 0, len(chunks))
	for _, c := range chunks {
		sections = append(sections, c.Metadata.SectionType)
	}
	assert.Equal(t, []string{"global", "interface", "router", "line", "global"}, sections)
}
