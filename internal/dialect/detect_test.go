package dialect

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/netconfig-mcp/pkg/types"
)

func TestDetectNXOS(t *testing.T) {
	det := MustDetector()

	result := det.Detect("feature bgp\ninterface Ethernet1/1\n description uplink\n")

	require.True(t, result.Confident)
	assert.Equal(t, NXOS, result.Dialect)
	assert.Equal(t, 5, result.Scores[NXOS])
	assert.Equal(t, []string{NXOS}, result.Tied)
	assert.NoError(t, result.Err())
}

func TestDetectDialects(t *testing.T) {
	det := MustDetector()

	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "iosxr route policy",
			text:     "route-policy PASS\n  pass\nend-policy\n",
			expected: IOSXR,
		},
		{
			name:     "eos management api",
			text:     "management api http-commands\n   no shutdown\n",
			expected: EOS,
		},
		{
			name:     "ios banner lines",
			text:     "version 15.2\nservice timestamps debug datetime msec\nip cef\n",
			expected: IOS,
		},
		{
			name:     "signatures are case-insensitive",
			text:     "FEATURE ospf\n",
			expected: NXOS,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := det.Detect(tt.text)
			assert.True(t, result.Confident)
			assert.Equal(t, tt.expected, result.Dialect)
		})
	}
}

func TestDetectSignatureCountsOnce(t *testing.T) {
	det := MustDetector()

	once := det.Detect("feature bgp\n")
	many := det.Detect("feature bgp\nfeature ospf\nfeature lacp\n")

	assert.Equal(t, once.Scores[NXOS], many.Scores[NXOS])
}

func TestDetectBelowFloor(t *testing.T) {
	det := MustDetector()

	result := det.Detect("hostname R1\nip cef\n")

	assert.False(t, result.Confident)
	assert.Empty(t, result.Dialect)
	assert.Equal(t, 1, result.Best)
	assert.ErrorIs(t, result.Err(), types.ErrAmbiguousDialect)
}

func TestDetectEmptyText(t *testing.T) {
	result := MustDetector().Detect("")

	assert.False(t, result.Confident)
	assert.Zero(t, result.Best)
	assert.Empty(t, result.Tied)
}

func TestDetectTie(t *testing.T) {
	det := MustDetector(WithSignatures(map[string][]SignatureSpec{
		"alpha": {{`^alpha\b`, 3}},
		"beta":  {{`^beta\b`, 3}},
	}))

	result := det.Detect("alpha\nbeta\n")

	assert.False(t, result.Confident)
	assert.Empty(t, result.Dialect)
	assert.Equal(t, []string{"alpha", "beta"}, result.Tied)

	err := result.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAmbiguousDialect)
	assert.Contains(t, err.Error(), "alpha=3 beta=3")
}

func TestDetectMinScore(t *testing.T) {
	det := MustDetector(WithMinScore(1))
	assert.Equal(t, 1, det.MinScore())

	result := det.Detect("ip cef\n")
	assert.True(t, result.Confident)
	assert.Equal(t, IOS, result.Dialect)
}

func TestDetectInvalidSignature(t *testing.T) {
	_, err := NewDetector(WithSignatures(map[string][]SignatureSpec{
		"bad": {{`(`, 1}},
	}))
	assert.Error(t, err)
}

func TestDetectDeterministic(t *testing.T) {
	det := MustDetector()
	text := "feature bgp\nvrf context management\nroute-policy X\nend-policy\n"

	first := det.Detect(text)

	var wg sync.WaitGroup
	results := make([]Detection, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = det.Detect(text)
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, first, r)
	}
}
