package chunker

import (
	"fmt"
	"strings"
	"testing"
)

// syntheticConfig builds an IOS-style configuration with n interfaces
func syntheticConfig(n int) string {
	var b strings.Builder
	b.WriteString("version 15.2\nhostname BENCH\n!\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "interface GigabitEthernet0/%d\n", i)
		fmt.Fprintf(&b, " description link-%d\n", i)
		fmt.Fprintf(&b, " ip address 10.%d.%d.1 255.255.255.0\n", i/256, i%256)
		b.WriteString(" no shutdown\n!\n")
	}
	b.WriteString("router ospf 1\n network 10.0.0.0 0.255.255.255 area 0\n!\nend\n")
	return b.String()
}

// BenchmarkSegment benchmarks segmentation of a large configuration
func BenchmarkSegment(b *testing.B) {
	text := syntheticConfig(500)
	def := mustResolve(b, "ios")
	c := New()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Segment("BENCH", text, def)
	}
}

// BenchmarkBuild benchmarks segmentation plus enrichment
func BenchmarkBuild(b *testing.B) {
	text := syntheticConfig(500)
	def := mustResolve(b, "ios")
	c := New()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Build("BENCH", text, def, "ios")
	}
}
