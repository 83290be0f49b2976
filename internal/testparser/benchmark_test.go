package testparser

import (
	"strings"
	"testing"
)

func BenchmarkDejaGnuParser(b *testing.B) {
	// A large multi-suite transcript, similar to a full GCC check.
	var sb strings.Builder
	for s := 0; s < 8; s++ {
		sb.WriteString("\t\t=== suite")
		sb.WriteByte(byte('a' + s))
		sb.WriteString(" tests ===\n")
		for i := 0; i < 2000; i++ {
			sb.WriteString("Running /src/testsuite/some.exp ...\n")
			if i%50 == 0 {
				sb.WriteString("FAIL: gcc.dg/test-case.c (test for excess errors)\n")
			}
		}
		sb.WriteString("# of expected passes\t\t73912\n# of unexpected failures\t40\n")
	}
	transcript := sb.String()
	parser := &DejaGnuParser{}

	b.ReportAllocs()
	b.SetBytes(int64(len(transcript)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for range parser.Parse(strings.NewReader(transcript)) {
		}
	}
}
