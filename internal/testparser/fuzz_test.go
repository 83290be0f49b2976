package testparser

import (
	"strings"
	"testing"
)

// FuzzDejaGnuParser tests the DejaGnu transcript parser with arbitrary input.
// Run: go test -fuzz=FuzzDejaGnuParser -fuzztime=30s ./internal/testparser
func FuzzDejaGnuParser(f *testing.F) {
	seeds := []string{
		gccTranscript,
		"=== sim tests ===\n# of expected passes 10\n# of unexpected failures 1\nFAIL: foo.c\n",
		"",
		"\n",
		"=== tests ===",
		"=== === tests === tests ===\n",
		"# of expected passes\n",
		"# of expected passes 99999999999999999999999\n",
		"FAIL: \nXPASS: \n",
		"=== sim tests ===\r\n\r\nFAIL: x\r",
		"=== " + strings.Repeat("x", 10000) + " tests ===\nFAIL: " + strings.Repeat("y", 10000),
		"\x00\x01\x02=== bin tests ===\nFAIL: \x00",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	parser := &DejaGnuParser{}
	f.Fuzz(func(t *testing.T, input string) {
		suites := ParseString(parser, input)

		boundaries := 0
		for _, line := range strings.Split(input, "\n") {
			if dejagnuBoundaryRegex.MatchString(strings.TrimSuffix(line, "\r")) {
				boundaries++
			}
		}
		if len(suites) != boundaries {
			t.Errorf("got %d suites for %d boundaries", len(suites), boundaries)
		}

		for _, s := range suites {
			for _, o := range Outcomes {
				if s.Counts.Get(o) < 0 {
					t.Errorf("suite %q: negative %s count %d", s.Name, o, s.Counts.Get(o))
				}
			}
		}
	})
}
