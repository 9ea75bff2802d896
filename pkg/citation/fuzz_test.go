package citation

import (
	"strings"
	"testing"
)

// FuzzEngineParse tests the parser engine with arbitrary input.
// Run with: go test -fuzz=FuzzEngineParse -fuzztime=30s ./pkg/citation/...
func FuzzEngineParse(f *testing.F) {
	seeds := []string{
		// RIC
		"RIC I 207",
		"RIC 1, 207",
		"RIC I² 207",
		"RIC I(2) 207",
		"RIC IV.1 Lugdunum 207a",
		"RIC 207",

		// Crawford
		"Crawford 335/1c",
		"Cr. 335/1c",
		"RRC 44/5",
		"335/1c",

		// RPC
		"RPC I 4374",
		"RPC I S2 123",
		"RPC 4374",

		// Other catalogs
		"RSC 12",
		"BMCRE 1 123",
		"BMC RR 1234",
		"Sear 1234",
		"Syd. 1234",
		"C. 382",
		"Calicó 123",
		"DOC III.1 12",
		"SNG von Aulock 1234",

		// Canonical keys
		"ric.iv.1.207a",
		"sng.cop.123",

		// Edge cases
		"",
		"RIC",
		"RIC XII 5",
		"///",
		"RIC " + strings.Repeat("I", 100) + " 1",
		"\x00\xff",
	}
	for _, seed := range seeds {
		f.Add(seed)
	}

	engine := NewEngine()
	f.Fuzz(func(t *testing.T, input string) {
		outcome := engine.Parse(input)
		if outcome.Reference == nil {
			if outcome.Confidence != 0 {
				t.Errorf("unmatched input %q has confidence %v", input, outcome.Confidence)
			}
			return
		}
		if outcome.Confidence <= 0 || outcome.Confidence > 1 {
			t.Errorf("confidence %v out of range for %q", outcome.Confidence, input)
		}

		key := outcome.Reference.Normalized
		ref, err := ParseKey(key)
		if err != nil {
			t.Fatalf("ParseKey(%q) from %q: %v", key, input, err)
		}
		if CanonicalKey(ref) != key {
			t.Errorf("key %q did not round-trip, got %q", key, CanonicalKey(ref))
		}
	})
}

// FuzzParseMultiple checks that splitting never loses a parseable input.
func FuzzParseMultiple(f *testing.F) {
	for _, seed := range []string{"RIC I 207; Crawford 335/1c", "RIC II, 115", "a / b\nc", ",,;"} {
		f.Add(seed)
	}

	engine := NewEngine()
	f.Fuzz(func(t *testing.T, input string) {
		for _, outcome := range engine.ParseMultiple(input) {
			if strings.TrimSpace(outcome.Raw) == "" {
				t.Errorf("empty fragment returned for %q", input)
			}
		}
	})
}
