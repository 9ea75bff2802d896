package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineParse(t *testing.T) {
	cases := []struct {
		name       string
		input      string
		system     System
		key        string
		confidence float64
		review     bool
	}{
		// RIC
		{name: "ric_roman", input: "RIC I 207", system: SystemRIC, key: "ric.i.207", confidence: 1},
		{name: "ric_arabic_comma", input: "RIC 1, 207", system: SystemRIC, key: "ric.i.207", confidence: 1},
		{name: "ric_superscript_edition", input: "RIC I² 207", system: SystemRIC, key: "ric.i.207", confidence: 1},
		{name: "ric_paren_edition", input: "RIC I(2) 207", system: SystemRIC, key: "ric.i.207", confidence: 1},
		{name: "ric_part_and_mint", input: "RIC IV.1 Lugdunum 207a", system: SystemRIC, key: "ric.iv.1.207a", confidence: 1},
		{name: "ric_hyphen_part", input: "RIC IV-1 207", system: SystemRIC, key: "ric.iv.1.207", confidence: 1},
		{name: "ric_lower_case", input: "ric vii trier 12", system: SystemRIC, key: "ric.vii.12", confidence: 1},
		{name: "ric_nbsp", input: "RIC II 115", system: SystemRIC, key: "ric.ii.115", confidence: 1},
		{name: "ric_dot_before_number", input: "RIC II. 115", system: SystemRIC, key: "ric.ii.115", confidence: 1},
		{name: "ric_hyphen_before_number", input: "RIC II-115", system: SystemRIC, key: "ric.ii.115", confidence: 1},
		{name: "ric_dot_before_mint", input: "RIC VII. Trier 12", system: SystemRIC, key: "ric.vii.12", confidence: 1},
		{name: "ric_no_volume", input: "RIC 207", system: SystemRIC, key: "ric.207", confidence: 0.7, review: true},

		// Crawford
		{name: "crawford_full", input: "Crawford 335/1c", system: SystemCrawford, key: "crawford.335/1c", confidence: 1},
		{name: "crawford_cr", input: "Cr. 335/1c", system: SystemCrawford, key: "crawford.335/1c", confidence: 1},
		{name: "crawford_rrc", input: "RRC 44/5", system: SystemCrawford, key: "crawford.44/5", confidence: 1},
		{name: "crawford_main_only", input: "Crawford 335", system: SystemCrawford, key: "crawford.335", confidence: 0.7, review: true},
		{name: "crawford_bare", input: "335/1c", system: SystemCrawford, key: "crawford.335/1c", confidence: 0.5, review: true},

		// RPC
		{name: "rpc_roman", input: "RPC I 4374", system: SystemRPC, key: "rpc.i.4374", confidence: 1},
		{name: "rpc_supplement", input: "RPC I S2 123", system: SystemRPC, key: "rpc.i.s2.123", confidence: 1},
		{name: "rpc_bare_supplement", input: "RPC I S 123", system: SystemRPC, key: "rpc.i.s.123", confidence: 1},
		{name: "rpc_arabic", input: "RPC 2, 1234", system: SystemRPC, key: "rpc.ii.1234", confidence: 1},
		{name: "rpc_no_volume", input: "RPC 4374", system: SystemRPC, key: "rpc.4374", confidence: 0.7, review: true},

		// Keyword catalogs
		{name: "rsc", input: "RSC 12", system: SystemRSC, key: "rsc.12", confidence: 1},
		{name: "rsc_volume", input: "RSC II 12", system: SystemRSC, key: "rsc.ii.12", confidence: 1},
		{name: "bmcre", input: "BMCRE 1 123", system: SystemBMCRE, key: "bmcre.i.123", confidence: 1},
		{name: "bmc", input: "BMC 123", system: SystemBMCRE, key: "bmcre.123", confidence: 1},
		{name: "bmcrr", input: "BMC RR 1234", system: SystemBMCRR, key: "bmcrr.1234", confidence: 1},
		{name: "sear", input: "Sear 1234", system: SystemSear, key: "sear.1234", confidence: 1},
		{name: "srcv", input: "SRCV 1234", system: SystemSear, key: "sear.1234", confidence: 1},
		{name: "sydenham", input: "Syd. 1234", system: SystemSydenham, key: "sydenham.1234", confidence: 1},
		{name: "cohen", input: "Cohen 382", system: SystemCohen, key: "cohen.382", confidence: 1},
		{name: "cohen_abbrev", input: "C. 382", system: SystemCohen, key: "cohen.382", confidence: 1},
		{name: "calico_accent", input: "Calicó 123", system: SystemCalico, key: "calico.123", confidence: 1},
		{name: "calico_abbrev", input: "Cal. 123", system: SystemCalico, key: "calico.123", confidence: 1},
		{name: "doc_part", input: "DOC III.1 12", system: SystemDOC, key: "doc.iii.1.12", confidence: 1},
		{name: "doc_no_volume", input: "DOC 12", system: SystemDOC, key: "doc.12", confidence: 0.7, review: true},

		// SNG
		{name: "sng_cop", input: "SNG Cop 123", system: SystemSNG, key: "sng.cop.123", confidence: 1},
		{name: "sng_alias", input: "SNG Copenhagen 123", system: SystemSNG, key: "sng.cop.123", confidence: 1},
		{name: "sng_two_words", input: "SNG von Aulock 1234", system: SystemSNG, key: "sng.von-aulock.1234", confidence: 1},

		// Canonical keys parse back to themselves.
		{name: "canonical_key", input: "ric.i.207", system: SystemRIC, key: "ric.i.207", confidence: 1},
	}

	engine := NewEngine()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcome := engine.Parse(tc.input)
			require.NotNil(t, outcome.Reference, "expected %q to parse", tc.input)
			assert.Equal(t, tc.system, outcome.Reference.System)
			assert.Equal(t, tc.key, outcome.Reference.Normalized)
			assert.InDelta(t, tc.confidence, outcome.Confidence, 1e-9)
			assert.Equal(t, tc.review, outcome.NeedsReview)
			assert.Equal(t, tc.input, outcome.Raw)
		})
	}
}

func TestRICFields(t *testing.T) {
	ref, ok := NewRICParser().Parse("RIC IV.1 Lugdunum 207A")
	require.True(t, ok)
	assert.Equal(t, "IV.1", ref.Volume)
	assert.Equal(t, "207", ref.Number)
	assert.Equal(t, "a", ref.Variant)
	assert.Equal(t, "Lugdunum", ref.Mint)
	assert.Empty(t, ref.Warnings)

	ref, ok = NewRICParser().Parse("RIC I³ 207")
	require.True(t, ok)
	assert.Equal(t, "3", ref.Edition)
	assert.Equal(t, "ric.i.207", ref.Normalized)

	ref, ok = NewRICParser().Parse("RIC 207")
	require.True(t, ok)
	assert.Equal(t, []string{WarnVolumeMissing}, ref.Warnings)

	for _, input := range []string{"RIC II. 115", "RIC II-115", "RIC II.115"} {
		ref, ok = NewRICParser().Parse(input)
		require.True(t, ok, input)
		assert.Equal(t, "II", ref.Volume, input)
		assert.Equal(t, "115", ref.Number, input)
		assert.Empty(t, ref.Mint, input)
	}
}

func TestRICRejectsOutOfRangeVolume(t *testing.T) {
	for _, input := range []string{"RIC XII 5", "RIC 12 345", "RICHARD 5"} {
		_, ok := NewRICParser().Parse(input)
		assert.False(t, ok, input)
	}
}

func TestEngineParseUnrecognized(t *testing.T) {
	engine := NewEngine()

	outcome := engine.Parse("hello world")
	assert.Nil(t, outcome.Reference)
	assert.False(t, outcome.NeedsReview)
	assert.Equal(t, ReasonUnrecognized, outcome.Reason)
	assert.Zero(t, outcome.Confidence)

	outcome = engine.Parse("RIC XII 5")
	assert.Nil(t, outcome.Reference)
	assert.True(t, outcome.NeedsReview, "keyword plus digits should be flagged")

	outcome = engine.Parse("   ")
	assert.Nil(t, outcome.Reference)
	assert.Equal(t, ReasonEmpty, outcome.Reason)
}

func TestEngineReasons(t *testing.T) {
	engine := NewEngine()
	assert.Equal(t, ReasonStructured, engine.Parse("RIC I 207").Reason)
	assert.Equal(t, ReasonWarnings, engine.Parse("RIC 207").Reason)
	assert.Equal(t, ReasonHeuristic, engine.Parse("335/1c").Reason)
	assert.Equal(t, ReasonCanonicalKey, engine.Parse("crawford.335/1c").Reason)
}

func TestEngineCustomThresholds(t *testing.T) {
	engine := NewEngine(WithThresholds(Thresholds{
		ReviewCutoff:        0.6,
		WarningConfidence:   0.7,
		HeuristicConfidence: 0.5,
	}))

	outcome := engine.Parse("RIC 207")
	require.NotNil(t, outcome.Reference)
	assert.False(t, outcome.NeedsReview)

	outcome = engine.Parse("335/1")
	require.NotNil(t, outcome.Reference)
	assert.True(t, outcome.NeedsReview)
}

func TestEngineParseAs(t *testing.T) {
	engine := NewEngine()

	outcome := engine.ParseAs(SystemCrawford, "335/1c")
	require.NotNil(t, outcome.Reference)
	assert.Equal(t, "crawford.335/1c", outcome.Reference.Normalized)
	assert.Equal(t, 1.0, outcome.Confidence)
	assert.False(t, outcome.NeedsReview)

	outcome = engine.ParseAs(SystemRIC, "Crawford 335/1c")
	assert.Nil(t, outcome.Reference)
	assert.True(t, outcome.NeedsReview)

	outcome = engine.ParseAs(System("unknown"), "RIC I 207")
	assert.Nil(t, outcome.Reference)
}

func TestEngineDetectSystem(t *testing.T) {
	engine := NewEngine()
	cases := map[string]System{
		"RIC II 115":      SystemRIC,
		"Cr. 335/1c":      SystemCrawford,
		"RPC I 4374":      SystemRPC,
		"BMC RR 1234":     SystemBMCRR,
		"Sear 1234":       SystemSear,
		"SNG Cop 123":     SystemSNG,
		"ric.ii.115":      SystemRIC,
		"crawford.335/1c": SystemCrawford,
	}
	for input, expected := range cases {
		system, ok := engine.DetectSystem(input)
		assert.True(t, ok, input)
		assert.Equal(t, expected, system, input)
	}

	_, ok := engine.DetectSystem("no citation here")
	assert.False(t, ok)
}

func TestEngineParseMultiple(t *testing.T) {
	engine := NewEngine()
	cases := []struct {
		name string
		text string
		keys []string
	}{
		{name: "semicolon", text: "RIC I 207; Crawford 335/1c", keys: []string{"ric.i.207", "crawford.335/1c"}},
		{name: "comma_inside_citation", text: "RIC II, 115", keys: []string{"ric.ii.115"}},
		{name: "comma_after_arabic_volume", text: "RIC 2, 115", keys: []string{"ric.ii.115"}},
		{name: "comma_between_citations", text: "RIC I 207, RIC II 115", keys: []string{"ric.i.207", "ric.ii.115"}},
		{name: "slash_and_newline", text: "Crawford 335/1c / RIC I 207\nRPC I 4374", keys: []string{"crawford.335/1c", "ric.i.207", "rpc.i.4374"}},
		{name: "empty_fragments", text: " ; ,, ", keys: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			outcomes := engine.ParseMultiple(tc.text)
			var keys []string
			for _, outcome := range outcomes {
				require.NotNil(t, outcome.Reference, "fragment %q", outcome.Raw)
				keys = append(keys, outcome.Reference.Normalized)
			}
			assert.Equal(t, tc.keys, keys)
		})
	}
}

func TestParseSystem(t *testing.T) {
	cases := map[string]System{
		"RIC":    SystemRIC,
		" rrc ":  SystemCrawford,
		"Calicó": SystemCalico,
		"srcv":   SystemSear,
		"sng":    SystemSNG,
	}
	for input, expected := range cases {
		system, ok := ParseSystem(input)
		assert.True(t, ok, input)
		assert.Equal(t, expected, system)
	}
	_, ok := ParseSystem("nope")
	assert.False(t, ok)
}

func TestLooksLikeReference(t *testing.T) {
	assert.True(t, LooksLikeReference("RIC XII 5"))
	assert.True(t, LooksLikeReference("12/3x"))
	assert.True(t, LooksLikeReference("Calicó 5x"))
	assert.False(t, LooksLikeReference("RIC"))
	assert.False(t, LooksLikeReference("gold aureus 7 grams"))
}
