package citation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKeyRoundTrip(t *testing.T) {
	keys := []string{
		"ric.i.207",
		"ric.iv.1.207a",
		"ric.207",
		"crawford.335/1c",
		"crawford.335",
		"rpc.i.s2.123",
		"rpc.i.s.123",
		"rpc.4374",
		"sng.cop.123",
		"sng.von-aulock.1234",
		"sng.berry.55",
		"doc.iii.1.12",
		"sear.1234",
		"calico.123",
	}
	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			ref, err := ParseKey(key)
			require.NoError(t, err)
			assert.Equal(t, key, CanonicalKey(ref))
			assert.Equal(t, key, ref.Normalized)
		})
	}
}

func TestParseKeyErrors(t *testing.T) {
	invalid := []string{
		"ric",
		"foo.1",
		"ric.i.",
		"ric.q.12",
		"ric.i.335/1",
		"crawford.i.335/1",
		"sng.123",
		"doc.iii.1.2.12",
	}
	for _, key := range invalid {
		_, err := ParseKey(key)
		assert.Error(t, err, key)
	}
}

func TestCanonicalKeyIdempotent(t *testing.T) {
	engine := NewEngine()
	inputs := []string{
		"RIC I² 207",
		"RIC IV-1 Lugdunum 207a",
		"Cr. 335/1c",
		"RPC I S2 123",
		"SNG von Aulock 1234",
		"DOC III.1 12",
		"Calicó 123",
		"335/1c",
	}
	for _, input := range inputs {
		first := engine.Parse(input)
		require.NotNil(t, first.Reference, input)
		second := engine.Parse(first.Reference.Normalized)
		require.NotNil(t, second.Reference, first.Reference.Normalized)
		assert.Equal(t, first.Reference.Normalized, second.Reference.Normalized, input)
	}
}

func TestCanonicalKeyIgnoresEditionAndMint(t *testing.T) {
	engine := NewEngine()
	keys := map[string]bool{}
	for _, input := range []string{"RIC I 207", "RIC I² 207", "RIC I(2) 207", "RIC 1, Lugdunum 207"} {
		outcome := engine.Parse(input)
		require.NotNil(t, outcome.Reference, input)
		keys[outcome.Reference.Normalized] = true
	}
	assert.Len(t, keys, 1)
}

func TestDisplay(t *testing.T) {
	engine := NewEngine()
	cases := map[string]string{
		"RIC 2, 115":         "RIC II 115",
		"ric ii 115":         "RIC II 115",
		"RIC I² 207":         "RIC I 207",
		"Cr. 335/1C":         "Crawford 335/1c",
		"RPC I S2 123":       "RPC I S2 123",
		"SNG Copenhagen 45":  "SNG Cop 45",
		"DOC 3-1 12":         "DOC III.1 12",
		"Calico 123":         "Calicó 123",
		"BMC RR 1234":        "BMCRR 1234",
		"sng.von-aulock.123": "SNG von Aulock 123",
	}
	for input, expected := range cases {
		outcome := engine.Parse(input)
		require.NotNil(t, outcome.Reference, input)
		assert.Equal(t, expected, Display(outcome.Reference), input)
	}
	assert.Empty(t, Display(nil))
}

func TestDisplayText(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"RIC 2, 115", "RIC II 115"},
		{"RIC II 115", "RIC II 115"},
		{"crawford 335/1C; foo  bar", "Crawford 335/1c; FOO BAR"},
		{"RIC I 207 / Crawford 335/1c", "RIC I 207; Crawford 335/1c"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, DisplayText(tc.input), tc.input)
	}
}

func TestCRROTypeID(t *testing.T) {
	engine := NewEngine()

	id, ok := CRROTypeID(engine.Parse("Crawford 335/1c").Reference)
	require.True(t, ok)
	assert.Equal(t, "rrc-335.1c", id)

	id, ok = CRROTypeID(engine.Parse("RRC 44/5").Reference)
	require.True(t, ok)
	assert.Equal(t, "rrc-44.5", id)

	id, ok = CRROTypeID(engine.Parse("Crawford 335").Reference)
	require.True(t, ok)
	assert.Equal(t, "rrc-335", id)

	_, ok = CRROTypeID(engine.Parse("RIC I 207").Reference)
	assert.False(t, ok)
}

func TestRPCURL(t *testing.T) {
	engine := NewEngine()
	base := "https://rpc.ashmus.ox.ac.uk"

	link, ok := RPCURL(base, engine.Parse("RPC I 4374").Reference)
	require.True(t, ok)
	assert.Equal(t, "https://rpc.ashmus.ox.ac.uk/coins/1/4374", link)

	link, ok = RPCURL(base+"/", engine.Parse("RPC I S2 123").Reference)
	require.True(t, ok)
	assert.Equal(t, "https://rpc.ashmus.ox.ac.uk/coins/1/123?supplement=S2", link)

	_, ok = RPCURL(base, engine.Parse("RPC 4374").Reference)
	assert.False(t, ok, "volume-less references have no page")
}
