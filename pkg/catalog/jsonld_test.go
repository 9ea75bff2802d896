package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const augustusTypeJSONLD = `{
  "@context": {"nmo": "http://nomisma.org/ontology#", "skos": "http://www.w3.org/2004/02/skos/core#"},
  "@graph": [
    {
      "@id": "http://numismatics.org/ocre/id/ric.1(2).aug.207",
      "@type": "nmo:TypeSeriesItem",
      "skos:prefLabel": [
        {"@value": "RIC I (zweite Auflage) Augustus 207", "@language": "de"},
        {"@value": "RIC I (second edition) Augustus 207", "@language": "en"}
      ],
      "nmo:hasAuthority": {"@id": "http://nomisma.org/id/augustus"},
      "nmo:hasDenomination": {"@id": "http://nomisma.org/id/denarius"},
      "nmo:hasMint": {"@id": "http://nomisma.org/id/lugdunum"},
      "nmo:hasMaterial": {"@id": "http://nomisma.org/id/ar"},
      "nmo:hasStartDate": {"@value": "-0002", "@type": "xsd:gYear"},
      "nmo:hasEndDate": {"@value": "0004", "@type": "xsd:gYear"},
      "nmo:hasObverse": {"@id": "http://numismatics.org/ocre/id/ric.1(2).aug.207#obverse"},
      "nmo:hasReverse": {"@id": "#reverse"}
    },
    {
      "@id": "http://numismatics.org/ocre/id/ric.1(2).aug.207#obverse",
      "nmo:hasLegend": "CAESAR AVGVSTVS DIVI F PATER PATRIAE",
      "dcterms:description": [{"@value": "Head of Augustus, laureate, right", "@language": "en"}]
    },
    {
      "@id": "http://numismatics.org/ocre/id/ric.1(2).aug.207#reverse",
      "nmo:hasLegend": {"@value": "C L CAESARES AVGVSTI F COS DESIG PRINC IVVENT"},
      "dcterms:description": "Gaius and Lucius Caesars standing facing"
    },
    {
      "@id": "http://nomisma.org/id/ar",
      "skos:prefLabel": [{"@value": "Silver", "@language": "en"}]
    }
  ]
}`

func TestFlattenGraphDocument(t *testing.T) {
	doc, err := ParseDocument([]byte(augustusTypeJSONLD))
	require.NoError(t, err)

	payload := flattenType(doc, "ric.1(2).aug.207", "https://example.test/ocre/id/ric.1(2).aug.207")

	assert.Equal(t, "ric.1(2).aug.207", payload.ID)
	assert.Equal(t, "RIC I (second edition) Augustus 207", payload.Title)
	assert.Equal(t, "Augustus", payload.Authority)
	assert.Equal(t, "Denarius", payload.Denomination)
	assert.Equal(t, "Lugdunum", payload.Mint)
	assert.Equal(t, "Silver", payload.Material, "material label comes from the indexed node")
	require.NotNil(t, payload.DateFrom)
	require.NotNil(t, payload.DateTo)
	assert.Equal(t, -2, *payload.DateFrom)
	assert.Equal(t, 4, *payload.DateTo)
	assert.Equal(t, "2 BC - AD 4", payload.DateRange())
	assert.Equal(t, "CAESAR AVGVSTVS DIVI F PATER PATRIAE", payload.ObverseLegend)
	assert.Equal(t, "Head of Augustus, laureate, right", payload.ObverseDescription)
	assert.Equal(t, "C L CAESARES AVGVSTI F COS DESIG PRINC IVVENT", payload.ReverseLegend)
	assert.Equal(t, "Gaius and Lucius Caesars standing facing", payload.ReverseDescription)
}

func TestFlattenRootDocumentWithFullIRIs(t *testing.T) {
	data := `{
	  "@id": "http://numismatics.org/crro/id/rrc-44.5",
	  "http://www.w3.org/2004/02/skos/core#prefLabel": "RRC 44/5",
	  "http://nomisma.org/ontology#hasDenomination": "http://nomisma.org/id/denarius",
	  "http://nomisma.org/ontology#hasStartDate": "-0211",
	  "http://nomisma.org/ontology#hasObverse": {
	    "http://nomisma.org/ontology#hasLegend": "ROMA",
	    "description": "Helmeted head of Roma right"
	  }
	}`
	doc, err := ParseDocument([]byte(data))
	require.NoError(t, err)

	payload := flattenType(doc, "rrc-44.5", "http://numismatics.org/crro/id/rrc-44.5")
	assert.Equal(t, "RRC 44/5", payload.Title)
	assert.Equal(t, "Denarius", payload.Denomination)
	require.NotNil(t, payload.DateFrom)
	assert.Equal(t, -211, *payload.DateFrom)
	assert.Nil(t, payload.DateTo)
	assert.Equal(t, "211 BC", payload.DateRange())
	assert.Equal(t, "ROMA", payload.ObverseLegend)
	assert.Equal(t, "Helmeted head of Roma right", payload.ObverseDescription)
	assert.Empty(t, payload.ReverseLegend)
}

func TestParseDocumentErrors(t *testing.T) {
	_, err := ParseDocument([]byte(`{"@id": `))
	assert.Error(t, err)

	_, err = ParseDocument([]byte(`"just a string"`))
	assert.Error(t, err)
}

func TestDocumentNodeFragment(t *testing.T) {
	doc, err := ParseDocument([]byte(augustusTypeJSONLD))
	require.NoError(t, err)

	node, ok := doc.Node("#obverse")
	require.True(t, ok)
	assert.Equal(t, "CAESAR AVGVSTVS DIVI F PATER PATRIAE", doc.GetLabel(doc.Property(node, propLegend)))

	_, ok = doc.Node("#exergue")
	assert.False(t, ok)
	_, ok = doc.Node("http://nomisma.org/id/unknown")
	assert.False(t, ok)
}

func TestGetLabel(t *testing.T) {
	doc, err := ParseDocument([]byte(`{"@graph": []}`))
	require.NoError(t, err)

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"plain string", "  Roma  ", "Roma"},
		{"uri segment", "http://nomisma.org/id/marcus_aurelius", "Marcus Aurelius"},
		{"hyphenated uri", "http://nomisma.org/id/ephesus-ionia", "Ephesus Ionia"},
		{"value object", map[string]any{"@value": "Denarius"}, "Denarius"},
		{"id object", map[string]any{"@id": "http://nomisma.org/id/rome"}, "Rome"},
		{"inline node label", map[string]any{"@id": "http://nomisma.org/id/x", "skos:prefLabel": "Antioch"}, "Antioch"},
		{"english preferred", []any{
			map[string]any{"@value": "Rom", "@language": "de"},
			map[string]any{"@value": "Rome", "@language": "en"},
		}, "Rome"},
		{"first when no english", []any{
			map[string]any{"@value": "Rom", "@language": "de"},
			map[string]any{"@value": "Roma", "@language": "it"},
		}, "Rom"},
		{"number", float64(12), "12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, doc.GetLabel(tt.value))
		})
	}
}

func TestGetURI(t *testing.T) {
	assert.Equal(t, "http://nomisma.org/id/rome", GetURI(map[string]any{"@id": "http://nomisma.org/id/rome"}))
	assert.Equal(t, "http://nomisma.org/id/rome", GetURI("http://nomisma.org/id/rome"))
	assert.Equal(t, "http://nomisma.org/id/ar", GetURI([]any{map[string]any{"@value": "x"}, map[string]any{"@id": "http://nomisma.org/id/ar"}}))
	assert.Empty(t, GetURI(float64(3)))
}

func TestParseDateValue(t *testing.T) {
	tests := []struct {
		value  any
		want   int
		wantOK bool
	}{
		{"-0027", -27, true},
		{"0014", 14, true},
		{"+0117", 117, true},
		{map[string]any{"@value": "-0044", "@type": "xsd:gYear"}, -44, true},
		{[]any{"unknown", "-0100"}, -100, true},
		{float64(-31), -31, true},
		{"circa", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseDateValue(tt.value)
		assert.Equal(t, tt.wantOK, ok, "value %v", tt.value)
		assert.Equal(t, tt.want, got, "value %v", tt.value)
	}
}
