package citation

import (
	"regexp"
	"strings"
)

// sngCollections maps lower-case collection spellings to the abbreviation
// used in display forms. Unlisted collections keep the spelling they were
// cited with.
var sngCollections = map[string]string{
	"cop":         "Cop",
	"copenhagen":  "Cop",
	"ans":         "ANS",
	"aulock":      "von Aulock",
	"von aulock":  "von Aulock",
	"fitz":        "Fitzwilliam",
	"fitzwilliam": "Fitzwilliam",
	"lockett":     "Lockett",
	"munchen":     "München",
	"munich":      "München",
	"tubingen":    "Tübingen",
	"ashmolean":   "Ashmolean",
	"glasgow":     "Glasgow",
	"evelpidis":   "Evelpidis",
}

// SNGParser parses Sylloge Nummorum Graecorum citations, which name a
// collection before the number: "SNG Cop 123", "SNG ANS 456",
// "SNG von Aulock 1234".
type SNGParser struct {
	pattern *regexp.Regexp
}

// NewSNGParser creates an SNG parser with a compiled pattern.
func NewSNGParser() *SNGParser {
	return &SNGParser{
		pattern: regexp.MustCompile(
			`^(?i:SNG)\b\.?\s*` +
				`(?P<coll>[A-Za-z][A-Za-z'’]*\.?(?:\s+[A-Za-z][A-Za-z'’]*\.?)*?)\s*,?\s*` +
				`(?P<num>\d+)(?P<var>[A-Za-z])?(?:[^A-Za-z0-9].*)?$`),
	}
}

// System returns SystemSNG.
func (p *SNGParser) System() System {
	return SystemSNG
}

// Parse reads raw as an SNG citation.
func (p *SNGParser) Parse(raw string) (*ParsedReference, bool) {
	groups, ok := matchNamed(p.pattern, prepare(raw))
	if !ok {
		return nil, false
	}
	return finalize(&ParsedReference{
		System:     SystemSNG,
		Collection: canonicalCollection(groups["coll"]),
		Number:     trimNumber(groups["num"]),
		Variant:    groups["var"],
		Raw:        raw,
	}), true
}

func canonicalCollection(name string) string {
	cleaned := strings.Join(strings.Fields(strings.ReplaceAll(name, ".", " ")), " ")
	if canonical, ok := sngCollections[strings.ToLower(foldAccents(cleaned))]; ok {
		return canonical
	}
	return cleaned
}

// collectionFromSlug reverses collectionSlug for known collections.
func collectionFromSlug(slug string) string {
	name := strings.ReplaceAll(slug, "-", " ")
	if canonical, ok := sngCollections[name]; ok {
		return canonical
	}
	return name
}

// collectionSlug is the key segment for a collection: lower-case, accents
// folded, spaces replaced by hyphens.
func collectionSlug(collection string) string {
	return strings.ReplaceAll(strings.ToLower(foldAccents(collection)), " ", "-")
}

var _ Parser = (*SNGParser)(nil)
