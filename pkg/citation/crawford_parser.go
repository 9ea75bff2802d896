package citation

import "regexp"

// CrawfordParser parses Roman Republican Coinage citations:
//   - "Crawford 335/1c", "Cr. 335/1c", "RRC 335/1"
//   - "Crawford 335" (sub-number missing, accepted with a warning)
//
// The prefix-less "335/1c" form is not handled here; the engine applies it
// as a low-confidence fallback after every parser has declined.
type CrawfordParser struct {
	pattern     *regexp.Regexp
	barePattern *regexp.Regexp
}

// NewCrawfordParser creates a Crawford parser with compiled patterns.
func NewCrawfordParser() *CrawfordParser {
	return &CrawfordParser{
		pattern: regexp.MustCompile(
			`^(?i:crawford\b\.?|cr\b\.?|rrc\b\.?)\s*(?i:no\.?\s*)?` +
				`(?P<main>\d{1,3})(?:\s*/\s*(?P<sub>\d{1,3}))?(?P<var>[A-Za-z])?` +
				`(?:[^A-Za-z0-9/].*)?$`),
		barePattern: regexp.MustCompile(`^(?P<main>\d{1,3})\s*/\s*(?P<sub>\d{1,3})(?P<var>[a-z])?$`),
	}
}

// System returns SystemCrawford.
func (p *CrawfordParser) System() System {
	return SystemCrawford
}

// Parse reads raw as a prefixed Crawford citation.
func (p *CrawfordParser) Parse(raw string) (*ParsedReference, bool) {
	groups, ok := matchNamed(p.pattern, prepare(raw))
	if !ok {
		return nil, false
	}
	ref := &ParsedReference{
		System:  SystemCrawford,
		Number:  crawfordNumber(groups["main"], groups["sub"]),
		Variant: groups["var"],
		Raw:     raw,
	}
	if groups["sub"] == "" {
		ref.Warnings = []string{WarnSubNumberMissing}
	}
	return finalize(ref), true
}

// ParseBare reads the prefix-less "NNN/N[variant]" form. The returned
// reference carries WarnBareNumber.
func (p *CrawfordParser) ParseBare(raw string) (*ParsedReference, bool) {
	groups, ok := matchNamed(p.barePattern, prepare(raw))
	if !ok {
		return nil, false
	}
	return finalize(&ParsedReference{
		System:   SystemCrawford,
		Number:   crawfordNumber(groups["main"], groups["sub"]),
		Variant:  groups["var"],
		Warnings: []string{WarnBareNumber},
		Raw:      raw,
	}), true
}

func crawfordNumber(main, sub string) string {
	number := trimNumber(main)
	if sub != "" {
		number += "/" + trimNumber(sub)
	}
	return number
}

var _ Parser = (*CrawfordParser)(nil)
