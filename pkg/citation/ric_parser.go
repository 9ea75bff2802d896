package citation

import (
	"regexp"

	"github.com/coolbeans/numisref/pkg/numeral"
)

// ricMaxVolume is the highest RIC volume (X covers the divided empire).
const ricMaxVolume = 10

// RICParser parses Roman Imperial Coinage citations:
//   - "RIC I 207", "RIC 1, 207", "RIC I² 207", "RIC I(2) 207"
//   - "RIC IV.1 Lugdunum 207a", "RIC IV-1 207", "RIC VII Trier 12"
//   - "RIC II. 115", "RIC II-115"
//   - "RIC 207" (volume missing, accepted with a warning)
type RICParser struct {
	volumePattern   *regexp.Regexp
	noVolumePattern *regexp.Regexp
}

// NewRICParser creates a RIC parser with compiled patterns.
func NewRICParser() *RICParser {
	return &RICParser{
		volumePattern: regexp.MustCompile(
			`^(?i:RIC)\b\.?\s*` +
				`(?P<vol>[IVXLCivxlc]+|\d{1,2})\b` +
				`(?:\s*[.\-/]\s*(?P<part>\d)\b)?` +
				`\s*(?:(?P<sup>[²³])|\(\s*(?P<ed>[23])\s*\))?` +
				`(?:\s*[.\-/]\s*(?P<part2>\d)\b)?` +
				`\s*[,:.\-]?\s*` +
				`(?:(?P<mint>[A-Za-z][A-Za-z'’]*(?:\s+[A-Za-z][A-Za-z'’]*)*?)\s*,?\s+)?` +
				`(?P<num>\d+)(?P<var>[A-Za-z])?(?:[^A-Za-z0-9].*)?$`),
		noVolumePattern: regexp.MustCompile(
			`^(?i:RIC)\b\.?\s*` +
				`(?:(?P<mint>[A-Za-z][A-Za-z'’]*(?:\s+[A-Za-z][A-Za-z'’]*)*?)\s*,?\s+)?` +
				`(?P<num>\d+)(?P<var>[A-Za-z])?\s*$`),
	}
}

// System returns SystemRIC.
func (p *RICParser) System() System {
	return SystemRIC
}

// Parse reads raw as a RIC citation.
func (p *RICParser) Parse(raw string) (*ParsedReference, bool) {
	text := prepare(raw)

	if groups, ok := matchNamed(p.volumePattern, text); ok {
		if volume, ok := volumeFromGroups(groups["vol"], groups.first("part", "part2"), ricMaxVolume); ok {
			return finalize(&ParsedReference{
				System:  SystemRIC,
				Volume:  volume,
				Number:  trimNumber(groups["num"]),
				Variant: groups["var"],
				Mint:    groups["mint"],
				Edition: editionMarker(groups.first("sup", "ed")),
				Raw:     raw,
			}), true
		}
	}

	groups, ok := matchNamed(p.noVolumePattern, text)
	if !ok {
		return nil, false
	}
	// A leftover numeral here is a volume that failed validation, not a mint.
	if mint := groups["mint"]; mint != "" && numeral.IsRoman(mint) {
		return nil, false
	}
	return finalize(&ParsedReference{
		System:   SystemRIC,
		Number:   trimNumber(groups["num"]),
		Variant:  groups["var"],
		Mint:     groups["mint"],
		Warnings: []string{WarnVolumeMissing},
		Raw:      raw,
	}), true
}

func editionMarker(marker string) string {
	switch marker {
	case "²", "2":
		return "2"
	case "³", "3":
		return "3"
	}
	return ""
}

var _ Parser = (*RICParser)(nil)
