package citation

import (
	"regexp"
	"strings"

	"github.com/coolbeans/numisref/pkg/numeral"
)

// Parser recognizes citations belonging to a single catalog system.
// Implementations must be safe for concurrent use and must never panic.
type Parser interface {
	// System returns the catalog system this parser handles.
	System() System

	// Parse attempts to read raw as a citation of this system.
	// The boolean is false when the text is not a citation of this system.
	Parse(raw string) (*ParsedReference, bool)
}

// Warnings attached by the parsers.
const (
	WarnVolumeMissing    = "volume missing, confidence reduced"
	WarnSubNumberMissing = "sub-number missing, confidence reduced"
	WarnBareNumber       = "bare number without catalog prefix, assumed Crawford"
)

// submatches maps named capture groups to their (trimmed) values.
type submatches map[string]string

func matchNamed(pattern *regexp.Regexp, text string) (submatches, bool) {
	match := pattern.FindStringSubmatch(text)
	if match == nil {
		return nil, false
	}
	groups := make(submatches, len(match))
	for i, name := range pattern.SubexpNames() {
		if name == "" || match[i] == "" {
			continue
		}
		groups[name] = strings.TrimSpace(match[i])
	}
	return groups, true
}

// first returns the first non-empty group among names.
func (groups submatches) first(names ...string) string {
	for _, name := range names {
		if value := groups[name]; value != "" {
			return value
		}
	}
	return ""
}

// prepare collapses whitespace, folds accents and trims trailing punctuation
// that never belongs to a citation.
func prepare(raw string) string {
	return strings.TrimRight(foldAccents(numeral.CollapseSpace(raw)), " ;,")
}

// volumeFromGroups combines a captured volume and optional part into the
// canonical Roman form. maxVolume of zero disables the range check.
func volumeFromGroups(volume, part string, maxVolume int) (string, bool) {
	if part != "" {
		volume += "." + part
	}
	roman, ok := numeral.RomanVolume(volume)
	if !ok {
		return "", false
	}
	if maxVolume > 0 {
		main, _, _ := strings.Cut(roman, ".")
		n, err := numeral.FromRoman(main)
		if err != nil || n > maxVolume {
			return "", false
		}
	}
	return roman, true
}

// trimNumber strips leading zeros so "0207" and "207" share a key.
func trimNumber(number string) string {
	trimmed := strings.TrimLeft(number, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
