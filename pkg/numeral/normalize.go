package numeral

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var volumeSeparatorPattern = regexp.MustCompile(`^([IVXLCivxlc]+|\d+)\s*[-/.]\s*(\d+)$`)

// CollapseSpace trims s and folds every run of Unicode whitespace (including
// non-breaking spaces) into a single ASCII space.
func CollapseSpace(s string) string {
	var builder strings.Builder
	builder.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			pendingSpace = builder.Len() > 0
			continue
		}
		if pendingSpace {
			builder.WriteByte(' ')
			pendingSpace = false
		}
		builder.WriteRune(r)
	}
	return builder.String()
}

// NormalizeVolumeSeparator rewrites a hyphen or slash between a volume and its
// part number into a dot: "IV-1" and "IV/1" both become "IV.1". Input that is
// not a volume/part pair is returned unchanged.
func NormalizeVolumeSeparator(volume string) string {
	trimmed := strings.TrimSpace(volume)
	match := volumeSeparatorPattern.FindStringSubmatch(trimmed)
	if match == nil {
		return trimmed
	}
	return match[1] + "." + match[2]
}

// RomanVolume converts a volume designation into canonical Roman form with an
// optional Arabic part: "4", "iv", "IV-1" and "4.1" yield "IV", "IV", "IV.1"
// and "IV.1". It returns false when the main volume is neither a valid Roman
// numeral nor a positive integer within range.
func RomanVolume(volume string) (string, bool) {
	normalized := NormalizeVolumeSeparator(volume)
	if normalized == "" {
		return "", false
	}

	main, part, hasPart := strings.Cut(normalized, ".")
	var roman string
	if n, err := strconv.Atoi(main); err == nil {
		converted, err := ToRoman(n)
		if err != nil {
			return "", false
		}
		roman = converted
	} else {
		if !IsRoman(main) {
			return "", false
		}
		roman = strings.ToUpper(main)
	}

	if !hasPart {
		return roman, true
	}
	if _, err := strconv.Atoi(part); err != nil {
		return "", false
	}
	return roman + "." + part, true
}

// ArabicVolume is the inverse of RomanVolume: "IV.1" becomes "4.1".
func ArabicVolume(volume string) (string, bool) {
	roman, ok := RomanVolume(volume)
	if !ok {
		return "", false
	}
	main, part, hasPart := strings.Cut(roman, ".")
	n, err := FromRoman(main)
	if err != nil {
		return "", false
	}
	arabic := strconv.Itoa(n)
	if hasPart {
		arabic += "." + part
	}
	return arabic, true
}
