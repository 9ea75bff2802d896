package compare

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Sequence-ratio thresholds.
const (
	legendEquivalentRatio = 0.9
	legendPartialRatio    = 0.7
	textEquivalentRatio   = 0.9
	textPartialRatio      = 0.6
)

// render turns a value into text for the text rules and for display.
func render(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case *string:
		if typed == nil {
			return ""
		}
		return *typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case fmt.Stringer:
		return typed.String()
	}
	return fmt.Sprint(value)
}

// foldText strips combining marks: "Calicó" becomes "Calico".
func foldText(text string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, text)
	if err != nil {
		return text
	}
	return folded
}

// collapse trims text and folds whitespace runs into single spaces.
func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// ratio is the sequence-similarity ratio of two strings, compared rune by
// rune: 2*M/T where M is the number of matched runes and T the total.
func ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	matcher := difflib.NewMatcher(splitRunes(a), splitRunes(b))
	return matcher.Ratio()
}

func splitRunes(text string) []string {
	parts := make([]string, 0, len(text))
	for _, r := range text {
		parts = append(parts, string(r))
	}
	return parts
}

// normalizeLegend upper-cases a legend, turns interpuncts and other
// punctuation into spaces and writes V for U, so "IMP·CAESAR·DIVI·F" and
// "IMP CAESAR DIVI F" agree, as do "AVGVSTVS" and "AUGUSTUS".
func normalizeLegend(text string) string {
	text = strings.ToUpper(foldText(text))
	text = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, text)
	return strings.ReplaceAll(collapse(text), "V", "U")
}

func compareLegend(a, b any) Result {
	rawA, rawB := render(a), render(b)
	normalizedA, normalizedB := normalizeLegend(rawA), normalizeLegend(rawB)
	result := Result{NormalizedA: normalizedA, NormalizedB: normalizedB}

	if normalizedA == normalizedB {
		result.Matches, result.Similarity = true, 1
		result.DifferenceType = DiffEquivalent
		if strings.TrimSpace(rawA) == strings.TrimSpace(rawB) {
			result.DifferenceType = DiffExact
		} else {
			result.Notes = "legends differ only in punctuation or V/U spelling"
		}
		return result
	}

	similarity := ratio(normalizedA, normalizedB)
	result.Similarity = similarity
	switch {
	case similarity >= legendEquivalentRatio:
		result.Matches, result.DifferenceType = true, DiffEquivalent
	case similarity >= legendPartialRatio:
		result.DifferenceType = DiffPartial
	default:
		result.DifferenceType = DiffMismatch
	}
	result.Notes = fmt.Sprintf("legend similarity %.0f%%", similarity*100)
	return result
}

// compareExact is for identifiers such as certification numbers: only
// letter case may differ.
func compareExact(a, b any) Result {
	rawA, rawB := strings.TrimSpace(render(a)), strings.TrimSpace(render(b))
	result := Result{NormalizedA: rawA, NormalizedB: rawB}
	switch {
	case rawA == rawB:
		result.Matches, result.Similarity, result.DifferenceType = true, 1, DiffExact
	case strings.EqualFold(rawA, rawB):
		result.Matches, result.Similarity, result.DifferenceType = true, 1, DiffFormat
		result.Notes = "values differ only in letter case"
	default:
		result.DifferenceType = DiffMismatch
	}
	return result
}

// compareText is the default rule and the fallback for values the
// kind-specific rules cannot read.
func compareText(a, b any) Result {
	rawA, rawB := collapse(render(a)), collapse(render(b))
	result := Result{NormalizedA: rawA, NormalizedB: rawB}
	switch {
	case rawA == rawB:
		result.Matches, result.Similarity, result.DifferenceType = true, 1, DiffExact
		return result
	case strings.EqualFold(rawA, rawB):
		result.Matches, result.Similarity, result.DifferenceType = true, 1, DiffFormat
		result.Notes = "values differ only in letter case"
		return result
	}

	similarity := ratio(strings.ToLower(rawA), strings.ToLower(rawB))
	result.Similarity = similarity
	switch {
	case similarity >= textEquivalentRatio:
		result.Matches, result.DifferenceType = true, DiffEquivalent
	case similarity >= textPartialRatio:
		result.DifferenceType = DiffPartial
	default:
		result.DifferenceType = DiffMismatch
	}
	result.Notes = fmt.Sprintf("text similarity %.0f%%", similarity*100)
	return result
}
