package compare

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	dateDashReplacer = strings.NewReplacer("–", "-", "—", "-", " to ", " - ", ".", "")
	circaPattern     = regexp.MustCompile(`\b(?:circa|ca|c)\b`)
	bcePattern       = regexp.MustCompile(`\bbce\b`)
	cePattern        = regexp.MustCompile(`\bce\b`)
	yearRangePattern = regexp.MustCompile(
		`^(bc|ad)?\s*(-?\d{1,4})\s*(bc|ad)?(?:\s*-\s*(bc|ad)?\s*(-?\d{1,4})\s*(bc|ad)?)?$`)
)

// yearRange is an inclusive span of years. BCE years are negative.
type yearRange struct {
	start, end int
}

func (span yearRange) String() string {
	if span.start == span.end {
		return strconv.Itoa(span.start)
	}
	return fmt.Sprintf("%d..%d", span.start, span.end)
}

// parseYearRange reads "44 BC", "c. 211 B.C.", "27 BC - AD 14", "AD 14-37",
// "44-42 BCE" and plain signed years.
func parseYearRange(value any) (yearRange, bool) {
	text := strings.ToLower(foldText(render(value)))
	text = dateDashReplacer.Replace(text)
	text = circaPattern.ReplaceAllString(text, " ")
	text = bcePattern.ReplaceAllString(text, "bc")
	text = cePattern.ReplaceAllString(text, "ad")
	text = collapse(text)

	match := yearRangePattern.FindStringSubmatch(text)
	if match == nil {
		return yearRange{}, false
	}
	startEra := firstNonEmpty(match[1], match[3])
	start, err := strconv.Atoi(match[2])
	if err != nil {
		return yearRange{}, false
	}
	if match[5] == "" {
		year := applyEra(start, startEra)
		return yearRange{start: year, end: year}, true
	}

	endEra := firstNonEmpty(match[4], match[6])
	end, err := strconv.Atoi(match[5])
	if err != nil {
		return yearRange{}, false
	}
	// "44-42 BC" shares one era marker; so does "BC 44-42".
	switch {
	case startEra == "" && endEra != "":
		startEra = endEra
	case endEra == "" && startEra != "":
		endEra = startEra
	}

	span := yearRange{start: applyEra(start, startEra), end: applyEra(end, endEra)}
	if span.start > span.end {
		span.start, span.end = span.end, span.start
	}
	return span, true
}

func applyEra(year int, era string) int {
	if era == "bc" && year > 0 {
		return -year
	}
	return year
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// compareDate scores two year ranges by overlap over union, counting years
// inclusively.
func compareDate(a, b any) Result {
	spanA, okA := parseYearRange(a)
	spanB, okB := parseYearRange(b)
	if !okA || !okB {
		return compareText(a, b)
	}
	result := Result{NormalizedA: spanA.String(), NormalizedB: spanB.String()}

	if spanA == spanB {
		result.Matches, result.Similarity, result.DifferenceType = true, 1, DiffExact
		if collapse(render(a)) != collapse(render(b)) {
			result.Notes = "same years, written differently"
		}
		return result
	}

	overlap := min(spanA.end, spanB.end) - max(spanA.start, spanB.start) + 1
	if overlap <= 0 {
		result.DifferenceType = DiffMismatch
		result.Notes = "date ranges do not overlap"
		return result
	}
	union := max(spanA.end, spanB.end) - min(spanA.start, spanB.start) + 1
	result.Matches = true
	result.Similarity = clamp(float64(overlap) / float64(union))
	result.DifferenceType = DiffOverlapping
	result.Notes = fmt.Sprintf("%d of %d years overlap", overlap, union)
	return result
}
