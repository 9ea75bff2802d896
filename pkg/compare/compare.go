// Package compare scores the equivalence of two values of the same coin
// record field, typically a stored collection value against one sourced
// from an auction listing. Each field kind has its own rule: measurement
// tolerances, grade scales, legend spelling variants, catalog citation
// variants, date-range overlap and die-axis rotation.
package compare

import (
	"sort"
	"strings"
)

// DifferenceType classifies how two values differ.
type DifferenceType string

const (
	DiffExact           DifferenceType = "exact"
	DiffEquivalent      DifferenceType = "equivalent"
	DiffWithinTolerance DifferenceType = "within_tolerance"
	DiffOverlapping     DifferenceType = "overlapping"
	DiffAdjacent        DifferenceType = "adjacent"
	DiffPartial         DifferenceType = "partial"
	DiffFormat          DifferenceType = "format_diff"
	DiffMismatch        DifferenceType = "mismatch"
	DiffMissing         DifferenceType = "missing"
)

// Result is the outcome of comparing two values of one field.
type Result struct {
	Field          string         `json:"field" yaml:"field"`
	Matches        bool           `json:"matches" yaml:"matches"`
	Similarity     float64        `json:"similarity" yaml:"similarity"`
	DifferenceType DifferenceType `json:"difference_type" yaml:"difference_type"`
	NormalizedA    string         `json:"normalized_a" yaml:"normalized_a"`
	NormalizedB    string         `json:"normalized_b" yaml:"normalized_b"`
	Notes          string         `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// comparator compares two non-empty values of one field kind.
type comparator func(a, b any) Result

// comparators is the dispatch table. KindText is the explicit fallback and
// is also used when a kind-specific rule cannot read its inputs.
var comparators = map[FieldKind]comparator{
	KindWeight:    compareWeight,
	KindDiameter:  compareDiameter,
	KindThickness: compareThickness,
	KindGrade:     compareGrade,
	KindLegend:    compareLegend,
	KindReference: compareReference,
	KindDate:      compareDate,
	KindDieAxis:   compareDieAxis,
	KindExact:     compareExact,
	KindText:      compareText,
}

// Compare compares a and b as values of field. Two empty values match
// trivially; exactly one empty value is reported as missing. Compare never
// panics on values of the basic Go types.
func Compare(field string, a, b any) Result {
	return CompareAs(KindForField(field), field, a, b)
}

// CompareAs compares a and b with the rule for kind, bypassing field-name
// dispatch.
func CompareAs(kind FieldKind, field string, a, b any) Result {
	emptyA, emptyB := isEmpty(a), isEmpty(b)
	var result Result
	switch {
	case emptyA && emptyB:
		result = Result{Matches: true, Similarity: 1, DifferenceType: DiffExact, Notes: "both values empty"}
	case emptyA || emptyB:
		result = Result{
			DifferenceType: DiffMissing,
			NormalizedA:    render(a),
			NormalizedB:    render(b),
			Notes:          "value present on one side only",
		}
	default:
		compareFn, ok := comparators[kind]
		if !ok {
			compareFn = compareText
		}
		result = compareFn(a, b)
	}
	result.Field = field
	return result
}

// CompareRecord compares every field present in either record. Results are
// sorted by field name.
func CompareRecord(a, b map[string]any) []Result {
	fields := make(map[string]struct{}, len(a)+len(b))
	for field := range a {
		fields[field] = struct{}{}
	}
	for field := range b {
		fields[field] = struct{}{}
	}
	names := make([]string, 0, len(fields))
	for field := range fields {
		names = append(names, field)
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, field := range names {
		results = append(results, Compare(field, a[field], b[field]))
	}
	return results
}

// Summary aggregates a record comparison.
type Summary struct {
	Fields     int     `json:"fields" yaml:"fields"`
	Matched    int     `json:"matched" yaml:"matched"`
	Mismatched int     `json:"mismatched" yaml:"mismatched"`
	Missing    int     `json:"missing" yaml:"missing"`
	Score      float64 `json:"score" yaml:"score"`
}

// Summarize counts matches, mismatches and missing fields. Score is the
// mean similarity over all fields.
func Summarize(results []Result) Summary {
	summary := Summary{Fields: len(results)}
	total := 0.0
	for _, result := range results {
		total += result.Similarity
		switch {
		case result.DifferenceType == DiffMissing:
			summary.Missing++
		case result.Matches:
			summary.Matched++
		default:
			summary.Mismatched++
		}
	}
	if summary.Fields > 0 {
		summary.Score = total / float64(summary.Fields)
	}
	return summary
}

func isEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(typed) == ""
	case *string:
		return typed == nil || strings.TrimSpace(*typed) == ""
	case *float64:
		return typed == nil
	case *int:
		return typed == nil
	}
	return false
}

// clamp keeps a similarity within [0, 1].
func clamp(similarity float64) float64 {
	switch {
	case similarity < 0:
		return 0
	case similarity > 1:
		return 1
	}
	return similarity
}
