package compare

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Measurement tolerances.
const (
	weightRelativeTolerance = 0.03
	diameterToleranceMM     = 1.0
	thicknessToleranceMM    = 0.5
	dieAxisToleranceDeg     = 15.0

	// epsilon absorbs float noise at the tolerance boundaries.
	epsilon = 1e-9
)

var (
	measurementPattern = regexp.MustCompile(`^([+-]?\d+(?:[.,]\d+)?)\s*(?:g|gr|grams?|mm|millimet(?:er|re)s?)?\.?$`)
	clockPattern       = regexp.MustCompile(`^(\d{1,2})(?:[.,]\d+)?\s*(?:h|hr|hrs|hours?|o'?clock|:00)$`)
	degreesPattern     = regexp.MustCompile(`^(\d{1,3}(?:[.,]\d+)?)\s*(?:°|deg|degrees?)$`)
)

// toFloat reads a number from the numeric Go types, json.Number and
// strings such as "3.08", "3,08 g" and "19 mm".
func toFloat(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, !math.IsNaN(typed) && !math.IsInf(typed, 0)
	case float32:
		return toFloat(float64(typed))
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int32:
		return float64(typed), true
	case uint:
		return float64(typed), true
	case json.Number:
		parsed, err := typed.Float64()
		return parsed, err == nil
	case *float64:
		if typed == nil {
			return 0, false
		}
		return toFloat(*typed)
	case string:
		match := measurementPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(typed)))
		if match == nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(strings.Replace(match[1], ",", ".", 1), 64)
		return parsed, err == nil
	}
	return 0, false
}

func formatNumber(value float64, unit string) string {
	text := strconv.FormatFloat(value, 'f', -1, 64)
	if unit == "" {
		return text
	}
	return text + " " + unit
}

// compareWeight allows a relative difference of 3% of the larger value.
func compareWeight(a, b any) Result {
	weightA, okA := toFloat(a)
	weightB, okB := toFloat(b)
	if !okA || !okB {
		return compareText(a, b)
	}
	result := Result{NormalizedA: formatNumber(weightA, "g"), NormalizedB: formatNumber(weightB, "g")}

	diff := math.Abs(weightA - weightB)
	larger := math.Max(math.Abs(weightA), math.Abs(weightB))
	if diff < epsilon {
		result.Matches, result.Similarity, result.DifferenceType = true, 1, DiffExact
		return result
	}
	relative := diff / larger
	result.Similarity = clamp(1 - relative)
	if relative <= weightRelativeTolerance+epsilon {
		result.Matches = true
		result.DifferenceType = DiffWithinTolerance
		result.Notes = fmt.Sprintf("%.1f%% apart, within %.0f%% tolerance", relative*100, weightRelativeTolerance*100)
		return result
	}
	result.DifferenceType = DiffMismatch
	result.Notes = fmt.Sprintf("%.1f%% apart, beyond %.0f%% tolerance", relative*100, weightRelativeTolerance*100)
	return result
}

func compareDiameter(a, b any) Result {
	return compareAbsolute(a, b, diameterToleranceMM, 10)
}

func compareThickness(a, b any) Result {
	return compareAbsolute(a, b, thicknessToleranceMM, 1)
}

// compareAbsolute allows an absolute difference of tolerance millimetres.
// Similarity falls by 1 for every scale millimetres of difference.
func compareAbsolute(a, b any, tolerance, scale float64) Result {
	valueA, okA := toFloat(a)
	valueB, okB := toFloat(b)
	if !okA || !okB {
		return compareText(a, b)
	}
	result := Result{NormalizedA: formatNumber(valueA, "mm"), NormalizedB: formatNumber(valueB, "mm")}

	diff := math.Abs(valueA - valueB)
	switch {
	case diff < epsilon:
		result.Matches, result.Similarity, result.DifferenceType = true, 1, DiffExact
	case diff <= tolerance+epsilon:
		result.Matches = true
		result.Similarity = clamp(1 - diff/scale)
		result.DifferenceType = DiffWithinTolerance
		result.Notes = fmt.Sprintf("%s mm apart, within %s mm", formatNumber(round(diff, 2), ""), formatNumber(tolerance, ""))
	default:
		result.Similarity = clamp(1 - diff/scale)
		result.DifferenceType = DiffMismatch
		result.Notes = fmt.Sprintf("%s mm apart, beyond %s mm", formatNumber(round(diff, 2), ""), formatNumber(tolerance, ""))
	}
	return result
}

// toDegrees reads a die axis. Bare numbers up to 12 and values marked "h"
// are clock hours; larger numbers and values marked "°" are degrees.
func toDegrees(value any) (float64, bool) {
	if text, ok := value.(string); ok {
		text = strings.ToLower(strings.TrimSpace(text))
		if match := clockPattern.FindStringSubmatch(text); match != nil {
			hours, err := strconv.Atoi(match[1])
			if err != nil || hours > 12 {
				return 0, false
			}
			return normalizeDegrees(float64(hours) * 30), true
		}
		if match := degreesPattern.FindStringSubmatch(text); match != nil {
			degrees, err := strconv.ParseFloat(strings.Replace(match[1], ",", ".", 1), 64)
			if err != nil {
				return 0, false
			}
			return normalizeDegrees(degrees), true
		}
	}
	number, ok := toFloat(value)
	if !ok || number < 0 {
		return 0, false
	}
	if number <= 12 {
		return normalizeDegrees(math.Round(number) * 30), true
	}
	return normalizeDegrees(number), true
}

func normalizeDegrees(degrees float64) float64 {
	degrees = math.Mod(degrees, 360)
	if degrees < 0 {
		degrees += 360
	}
	return degrees
}

// compareDieAxis measures the shorter arc between two axes.
func compareDieAxis(a, b any) Result {
	degreesA, okA := toDegrees(a)
	degreesB, okB := toDegrees(b)
	if !okA || !okB {
		return compareText(a, b)
	}
	result := Result{NormalizedA: formatNumber(degreesA, "°"), NormalizedB: formatNumber(degreesB, "°")}

	arc := math.Abs(degreesA - degreesB)
	if arc > 180 {
		arc = 360 - arc
	}
	result.Similarity = clamp(1 - arc/180)
	switch {
	case arc < epsilon:
		result.Matches, result.DifferenceType = true, DiffExact
	case arc <= dieAxisToleranceDeg+epsilon:
		result.Matches, result.DifferenceType = true, DiffWithinTolerance
		result.Notes = fmt.Sprintf("axes %s° apart", formatNumber(round(arc, 1), ""))
	default:
		result.DifferenceType = DiffMismatch
		result.Notes = fmt.Sprintf("axes %s° apart, beyond %s°", formatNumber(round(arc, 1), ""), formatNumber(dieAxisToleranceDeg, ""))
	}
	return result
}

func round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}
