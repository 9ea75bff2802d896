package compare

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// gradeScale is the ordinal scale of base grades, lowest first.
var gradeScale = []string{"p", "fr", "ag", "g", "vg", "f", "vf", "ef", "au", "ms"}

type gradeAlias struct {
	pattern *regexp.Regexp
	base    string
}

// gradeAliases rewrites spelled-out grade names to base codes. Longer
// phrases come first so "very fine" is read before "fine".
var gradeAliases = compileGradeAliases([][2]string{
	{"about uncirculated", "au"},
	{"extremely fine", "ef"},
	{"extra fine", "ef"},
	{"mint state", "ms"},
	{"uncirculated", "ms"},
	{"very fine", "vf"},
	{"very good", "vg"},
	{"about good", "ag"},
	{"poor", "p"},
	{"fair", "fr"},
	{"good", "g"},
	{"fine", "f"},
	{"unc", "ms"},
	{"bu", "ms"},
	{"xf", "ef"},
	{"po", "p"},
})

func compileGradeAliases(pairs [][2]string) []gradeAlias {
	aliases := make([]gradeAlias, 0, len(pairs))
	for _, pair := range pairs {
		aliases = append(aliases, gradeAlias{
			pattern: regexp.MustCompile(`\b` + regexp.QuoteMeta(pair[0]) + `\b`),
			base:    pair[1],
		})
	}
	return aliases
}

// gradeModifiers are the words and signs written around a base grade.
var gradeModifiers = map[string]string{
	"choice": "ch",
	"ch":     "ch",
	"+":      "ch",
	"gem":    "gem",
	"near":   "n",
	"nearly": "n",
	"about":  "n",
	"n":      "n",
	"-":      "n",
}

// gradePrefixes are the one-letter prefixes of forms like "gVF" and "nEF".
var gradePrefixes = map[byte]string{
	'g': "ch",
	'n': "n",
	'a': "n",
}

// choiceFrom is the lowest Sheldon number read as "choice" for each base.
var choiceFrom = map[string]int{
	"g": 6, "vg": 10, "f": 15, "vf": 30, "ef": 45, "au": 55, "ms": 63,
}

const gemFrom = 65

var (
	slabPrefixPattern    = regexp.MustCompile(`^(?:ngc|pcgs|anacs|icg|cgs)\b\s*(?:ancients?\b)?\s*`)
	strikeSurfacePattern = regexp.MustCompile(`\b(?:strike|surface)\b|\b\d\s*/\s*\d\b`)
	sheldonPattern       = regexp.MustCompile(`(?:^|\s|-)(\d{1,2})$`)
	splitGradePattern    = regexp.MustCompile(`\b([a-z]+)\s*/\s*([a-z]+)\b`)
	gradeTokenPattern    = regexp.MustCompile(`[a-z]+|[+-]`)
)

// grade is a parsed grade: an optional modifier and a base on gradeScale.
// A split grade such as "F/VF" keeps its lower half in lower.
type grade struct {
	modifier string
	lower    string
	base     string
}

func (g grade) String() string {
	base := g.base
	if g.lower != "" {
		base = g.lower + "/" + g.base
	}
	if g.modifier == "" {
		return base
	}
	return g.modifier + " " + base
}

func (g grade) rank() int {
	return gradeRank(g.base)
}

func gradeRank(base string) int {
	for i, candidate := range gradeScale {
		if candidate == base {
			return i
		}
	}
	return -1
}

// parseGrade normalizes grade text: "NGC Ch VF 5/5 4/5", "Choice VF", "VF+"
// and "VF 35" all read as {ch vf}. "F/VF" reads as a split grade on VF that
// does not equal plain VF. The second return is false when no base
// grade is recognised.
func parseGrade(text string) (grade, bool) {
	normalized := strings.ToLower(foldText(text))
	normalized = strings.ReplaceAll(normalized, ".", "")
	normalized = slabPrefixPattern.ReplaceAllString(strings.TrimSpace(normalized), "")
	normalized = collapse(strikeSurfacePattern.ReplaceAllString(normalized, " "))

	sheldon := 0
	if match := sheldonPattern.FindStringSubmatch(normalized); match != nil {
		sheldon, _ = strconv.Atoi(match[1])
		normalized = strings.TrimSuffix(normalized, match[1])
		normalized = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(normalized), "-"))
	}

	for _, alias := range gradeAliases {
		normalized = alias.pattern.ReplaceAllString(normalized, alias.base)
	}

	var split []string
	if match := splitGradePattern.FindStringSubmatch(normalized); match != nil &&
		match[1] != match[2] && gradeRank(match[1]) >= 0 && gradeRank(match[2]) >= 0 {
		split = match[1:]
	}

	var (
		parsed     grade
		lowerBases []string
	)
	for _, token := range gradeTokenPattern.FindAllString(normalized, -1) {
		if gradeRank(token) >= 0 {
			// "good VF" names two bases; the last is the grade.
			if parsed.base != "" {
				lowerBases = append(lowerBases, parsed.base)
			}
			parsed.base = token
			continue
		}
		if modifier, ok := gradeModifiers[token]; ok {
			if parsed.modifier == "" {
				parsed.modifier = modifier
			}
			continue
		}
		if prefix, ok := gradePrefixes[token[0]]; ok && len(token) > 1 && gradeRank(token[1:]) >= 0 {
			parsed.base = token[1:]
			if parsed.modifier == "" {
				parsed.modifier = prefix
			}
		}
	}
	if parsed.base == "" {
		return grade{}, false
	}
	switch {
	case split != nil:
		parsed.lower, parsed.base = split[0], split[1]
		if gradeRank(parsed.lower) > gradeRank(parsed.base) {
			parsed.lower, parsed.base = parsed.base, parsed.lower
		}
	case parsed.modifier == "" && len(lowerBases) > 0 && lowerBases[len(lowerBases)-1] == "g":
		parsed.modifier = "ch"
	}

	if sheldon > 0 && parsed.modifier == "" && parsed.lower == "" {
		switch {
		case parsed.base == "ms" && sheldon >= gemFrom:
			parsed.modifier = "gem"
		case choiceFrom[parsed.base] > 0 && sheldon >= choiceFrom[parsed.base]:
			parsed.modifier = "ch"
		}
	}
	return parsed, true
}

// compareGrade compares two grades on the ordinal scale.
func compareGrade(a, b any) Result {
	rawA, rawB := strings.TrimSpace(render(a)), strings.TrimSpace(render(b))
	gradeA, okA := parseGrade(rawA)
	gradeB, okB := parseGrade(rawB)
	if !okA || !okB {
		return compareText(a, b)
	}
	result := Result{NormalizedA: gradeA.String(), NormalizedB: gradeB.String()}

	switch distance := abs(gradeA.rank() - gradeB.rank()); {
	case gradeA == gradeB:
		result.Matches, result.Similarity = true, 1
		result.DifferenceType = DiffEquivalent
		if rawA == rawB {
			result.DifferenceType = DiffExact
		}
	case distance == 0:
		result.Matches, result.Similarity, result.DifferenceType = true, 0.9, DiffEquivalent
		result.Notes = fmt.Sprintf("same base grade %s, modifiers differ", strings.ToUpper(gradeA.base))
		if gradeA.lower != gradeB.lower {
			result.Notes = fmt.Sprintf("split grade: %s against %s",
				strings.ToUpper(gradeA.String()), strings.ToUpper(gradeB.String()))
		}
	case distance == 1:
		result.Similarity, result.DifferenceType = 0.7, DiffAdjacent
		result.Notes = fmt.Sprintf("adjacent grades %s and %s", strings.ToUpper(gradeA.base), strings.ToUpper(gradeB.base))
	default:
		result.Similarity, result.DifferenceType = 0.3, DiffMismatch
		result.Notes = fmt.Sprintf("grades %d steps apart", distance)
	}
	return result
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
