// Package numeral provides Roman numeral conversion and the whitespace and
// volume-separator normalization shared by every catalog parser.
package numeral

import (
	"fmt"
	"strings"
)

// MaxRoman is the largest value expressible in standard subtractive notation.
const MaxRoman = 3999

var romanTable = []struct {
	value  int
	symbol string
}{
	{1000, "M"},
	{900, "CM"},
	{500, "D"},
	{400, "CD"},
	{100, "C"},
	{90, "XC"},
	{50, "L"},
	{40, "XL"},
	{10, "X"},
	{9, "IX"},
	{5, "V"},
	{4, "IV"},
	{1, "I"},
}

var romanDigits = map[byte]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'D': 500,
	'M': 1000,
}

// ToRoman converts n (1..3999) to an upper-case Roman numeral.
func ToRoman(n int) (string, error) {
	if n < 1 || n > MaxRoman {
		return "", fmt.Errorf("value %d out of Roman numeral range 1..%d", n, MaxRoman)
	}

	var builder strings.Builder
	for _, entry := range romanTable {
		for n >= entry.value {
			builder.WriteString(entry.symbol)
			n -= entry.value
		}
	}
	return builder.String(), nil
}

// FromRoman converts a Roman numeral to its integer value. Matching is
// case-insensitive. Non-canonical spellings such as "IIII" or "VX" are
// rejected so that every accepted numeral round-trips through ToRoman.
func FromRoman(numeral string) (int, error) {
	upper := strings.ToUpper(strings.TrimSpace(numeral))
	if upper == "" {
		return 0, fmt.Errorf("empty Roman numeral")
	}

	total := 0
	for i := 0; i < len(upper); i++ {
		value, ok := romanDigits[upper[i]]
		if !ok {
			return 0, fmt.Errorf("invalid Roman numeral %q", numeral)
		}
		if i+1 < len(upper) {
			if next, ok := romanDigits[upper[i+1]]; ok && next > value {
				total -= value
				continue
			}
		}
		total += value
	}

	canonical, err := ToRoman(total)
	if err != nil || canonical != upper {
		return 0, fmt.Errorf("non-canonical Roman numeral %q", numeral)
	}
	return total, nil
}

// IsRoman reports whether s is a canonical Roman numeral.
func IsRoman(s string) bool {
	_, err := FromRoman(s)
	return err == nil
}
