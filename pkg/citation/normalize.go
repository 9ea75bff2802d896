package citation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/coolbeans/numisref/pkg/numeral"
)

var (
	keyNumberPattern     = regexp.MustCompile(`^(\d+(?:/\d+)?)([a-z])?$`)
	keySupplementPattern = regexp.MustCompile(`^s[23]?$`)
)

// CanonicalKey builds the lower-case dotted identity of a reference:
// system[.collection|.volume][.supplement].number+variant. Edition and mint
// never contribute, so "RIC I² 207" and "RIC I 207" share "ric.i.207".
func CanonicalKey(ref *ParsedReference) string {
	if ref == nil {
		return ""
	}
	parts := []string{string(ref.System)}
	switch {
	case ref.Collection != "":
		parts = append(parts, collectionSlug(ref.Collection))
	case ref.Volume != "":
		parts = append(parts, strings.ToLower(ref.Volume))
	}
	if ref.Supplement != "" {
		parts = append(parts, strings.ToLower(ref.Supplement))
	}
	parts = append(parts, strings.ToLower(ref.Number+ref.Variant))
	return strings.Join(parts, ".")
}

// ParseKey inverts CanonicalKey. For every key CanonicalKey produces,
// CanonicalKey(ParseKey(key)) returns the key unchanged.
func ParseKey(key string) (*ParsedReference, error) {
	key = strings.TrimSpace(key)
	systemName, rest, ok := strings.Cut(key, ".")
	if !ok || rest == "" {
		return nil, fmt.Errorf("canonical key %q has no number", key)
	}
	system := System(systemName)
	if !system.Valid() {
		return nil, fmt.Errorf("canonical key %q names unknown system %q", key, systemName)
	}

	segments := strings.Split(rest, ".")
	middle := segments[:len(segments)-1]
	match := keyNumberPattern.FindStringSubmatch(segments[len(segments)-1])
	if match == nil {
		return nil, fmt.Errorf("canonical key %q has malformed number", key)
	}
	if system != SystemCrawford && strings.Contains(match[1], "/") {
		return nil, fmt.Errorf("canonical key %q: only Crawford numbers carry a sub-number", key)
	}

	ref := &ParsedReference{
		System:  system,
		Number:  match[1],
		Variant: match[2],
	}

	switch system {
	case SystemSNG:
		if len(middle) != 1 || middle[0] == "" {
			return nil, fmt.Errorf("canonical key %q needs exactly one collection", key)
		}
		ref.Collection = collectionFromSlug(middle[0])
		return finalize(ref), nil
	case SystemCrawford:
		if len(middle) > 0 {
			return nil, fmt.Errorf("canonical key %q: Crawford has no volumes", key)
		}
		return finalize(ref), nil
	case SystemRPC:
		if n := len(middle); n > 0 && keySupplementPattern.MatchString(middle[n-1]) {
			ref.Supplement = strings.ToUpper(middle[n-1])
			middle = middle[:n-1]
		}
	}

	if len(middle) > 0 {
		volumeKey := strings.Join(middle, ".")
		main, _, _ := strings.Cut(volumeKey, ".")
		if !numeral.IsRoman(main) {
			return nil, fmt.Errorf("canonical key %q has malformed volume %q", key, volumeKey)
		}
		volume, ok := numeral.RomanVolume(volumeKey)
		if !ok {
			return nil, fmt.Errorf("canonical key %q has malformed volume %q", key, volumeKey)
		}
		ref.Volume = volume
	}
	return finalize(ref), nil
}

// Display renders the conventional human form: "RIC II 115",
// "Crawford 335/1c", "RPC I S2 123", "SNG Cop 45".
func Display(ref *ParsedReference) string {
	if ref == nil {
		return ""
	}
	parts := []string{ref.System.Label()}
	if ref.Collection != "" {
		parts = append(parts, ref.Collection)
	}
	if ref.Volume != "" {
		parts = append(parts, ref.Volume)
	}
	if ref.Supplement != "" {
		parts = append(parts, strings.ToUpper(ref.Supplement))
	}
	parts = append(parts, ref.Number+ref.Variant)
	return strings.Join(parts, " ")
}

var defaultEngine = sync.OnceValue(func() *Engine {
	return NewEngine()
})

// DisplayText normalizes a free-text list of references with the default
// engine. See Engine.DisplayText.
func DisplayText(text string) string {
	return defaultEngine().DisplayText(text)
}

// DisplayText parses every fragment of text and joins the display forms
// with "; ". Fragments that do not parse are kept as collapsed upper-case
// text.
func (e *Engine) DisplayText(text string) string {
	var forms []string
	for _, outcome := range e.ParseMultiple(text) {
		if outcome.Reference != nil {
			forms = append(forms, Display(outcome.Reference))
			continue
		}
		if fragment := strings.ToUpper(numeral.CollapseSpace(outcome.Raw)); fragment != "" {
			forms = append(forms, fragment)
		}
	}
	return strings.Join(forms, "; ")
}

// CRROTypeID derives the CRRO type identifier of a Crawford reference:
// "Crawford 335/1c" becomes "rrc-335.1c".
func CRROTypeID(ref *ParsedReference) (string, bool) {
	if ref == nil || ref.System != SystemCrawford || ref.Number == "" {
		return "", false
	}
	main, sub, hasSub := strings.Cut(ref.Number, "/")
	id := "rrc-" + main
	if hasSub {
		id += "." + sub + ref.Variant
	}
	return id, true
}

// RPCURL derives the RPC Online page for a reference with a volume:
// "RPC I 4374" becomes "{base}coins/1/4374".
func RPCURL(base string, ref *ParsedReference) (string, bool) {
	if ref == nil || ref.System != SystemRPC || ref.Volume == "" {
		return "", false
	}
	volume, ok := numeral.ArabicVolume(ref.Volume)
	if !ok {
		return "", false
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	link := base + "coins/" + url.PathEscape(volume) + "/" + url.PathEscape(ref.Number+ref.Variant)
	if ref.Supplement != "" {
		link += "?supplement=" + url.QueryEscape(ref.Supplement)
	}
	return link, true
}
