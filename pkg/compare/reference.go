package compare

import (
	"fmt"
	"strings"
	"sync"

	"github.com/coolbeans/numisref/pkg/citation"
)

var referenceEngine = sync.OnceValue(func() *citation.Engine {
	return citation.NewEngine()
})

// compareReference normalizes both citation lists to their display forms,
// so "RIC 2, 115" and "RIC II 115" agree.
func compareReference(a, b any) Result {
	engine := referenceEngine()
	rawA, rawB := collapse(render(a)), collapse(render(b))
	normalizedA, normalizedB := engine.DisplayText(rawA), engine.DisplayText(rawB)
	result := Result{NormalizedA: normalizedA, NormalizedB: normalizedB}

	if normalizedA == normalizedB {
		result.Matches, result.Similarity = true, 1
		result.DifferenceType = DiffEquivalent
		if rawA == rawB {
			result.DifferenceType = DiffExact
		}
		return result
	}

	if containsReferences(normalizedA, normalizedB) || containsReferences(normalizedB, normalizedA) {
		result.Matches, result.Similarity, result.DifferenceType = true, 0.9, DiffEquivalent
		result.Notes = "one citation list contains the other"
		return result
	}

	systemA, okA := firstSystem(engine, rawA)
	systemB, okB := firstSystem(engine, rawB)
	if okA && okB && systemA == systemB {
		result.Similarity, result.DifferenceType = 0.3, DiffMismatch
		result.Notes = fmt.Sprintf("same catalog %s, different number", systemA.Label())
		return result
	}
	result.DifferenceType = DiffMismatch
	return result
}

// containsReferences reports whether every citation in inner also appears
// in outer.
func containsReferences(outer, inner string) bool {
	if inner == "" {
		return false
	}
	set := make(map[string]struct{})
	for _, form := range strings.Split(outer, "; ") {
		set[form] = struct{}{}
	}
	for _, form := range strings.Split(inner, "; ") {
		if _, ok := set[form]; !ok {
			return false
		}
	}
	return true
}

func firstSystem(engine *citation.Engine, text string) (citation.System, bool) {
	for _, outcome := range engine.ParseMultiple(text) {
		if outcome.Reference != nil {
			return outcome.Reference.System, true
		}
	}
	return "", false
}
