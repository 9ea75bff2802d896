package citation

import (
	"regexp"
	"strings"

	"github.com/coolbeans/numisref/pkg/numeral"
)

var (
	canonicalKeyPattern = regexp.MustCompile(
		`^(?:ric|crawford|rpc|rsc|bmcre|bmcrr|sear|sydenham|cohen|calico|doc|sng)\.[a-z0-9./\-]+$`)

	referenceKeywordPattern = regexp.MustCompile(
		`(?i)\b(?:ric|rrc|crawford|cr|rpc|rsc|bmc\w*|sear|srcv|sr|sydenham|syd|cohen|coh|calico|cal|doc|sng)\b`)

	digitPattern = regexp.MustCompile(`\d`)

	fragmentSeparator = regexp.MustCompile(`\s+/\s+|\n|;`)
)

// Engine parses citations by trying registered parsers in precedence order
// and scoring the outcome.
type Engine struct {
	registry   *Registry
	crawford   *CrawfordParser
	thresholds Thresholds
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRegistry replaces the default parser registry.
func WithRegistry(registry *Registry) EngineOption {
	return func(e *Engine) {
		e.registry = registry
	}
}

// WithThresholds overrides the confidence thresholds.
func WithThresholds(thresholds Thresholds) EngineOption {
	return func(e *Engine) {
		e.thresholds = thresholds
	}
}

// NewEngine creates an engine over the default registry.
func NewEngine(opts ...EngineOption) *Engine {
	engine := &Engine{
		crawford:   NewCrawfordParser(),
		thresholds: DefaultThresholds(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if engine.registry == nil {
		engine.registry = DefaultRegistry()
	}
	return engine
}

// Registry returns the engine's parser registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Thresholds returns the engine's confidence thresholds.
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds
}

// Parse reads one citation. Canonical keys are inverted directly; any other
// text is offered to each parser in turn and then to the bare Crawford
// fallback.
func (e *Engine) Parse(raw string) ParseOutcome {
	text := numeral.CollapseSpace(raw)
	if text == "" {
		return ParseOutcome{Raw: raw, Reason: ReasonEmpty}
	}

	if canonicalKeyPattern.MatchString(text) {
		if ref, err := ParseKey(text); err == nil {
			ref.Raw = raw
			return e.score(raw, ref, ReasonCanonicalKey)
		}
	}

	for _, parser := range e.registry.Parsers() {
		if ref, ok := parser.Parse(text); ok {
			ref.Raw = raw
			return e.score(raw, ref, ReasonStructured)
		}
	}

	if ref, ok := e.crawford.ParseBare(text); ok {
		ref.Raw = raw
		return ParseOutcome{
			Raw:         raw,
			Reference:   ref,
			Confidence:  e.thresholds.HeuristicConfidence,
			NeedsReview: e.thresholds.HeuristicConfidence < e.thresholds.ReviewCutoff,
			Reason:      ReasonHeuristic,
		}
	}

	return ParseOutcome{
		Raw:         raw,
		NeedsReview: LooksLikeReference(text),
		Reason:      ReasonUnrecognized,
	}
}

func (e *Engine) score(raw string, ref *ParsedReference, reason OutcomeReason) ParseOutcome {
	confidence := 1.0
	if ref.HasWarnings() {
		confidence = e.thresholds.WarningConfidence
		reason = ReasonWarnings
	}
	return ParseOutcome{
		Raw:         raw,
		Reference:   ref,
		Confidence:  confidence,
		NeedsReview: confidence < e.thresholds.ReviewCutoff,
		Reason:      reason,
	}
}

// ParseAs reads raw with a single system's parser, bypassing precedence.
func (e *Engine) ParseAs(system System, raw string) ParseOutcome {
	parser, ok := e.registry.Get(system)
	if !ok {
		return ParseOutcome{Raw: raw, Reason: ReasonUnrecognized}
	}
	text := numeral.CollapseSpace(raw)
	if text == "" {
		return ParseOutcome{Raw: raw, Reason: ReasonEmpty}
	}
	ref, ok := parser.Parse(text)
	if !ok && system == SystemCrawford {
		if bare, bareOK := e.crawford.ParseBare(text); bareOK {
			// The caller named the system, so the bare form is no guess.
			bare.Warnings = nil
			ref, ok = bare, true
		}
	}
	if !ok {
		return ParseOutcome{Raw: raw, NeedsReview: LooksLikeReference(text), Reason: ReasonUnrecognized}
	}
	ref.Raw = raw
	return e.score(raw, ref, ReasonStructured)
}

// DetectSystem reports which catalog raw belongs to.
func (e *Engine) DetectSystem(raw string) (System, bool) {
	outcome := e.Parse(raw)
	if outcome.Reference == nil {
		return "", false
	}
	return outcome.Reference.System, true
}

// ParseMultiple splits a free-text list of citations and parses each
// fragment. Fragments are separated by ";", newlines, " / " and commas; a
// comma that sits inside a single citation ("RIC II, 115") is kept when the
// joined pieces parse better than the first piece alone.
func (e *Engine) ParseMultiple(text string) []ParseOutcome {
	var outcomes []ParseOutcome
	for _, segment := range fragmentSeparator.Split(text, -1) {
		var pieces []string
		for _, piece := range strings.Split(segment, ",") {
			if trimmed := strings.TrimSpace(piece); trimmed != "" {
				pieces = append(pieces, trimmed)
			}
		}

		for i := 0; i < len(pieces); i++ {
			outcome := e.Parse(pieces[i])
			// "RIC 2" alone parses as a volume-less RIC number, so a
			// weak match is also offered the next piece.
			weak := outcome.Reference == nil || outcome.Reference.HasWarnings()
			if weak && i+1 < len(pieces) {
				joined := e.Parse(pieces[i] + ", " + pieces[i+1])
				if joined.Reference != nil && joined.Confidence > outcome.Confidence {
					outcomes = append(outcomes, joined)
					i++
					continue
				}
			}
			outcomes = append(outcomes, outcome)
		}
	}
	return outcomes
}

// LooksLikeReference reports whether text resembles a catalog citation: it
// carries digits together with a catalog keyword or a slash.
func LooksLikeReference(text string) bool {
	folded := foldAccents(text)
	if !digitPattern.MatchString(folded) {
		return false
	}
	return strings.Contains(folded, "/") || referenceKeywordPattern.MatchString(folded)
}
