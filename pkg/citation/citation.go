// Package citation parses free-text numismatic catalog citations (RIC,
// Crawford, RPC, RSC, BMCRE, BMCRR, Sear, Sydenham, Cohen, Calicó, DOC, SNG)
// into structured references with a deterministic canonical key.
package citation

import "strings"

// System identifies one of the supported catalog publications.
type System string

const (
	SystemRIC      System = "ric"
	SystemCrawford System = "crawford"
	SystemRPC      System = "rpc"
	SystemRSC      System = "rsc"
	SystemBMCRE    System = "bmcre"
	SystemBMCRR    System = "bmcrr"
	SystemSear     System = "sear"
	SystemSydenham System = "sydenham"
	SystemCohen    System = "cohen"
	SystemCalico   System = "calico"
	SystemDOC      System = "doc"
	SystemSNG      System = "sng"
)

// Precedence is the order in which parsers are tried. BMCRR must precede
// BMCRE because "BMC" is a prefix of both keywords.
var Precedence = []System{
	SystemRIC,
	SystemCrawford,
	SystemRPC,
	SystemRSC,
	SystemBMCRR,
	SystemBMCRE,
	SystemSear,
	SystemSydenham,
	SystemCohen,
	SystemCalico,
	SystemDOC,
	SystemSNG,
}

var systemLabels = map[System]string{
	SystemRIC:      "RIC",
	SystemCrawford: "Crawford",
	SystemRPC:      "RPC",
	SystemRSC:      "RSC",
	SystemBMCRE:    "BMCRE",
	SystemBMCRR:    "BMCRR",
	SystemSear:     "Sear",
	SystemSydenham: "Sydenham",
	SystemCohen:    "Cohen",
	SystemCalico:   "Calicó",
	SystemDOC:      "DOC",
	SystemSNG:      "SNG",
}

var systemAliases = map[string]System{
	"rrc":    SystemCrawford,
	"cr":     SystemCrawford,
	"bmc":    SystemBMCRE,
	"srcv":   SystemSear,
	"syd":    SystemSydenham,
	"calicó": SystemCalico,
}

// Label returns the conventional display prefix for the system.
func (system System) Label() string {
	if label, ok := systemLabels[system]; ok {
		return label
	}
	return strings.ToUpper(string(system))
}

// Valid reports whether the system is one of the supported catalogs.
func (system System) Valid() bool {
	_, ok := systemLabels[system]
	return ok
}

// ParseSystem resolves a system name or common abbreviation, case-insensitively.
func ParseSystem(name string) (System, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if system := System(key); system.Valid() {
		return system, true
	}
	if system, ok := systemAliases[key]; ok {
		return system, true
	}
	return "", false
}

// ParsedReference is the structured form of a single catalog citation.
// Instances are built once by a parser and never mutated afterwards.
type ParsedReference struct {
	System System `json:"system"`

	// Volume is stored in canonical Roman form, optionally with an Arabic
	// part ("IV.1").
	Volume string `json:"volume,omitempty"`

	// Number is the main catalog number. Crawford numbers embed the
	// sub-number ("335/1").
	Number  string `json:"number"`
	Variant string `json:"variant,omitempty"`

	// System-specific qualifiers.
	Mint       string `json:"mint,omitempty"`
	Edition    string `json:"edition,omitempty"`
	Supplement string `json:"supplement,omitempty"`
	Collection string `json:"collection,omitempty"`

	// Normalized is the canonical dotted key derived from the fields above.
	Normalized string `json:"normalized"`

	Warnings []string `json:"warnings,omitempty"`
	Raw      string   `json:"raw,omitempty"`
}

// String returns the display form of the reference.
func (ref *ParsedReference) String() string {
	return Display(ref)
}

// HasWarnings reports whether the parser attached any caveats.
func (ref *ParsedReference) HasWarnings() bool {
	return len(ref.Warnings) > 0
}

// finalize computes the canonical key. Parsers call it as the last step
// before returning a reference.
func finalize(ref *ParsedReference) *ParsedReference {
	ref.Variant = strings.ToLower(ref.Variant)
	ref.Normalized = CanonicalKey(ref)
	return ref
}

// ParseOutcome is the engine's verdict for one raw citation.
type ParseOutcome struct {
	Raw         string           `json:"raw"`
	Reference   *ParsedReference `json:"reference,omitempty"`
	Confidence  float64          `json:"confidence"`
	NeedsReview bool             `json:"needs_review"`
	Reason      OutcomeReason    `json:"reason"`
}

// Matched reports whether a reference was found.
func (outcome ParseOutcome) Matched() bool {
	return outcome.Reference != nil
}

// OutcomeReason explains how the engine arrived at an outcome.
type OutcomeReason string

const (
	ReasonStructured   OutcomeReason = "structured"
	ReasonWarnings     OutcomeReason = "structured_with_warnings"
	ReasonCanonicalKey OutcomeReason = "canonical_key"
	ReasonHeuristic    OutcomeReason = "bare_number_heuristic"
	ReasonUnrecognized OutcomeReason = "unrecognized"
	ReasonEmpty        OutcomeReason = "empty"
)

// Thresholds holds the confidence constants used by the engine. The values
// are empirical and kept configurable.
type Thresholds struct {
	// ReviewCutoff is the confidence below which an outcome needs review.
	ReviewCutoff float64

	// WarningConfidence applies to structured matches that carry warnings.
	WarningConfidence float64

	// HeuristicConfidence applies to the prefix-less "NNN/N" fallback.
	HeuristicConfidence float64
}

// DefaultThresholds returns the standard engine thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ReviewCutoff:        0.92,
		WarningConfidence:   0.7,
		HeuristicConfidence: 0.5,
	}
}
