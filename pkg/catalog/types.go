// Package catalog reconciles parsed catalog references against online type
// corpora (OCRE for RIC, CRRO for Crawford, RPC Online for RPC) and maps
// the replies onto a small set of lookup statuses.
package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/coolbeans/numisref/pkg/citation"
)

// Status is the outcome class of a lookup.
type Status string

const (
	// StatusSuccess means a single type was identified.
	StatusSuccess Status = "success"
	// StatusAmbiguous means several candidates remain and a human must choose.
	StatusAmbiguous Status = "ambiguous"
	// StatusNotFound means the service returned no candidates.
	StatusNotFound Status = "not_found"
	// StatusDeferred means the lookup could not be completed now (timeout,
	// no online service) and should be retried or checked manually.
	StatusDeferred Status = "deferred"
	// StatusError means the lookup failed.
	StatusError Status = "error"
)

// Cacheable reports whether results with this status may be cached.
func (status Status) Cacheable() bool {
	switch status {
	case StatusSuccess, StatusAmbiguous, StatusNotFound:
		return true
	}
	return false
}

// MatchType grades a candidate.
type MatchType string

const (
	MatchExact   MatchType = "exact"
	MatchPartial MatchType = "partial"
	MatchFuzzy   MatchType = "fuzzy"
)

// Candidate is one type proposed by a reconciliation service.
type Candidate struct {
	ExternalID  string    `json:"external_id"`
	ExternalURL string    `json:"external_url,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Score       float64   `json:"score"`
	Confidence  float64   `json:"confidence"`
	Match       bool      `json:"match"`
	MatchType   MatchType `json:"match_type"`
}

// newCandidate derives confidence and match type from the raw service score,
// which is on a 0-100 scale.
func newCandidate(id, link, name, description string, score float64, match bool) Candidate {
	confidence := score / 100
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	matchType := MatchFuzzy
	switch {
	case match:
		matchType = MatchExact
	case confidence >= 0.5:
		matchType = MatchPartial
	}
	return Candidate{
		ExternalID:  id,
		ExternalURL: link,
		Name:        name,
		Description: description,
		Score:       score,
		Confidence:  confidence,
		Match:       match,
		MatchType:   matchType,
	}
}

// TypePayload is the flattened description of a coin type.
type TypePayload struct {
	ID                 string `json:"id"`
	URL                string `json:"url,omitempty"`
	Title              string `json:"title,omitempty"`
	Authority          string `json:"authority,omitempty"`
	Denomination       string `json:"denomination,omitempty"`
	Mint               string `json:"mint,omitempty"`
	Material           string `json:"material,omitempty"`
	DateFrom           *int   `json:"date_from,omitempty"`
	DateTo             *int   `json:"date_to,omitempty"`
	ObverseLegend      string `json:"obverse_legend,omitempty"`
	ObverseDescription string `json:"obverse_description,omitempty"`
	ReverseLegend      string `json:"reverse_legend,omitempty"`
	ReverseDescription string `json:"reverse_description,omitempty"`
}

// DateRange renders the issue dates, e.g. "2 BC - AD 4". Negative years
// are BCE.
func (payload *TypePayload) DateRange() string {
	if payload == nil {
		return ""
	}
	switch {
	case payload.DateFrom == nil && payload.DateTo == nil:
		return ""
	case payload.DateTo == nil || (payload.DateFrom != nil && *payload.DateFrom == *payload.DateTo):
		return formatYear(*payload.DateFrom)
	case payload.DateFrom == nil:
		return formatYear(*payload.DateTo)
	}
	return formatYear(*payload.DateFrom) + " - " + formatYear(*payload.DateTo)
}

func formatYear(year int) string {
	if year < 0 {
		return fmt.Sprintf("%d BC", -year)
	}
	return fmt.Sprintf("AD %d", year)
}

// Result is the outcome of one Lookup or GetByID call.
type Result struct {
	Status      Status          `json:"status"`
	System      citation.System `json:"system,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Key         string          `json:"key,omitempty"`
	ExternalID  string          `json:"external_id,omitempty"`
	ExternalURL string          `json:"external_url,omitempty"`
	Confidence  float64         `json:"confidence"`
	Candidates  []Candidate     `json:"candidates,omitempty"`
	Payload     *TypePayload    `json:"payload,omitempty"`
	Error       string          `json:"error,omitempty"`
	Warnings    []string        `json:"warnings,omitempty"`
	LookedUpAt  time.Time       `json:"looked_up_at"`
	Cached      bool            `json:"cached"`

	err error
}

// Err returns the underlying error for error and deferred results, so
// callers can use errors.Is against the pkg/errors sentinels.
func (result *Result) Err() error {
	return result.err
}

// AddWarning appends a warning once.
func (result *Result) AddWarning(warning string) {
	for _, existing := range result.Warnings {
		if existing == warning {
			return
		}
	}
	result.Warnings = append(result.Warnings, warning)
}

func (result *Result) setError(status Status, err error) *Result {
	result.Status = status
	result.err = err
	if err != nil {
		result.Error = err.Error()
	}
	return result
}

// clone returns a copy whose slices and payload can be modified freely.
func (result *Result) clone() *Result {
	copied := *result
	copied.Candidates = append([]Candidate(nil), result.Candidates...)
	copied.Warnings = append([]string(nil), result.Warnings...)
	if result.Payload != nil {
		payload := *result.Payload
		copied.Payload = &payload
	}
	return &copied
}

// LookupHints narrow a reconciliation query. Both fields become part of
// the query and of the cache key.
type LookupHints struct {
	// Authority is the issuing ruler, e.g. "Augustus".
	Authority string `json:"authority,omitempty"`
	// Mint separates RIC VI-X types, whose numbers restart at each mint.
	// A mint named in the citation itself takes precedence.
	Mint string `json:"mint,omitempty"`
}

func (hints *LookupHints) authority() string {
	if hints == nil {
		return ""
	}
	return strings.TrimSpace(hints.Authority)
}

func (hints *LookupHints) mint() string {
	if hints == nil {
		return ""
	}
	return strings.TrimSpace(hints.Mint)
}

// withReference folds the mint parsed from ref into the hints.
func (hints *LookupHints) withReference(ref *citation.ParsedReference) *LookupHints {
	if ref == nil || strings.TrimSpace(ref.Mint) == "" {
		return hints
	}
	merged := LookupHints{Mint: strings.TrimSpace(ref.Mint)}
	if hints != nil {
		merged.Authority = hints.Authority
	}
	return &merged
}

// LookupRequest is one entry of a batch lookup.
type LookupRequest struct {
	System    string       `json:"system"`
	Reference string       `json:"reference"`
	Hints     *LookupHints `json:"hints,omitempty"`
}
