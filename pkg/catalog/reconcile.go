package catalog

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/coolbeans/numisref/pkg/errors"
)

// reconcileQueryID is the key of the single query sent per request.
const reconcileQueryID = "q0"

type reconcileQuery struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// reconcileForm encodes a single OpenRefine reconciliation query as the
// "queries" form field.
func reconcileForm(query string, limit int) (url.Values, error) {
	encoded, err := json.Marshal(map[string]reconcileQuery{
		reconcileQueryID: {Query: query, Limit: limit},
	})
	if err != nil {
		return nil, err
	}
	return url.Values{"queries": {string(encoded)}}, nil
}

type reconcileCandidate struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Score       flexFloat       `json:"score"`
	Match       bool            `json:"match"`
	Type        []reconcileType `json:"type"`
}

type reconcileType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type reconcileResult struct {
	Result []reconcileCandidate `json:"result"`
}

// flexFloat accepts a JSON number or a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*f = 0
			return nil
		}
		value, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return err
		}
		*f = flexFloat(value)
		return nil
	}
	var value float64
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*f = flexFloat(value)
	return nil
}

// decodeReconcileResponse extracts the candidates for q0. It tolerates a
// JSONP wrapper and a body that is the bare `"q0": {...}` member.
func decodeReconcileResponse(body []byte) ([]reconcileCandidate, error) {
	text := strings.TrimSpace(string(body))
	text = strings.TrimSuffix(text, ";")

	if !strings.HasPrefix(text, "{") && strings.HasSuffix(text, ")") {
		if open := strings.Index(text, "("); open >= 0 {
			text = strings.TrimSpace(text[open+1 : len(text)-1])
		}
	}
	if strings.HasPrefix(text, `"`+reconcileQueryID+`"`) {
		text = "{" + text + "}"
	}

	var batch map[string]reconcileResult
	if err := json.Unmarshal([]byte(text), &batch); err != nil {
		return nil, pkgerrors.NewParseError("json", "", "malformed reconciliation response", err)
	}
	result, ok := batch[reconcileQueryID]
	if !ok {
		return nil, pkgerrors.NewParseError("json", "", "reconciliation response has no "+reconcileQueryID, nil)
	}
	return result.Result, nil
}

// toCandidates converts raw candidates. Identifiers given as URLs are split
// into the final path segment (the id) and the URL itself.
func toCandidates(raw []reconcileCandidate, typeURL func(string) string) []Candidate {
	candidates := make([]Candidate, 0, len(raw))
	for _, item := range raw {
		id := strings.TrimSpace(item.ID)
		if id == "" {
			continue
		}
		link := typeURL(id)
		if strings.HasPrefix(id, "http://") || strings.HasPrefix(id, "https://") {
			link = id
			id = lastPathSegment(id)
		}
		candidates = append(candidates, newCandidate(id, link, item.Name, item.Description, float64(item.Score), item.Match))
	}
	return candidates
}

func lastPathSegment(uri string) string {
	trimmed := strings.TrimRight(uri, "/")
	if hash := strings.LastIndex(trimmed, "#"); hash >= 0 && hash < len(trimmed)-1 {
		return trimmed[hash+1:]
	}
	if slash := strings.LastIndex(trimmed, "/"); slash >= 0 {
		return trimmed[slash+1:]
	}
	return trimmed
}
