package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/numisref/pkg/catalog"
	"github.com/coolbeans/numisref/pkg/citation"
	"github.com/coolbeans/numisref/pkg/compare"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// render writes value as JSON or YAML, or calls text for the text format.
// YAML is produced from the JSON encoding so both formats share field names.
func render(w io.Writer, format string, value any, text func(io.Writer)) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize JSON: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to serialize YAML: %w", err)
		}
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return fmt.Errorf("failed to serialize YAML: %w", err)
		}
		clearStyle(&node)
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(&node); err != nil {
			return fmt.Errorf("failed to serialize YAML: %w", err)
		}
		return encoder.Close()
	}
	text(w)
	return nil
}

// clearStyle drops the flow style yaml.v3 keeps from the JSON input.
func clearStyle(node *yaml.Node) {
	node.Style = 0
	for _, child := range node.Content {
		clearStyle(child)
	}
}

func printOutcome(w io.Writer, outcome citation.ParseOutcome) {
	if outcome.Reference == nil {
		fmt.Fprintf(w, "%s\n  no match (%s)", outcome.Raw, outcome.Reason)
		if outcome.NeedsReview {
			fmt.Fprint(w, ", needs review")
		}
		fmt.Fprintln(w)
		return
	}
	ref := outcome.Reference
	fmt.Fprintf(w, "%s\n", outcome.Raw)
	fmt.Fprintf(w, "  display:    %s\n", citation.Display(ref))
	fmt.Fprintf(w, "  key:        %s\n", ref.Normalized)
	fmt.Fprintf(w, "  confidence: %.2f", outcome.Confidence)
	if outcome.NeedsReview {
		fmt.Fprint(w, " (needs review)")
	}
	fmt.Fprintln(w)
	for _, warning := range ref.Warnings {
		fmt.Fprintf(w, "  warning:    %s\n", warning)
	}
}

func printResult(w io.Writer, result *catalog.Result) {
	fmt.Fprintf(w, "%s", strings.ToUpper(string(result.Status)))
	if result.System != "" {
		fmt.Fprintf(w, "  %s", result.System.Label())
	}
	if result.Reference != "" {
		fmt.Fprintf(w, "  %s", result.Reference)
	}
	if result.Cached {
		fmt.Fprint(w, "  (cached)")
	}
	fmt.Fprintln(w)

	if result.Key != "" {
		fmt.Fprintf(w, "  key:          %s\n", result.Key)
	}
	if result.ExternalID != "" {
		fmt.Fprintf(w, "  external id:  %s\n", result.ExternalID)
	}
	if result.ExternalURL != "" {
		fmt.Fprintf(w, "  url:          %s\n", result.ExternalURL)
	}
	if result.Status == catalog.StatusSuccess {
		fmt.Fprintf(w, "  confidence:   %.2f\n", result.Confidence)
	}
	if payload := result.Payload; payload != nil {
		for _, row := range [][2]string{
			{"title", payload.Title},
			{"authority", payload.Authority},
			{"denomination", payload.Denomination},
			{"mint", payload.Mint},
			{"material", payload.Material},
			{"date", payload.DateRange()},
			{"obverse", payload.ObverseLegend},
			{"", payload.ObverseDescription},
			{"reverse", payload.ReverseLegend},
			{"", payload.ReverseDescription},
		} {
			if row[1] == "" {
				continue
			}
			label := row[0]
			if label != "" {
				label += ":"
			}
			fmt.Fprintf(w, "  %-13s %s\n", label, row[1])
		}
	}
	if result.Status == catalog.StatusAmbiguous {
		for i, candidate := range result.Candidates {
			fmt.Fprintf(w, "  %d. %s  %.2f  %s\n", i+1, candidate.ExternalID, candidate.Confidence, candidate.Name)
		}
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  warning:      %s\n", warning)
	}
	if result.Error != "" {
		fmt.Fprintf(w, "  error:        %s\n", result.Error)
	}
}

func printComparison(w io.Writer, result compare.Result) {
	verdict := "MISMATCH"
	if result.Matches {
		verdict = "MATCH"
	}
	fmt.Fprintf(w, "%-20s %-8s %.2f  %s\n", result.Field, verdict, result.Similarity, result.DifferenceType)
	if result.NormalizedA != "" || result.NormalizedB != "" {
		fmt.Fprintf(w, "  %q vs %q\n", result.NormalizedA, result.NormalizedB)
	}
	if result.Notes != "" {
		fmt.Fprintf(w, "  %s\n", result.Notes)
	}
}
