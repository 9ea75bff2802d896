package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/numisref/pkg/catalog"
	"github.com/coolbeans/numisref/pkg/citation"
	"github.com/coolbeans/numisref/pkg/compare"
)

func parseCmd(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <citation>...",
		Short: "Parse catalog citations into canonical keys",
		Long: `Parse one or more catalog citations and print their display form,
canonical key and confidence.

With --multiple each argument is treated as a list of citations separated
by ";", ",", " / " or newlines.

Example:
  numisref parse "RIC I(2) 207" "Cr. 335/1c"
  numisref parse --multiple "RIC II 115; RSC 12"
  numisref parse --system crawford "335/1c" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			multiple, _ := cmd.Flags().GetBool("multiple")
			systemName, _ := cmd.Flags().GetString("system")

			registry, err := state.catalog()
			if err != nil {
				return err
			}
			engine := registry.Engine()

			var system citation.System
			if systemName != "" && systemName != "auto" {
				parsed, ok := citation.ParseSystem(systemName)
				if !ok {
					return fmt.Errorf("unknown catalog system %q", systemName)
				}
				system = parsed
			}

			var outcomes []citation.ParseOutcome
			for _, arg := range args {
				switch {
				case multiple:
					outcomes = append(outcomes, engine.ParseMultiple(arg)...)
				case system != "":
					outcomes = append(outcomes, engine.ParseAs(system, arg))
				default:
					outcomes = append(outcomes, engine.Parse(arg))
				}
			}

			return render(cmd.OutOrStdout(), state.format, outcomes, func(w io.Writer) {
				for _, outcome := range outcomes {
					printOutcome(w, outcome)
				}
			})
		},
	}

	cmd.Flags().Bool("multiple", false, "split each argument into a list of citations")
	cmd.Flags().String("system", "auto", "parse as this catalog system")

	return cmd
}

func lookupCmd(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup [reference]",
		Short: "Reconcile a reference against the online catalogs",
		Long: `Look up a catalog reference in OCRE (RIC), CRRO (Crawford) or RPC Online
and print the matched type.

References can also be read from a file, one per line, with --file; lines
are looked up concurrently.

Example:
  numisref lookup "RIC I 207" --authority Augustus
  numisref lookup "RIC VII 12" --mint Trier
  numisref lookup "Crawford 335/1c" --format yaml
  numisref lookup --file refs.txt --concurrency 8`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			system, _ := cmd.Flags().GetString("system")
			authority, _ := cmd.Flags().GetString("authority")
			mint, _ := cmd.Flags().GetString("mint")
			file, _ := cmd.Flags().GetString("file")
			concurrency, _ := cmd.Flags().GetInt("concurrency")

			var hints *catalog.LookupHints
			if authority != "" || mint != "" {
				hints = &catalog.LookupHints{Authority: authority, Mint: mint}
			}

			var requests []catalog.LookupRequest
			if len(args) == 1 {
				requests = append(requests, catalog.LookupRequest{System: system, Reference: args[0], Hints: hints})
			}
			if file != "" {
				lines, err := readLines(file)
				if err != nil {
					return err
				}
				for _, line := range lines {
					requests = append(requests, catalog.LookupRequest{System: system, Reference: line, Hints: hints})
				}
			}
			if len(requests) == 0 {
				return fmt.Errorf("a reference argument or --file is required")
			}

			registry, err := state.catalog()
			if err != nil {
				return err
			}
			results := registry.LookupMany(cmd.Context(), requests, concurrency)

			var value any = results
			if len(results) == 1 {
				value = results[0]
			}
			return render(cmd.OutOrStdout(), state.format, value, func(w io.Writer) {
				for _, result := range results {
					printResult(w, result)
				}
			})
		},
	}

	cmd.Flags().String("system", "auto", "catalog system, or auto to detect it")
	cmd.Flags().String("authority", "", "issuing authority, narrows RIC queries")
	cmd.Flags().String("mint", "", "mint, separates RIC VI-X types that share a number")
	cmd.Flags().String("file", "", "read references from a file, one per line")
	cmd.Flags().Int("concurrency", catalog.DefaultLookupConcurrency, "lookups in flight for --file")

	return cmd
}

func getCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <system> <id>",
		Short: "Fetch a catalog type by its external identifier",
		Long: `Fetch a coin type by the identifier its catalog assigns.

Example:
  numisref get ric "ric.1(2).aug.207"
  numisref get crawford rrc-335.1c --format json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := state.catalog()
			if err != nil {
				return err
			}
			result := registry.GetByID(cmd.Context(), args[0], args[1])
			return render(cmd.OutOrStdout(), state.format, result, func(w io.Writer) {
				printResult(w, result)
			})
		},
	}
}

// recordComparison is the output of compare --records.
type recordComparison struct {
	Results []compare.Result `json:"results"`
	Summary compare.Summary  `json:"summary"`
}

func compareCmd(state *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <field> <a> <b>",
		Short: "Compare two values of a coin record field",
		Long: `Compare two values of one coin record field with the rule for its kind:
weight, diameter, thickness, grade, legend, reference, date, die_axis,
exact or text. The kind is chosen from the field name unless --kind is set.

With --records the two arguments are JSON or YAML files holding one record
each, and every field present in either record is compared.

Example:
  numisref compare weight 3.00 3.08
  numisref compare grade "Choice VF" "VF+"
  numisref compare --kind legend obv "IMP·CAESAR" "IMP CAESAR"
  numisref compare --records stored.yaml listing.yaml`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, _ := cmd.Flags().GetBool("records")
			kindName, _ := cmd.Flags().GetString("kind")

			if records {
				if len(args) != 2 {
					return fmt.Errorf("--records takes exactly two files")
				}
				recordA, err := readRecord(args[0])
				if err != nil {
					return err
				}
				recordB, err := readRecord(args[1])
				if err != nil {
					return err
				}
				results := compare.CompareRecord(recordA, recordB)
				output := recordComparison{Results: results, Summary: compare.Summarize(results)}
				return render(cmd.OutOrStdout(), state.format, output, func(w io.Writer) {
					for _, result := range results {
						printComparison(w, result)
					}
					summary := output.Summary
					fmt.Fprintf(w, "\n%d fields: %d matched, %d mismatched, %d missing, score %.2f\n",
						summary.Fields, summary.Matched, summary.Mismatched, summary.Missing, summary.Score)
				})
			}

			if len(args) != 3 {
				return fmt.Errorf("compare takes a field name and two values")
			}
			var result compare.Result
			if kindName != "" {
				kind, ok := compare.ParseKind(kindName)
				if !ok {
					return fmt.Errorf("unknown field kind %q", kindName)
				}
				result = compare.CompareAs(kind, args[0], args[1], args[2])
			} else {
				result = compare.Compare(args[0], args[1], args[2])
			}
			return render(cmd.OutOrStdout(), state.format, result, func(w io.Writer) {
				printComparison(w, result)
			})
		},
	}

	cmd.Flags().Bool("records", false, "compare two record files")
	cmd.Flags().String("kind", "", "comparison kind, overriding the field name")

	return cmd
}

// systemInfo describes one catalog system for the systems command.
type systemInfo struct {
	System     citation.System `json:"system"`
	Label      string          `json:"label"`
	Online     bool            `json:"online"`
	Precedence int             `json:"precedence"`
}

func systemsCmd(state *app) *cobra.Command {
	return &cobra.Command{
		Use:   "systems",
		Short: "List the supported catalog systems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := state.catalog()
			if err != nil {
				return err
			}
			online := make(map[citation.System]bool)
			for _, system := range registry.Systems() {
				online[system] = true
			}

			infos := make([]systemInfo, 0, len(citation.Precedence))
			for i, system := range citation.Precedence {
				infos = append(infos, systemInfo{
					System:     system,
					Label:      system.Label(),
					Online:     online[system],
					Precedence: i + 1,
				})
			}

			return render(cmd.OutOrStdout(), state.format, infos, func(w io.Writer) {
				for _, info := range infos {
					lookup := "parse only"
					if info.Online {
						lookup = "lookup"
					}
					fmt.Fprintf(w, "%2d  %-10s %-9s %s\n", info.Precedence, info.Label, info.System, lookup)
				}
			})
		},
	}
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return lines, nil
}

// readRecord decodes a flat record from a JSON or YAML file.
func readRecord(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	record := make(map[string]any)
	if err := yaml.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return record, nil
}
