// Package output renders parse results for the terminal or as JSON/YAML
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/ritzau/pd-parser/pkg/analysis"
)

// Format selects how results are written
type Format string

const (
	FormatSummary Format = "summary"
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
)

// ParseFormat validates a format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatSummary, FormatJSON, FormatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q, expected summary, json or yaml", name)
}

// Write renders results in the given format. strict only affects the
// summary verdict.
func Write(w io.Writer, format Format, results []*analysis.FileResult, strict bool) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, results)
	case FormatYAML:
		return WriteYAML(w, results)
	case FormatSummary, "":
		PrintSummary(w, results, strict)
		return nil
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteJSON writes the full results as indented JSON
func WriteJSON(w io.Writer, results []*analysis.FileResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// WriteYAML writes the full results as YAML. The results go through JSON
// first so that field names and omitted fields match the JSON output.
func WriteYAML(w io.Writer, results []*analysis.FileResult) error {
	data, err := json.Marshal(results)
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to decode results: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// PrintSummary prints one colored block per file followed by a verdict
func PrintSummary(w io.Writer, results []*analysis.FileResult, strict bool) {
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	failed := 0
	for _, fr := range results {
		ok := fr.OK(strict)
		if !ok {
			failed++
		}

		switch {
		case fr.ReadError != "":
			red.Fprintf(w, "✗ %s\n", fr.Path)
			fmt.Fprintf(w, "    %s\n", fr.ReadError)
			continue
		case ok:
			green.Fprintf(w, "✓ %s", fr.Path)
		default:
			red.Fprintf(w, "✗ %s", fr.Path)
		}

		if pd := fr.Result.Pd; pd != nil {
			cyan.Fprintf(w, "  %d patch(es), %d array(s), %d node(s), %d connection(s)",
				len(pd.Patches), len(pd.Arrays), pd.NodeCount(), pd.ConnectionCount())
		}
		fmt.Fprintln(w)

		for _, d := range fr.Result.Errors {
			red.Fprintf(w, "    error: %s\n", d)
		}
		for _, d := range fr.Result.Warnings {
			yellow.Fprintf(w, "    warning: %s\n", d)
		}
		for _, issue := range fr.Issues {
			red.Fprintf(w, "    invalid: %s\n", issue)
		}
		for _, loop := range fr.FeedbackLoops {
			fmt.Fprintf(w, "    feedback loop in patch %d: nodes %v\n", loop.PatchID, loop.Nodes)
		}
		if fr.Changes != nil && !fr.Changes.Empty() {
			cyan.Fprintf(w, "    changed: %s\n", fr.Changes)
		}
	}

	fmt.Fprintln(w)
	total := len(results)
	switch {
	case total == 0:
		yellow.Fprintln(w, "No patches found")
	case failed == 0:
		bold.Fprintf(w, "Summary: ")
		green.Fprintf(w, "%d/%d patch file(s) parsed\n", total, total)
	default:
		bold.Fprintf(w, "Summary: ")
		red.Fprintf(w, "%d of %d patch file(s) failed\n", failed, total)
	}
}
