package analysis

import (
	"github.com/ritzau/pd-parser/pkg/cycles"
	"github.com/ritzau/pd-parser/pkg/diff"
	"github.com/ritzau/pd-parser/pkg/model"
	"github.com/ritzau/pd-parser/pkg/parse"
	"github.com/ritzau/pd-parser/pkg/pubsub"
	"github.com/ritzau/pd-parser/pkg/validate"
)

// FileResult is everything known about one patch file after a run
type FileResult struct {
	Path string `json:"path"`

	// ReadError is set when the file couldn't be read, Result is nil then
	ReadError string        `json:"readError,omitempty"`
	Result    *parse.Result `json:"result,omitempty"`

	// Issues and FeedbackLoops are only filled when validation is enabled
	// and the parse succeeded
	Issues        []validate.Issue      `json:"issues,omitempty"`
	FeedbackLoops []cycles.FeedbackLoop `json:"feedbackLoops,omitempty"`

	// Changes compares the graph with the previous successful parse of the
	// same file. Nil on the first parse and on failures.
	Changes *diff.Diff `json:"changes,omitempty"`
}

// Pd returns the parsed graph, nil if the file failed to read or parse
func (fr *FileResult) Pd() *model.Pd {
	if fr.Result == nil {
		return nil
	}
	return fr.Result.Pd
}

// OK reports whether the file parsed and validated cleanly. In strict mode
// warnings count as failures too.
func (fr *FileResult) OK(strict bool) bool {
	if fr.ReadError != "" || fr.Result == nil || !fr.Result.OK() {
		return false
	}
	if len(fr.Issues) > 0 {
		return false
	}
	return !strict || len(fr.Result.Warnings) == 0
}

// Summary condenses the result into the event payload sent to subscribers
func (fr *FileResult) Summary() pubsub.PatchResult {
	summary := pubsub.PatchResult{
		File:     fr.Path,
		Status:   "failure",
		Warnings: make([]string, 0),
	}
	if fr.ReadError != "" {
		summary.Errors = []string{fr.ReadError}
		return summary
	}

	summary.Status = string(fr.Result.Status)
	for _, w := range fr.Result.Warnings {
		summary.Warnings = append(summary.Warnings, w.String())
	}
	for _, e := range fr.Result.Errors {
		summary.Errors = append(summary.Errors, e.String())
	}
	for _, issue := range fr.Issues {
		summary.Errors = append(summary.Errors, issue.String())
	}
	if pd := fr.Result.Pd; pd != nil {
		summary.Patches = len(pd.Patches)
		summary.Arrays = len(pd.Arrays)
		summary.Nodes = pd.NodeCount()
	}
	if fr.Changes != nil {
		summary.Changes = fr.Changes.String()
	}
	return summary
}
