package parse

import (
	"errors"
	"fmt"

	"github.com/ritzau/pd-parser/pkg/model"
)

// Status is the overall outcome of a parse
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// Diagnostic is an error or warning attached to a source line
type Diagnostic struct {
	Message string `json:"message"`
	// LineIndex is the 0-based line where the offending chunk starts
	LineIndex int `json:"lineIndex"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("line %d: %s", d.LineIndex+1, d.Message)
}

// Result is the outcome of parsing one file. Pd is nil unless Status is
// StatusSuccess.
type Result struct {
	Status   Status       `json:"status"`
	Warnings []Diagnostic `json:"warnings"`
	Errors   []Diagnostic `json:"errors,omitempty"`
	Pd       *model.Pd    `json:"pd,omitempty"`
}

// OK reports whether parsing succeeded
func (r *Result) OK() bool {
	return r.Status == StatusSuccess
}

// Err joins all errors of a failed result into one error, nil on success
func (r *Result) Err() error {
	if r.OK() {
		return nil
	}
	errs := make([]error, 0, len(r.Errors))
	for _, d := range r.Errors {
		errs = append(errs, errors.New(d.String()))
	}
	return fmt.Errorf("parsing failed with %d error(s): %w", len(r.Errors), errors.Join(errs...))
}

// diagnostics accumulates messages across all parsing stages
type diagnostics struct {
	warnings []Diagnostic
	errors   []Diagnostic
}

func (d *diagnostics) errorf(lineIndex int, format string, args ...any) {
	d.errors = append(d.errors, Diagnostic{Message: fmt.Sprintf(format, args...), LineIndex: lineIndex})
}

func (d *diagnostics) warnf(lineIndex int, format string, args ...any) {
	d.warnings = append(d.warnings, Diagnostic{Message: fmt.Sprintf(format, args...), LineIndex: lineIndex})
}

func (d *diagnostics) result(pd *model.Pd) *Result {
	r := &Result{Warnings: d.warnings, Errors: d.errors}
	if r.Warnings == nil {
		r.Warnings = []Diagnostic{}
	}
	if len(d.errors) > 0 {
		r.Status = StatusFailure
		return r
	}
	r.Status = StatusSuccess
	r.Pd = pd
	return r
}
