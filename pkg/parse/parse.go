// Package parse turns the text of a Pure Data patch into a model.Pd graph.
//
// Parsing runs in stages: the text is tokenized, canvases are carved out
// into patches, then every patch (in ascending id order) has its arrays
// extracted, its nodes and connections hydrated and its portlets resolved.
// Problems are collected as diagnostics along the way and the graph is only
// returned if there were no errors.
package parse

import (
	"github.com/ritzau/pd-parser/pkg/logging"
	"github.com/ritzau/pd-parser/pkg/model"
	"github.com/ritzau/pd-parser/pkg/tokenize"
)

type parser struct {
	pd         *model.Pd
	ids        *IDAllocator
	diag       diagnostics
	patchLines map[model.GlobalID][]tokenize.Line
}

// Parse parses the complete text of a .pd file
func Parse(text string) *Result {
	p := &parser{
		pd:         model.NewPd(),
		ids:        NewIDAllocator(),
		patchLines: make(map[model.GlobalID][]tokenize.Line),
	}

	lines := tokenize.Tokenize(text)
	logging.Trace("tokenized", "chunks", len(lines))

	rootID, rest := p.extractPatch(lines, true)
	p.pd.RootPatchID = rootID
	for _, line := range rest {
		p.diag.errorf(line.LineIndex, "%q chunk after the end of the root patch", chunkKey(line.Tokens))
	}

	for _, id := range p.pd.PatchIDs() {
		patch := p.pd.Patches[id]
		remaining := p.extractArrays(p.patchLines[id])
		p.hydrateNodes(patch, remaining)
		resolvePortlets(patch)
	}

	result := p.diag.result(p.pd)
	logging.Debug("parsed patch",
		"status", result.Status,
		"patches", len(p.pd.Patches),
		"arrays", len(p.pd.Arrays),
		"nodes", p.pd.NodeCount(),
		"warnings", len(result.Warnings),
		"errors", len(result.Errors))
	return result
}
