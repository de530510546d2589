// Package validate checks that a parsed Pd graph is structurally well formed.
package validate

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ritzau/pd-parser/pkg/cycles"
	"github.com/ritzau/pd-parser/pkg/graph"
	"github.com/ritzau/pd-parser/pkg/logging"
	"github.com/ritzau/pd-parser/pkg/model"
)

// Issue is a structural problem found in a graph
type Issue struct {
	PatchID model.GlobalID `json:"patchId"`
	Message string         `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("patch %d: %s", i.PatchID, i.Message)
}

// Err joins the issues into one error, or returns nil if there are none
func Err(issues []Issue) error {
	errs := make([]error, 0, len(issues))
	for _, issue := range issues {
		errs = append(errs, errors.New(issue.String()))
	}
	return errors.Join(errs...)
}

type validator struct {
	pd     *model.Pd
	issues []Issue
}

func (v *validator) report(patchID model.GlobalID, format string, args ...any) {
	v.issues = append(v.issues, Issue{PatchID: patchID, Message: fmt.Sprintf(format, args...)})
}

// Validate runs all structural checks and returns the issues found, ordered
// by patch. A graph coming out of a successful parse has none.
func Validate(pd *model.Pd) []Issue {
	v := &validator{pd: pd, issues: make([]Issue, 0)}

	v.checkRoot()

	patchRefs := make(map[model.GlobalID]int)
	arrayRefs := make(map[model.GlobalID]int)
	for _, id := range pd.PatchIDs() {
		patch := pd.Patches[id]
		v.checkNodes(patch, patchRefs, arrayRefs)
		v.checkConnections(patch)
		v.checkPortlets(patch, patch.Inlets, "inlet", "inlet", "inlet~")
		v.checkPortlets(patch, patch.Outlets, "outlet", "outlet", "outlet~")
	}

	for _, id := range pd.PatchIDs() {
		if pd.Patches[id].IsRoot {
			continue
		}
		if n := patchRefs[id]; n != 1 {
			v.report(id, "patch is referenced %d times, expected once", n)
		}
	}
	for _, id := range pd.ArrayIDs() {
		if n := arrayRefs[id]; n != 1 {
			v.report(pd.RootPatchID, "array %d is referenced %d times, expected once", id, n)
		}
	}

	v.checkHierarchy()

	slices.SortStableFunc(v.issues, func(a, b Issue) int { return int(a.PatchID) - int(b.PatchID) })
	logging.Debug("validated graph", "patches", len(pd.Patches), "issues", len(v.issues))
	return v.issues
}

func (v *validator) checkRoot() {
	var roots []model.GlobalID
	for _, id := range v.pd.PatchIDs() {
		if v.pd.Patches[id].IsRoot {
			roots = append(roots, id)
		}
	}

	switch {
	case len(roots) == 0:
		v.report(v.pd.RootPatchID, "graph has no root patch")
	case len(roots) > 1:
		v.report(roots[1], "graph has %d root patches %v", len(roots), roots)
	case roots[0] != v.pd.RootPatchID:
		v.report(roots[0], "root patch is not patch %d", v.pd.RootPatchID)
	}
}

func (v *validator) checkNodes(patch *model.Patch, patchRefs, arrayRefs map[model.GlobalID]int) {
	for _, id := range patch.NodeIDs() {
		node := patch.Nodes[id]
		if node.NodeID() != id {
			v.report(patch.ID, "node %d is stored under id %d", node.NodeID(), id)
		}

		switch n := node.(type) {
		case *model.SubpatchNode:
			target, ok := v.pd.Patches[n.PatchID]
			switch {
			case !ok:
				v.report(patch.ID, "node %d references unknown patch %d", id, n.PatchID)
			case target.IsRoot:
				v.report(patch.ID, "node %d references the root patch", id)
			}
			patchRefs[n.PatchID]++
		case *model.ArrayNode:
			if _, ok := v.pd.Arrays[n.ArrayID]; !ok {
				v.report(patch.ID, "node %d references unknown array %d", id, n.ArrayID)
			}
			arrayRefs[n.ArrayID]++
		}
	}

	if n := len(patch.Nodes); n > 0 {
		if ids := patch.NodeIDs(); ids[n-1] != model.LocalID(n-1) {
			v.report(patch.ID, "node ids are not dense, highest is %d for %d nodes", ids[n-1], n)
		}
	}
}

func (v *validator) checkConnections(patch *model.Patch) {
	for i, conn := range patch.Connections {
		for _, end := range []struct {
			name string
			ep   model.Endpoint
		}{{"source", conn.Source}, {"sink", conn.Sink}} {
			if _, ok := patch.Nodes[end.ep.NodeID]; !ok {
				v.report(patch.ID, "connection %d: %s node %d doesn't exist", i, end.name, end.ep.NodeID)
			}
			if end.ep.PortletID < 0 {
				v.report(patch.ID, "connection %d: %s portlet %d is negative", i, end.name, end.ep.PortletID)
			}
		}
	}
}

func (v *validator) checkPortlets(patch *model.Patch, ids []model.LocalID, kind string, types ...string) {
	seen := make(map[model.LocalID]bool)
	for _, id := range ids {
		node, ok := patch.Nodes[id]
		switch {
		case !ok:
			v.report(patch.ID, "%s %d doesn't exist", kind, id)
		case !slices.Contains(types, node.NodeType()):
			v.report(patch.ID, "%s %d is a %q node", kind, id, node.NodeType())
		case seen[id]:
			v.report(patch.ID, "%s %d is listed twice", kind, id)
		}
		seen[id] = true
	}
}

func (v *validator) checkHierarchy() {
	h := graph.NewHierarchy(v.pd)

	for _, cycle := range cycles.FindContainmentCycles(h) {
		v.report(cycle.Patches[0], "patches %v contain each other", cycle.Patches)
	}

	reachable := make(map[model.GlobalID]bool)
	for _, id := range h.Reachable() {
		reachable[id] = true
	}
	for _, id := range v.pd.PatchIDs() {
		if !reachable[id] {
			v.report(id, "patch is not reachable from the root patch")
		}
	}
}
