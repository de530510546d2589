// Package cycles finds loops in a Pd graph: feedback loops between the nodes
// of a patch and containment cycles between patches.
package cycles

import (
	"sort"

	"github.com/ritzau/pd-parser/pkg/graph"
	"github.com/ritzau/pd-parser/pkg/model"
)

// FeedbackLoop is a set of nodes in one patch that are connected in a cycle.
// A node connected to itself forms a loop of its own.
type FeedbackLoop struct {
	PatchID model.GlobalID  `json:"patchId"`
	Nodes   []model.LocalID `json:"nodes"`
}

// ContainmentCycle is a set of patches that contain each other
type ContainmentCycle struct {
	Patches []model.GlobalID `json:"patches"`
}

// FindFeedbackLoops finds all feedback loops in a patch. Loops are ordered by
// their lowest node id.
func FindFeedbackLoops(pg *graph.PatchGraph) []FeedbackLoop {
	patchID := pg.Patch().ID
	loops := make([]FeedbackLoop, 0)

	for _, id := range pg.SelfLoops() {
		loops = append(loops, FeedbackLoop{PatchID: patchID, Nodes: []model.LocalID{id}})
	}

	for _, scc := range NewTarjanSCC(pg.Graph()).FindSCCs() {
		nodes := make([]model.LocalID, 0, len(scc))
		for _, id := range scc {
			nodes = append(nodes, model.LocalID(id))
		}
		loops = append(loops, FeedbackLoop{PatchID: patchID, Nodes: nodes})
	}

	sort.SliceStable(loops, func(i, j int) bool { return loops[i].Nodes[0] < loops[j].Nodes[0] })
	return loops
}

// FindAllFeedbackLoops runs FindFeedbackLoops on every patch in ascending id order
func FindAllFeedbackLoops(pd *model.Pd) []FeedbackLoop {
	loops := make([]FeedbackLoop, 0)
	for _, id := range pd.PatchIDs() {
		loops = append(loops, FindFeedbackLoops(graph.NewPatchGraph(pd.Patches[id]))...)
	}
	return loops
}

// FindContainmentCycles finds patches that directly or indirectly contain
// themselves
func FindContainmentCycles(h *graph.Hierarchy) []ContainmentCycle {
	cycles := make([]ContainmentCycle, 0)

	for _, id := range h.SelfContained() {
		cycles = append(cycles, ContainmentCycle{Patches: []model.GlobalID{id}})
	}

	for _, scc := range NewTarjanSCC(h.Graph()).FindSCCs() {
		patches := make([]model.GlobalID, 0, len(scc))
		for _, id := range scc {
			patches = append(patches, model.GlobalID(id))
		}
		cycles = append(cycles, ContainmentCycle{Patches: patches})
	}

	sort.SliceStable(cycles, func(i, j int) bool { return cycles[i].Patches[0] < cycles[j].Patches[0] })
	return cycles
}
