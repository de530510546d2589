package graph

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/ritzau/pd-parser/pkg/model"
)

// Hierarchy is the containment graph of a Pd graph: an edge runs from every
// patch to each patch it holds through a subpatch node.
type Hierarchy struct {
	pd    *model.Pd
	graph *simple.DirectedGraph

	// selfContained holds patches with a subpatch node pointing at themselves
	selfContained []model.GlobalID
}

// NewHierarchy builds the containment graph. References to unknown patches
// are skipped.
func NewHierarchy(pd *model.Pd) *Hierarchy {
	h := &Hierarchy{
		pd:    pd,
		graph: simple.NewDirectedGraph(),
	}

	for _, id := range pd.PatchIDs() {
		h.graph.AddNode(simple.Node(id))
	}

	for _, id := range pd.PatchIDs() {
		for _, sp := range pd.Patches[id].SubpatchNodes() {
			if h.graph.Node(int64(sp.PatchID)) == nil {
				continue
			}
			if sp.PatchID == id {
				h.selfContained = append(h.selfContained, id)
				continue
			}
			h.graph.SetEdge(h.graph.NewEdge(simple.Node(id), simple.Node(sp.PatchID)))
		}
	}

	return h
}

// Graph returns the underlying directed graph. Node ids are patch ids.
func (h *Hierarchy) Graph() *simple.DirectedGraph {
	return h.graph
}

// SelfContained returns the patches that contain themselves
func (h *Hierarchy) SelfContained() []model.GlobalID {
	return h.selfContained
}

// Children returns the patches directly contained in the given patch
func (h *Hierarchy) Children(id model.GlobalID) []model.GlobalID {
	if h.graph.Node(int64(id)) == nil {
		return nil
	}
	return toGlobalIDs(graph.NodesOf(h.graph.From(int64(id))))
}

// Parents returns the patches that contain the given patch
func (h *Hierarchy) Parents(id model.GlobalID) []model.GlobalID {
	if h.graph.Node(int64(id)) == nil {
		return nil
	}
	return toGlobalIDs(graph.NodesOf(h.graph.To(int64(id))))
}

// Reachable returns the patches reachable from the root, root included, in
// depth-first order.
func (h *Hierarchy) Reachable() []model.GlobalID {
	root := h.pd.RootPatchID
	if h.graph.Node(int64(root)) == nil {
		return nil
	}

	var order []model.GlobalID
	seen := make(map[model.GlobalID]bool)
	var visit func(id model.GlobalID)
	visit = func(id model.GlobalID) {
		if seen[id] {
			return
		}
		seen[id] = true
		order = append(order, id)
		for _, child := range h.Children(id) {
			visit(child)
		}
	}
	visit(root)
	return order
}

// Depth returns the nesting depth of every reachable patch, the root being 0
func (h *Hierarchy) Depth() map[model.GlobalID]int {
	depth := make(map[model.GlobalID]int)
	root := h.pd.RootPatchID
	if h.graph.Node(int64(root)) == nil {
		return depth
	}

	depth[root] = 0
	queue := []model.GlobalID{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range h.Children(id) {
			if _, ok := depth[child]; ok {
				continue
			}
			depth[child] = depth[id] + 1
			queue = append(queue, child)
		}
	}
	return depth
}

func toGlobalIDs(nodes []graph.Node) []model.GlobalID {
	ids := make([]model.GlobalID, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, model.GlobalID(n.ID()))
	}
	sortIDs(ids)
	return ids
}
