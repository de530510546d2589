package graph

import (
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/ritzau/pd-parser/pkg/model"
)

// PatchGraph is the node-level connection graph of one patch. Several
// connections between the same two nodes collapse into one edge.
type PatchGraph struct {
	patch *model.Patch
	graph *simple.DirectedGraph

	// selfLoops holds nodes connected to themselves, which a simple graph
	// can't represent as an edge
	selfLoops []model.LocalID
}

// NewPatchGraph builds the connection graph of a patch. Connections to
// nodes that don't exist are ignored here, Validate reports them.
func NewPatchGraph(patch *model.Patch) *PatchGraph {
	pg := &PatchGraph{
		patch: patch,
		graph: simple.NewDirectedGraph(),
	}

	for _, id := range patch.NodeIDs() {
		pg.graph.AddNode(simple.Node(id))
	}

	for _, conn := range patch.Connections {
		source, sink := int64(conn.Source.NodeID), int64(conn.Sink.NodeID)
		if pg.graph.Node(source) == nil || pg.graph.Node(sink) == nil {
			continue
		}
		if source == sink {
			if !containsID(pg.selfLoops, conn.Source.NodeID) {
				pg.selfLoops = append(pg.selfLoops, conn.Source.NodeID)
			}
			continue
		}
		if !pg.graph.HasEdgeFromTo(source, sink) {
			pg.graph.SetEdge(pg.graph.NewEdge(pg.graph.Node(source), pg.graph.Node(sink)))
		}
	}

	return pg
}

// Patch returns the patch the graph was built from
func (pg *PatchGraph) Patch() *model.Patch {
	return pg.patch
}

// Graph returns the underlying directed graph. Node ids are local ids.
func (pg *PatchGraph) Graph() *simple.DirectedGraph {
	return pg.graph
}

// SelfLoops returns the nodes that have a connection to themselves
func (pg *PatchGraph) SelfLoops() []model.LocalID {
	return pg.selfLoops
}

// Successors returns the nodes that the given node sends to
func (pg *PatchGraph) Successors(id model.LocalID) []model.LocalID {
	if pg.graph.Node(int64(id)) == nil {
		return nil
	}
	return toLocalIDs(graph.NodesOf(pg.graph.From(int64(id))))
}

// Predecessors returns the nodes that send to the given node
func (pg *PatchGraph) Predecessors(id model.LocalID) []model.LocalID {
	if pg.graph.Node(int64(id)) == nil {
		return nil
	}
	return toLocalIDs(graph.NodesOf(pg.graph.To(int64(id))))
}

// Sources returns the nodes without incoming connections, e.g. [loadbang]
func (pg *PatchGraph) Sources() []model.LocalID {
	var ids []model.LocalID
	for _, id := range pg.patch.NodeIDs() {
		if pg.graph.To(int64(id)).Len() == 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Sinks returns the nodes without outgoing connections, e.g. [dac~]
func (pg *PatchGraph) Sinks() []model.LocalID {
	var ids []model.LocalID
	for _, id := range pg.patch.NodeIDs() {
		if pg.graph.From(int64(id)).Len() == 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// TopologicalOrder returns the nodes ordered so that every node comes after
// the nodes connected to it. Ties are broken by local id. Patches with
// feedback loops have no such order and return a topo.Unorderable error.
func (pg *PatchGraph) TopologicalOrder() ([]model.LocalID, error) {
	sorted, err := topo.SortStabilized(pg.graph, byID)
	if err != nil {
		return nil, err
	}
	ids := make([]model.LocalID, 0, len(sorted))
	for _, n := range sorted {
		ids = append(ids, model.LocalID(n.ID()))
	}
	return ids, nil
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}

// toLocalIDs converts graph nodes to local ids in ascending order
func toLocalIDs(nodes []graph.Node) []model.LocalID {
	ids := make([]model.LocalID, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, model.LocalID(n.ID()))
	}
	sortIDs(ids)
	return ids
}

func sortIDs[T ~int](ids []T) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func containsID(ids []model.LocalID, id model.LocalID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
