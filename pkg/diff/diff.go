// Package diff compares two parsed versions of the same patch file
package diff

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/ritzau/pd-parser/pkg/model"
)

// NodeRef identifies a node across versions by patch id and local id
type NodeRef struct {
	PatchID model.GlobalID `json:"patchId"`
	NodeID  model.LocalID  `json:"nodeId"`
	Type    string         `json:"type"`
	Args    string         `json:"args"`
}

func (n NodeRef) key() string {
	return fmt.Sprintf("%d/%d", n.PatchID, n.NodeID)
}

// Diff lists what changed between two versions
type Diff struct {
	AddedNodes         []NodeRef `json:"addedNodes"`
	RemovedNodes       []NodeRef `json:"removedNodes"`
	ModifiedNodes      []NodeRef `json:"modifiedNodes"` // type or arguments changed
	MovedNodes         []NodeRef `json:"movedNodes"`    // only the position changed
	AddedConnections   []string  `json:"addedConnections"`
	RemovedConnections []string  `json:"removedConnections"`

	// Full is set when there was no previous version, everything counts as added
	Full bool `json:"full"`
}

// Empty reports whether nothing changed
func (d *Diff) Empty() bool {
	return len(d.AddedNodes)+len(d.RemovedNodes)+len(d.ModifiedNodes)+len(d.MovedNodes)+
		len(d.AddedConnections)+len(d.RemovedConnections) == 0
}

func (d *Diff) String() string {
	if d.Empty() {
		return "no changes"
	}
	parts := []string{
		fmt.Sprintf("nodes +%d -%d ~%d", len(d.AddedNodes), len(d.RemovedNodes), len(d.ModifiedNodes)),
		fmt.Sprintf("connections +%d -%d", len(d.AddedConnections), len(d.RemovedConnections)),
	}
	if len(d.MovedNodes) > 0 {
		parts = append(parts, fmt.Sprintf("moved %d", len(d.MovedNodes)))
	}
	return strings.Join(parts, ", ")
}

// Snapshot is an indexed version of a graph for diffing
type Snapshot struct {
	Hash        string
	Nodes       map[string]NodeRef
	Positions   map[string][2]float64
	Connections map[string]bool
}

// CreateSnapshot indexes the nodes and connections of a graph
func CreateSnapshot(pd *model.Pd) *Snapshot {
	s := &Snapshot{
		Nodes:       make(map[string]NodeRef),
		Positions:   make(map[string][2]float64),
		Connections: make(map[string]bool),
	}

	for _, patchID := range pd.PatchIDs() {
		patch := pd.Patches[patchID]
		for _, id := range patch.NodeIDs() {
			node := patch.Nodes[id]
			ref := NodeRef{PatchID: patchID, NodeID: id, Type: node.NodeType(), Args: formatArgs(node.NodeArgs())}
			s.Nodes[ref.key()] = ref
			if x, y, ok := node.Position(); ok {
				s.Positions[ref.key()] = [2]float64{x, y}
			}
		}
		for _, conn := range patch.Connections {
			s.Connections[connectionKey(patchID, conn)] = true
		}
	}

	data, _ := json.Marshal(pd)
	sum := xxh3.Hash128(data).Bytes()
	s.Hash = hex.EncodeToString(sum[:])
	return s
}

// ComputeDiff compares a previous snapshot with a new graph. A nil snapshot
// yields a full diff.
func ComputeDiff(old *Snapshot, pd *model.Pd) *Diff {
	next := CreateSnapshot(pd)
	d := &Diff{
		AddedNodes:         make([]NodeRef, 0),
		RemovedNodes:       make([]NodeRef, 0),
		ModifiedNodes:      make([]NodeRef, 0),
		MovedNodes:         make([]NodeRef, 0),
		AddedConnections:   make([]string, 0),
		RemovedConnections: make([]string, 0),
	}
	if old == nil {
		d.Full = true
		old = &Snapshot{}
	} else if old.Hash == next.Hash {
		return d
	}

	for key, ref := range next.Nodes {
		prev, ok := old.Nodes[key]
		switch {
		case !ok:
			d.AddedNodes = append(d.AddedNodes, ref)
		case prev.Type != ref.Type || prev.Args != ref.Args:
			d.ModifiedNodes = append(d.ModifiedNodes, ref)
		case old.Positions[key] != next.Positions[key]:
			d.MovedNodes = append(d.MovedNodes, ref)
		}
	}
	for key, ref := range old.Nodes {
		if _, ok := next.Nodes[key]; !ok {
			d.RemovedNodes = append(d.RemovedNodes, ref)
		}
	}

	for key := range next.Connections {
		if !old.Connections[key] {
			d.AddedConnections = append(d.AddedConnections, key)
		}
	}
	for key := range old.Connections {
		if !next.Connections[key] {
			d.RemovedConnections = append(d.RemovedConnections, key)
		}
	}

	for _, refs := range [][]NodeRef{d.AddedNodes, d.RemovedNodes, d.ModifiedNodes, d.MovedNodes} {
		sortRefs(refs)
	}
	sort.Strings(d.AddedConnections)
	sort.Strings(d.RemovedConnections)
	return d
}

// Compare diffs two graphs
func Compare(prev, next *model.Pd) *Diff {
	if prev == nil {
		return ComputeDiff(nil, next)
	}
	return ComputeDiff(CreateSnapshot(prev), next)
}

// connectionKey renders a connection as "patch:source.outlet>sink.inlet"
func connectionKey(patchID model.GlobalID, c model.Connection) string {
	return fmt.Sprintf("%d:%d.%d>%d.%d", patchID, c.Source.NodeID, c.Source.PortletID, c.Sink.NodeID, c.Sink.PortletID)
}

func formatArgs(args model.NodeArgs) string {
	parts := make([]string, 0, len(args))
	for _, a := range args {
		parts = append(parts, fmt.Sprint(a))
	}
	return strings.Join(parts, " ")
}

func sortRefs(refs []NodeRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].PatchID != refs[j].PatchID {
			return refs[i].PatchID < refs[j].PatchID
		}
		return refs[i].NodeID < refs[j].NodeID
	})
}
