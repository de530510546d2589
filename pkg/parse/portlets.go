package parse

import (
	"slices"
	"sort"

	"github.com/ritzau/pd-parser/pkg/model"
)

var (
	inletTypes  = []string{"inlet", "inlet~"}
	outletTypes = []string{"outlet", "outlet~"}
)

// resolvePortlets orders the inlet and outlet nodes of a patch, which is the
// order of the portlets its subpatch node shows in the parent.
func resolvePortlets(patch *model.Patch) {
	patch.Inlets = sortPortlets(patch, inletTypes)
	patch.Outlets = sortPortlets(patch, outletTypes)
}

// sortPortlets sorts the nodes of the given types left to right. If any of
// them has no position the whole group keeps declaration order.
func sortPortlets(patch *model.Patch, types []string) []model.LocalID {
	var nodes []model.Node
	allPositioned := true
	for _, id := range patch.NodeIDs() {
		node := patch.Nodes[id]
		if !slices.Contains(types, node.NodeType()) {
			continue
		}
		nodes = append(nodes, node)
		if _, _, ok := node.Position(); !ok {
			allPositioned = false
		}
	}

	if allPositioned {
		sort.SliceStable(nodes, func(i, j int) bool {
			xi, _, _ := nodes[i].Position()
			xj, _, _ := nodes[j].Position()
			return xi < xj
		})
	}

	ids := make([]model.LocalID, 0, len(nodes))
	for _, node := range nodes {
		ids = append(ids, node.NodeID())
	}
	return ids
}
