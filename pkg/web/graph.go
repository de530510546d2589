package web

import (
	"github.com/ritzau/pd-parser/pkg/cycles"
	"github.com/ritzau/pd-parser/pkg/graph"
	"github.com/ritzau/pd-parser/pkg/model"
)

// PatchGraphData describes the connection structure of one patch
type PatchGraphData struct {
	PatchID model.GlobalID  `json:"patchId"`
	Name    string          `json:"name,omitempty"`
	Depth   int             `json:"depth"`
	Sources []model.LocalID `json:"sources"`
	Sinks   []model.LocalID `json:"sinks"`

	// Order is null when feedback loops make a topological order impossible
	Order         []model.LocalID       `json:"order"`
	FeedbackLoops []cycles.FeedbackLoop `json:"feedbackLoops"`
}

// GraphData holds the structure of every patch in a file
type GraphData struct {
	RootPatchID model.GlobalID   `json:"rootPatchId"`
	Patches     []PatchGraphData `json:"patches"`
}

func buildGraphData(pd *model.Pd) *GraphData {
	depth := graph.NewHierarchy(pd).Depth()
	data := &GraphData{
		RootPatchID: pd.RootPatchID,
		Patches:     make([]PatchGraphData, 0, len(pd.Patches)),
	}

	for _, id := range pd.PatchIDs() {
		patch := pd.Patches[id]
		pg := graph.NewPatchGraph(patch)

		// order stays nil for patches with feedback loops
		order, _ := pg.TopologicalOrder()

		data.Patches = append(data.Patches, PatchGraphData{
			PatchID:       id,
			Name:          patch.Name(),
			Depth:         depth[id],
			Sources:       orEmpty(pg.Sources()),
			Sinks:         orEmpty(pg.Sinks()),
			Order:         order,
			FeedbackLoops: cycles.FindFeedbackLoops(pg),
		})
	}
	return data
}

func orEmpty(ids []model.LocalID) []model.LocalID {
	if ids == nil {
		return []model.LocalID{}
	}
	return ids
}
