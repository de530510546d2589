package cycles

import (
	"reflect"
	"testing"

	"github.com/ritzau/pd-parser/pkg/graph"
	"github.com/ritzau/pd-parser/pkg/model"
)

func patchWith(n int, conns ...[2]int) *model.Patch {
	patch := model.NewPatch(3, false)
	for i := 0; i < n; i++ {
		patch.AddNode(model.NewGenericNode(model.LocalID(i), "f", model.NodeArgs{}, 0, 0))
	}
	for _, c := range conns {
		patch.AddConnection(model.Connection{
			Source: model.Endpoint{NodeID: model.LocalID(c[0])},
			Sink:   model.Endpoint{NodeID: model.LocalID(c[1])},
		})
	}
	return patch
}

func TestFindFeedbackLoops_NoLoops(t *testing.T) {
	// A simple acyclic chain: 0 -> 1 -> 2
	loops := FindFeedbackLoops(graph.NewPatchGraph(patchWith(3, [2]int{0, 1}, [2]int{1, 2})))

	if len(loops) != 0 {
		t.Errorf("Expected no loops, but found %d", len(loops))
	}
}

func TestFindFeedbackLoops_SimpleLoop(t *testing.T) {
	// 0 -> 1 -> 0
	loops := FindFeedbackLoops(graph.NewPatchGraph(patchWith(2, [2]int{0, 1}, [2]int{1, 0})))

	if len(loops) != 1 {
		t.Fatalf("Expected 1 loop, but found %d", len(loops))
	}
	if loops[0].PatchID != 3 {
		t.Errorf("Expected patch id 3, got %d", loops[0].PatchID)
	}
	if !reflect.DeepEqual(loops[0].Nodes, []model.LocalID{0, 1}) {
		t.Errorf("Expected loop [0 1], got %v", loops[0].Nodes)
	}
}

func TestFindFeedbackLoops_ThreeNodeLoop(t *testing.T) {
	// 2 -> 0 -> 1 -> 2, plus 3 hanging off the loop
	loops := FindFeedbackLoops(graph.NewPatchGraph(patchWith(4, [2]int{2, 0}, [2]int{0, 1}, [2]int{1, 2}, [2]int{1, 3})))

	if len(loops) != 1 {
		t.Fatalf("Expected 1 loop, but found %d", len(loops))
	}
	if !reflect.DeepEqual(loops[0].Nodes, []model.LocalID{0, 1, 2}) {
		t.Errorf("Expected loop [0 1 2], got %v", loops[0].Nodes)
	}
}

func TestFindFeedbackLoops_MultipleLoops(t *testing.T) {
	// 4 <-> 5, 0 <-> 1, and 2 feeding itself
	loops := FindFeedbackLoops(graph.NewPatchGraph(patchWith(6,
		[2]int{4, 5}, [2]int{5, 4},
		[2]int{0, 1}, [2]int{1, 0},
		[2]int{2, 2},
	)))

	want := [][]model.LocalID{{0, 1}, {2}, {4, 5}}
	if len(loops) != len(want) {
		t.Fatalf("Expected %d loops, but found %d", len(want), len(loops))
	}
	for i := range want {
		if !reflect.DeepEqual(loops[i].Nodes, want[i]) {
			t.Errorf("loop %d: expected %v, got %v", i, want[i], loops[i].Nodes)
		}
	}
}

func TestFindAllFeedbackLoops(t *testing.T) {
	pd := model.NewPd()
	root := model.NewPatch(0, true)
	root.AddNode(model.NewGenericNode(0, "f", model.NodeArgs{}, 0, 0))
	pd.AddPatch(root)
	pd.AddPatch(patchWith(2, [2]int{0, 1}, [2]int{1, 0}))

	loops := FindAllFeedbackLoops(pd)
	if len(loops) != 1 || loops[0].PatchID != 3 {
		t.Errorf("Expected one loop in patch 3, got %+v", loops)
	}
}

func TestFindContainmentCycles(t *testing.T) {
	pd := model.NewPd()
	for i := 0; i < 4; i++ {
		pd.AddPatch(model.NewPatch(model.GlobalID(i), i == 0))
	}
	// 0 holds 1, 1 and 2 hold each other, 3 holds itself
	pd.Patches[0].AddNode(model.NewSubpatchNode(0, "pd", 1, model.NodeArgs{}, 0, 0))
	pd.Patches[1].AddNode(model.NewSubpatchNode(0, "pd", 2, model.NodeArgs{}, 0, 0))
	pd.Patches[2].AddNode(model.NewSubpatchNode(0, "pd", 1, model.NodeArgs{}, 0, 0))
	pd.Patches[3].AddNode(model.NewSubpatchNode(0, "pd", 3, model.NodeArgs{}, 0, 0))

	cycles := FindContainmentCycles(graph.NewHierarchy(pd))

	want := []ContainmentCycle{
		{Patches: []model.GlobalID{1, 2}},
		{Patches: []model.GlobalID{3}},
	}
	if !reflect.DeepEqual(cycles, want) {
		t.Errorf("Expected %v, got %v", want, cycles)
	}
}

func TestTarjanSCC_Deterministic(t *testing.T) {
	patch := patchWith(5, [2]int{4, 3}, [2]int{3, 4}, [2]int{1, 2}, [2]int{2, 0}, [2]int{0, 1})
	pg := graph.NewPatchGraph(patch)

	first := NewTarjanSCC(pg.Graph()).FindSCCs()
	for i := 0; i < 10; i++ {
		if got := NewTarjanSCC(pg.Graph()).FindSCCs(); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d: got %v, first run gave %v", i, got, first)
		}
	}
	if !reflect.DeepEqual(first, [][]int64{{0, 1, 2}, {3, 4}}) {
		t.Errorf("unexpected components %v", first)
	}
}
