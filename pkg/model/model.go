package model

// GlobalID identifies a patch or an array across the whole graph
type GlobalID int

// LocalID identifies a node inside one patch. Local ids are dense and start at 0.
type LocalID int

// NodeArg is a single creation argument: either a float64 or a string
type NodeArg = any

// NodeArgs is an ordered list of creation arguments
type NodeArgs []NodeArg

// Pd is the complete parsed graph of a .pd file
type Pd struct {
	Patches     map[GlobalID]*Patch   `json:"patches"`
	Arrays      map[GlobalID]*PdArray `json:"arrays"`
	RootPatchID GlobalID              `json:"rootPatchId"`
}

// NewPd creates an empty graph
func NewPd() *Pd {
	return &Pd{
		Patches: make(map[GlobalID]*Patch),
		Arrays:  make(map[GlobalID]*PdArray),
	}
}

// GraphOnParent is the viewport a parent patch shows of an inline subpatch.
// It is only set when the subpatch's `#X coords` enables graph-on-parent.
type GraphOnParent struct {
	HideObjectNameAndArguments bool    `json:"hideObjectNameAndArguments"`
	ViewportX                  float64 `json:"viewportX"`
	ViewportY                  float64 `json:"viewportY"`
	ViewportWidth              float64 `json:"viewportWidth"`
	ViewportHeight             float64 `json:"viewportHeight"`
}

// PatchLayout holds window geometry of a patch
type PatchLayout struct {
	WindowX      float64 `json:"windowX"`
	WindowY      float64 `json:"windowY"`
	WindowWidth  float64 `json:"windowWidth"`
	WindowHeight float64 `json:"windowHeight"`

	// OpenOnLoad is only saved for subpatches
	OpenOnLoad *bool `json:"openOnLoad,omitempty"`

	// FontSize is only saved for the root canvas
	FontSize *float64 `json:"fontSize,omitempty"`

	GraphOnParent *GraphOnParent `json:"graphOnParent,omitempty"`
}

// Patch is one dataflow graph, either the root patch or a subpatch
type Patch struct {
	ID     GlobalID `json:"id"`
	IsRoot bool     `json:"isRoot"`

	// Args are the creation arguments, used by consumers for $1..$n substitution
	Args        NodeArgs         `json:"args"`
	Nodes       map[LocalID]Node `json:"nodes"`
	Connections []Connection     `json:"connections"`

	// Inlets and Outlets list [inlet]/[outlet] node ids in external portlet order
	Inlets  []LocalID `json:"inlets"`
	Outlets []LocalID `json:"outlets"`

	Layout PatchLayout `json:"layout"`
}

// NewPatch creates an empty patch
func NewPatch(id GlobalID, isRoot bool) *Patch {
	return &Patch{
		ID:          id,
		IsRoot:      isRoot,
		Args:        NodeArgs{},
		Nodes:       make(map[LocalID]Node),
		Connections: make([]Connection, 0),
		Inlets:      make([]LocalID, 0),
		Outlets:     make([]LocalID, 0),
	}
}

// DrawAs is how an array is plotted
type DrawAs string

const (
	DrawAsPolygon DrawAs = "polygon"
	DrawAsPoints  DrawAs = "points"
	DrawAsBezier  DrawAs = "bezier"
)

// ArrayArgs are the functional arguments of an array
type ArrayArgs struct {
	Name string `json:"name"`
	// Size is a float64, or a string when given as a dollar argument (e.g. "$1")
	Size         NodeArg `json:"size"`
	SaveContents int     `json:"saveContents"`
}

// ArrayLayout holds the visual options of an array
type ArrayLayout struct {
	DrawAs   DrawAs `json:"drawAs"`
	HideName bool   `json:"hideName,omitempty"`
}

// PdArray is an array declared in some patch. Arrays share a global namespace.
type PdArray struct {
	ID   GlobalID  `json:"id"`
	Args ArrayArgs `json:"args"`

	// Data is nil when the array doesn't save its contents
	Data   []float64   `json:"data"`
	Layout ArrayLayout `json:"layout"`
}

// Endpoint is one side of a connection
type Endpoint struct {
	NodeID    LocalID `json:"nodeId"`
	PortletID int     `json:"portletId"`
}

// Connection links an outlet to an inlet of two nodes of the same patch
type Connection struct {
	Source Endpoint `json:"source"`
	Sink   Endpoint `json:"sink"`
}
