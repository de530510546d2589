package model

// NodeClass distinguishes the node variants
type NodeClass string

const (
	NodeClassGeneric  NodeClass = "generic"
	NodeClassText     NodeClass = "text"
	NodeClassSubpatch NodeClass = "subpatch"
	NodeClassArray    NodeClass = "array"
	NodeClassControl  NodeClass = "control"
)

// Node is a vertex of a patch. The set of implementations is closed:
// GenericNode, TextNode, SubpatchNode, ArrayNode and the control nodes.
type Node interface {
	NodeID() LocalID
	NodeType() string
	Class() NodeClass

	// NodeArgs returns the functional arguments as a flat tuple
	NodeArgs() NodeArgs

	// Position returns the node's coordinates, if it has any
	Position() (x, y float64, ok bool)

	// SetWidth applies the `f <width>` directive saved after a comma
	SetWidth(width float64)

	isNode()
}

// NodeBase holds the fields common to every node
type NodeBase struct {
	ID        LocalID   `json:"id"`
	Type      string    `json:"type"`
	NodeClass NodeClass `json:"nodeClass"`
}

func (b NodeBase) NodeID() LocalID  { return b.ID }
func (b NodeBase) NodeType() string { return b.Type }
func (b NodeBase) Class() NodeClass { return b.NodeClass }
func (NodeBase) isNode()            {}

// Box is the position of a node box, plus its width when one was saved
type Box struct {
	X     float64  `json:"x"`
	Y     float64  `json:"y"`
	Width *float64 `json:"width,omitempty"`
}

// Position returns the box coordinates
func (b *Box) Position() (float64, float64, bool) { return b.X, b.Y, true }

// SetWidth sets the box width
func (b *Box) SetWidth(width float64) { b.Width = &width }

// GenericNode is any object box that isn't a control, e.g. [osc~ 440]
type GenericNode struct {
	NodeBase
	Args   NodeArgs `json:"args"`
	Layout Box      `json:"layout"`
}

func (n *GenericNode) NodeArgs() NodeArgs                { return n.Args }
func (n *GenericNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *GenericNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }

// TextNode is a comment
type TextNode struct {
	NodeBase
	Text   string `json:"text"`
	Layout Box    `json:"layout"`
}

func (n *TextNode) NodeArgs() NodeArgs                { return NodeArgs{n.Text} }
func (n *TextNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *TextNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }

// SubpatchNode is the outer shell of a subpatch ([pd name], graph, [table]).
// The subpatch itself lives in Pd.Patches under PatchID.
type SubpatchNode struct {
	NodeBase
	PatchID GlobalID `json:"patchId"`
	Args    NodeArgs `json:"args"`
	Layout  Box      `json:"layout"`
}

func (n *SubpatchNode) NodeArgs() NodeArgs                { return n.Args }
func (n *SubpatchNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *SubpatchNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }

// ArrayNode is the outer shell of an array. The array lives in Pd.Arrays under ArrayID.
type ArrayNode struct {
	NodeBase
	ArrayID GlobalID `json:"arrayId"`
}

func (n *ArrayNode) NodeArgs() NodeArgs                { return NodeArgs{} }
func (n *ArrayNode) Position() (float64, float64, bool) { return 0, 0, false }
func (n *ArrayNode) SetWidth(float64)                   {}

// NewGenericNode creates a generic node
func NewGenericNode(id LocalID, nodeType string, args NodeArgs, x, y float64) *GenericNode {
	return &GenericNode{
		NodeBase: NodeBase{ID: id, Type: nodeType, NodeClass: NodeClassGeneric},
		Args:     args,
		Layout:   Box{X: x, Y: y},
	}
}

// NewTextNode creates a comment node
func NewTextNode(id LocalID, text string, x, y float64) *TextNode {
	return &TextNode{
		NodeBase: NodeBase{ID: id, Type: "text", NodeClass: NodeClassText},
		Text:     text,
		Layout:   Box{X: x, Y: y},
	}
}

// NewSubpatchNode creates the shell node of a subpatch
func NewSubpatchNode(id LocalID, canvasType string, patchID GlobalID, args NodeArgs, x, y float64) *SubpatchNode {
	return &SubpatchNode{
		NodeBase: NodeBase{ID: id, Type: canvasType, NodeClass: NodeClassSubpatch},
		PatchID:  patchID,
		Args:     args,
		Layout:   Box{X: x, Y: y},
	}
}

// NewArrayNode creates the shell node of an array
func NewArrayNode(id LocalID, arrayID GlobalID) *ArrayNode {
	return &ArrayNode{
		NodeBase: NodeBase{ID: id, Type: "array", NodeClass: NodeClassArray},
		ArrayID:  arrayID,
	}
}
