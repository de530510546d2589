package model

// Control node types as they appear in .pd files
const (
	TypeFloatAtom  = "floatatom"
	TypeSymbolAtom = "symbolatom"
	TypeListBox    = "listbox"
	TypeBang       = "bng"
	TypeToggle     = "tgl"
	TypeNumberBox  = "nbx"
	TypeVSlider    = "vsl"
	TypeHSlider    = "hsl"
	TypeVRadio     = "vradio"
	TypeHRadio     = "hradio"
	TypeVu         = "vu"
	TypeCnv        = "cnv"
	TypeMsg        = "msg"
)

// IsControlType reports whether nodes of that type are decoded with a fixed schema
func IsControlType(nodeType string) bool {
	switch nodeType {
	case TypeFloatAtom, TypeSymbolAtom, TypeListBox,
		TypeBang, TypeToggle, TypeNumberBox,
		TypeVSlider, TypeHSlider, TypeVRadio, TypeHRadio,
		TypeVu, TypeCnv, TypeMsg:
		return true
	}
	return false
}

// ControlNode is implemented by all GUI control nodes
type ControlNode interface {
	Node
	isControl()
}

func controlBase(id LocalID, nodeType string) NodeBase {
	return NodeBase{ID: id, Type: nodeType, NodeClass: NodeClassControl}
}

// Label is the label block shared by the iemgui controls.
// Fonts and colors are kept verbatim: older files save colors as signed
// integers, newer ones as #rrggbb strings.
type Label struct {
	Label         string  `json:"label"`
	LabelX        float64 `json:"labelX"`
	LabelY        float64 `json:"labelY"`
	LabelFont     string  `json:"labelFont"`
	LabelFontSize float64 `json:"labelFontSize"`
	BgColor       string  `json:"bgColor"`
	FgColor       string  `json:"fgColor,omitempty"`
	LabelColor    string  `json:"labelColor"`
}

// ---- floatatom / symbolatom / listbox ----

type AtomLayout struct {
	Box
	WidthInChars float64 `json:"widthInChars"`
	LabelPos     float64 `json:"labelPos"`
	Label        string  `json:"label"`
}

type AtomArgs struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Receive string  `json:"receive"`
	Send    string  `json:"send"`
}

type AtomNode struct {
	NodeBase
	Args   AtomArgs   `json:"args"`
	Layout AtomLayout `json:"layout"`
}

func NewAtomNode(id LocalID, nodeType string) *AtomNode {
	return &AtomNode{NodeBase: controlBase(id, nodeType)}
}

func (n *AtomNode) NodeArgs() NodeArgs {
	return NodeArgs{n.Args.Min, n.Args.Max, n.Args.Receive, n.Args.Send}
}
func (n *AtomNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *AtomNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }
func (*AtomNode) isControl()                           {}

// ---- msg ----

type MsgNode struct {
	NodeBase
	Args   NodeArgs `json:"args"`
	Layout Box      `json:"layout"`
}

func NewMsgNode(id LocalID) *MsgNode {
	return &MsgNode{NodeBase: controlBase(id, TypeMsg), Args: NodeArgs{}}
}

func (n *MsgNode) NodeArgs() NodeArgs                { return n.Args }
func (n *MsgNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *MsgNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }
func (*MsgNode) isControl()                           {}

// ---- bng ----

type BangLayout struct {
	Box
	Label
	Size      float64 `json:"size"`
	Hold      float64 `json:"hold"`
	Interrupt float64 `json:"interrupt"`
}

type BangArgs struct {
	Init    int    `json:"init"`
	Receive string `json:"receive"`
	Send    string `json:"send"`
}

type BangNode struct {
	NodeBase
	Args   BangArgs   `json:"args"`
	Layout BangLayout `json:"layout"`
}

func NewBangNode(id LocalID) *BangNode {
	return &BangNode{NodeBase: controlBase(id, TypeBang)}
}

func (n *BangNode) NodeArgs() NodeArgs {
	return NodeArgs{float64(n.Args.Init), n.Args.Receive, n.Args.Send}
}
func (n *BangNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *BangNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }
func (*BangNode) isControl()                           {}

// ---- tgl ----

type ToggleLayout struct {
	Box
	Label
	Size float64 `json:"size"`
}

type ToggleArgs struct {
	// OnValue is the value output when the toggle is checked
	OnValue float64 `json:"onValue"`
	Init    int     `json:"init"`
	// InitValue is output on load when Init is on
	InitValue float64 `json:"initValue"`
	Receive   string  `json:"receive"`
	Send      string  `json:"send"`
}

type ToggleNode struct {
	NodeBase
	Args   ToggleArgs   `json:"args"`
	Layout ToggleLayout `json:"layout"`
}

func NewToggleNode(id LocalID) *ToggleNode {
	return &ToggleNode{NodeBase: controlBase(id, TypeToggle)}
}

func (n *ToggleNode) NodeArgs() NodeArgs {
	return NodeArgs{n.Args.OnValue, float64(n.Args.Init), n.Args.InitValue, n.Args.Receive, n.Args.Send}
}
func (n *ToggleNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *ToggleNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }
func (*ToggleNode) isControl()                           {}

// ---- nbx ----

type NumberBoxLayout struct {
	Box
	Label
	WidthInChars float64 `json:"widthInChars"`
	Height       float64 `json:"height"`
	Log          float64 `json:"log"`
	LogHeight    string  `json:"logHeight"`
}

type NumberBoxArgs struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Init      int     `json:"init"`
	InitValue float64 `json:"initValue"`
	Receive   string  `json:"receive"`
	Send      string  `json:"send"`
}

type NumberBoxNode struct {
	NodeBase
	Args   NumberBoxArgs   `json:"args"`
	Layout NumberBoxLayout `json:"layout"`
}

func NewNumberBoxNode(id LocalID) *NumberBoxNode {
	return &NumberBoxNode{NodeBase: controlBase(id, TypeNumberBox)}
}

func (n *NumberBoxNode) NodeArgs() NodeArgs {
	a := n.Args
	return NodeArgs{a.Min, a.Max, float64(a.Init), a.InitValue, a.Receive, a.Send}
}
func (n *NumberBoxNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *NumberBoxNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }
func (*NumberBoxNode) isControl()                           {}

// ---- vsl / hsl ----

// SliderLayout stores the slider's pixel width in Box.Width
type SliderLayout struct {
	Box
	Label
	Height        float64 `json:"height"`
	Log           float64 `json:"log"`
	SteadyOnClick string  `json:"steadyOnClick"`
}

type SliderArgs struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Init int     `json:"init"`
	// InitValue is computed from the saved handle position
	InitValue float64 `json:"initValue"`
	Receive   string  `json:"receive"`
	Send      string  `json:"send"`
}

type SliderNode struct {
	NodeBase
	Args   SliderArgs   `json:"args"`
	Layout SliderLayout `json:"layout"`
}

func NewSliderNode(id LocalID, nodeType string) *SliderNode {
	return &SliderNode{NodeBase: controlBase(id, nodeType)}
}

func (n *SliderNode) NodeArgs() NodeArgs {
	a := n.Args
	return NodeArgs{a.Min, a.Max, float64(a.Init), a.InitValue, a.Receive, a.Send}
}
func (n *SliderNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *SliderNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }
func (*SliderNode) isControl()                           {}

// ---- vradio / hradio ----

type RadioLayout struct {
	Box
	Label
	Size float64 `json:"size"`
}

type RadioArgs struct {
	Count     float64 `json:"count"`
	Init      int     `json:"init"`
	InitValue float64 `json:"initValue"`
	Receive   string  `json:"receive"`
	Send      string  `json:"send"`
	// NewOld is a legacy flag: output both new and old value
	NewOld int `json:"newOld"`
}

type RadioNode struct {
	NodeBase
	Args   RadioArgs   `json:"args"`
	Layout RadioLayout `json:"layout"`
}

func NewRadioNode(id LocalID, nodeType string) *RadioNode {
	return &RadioNode{NodeBase: controlBase(id, nodeType)}
}

func (n *RadioNode) NodeArgs() NodeArgs {
	a := n.Args
	return NodeArgs{a.Count, float64(a.Init), a.InitValue, a.Receive, a.Send, float64(a.NewOld)}
}
func (n *RadioNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *RadioNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }
func (*RadioNode) isControl()                           {}

// ---- vu ----

type VuLayout struct {
	Box
	Label
	Height float64 `json:"height"`
	Log    float64 `json:"log"`
}

type VuArgs struct {
	Receive string  `json:"receive"`
	Scale   NodeArg `json:"scale"`
}

type VuNode struct {
	NodeBase
	Args   VuArgs   `json:"args"`
	Layout VuLayout `json:"layout"`
}

func NewVuNode(id LocalID) *VuNode {
	return &VuNode{NodeBase: controlBase(id, TypeVu)}
}

func (n *VuNode) NodeArgs() NodeArgs                { return NodeArgs{n.Args.Receive, n.Args.Scale} }
func (n *VuNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *VuNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }
func (*VuNode) isControl()                           {}

// ---- cnv ----

type CnvLayout struct {
	Box
	Label
	Size   float64 `json:"size"`
	Height float64 `json:"height"`
}

type CnvArgs struct {
	Send    string  `json:"send"`
	Receive string  `json:"receive"`
	Unused  NodeArg `json:"unused"`
}

type CnvNode struct {
	NodeBase
	Args   CnvArgs   `json:"args"`
	Layout CnvLayout `json:"layout"`
}

func NewCnvNode(id LocalID) *CnvNode {
	return &CnvNode{NodeBase: controlBase(id, TypeCnv)}
}

func (n *CnvNode) NodeArgs() NodeArgs                { return NodeArgs{n.Args.Send, n.Args.Receive, n.Args.Unused} }
func (n *CnvNode) Position() (float64, float64, bool) { return n.Layout.Position() }
func (n *CnvNode) SetWidth(width float64)             { n.Layout.SetWidth(width) }
func (*CnvNode) isControl()                           {}
