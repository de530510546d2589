package parse

import (
	"fmt"
	"math"

	"github.com/ritzau/pd-parser/pkg/model"
	"github.com/ritzau/pd-parser/pkg/tokens"
)

// Markers saved in place of an empty label, send or receive name
const (
	emptyIEM  = "empty"
	emptyAtom = "-"
)

// hydrateControl decodes the creation arguments of a GUI control. args are
// the tokens following the control type.
func hydrateControl(id model.LocalID, nodeType string, args []string, x, y float64) (model.ControlNode, error) {
	r := newArgReader(args)
	box := model.Box{X: x, Y: y}

	var node model.ControlNode
	switch nodeType {
	case model.TypeFloatAtom, model.TypeSymbolAtom, model.TypeListBox:
		// <width> <min> <max> <label_pos> <label> <receive> <send>
		n := model.NewAtomNode(id, nodeType)
		n.Layout = model.AtomLayout{
			Box:          box,
			WidthInChars: r.float(0),
			LabelPos:     r.float(3),
			Label:        r.str(4, emptyAtom),
		}
		n.Args = model.AtomArgs{
			Min:     r.float(1),
			Max:     r.float(2),
			Receive: r.str(5, emptyAtom),
			Send:    r.str(6, emptyAtom),
		}
		node = n

	case model.TypeMsg:
		n := model.NewMsgNode(id)
		n.Layout = box
		n.Args = tokens.ParseArgs(args)
		node = n

	case model.TypeBang:
		// <size> <hold> <interrupt> <init> <send> <receive> <label> <x_off>
		// <y_off> <font> <fontsize> <bg_color> <fg_color> <label_color>
		n := model.NewBangNode(id)
		n.Layout = model.BangLayout{
			Box:       box,
			Size:      r.float(0),
			Hold:      r.float(1),
			Interrupt: r.float(2),
			Label:     readLabel(r, 6, true),
		}
		n.Args = model.BangArgs{
			Init:    r.boolean(3),
			Send:    r.str(4, emptyIEM),
			Receive: r.str(5, emptyIEM),
		}
		node = n

	case model.TypeToggle:
		// <size> <init> <send> <receive> <label> <x_off> <y_off> <font>
		// <fontsize> <bg_color> <fg_color> <label_color> <init_value> <on_value>
		n := model.NewToggleNode(id)
		n.Layout = model.ToggleLayout{
			Box:   box,
			Size:  r.float(0),
			Label: readLabel(r, 4, true),
		}
		n.Args = model.ToggleArgs{
			Init:      r.boolean(1),
			Send:      r.str(2, emptyIEM),
			Receive:   r.str(3, emptyIEM),
			InitValue: r.float(12),
			OnValue:   r.float(13),
		}
		node = n

	case model.TypeNumberBox:
		// <width> <height> <min> <max> <log> <init> <send> <receive> <label>
		// <x_off> <y_off> <font> <fontsize> <bg_color> <fg_color>
		// <label_color> <init_value> <log_height>
		n := model.NewNumberBoxNode(id)
		n.Layout = model.NumberBoxLayout{
			Box:          box,
			WidthInChars: r.float(0),
			Height:       r.float(1),
			Log:          r.float(4),
			Label:        readLabel(r, 8, true),
			LogHeight:    r.raw(17),
		}
		n.Args = model.NumberBoxArgs{
			Min:       r.float(2),
			Max:       r.float(3),
			Init:      r.boolean(5),
			Send:      r.str(6, emptyIEM),
			Receive:   r.str(7, emptyIEM),
			InitValue: r.float(16),
		}
		node = n

	case model.TypeVSlider, model.TypeHSlider:
		// <width> <height> <min> <max> <log> <init> <send> <receive> <label>
		// <x_off> <y_off> <font> <fontsize> <bg_color> <fg_color>
		// <label_color> <handle_position> <steady_on_click>
		n := model.NewSliderNode(id, nodeType)
		width := r.float(0)
		n.Layout = model.SliderLayout{
			Box:           model.Box{X: x, Y: y, Width: &width},
			Height:        r.float(1),
			Log:           r.float(4),
			Label:         readLabel(r, 8, true),
			SteadyOnClick: r.raw(17),
		}
		n.Args = model.SliderArgs{
			Min:     r.float(2),
			Max:     r.float(3),
			Init:    r.boolean(5),
			Send:    r.str(6, emptyIEM),
			Receive: r.str(7, emptyIEM),
		}
		pixSize := n.Layout.Height
		if nodeType == model.TypeHSlider {
			pixSize = width
		}
		n.Args.InitValue = sliderInitValue(n.Args.Min, n.Args.Max, r.boolean(4) == 1, r.float(16), pixSize)
		node = n

	case model.TypeVRadio, model.TypeHRadio:
		// <size> <new_old> <init> <number> <send> <receive> <label> <x_off>
		// <y_off> <font> <fontsize> <bg_color> <fg_color> <label_color>
		// <init_value>
		n := model.NewRadioNode(id, nodeType)
		n.Layout = model.RadioLayout{
			Box:   box,
			Size:  r.float(0),
			Label: readLabel(r, 6, true),
		}
		n.Args = model.RadioArgs{
			NewOld:    r.boolean(1),
			Init:      r.boolean(2),
			Count:     r.float(3),
			Send:      r.str(4, emptyIEM),
			Receive:   r.str(5, emptyIEM),
			InitValue: r.float(14),
		}
		node = n

	case model.TypeVu:
		// <width> <height> <receive> <label> <x_off> <y_off> <font>
		// <fontsize> <bg_color> <label_color> <log> <scale>
		n := model.NewVuNode(id)
		width := r.float(0)
		n.Layout = model.VuLayout{
			Box:    model.Box{X: x, Y: y, Width: &width},
			Height: r.float(1),
			Label:  readLabel(r, 3, false),
			Log:    r.float(10),
		}
		n.Args = model.VuArgs{
			Receive: r.str(2, emptyIEM),
			Scale:   r.arg(11),
		}
		node = n

	case model.TypeCnv:
		// <size> <width> <height> <send> <receive> <label> <x_off> <y_off>
		// <font> <fontsize> <bg_color> <label_color> <unused>
		n := model.NewCnvNode(id)
		width := r.float(1)
		n.Layout = model.CnvLayout{
			Box:    model.Box{X: x, Y: y, Width: &width},
			Size:   r.float(0),
			Height: r.float(2),
			Label:  readLabel(r, 5, false),
		}
		n.Args = model.CnvArgs{
			Send:    r.str(3, emptyIEM),
			Receive: r.str(4, emptyIEM),
			Unused:  r.arg(12),
		}
		node = n

	default:
		return nil, fmt.Errorf("unknown control type %q", nodeType)
	}

	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", nodeType, err)
	}
	return node, nil
}

// readLabel reads the label block starting at index at:
// <label> <x_off> <y_off> <font> <fontsize> <bg_color> [<fg_color>] <label_color>.
// vu and cnv have no foreground color.
func readLabel(r *argReader, at int, hasFgColor bool) model.Label {
	label := model.Label{
		Label:         r.str(at, emptyIEM),
		LabelX:        r.float(at + 1),
		LabelY:        r.float(at + 2),
		LabelFont:     r.raw(at + 3),
		LabelFontSize: r.float(at + 4),
		BgColor:       r.raw(at + 5),
	}
	if hasFgColor {
		label.FgColor = r.raw(at + 6)
		label.LabelColor = r.raw(at + 7)
	} else {
		label.LabelColor = r.raw(at + 6)
	}
	return label
}

// sliderInitValue converts the saved handle position into the slider value.
// The position is saved in hundredths of a pixel, 0 to (pixSize-1)*100.
func sliderInitValue(lo, hi float64, isLog bool, pix, pixSize float64) float64 {
	if isLog {
		k := math.Log(hi/lo) / (pixSize - 1)
		return lo * math.Exp(k*pix*0.01)
	}
	return lo + (hi-lo)*pix/((pixSize-1)*100)
}
