package parse

import (
	"fmt"
	"strings"

	"github.com/ritzau/pd-parser/pkg/model"
	"github.com/ritzau/pd-parser/pkg/tokenize"
	"github.com/ritzau/pd-parser/pkg/tokens"
)

// Chunk kinds that declare a node
var nodeElements = map[string]bool{
	"obj":        true,
	"floatatom":  true,
	"symbolatom": true,
	"listbox":    true,
	"msg":        true,
	"text":       true,
}

// Canvas types a "#X restore" may close
var canvasTypes = map[string]bool{
	"pd":    true,
	"graph": true,
	"table": true,
}

// hydrateNodes builds the nodes and connections of a patch from its
// remaining lines. Local ids are assigned in declaration order, and an id is
// used up even when its node is invalid so connection indices stay aligned.
func (p *parser) hydrateNodes(patch *model.Patch, lines []tokenize.Line) {
	var nextID model.LocalID
	newID := func() model.LocalID {
		id := nextID
		nextID++
		return id
	}

	for _, line := range lines {
		toks := line.Tokens

		switch {
		case matches(toks, "PATCH"):
			node, err := hydrateSubpatchNode(newID(), toks)
			if err != nil {
				p.diag.errorf(line.LineIndex, "invalid subpatch: %v", err)
				continue
			}
			p.applyAfterComma(node, line)
			patch.AddNode(node)

		case matches(toks, "ARRAY"):
			node, err := hydrateArrayNode(newID(), toks)
			if err != nil {
				p.diag.errorf(line.LineIndex, "invalid array: %v", err)
				continue
			}
			patch.AddNode(node)

		case len(toks) > 1 && toks[0] == "#X" && nodeElements[toks[1]]:
			node, err := hydrateNode(newID(), toks)
			if err != nil {
				p.diag.errorf(line.LineIndex, "%v", err)
				continue
			}
			p.applyAfterComma(node, line)
			patch.AddNode(node)

		case matches(toks, "#X", "connect"):
			conn, err := hydrateConnection(toks)
			if err != nil {
				p.diag.errorf(line.LineIndex, "invalid connection: %v", err)
				continue
			}
			patch.AddConnection(conn)

		case matches(toks, "#X", "coords"):
			// already read into the patch layout

		default:
			p.diag.errorf(line.LineIndex, "%q unexpected chunk", chunkKey(toks))
		}
	}
}

// hydrateSubpatchNode reads "PATCH <patchId> <x> <y> <type> [args...]"
func hydrateSubpatchNode(id model.LocalID, toks []string) (*model.SubpatchNode, error) {
	r := newArgReader(toks)
	patchID := r.integer(1)
	x := r.float(2)
	y := r.float(3)
	canvasType := r.raw(4)
	if err := r.Err(); err != nil {
		return nil, err
	}
	if !canvasTypes[canvasType] {
		return nil, fmt.Errorf("unknown canvas type %q", canvasType)
	}
	return model.NewSubpatchNode(id, canvasType, model.GlobalID(patchID), tokens.ParseArgs(toks[5:]), x, y), nil
}

// hydrateArrayNode reads "ARRAY <arrayId>"
func hydrateArrayNode(id model.LocalID, toks []string) (*model.ArrayNode, error) {
	r := newArgReader(toks)
	arrayID := r.integer(1)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return model.NewArrayNode(id, model.GlobalID(arrayID)), nil
}

// hydrateNode reads "#X obj <x> <y> <type> [args...]" and
// "#X <element> <x> <y> [args...]" for the other node elements.
func hydrateNode(id model.LocalID, toks []string) (model.Node, error) {
	element := toks[1]
	r := newArgReader(toks)
	x := r.float(2)
	y := r.float(3)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("invalid %s position: %w", element, err)
	}

	nodeType := element
	var args []string
	if element == "obj" {
		// an empty object box has no type
		nodeType = ""
		if len(toks) > 4 {
			nodeType = toks[4]
			args = toks[5:]
		}
	} else if len(toks) > 4 {
		args = toks[4:]
	}

	switch {
	case element == "text":
		// comments are kept whole rather than split into words
		text := tokens.ParseStringToken(strings.Join(args, " "), "")
		return model.NewTextNode(id, text, x, y), nil
	case model.IsControlType(nodeType):
		return hydrateControl(id, nodeType, args, x, y)
	default:
		return model.NewGenericNode(id, nodeType, tokens.ParseArgs(args), x, y), nil
	}
}

// hydrateConnection reads "#X connect <source> <outlet> <sink> <inlet>"
func hydrateConnection(toks []string) (model.Connection, error) {
	r := newArgReader(toks)
	conn := model.Connection{
		Source: model.Endpoint{NodeID: model.LocalID(r.integer(2)), PortletID: r.integer(3)},
		Sink:   model.Endpoint{NodeID: model.LocalID(r.integer(4)), PortletID: r.integer(5)},
	}
	return conn, r.Err()
}

// applyAfterComma interprets the directives saved after the chunk's comma as
// (command, value) pairs. Only "f <width>" is known.
func (p *parser) applyAfterComma(node model.Node, line tokenize.Line) {
	toks := line.AfterComma
	for i := 0; i < len(toks); i += 2 {
		command := toks[i]
		if i+1 >= len(toks) {
			p.diag.warnf(line.LineIndex, "directive %q has no value", command)
			return
		}
		if command != "f" {
			p.diag.warnf(line.LineIndex, "directive %q is not supported", command)
			continue
		}
		width, err := tokens.ParseFiniteFloatToken(toks[i+1])
		if err != nil {
			p.diag.errorf(line.LineIndex, "invalid width: %v", err)
			continue
		}
		node.SetWidth(width)
	}
}
