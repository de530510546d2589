package parse

import (
	"strconv"
	"strings"

	"github.com/ritzau/pd-parser/pkg/logging"
	"github.com/ritzau/pd-parser/pkg/model"
	"github.com/ritzau/pd-parser/pkg/tokenize"
	"github.com/ritzau/pd-parser/pkg/tokens"
)

// defaultTableSize is the size of a [table] created without one
const defaultTableSize = "100"

// Recognized chunks that are dropped with a warning
var unsupportedChunks = map[string]bool{
	"#N struct":  true,
	"#X declare": true,
	"#X scalar":  true,
	"#X f":       true,
}

// matches reports whether toks starts with values
func matches(toks []string, values ...string) bool {
	if len(toks) < len(values) {
		return false
	}
	for i, v := range values {
		if toks[i] != v {
			return false
		}
	}
	return true
}

// chunkKey names a chunk by its first two tokens, e.g. "#X obj"
func chunkKey(toks []string) string {
	if len(toks) > 2 {
		toks = toks[:2]
	}
	return strings.Join(toks, " ")
}

// extractPatch consumes one canvas level of lines, starting with its
// "#N canvas" header. Nested canvases are extracted recursively. The level
// ends at its "#X restore", which is rewritten into a
// "PATCH <id> <x> <y> <type> [args...]" line and handed back to the parent
// as the first of the remaining lines.
func (p *parser) extractPatch(lines []tokenize.Line, isRoot bool) (model.GlobalID, []tokenize.Line) {
	id := p.ids.NextPatchID()
	patch := model.NewPatch(id, isRoot)
	p.pd.AddPatch(patch)
	p.patchLines[id] = []tokenize.Line{}

	if len(lines) == 0 || !matches(lines[0].Tokens, "#N", "canvas") {
		lineIndex := 0
		if len(lines) > 0 {
			lineIndex = lines[0].LineIndex
		}
		p.diag.errorf(lineIndex, "canvas missing")
		return id, nil
	}

	p.hydrateCanvas(patch, lines[0])
	lines = lines[1:]

	for len(lines) > 0 {
		line := lines[0]
		toks := line.Tokens

		switch {
		case matches(toks, "#N", "canvas"):
			_, lines = p.extractPatch(lines, false)

		case matches(toks, "#X", "restore"):
			if isRoot {
				// unbalanced restore, left over for the caller to report
				return id, lines
			}
			restored := tokenize.Line{
				LineIndex:  line.LineIndex,
				Tokens:     append([]string{"PATCH", strconv.Itoa(int(id))}, toks[2:]...),
				AfterComma: line.AfterComma,
			}
			rest := make([]tokenize.Line, 0, len(lines))
			rest = append(rest, restored)
			logging.Trace("subpatch extracted", "patchId", id, "line", line.LineIndex)
			return id, append(rest, lines[1:]...)

		case matches(toks, "#X", "obj") && len(toks) > 4 && toks[4] == "table":
			expanded, ok := p.expandTable(line)
			if !ok {
				lines = lines[1:]
				continue
			}
			lines = append(expanded, lines[1:]...)

		case matches(toks, "#X", "coords"):
			p.hydrateCoords(patch, line)
			p.patchLines[id] = append(p.patchLines[id], line)
			lines = lines[1:]

		case unsupportedChunks[chunkKey(toks)]:
			p.diag.warnf(line.LineIndex, "%q chunk is not supported", chunkKey(toks))
			lines = lines[1:]

		default:
			p.patchLines[id] = append(p.patchLines[id], line)
			lines = lines[1:]
		}
	}

	return id, lines
}

// expandTable rewrites the [table name size] object into the subpatch Pd
// creates for it: a table canvas holding a graph holding one array.
func (p *parser) expandTable(line tokenize.Line) ([]tokenize.Line, bool) {
	toks := line.Tokens
	if len(toks) < 6 {
		p.diag.errorf(line.LineIndex, "table without a name")
		return nil, false
	}
	name := toks[5]
	size := defaultTableSize
	if len(toks) > 6 {
		size = toks[6]
	}

	at := func(t ...string) tokenize.Line {
		return tokenize.Line{LineIndex: line.LineIndex, Tokens: t}
	}
	restore := at("#X", "restore", toks[2], toks[3], "table", name)
	restore.AfterComma = line.AfterComma

	return []tokenize.Line{
		at("#N", "canvas", "0", "0", "100", "100", "(subpatch)", "0"),
		at("#N", "canvas", "0", "0", "100", "100", "(subpatch)", "0"),
		at("#X", "array", name, size, "float", "0"),
		at("#X", "restore", "0", "0", "graph"),
		restore,
	}, true
}

// hydrateCanvas reads "#N canvas <x> <y> <width> <height> ...". The root
// canvas ends with the font size, subpatch canvases with their name and
// the open-on-load flag.
func (p *parser) hydrateCanvas(patch *model.Patch, line tokenize.Line) {
	r := newArgReader(line.Tokens)
	patch.Layout.WindowX = r.float(2)
	patch.Layout.WindowY = r.float(3)
	patch.Layout.WindowWidth = r.float(4)
	patch.Layout.WindowHeight = r.float(5)

	if patch.IsRoot {
		if r.has(6) {
			fontSize := r.float(6)
			patch.Layout.FontSize = &fontSize
		}
	} else {
		if r.has(6) {
			patch.Args = model.NodeArgs{tokens.ParseStringToken(line.Tokens[6], "")}
		}
		if r.has(7) {
			openOnLoad := r.boolean(7) == 1
			patch.Layout.OpenOnLoad = &openOnLoad
		}
	}

	if err := r.Err(); err != nil {
		p.diag.errorf(line.LineIndex, "invalid canvas: %v", err)
	}
}

// hydrateCoords reads
// "#X coords <x1> <y1> <x2> <y2> <width> <height> <gop> [<marginX> <marginY>]".
// gop is 1 for graph-on-parent, 2 when the object name is hidden as well.
func (p *parser) hydrateCoords(patch *model.Patch, line tokenize.Line) {
	r := newArgReader(line.Tokens)
	if !r.has(8) {
		return
	}
	gop := r.float(8)
	if gop > 0 {
		patch.Layout.GraphOnParent = &model.GraphOnParent{
			HideObjectNameAndArguments: gop == 2,
			ViewportWidth:              r.float(6),
			ViewportHeight:             r.float(7),
			ViewportX:                  r.floatOr(9, 0),
			ViewportY:                  r.floatOr(10, 0),
		}
	}

	if err := r.Err(); err != nil {
		p.diag.errorf(line.LineIndex, "invalid coords: %v", err)
	}
}
