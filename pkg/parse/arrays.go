package parse

import (
	"fmt"
	"math"
	"strconv"

	"github.com/ritzau/pd-parser/pkg/model"
	"github.com/ritzau/pd-parser/pkg/tokenize"
	"github.com/ritzau/pd-parser/pkg/tokens"
)

// Array plot styles, indexed by bits 1-2 of the flags
var drawAsByFlag = []model.DrawAs{model.DrawAsPolygon, model.DrawAsPoints, model.DrawAsBezier}

// maxArraySize caps the declared size and the highest "#A" index so a
// malformed file can't allocate unbounded memory
const maxArraySize = 1 << 24

// extractArrays pulls the arrays and their data out of one patch's lines.
// Each "#X array" line is replaced by an "ARRAY <id>" placeholder and "#A"
// lines are consumed.
func (p *parser) extractArrays(lines []tokenize.Line) []tokenize.Line {
	remaining := make([]tokenize.Line, 0, len(lines))
	var current *model.PdArray

	for _, line := range lines {
		switch {
		case matches(line.Tokens, "#X", "array"):
			id := p.ids.NextArrayID()
			array, err := hydrateArray(id, line)
			if err != nil {
				p.diag.errorf(line.LineIndex, "invalid array: %v", err)
				current = nil
			} else {
				p.pd.AddArray(array)
				current = array
			}
			remaining = append(remaining, tokenize.Line{
				LineIndex: line.LineIndex,
				Tokens:    []string{"ARRAY", strconv.Itoa(int(id))},
			})

		case matches(line.Tokens, "#A"):
			if err := fillArray(current, line.Tokens); err != nil {
				p.diag.errorf(line.LineIndex, "%v", err)
			}

		default:
			remaining = append(remaining, line)
		}
	}
	return remaining
}

// hydrateArray reads "#X array <name> <size> <type> <flags>". Bit 0 of
// flags tells whether the contents are saved, bits 1-2 pick the plot style
// and bit 3 hides the name.
func hydrateArray(id model.GlobalID, line tokenize.Line) (*model.PdArray, error) {
	r := newArgReader(line.Tokens)
	name := r.str(2, "")
	size := r.arg(3)
	flags := r.integer(5)
	if err := r.Err(); err != nil {
		return nil, err
	}

	drawIndex := (flags >> 1) & 3
	if flags < 0 || drawIndex >= len(drawAsByFlag) {
		return nil, fmt.Errorf("invalid flags %d", flags)
	}

	array := &model.PdArray{
		ID: id,
		Args: model.ArrayArgs{
			Name:         name,
			Size:         size,
			SaveContents: flags % 2,
		},
		Layout: model.ArrayLayout{
			DrawAs:   drawAsByFlag[drawIndex],
			HideName: flags&8 != 0,
		},
	}

	if array.Args.SaveContents == 1 {
		// a dollar size is only known when the patch is instantiated
		n, ok := size.(float64)
		if !ok {
			if _, err := tokens.ParseFloatToken(line.Tokens[3]); err == nil {
				return nil, fmt.Errorf("invalid size %s", line.Tokens[3])
			}
			array.Data = []float64{}
			return array, nil
		}
		if n < 0 || n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, fmt.Errorf("invalid size %v", n)
		}
		if n > maxArraySize {
			return nil, fmt.Errorf("size %v exceeds the maximum of %d", n, maxArraySize)
		}
		array.Data = make([]float64, int(n))
	}
	return array, nil
}

// fillArray writes "#A <offset> <values...>" into the array. Values that
// are not finite numbers are skipped, the index still advances. Data past
// the declared size grows the array.
func fillArray(array *model.PdArray, toks []string) error {
	if array == nil {
		return fmt.Errorf("got array data outside of an array")
	}
	if array.Data == nil {
		return fmt.Errorf("got data for array %q which doesn't save its contents", array.Args.Name)
	}

	r := newArgReader(toks)
	offset := r.integer(1)
	if err := r.Err(); err != nil {
		return fmt.Errorf("invalid array data offset: %w", err)
	}
	if offset < 0 {
		return fmt.Errorf("invalid array data offset %d", offset)
	}
	if offset+len(toks)-2 > maxArraySize {
		return fmt.Errorf("array data at offset %d exceeds the maximum size of %d", offset, maxArraySize)
	}

	for i, tok := range toks[2:] {
		v, err := tokens.ParseFloatToken(tok)
		if err != nil || math.IsInf(v, 0) {
			continue
		}
		index := offset + i
		if index >= len(array.Data) {
			array.Data = append(array.Data, make([]float64, index+1-len(array.Data))...)
		}
		array.Data[index] = v
	}
	return nil
}
