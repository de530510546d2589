package parse

import (
	"fmt"

	"github.com/ritzau/pd-parser/pkg/model"
	"github.com/ritzau/pd-parser/pkg/tokens"
)

// argReader reads positional tokens. The first failure is kept and every
// later read returns a zero value, so a whole schema can be decoded before
// checking Err once.
type argReader struct {
	tokens []string
	err    error
}

func newArgReader(toks []string) *argReader {
	return &argReader{tokens: toks}
}

func (r *argReader) Err() error {
	return r.err
}

func (r *argReader) has(i int) bool {
	return i < len(r.tokens)
}

func (r *argReader) token(i int) (string, bool) {
	if r.err != nil {
		return "", false
	}
	if i >= len(r.tokens) {
		r.err = fmt.Errorf("argument %d: %w", i, &tokens.ValueError{Msg: "missing value"})
		return "", false
	}
	return r.tokens[i], true
}

func (r *argReader) fail(i int, err error) {
	r.err = fmt.Errorf("argument %d: %w", i, err)
}

func (r *argReader) float(i int) float64 {
	tok, ok := r.token(i)
	if !ok {
		return 0
	}
	v, err := tokens.ParseFiniteFloatToken(tok)
	if err != nil {
		r.fail(i, err)
	}
	return v
}

// floatOr reads an optional float, def is returned if the token is absent
func (r *argReader) floatOr(i int, def float64) float64 {
	if !r.has(i) {
		return def
	}
	return r.float(i)
}

func (r *argReader) integer(i int) int {
	tok, ok := r.token(i)
	if !ok {
		return 0
	}
	v, err := tokens.ParseIntToken(tok)
	if err != nil {
		r.fail(i, err)
	}
	return v
}

func (r *argReader) boolean(i int) int {
	tok, ok := r.token(i)
	if !ok {
		return 0
	}
	v, err := tokens.ParseBoolToken(tok)
	if err != nil {
		r.fail(i, err)
	}
	return v
}

func (r *argReader) str(i int, emptyMarker string) string {
	tok, ok := r.token(i)
	if !ok {
		return ""
	}
	return tokens.ParseStringToken(tok, emptyMarker)
}

// raw returns the token verbatim, used for fonts and colors
func (r *argReader) raw(i int) string {
	tok, _ := r.token(i)
	return tok
}

func (r *argReader) arg(i int) model.NodeArg {
	tok, ok := r.token(i)
	if !ok {
		return nil
	}
	return tokens.ParseArg(tok)
}
