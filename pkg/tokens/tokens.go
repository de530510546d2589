// Package tokens converts single .pd tokens into numbers, booleans and strings.
package tokens

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ritzau/pd-parser/pkg/model"
)

// ValueError reports a token that can't be converted to the requested type
type ValueError struct {
	Token string
	Msg   string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %q", e.Msg, e.Token)
}

// IsValueError reports whether err is, or wraps, a *ValueError
func IsValueError(err error) bool {
	var ve *ValueError
	return errors.As(err, &ve)
}

var (
	numberRe        = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)
	escapedDollarRe = regexp.MustCompile(`\\(\$\d+)`)

	unescaper = strings.NewReplacer(`\,`, ",", `\;`, ";")
)

// ParseFloatToken parses a numeric token. The whole token must be a number,
// "12abc" is rejected. Values too large for float64 become +Inf or -Inf.
func ParseFloatToken(token string) (float64, error) {
	if !numberRe.MatchString(token) {
		return 0, &ValueError{Token: token, Msg: "not a valid number"}
	}
	v, err := strconv.ParseFloat(token, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v, nil
		}
		return 0, &ValueError{Token: token, Msg: "not a valid number"}
	}
	return v, nil
}

// ParseFiniteFloatToken is ParseFloatToken without the infinities. Graph
// values have to survive JSON encoding, which has no representation for them.
func ParseFiniteFloatToken(token string) (float64, error) {
	v, err := ParseFloatToken(token)
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) {
		return 0, &ValueError{Token: token, Msg: "number out of range"}
	}
	return v, nil
}

// ParseIntToken parses a numeric token that must hold an integral value
func ParseIntToken(token string) (int, error) {
	v, err := ParseFloatToken(token)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, &ValueError{Token: token, Msg: "not a valid integer"}
	}
	if math.Abs(v) > math.MaxInt32 {
		return 0, &ValueError{Token: token, Msg: "integer out of range"}
	}
	return int(v), nil
}

// ParseBoolToken parses a token that must be 0 or 1
func ParseBoolToken(token string) (int, error) {
	v, err := ParseFloatToken(token)
	if err != nil {
		return 0, err
	}
	switch v {
	case 0:
		return 0, nil
	case 1:
		return 1, nil
	}
	return 0, &ValueError{Token: token, Msg: "should be 0 or 1"}
}

// ParseStringToken unescapes a string token. If emptyMarker is not empty and
// the token equals it, the empty string is returned: GUI controls save
// "empty" or "-" to mean "no value".
func ParseStringToken(token string, emptyMarker string) string {
	if emptyMarker != "" && token == emptyMarker {
		return ""
	}
	s := unescaper.Replace(token)
	return escapedDollarRe.ReplaceAllString(s, "${1}")
}

// ParseArg parses a free-form creation argument: a number if the token is
// numeric and finite, an unescaped string otherwise.
func ParseArg(token string) model.NodeArg {
	if v, err := ParseFiniteFloatToken(token); err == nil {
		return v
	}
	return ParseStringToken(token, "")
}

// ParseArgs applies ParseArg to every token
func ParseArgs(tokens []string) model.NodeArgs {
	args := make(model.NodeArgs, 0, len(tokens))
	for _, tok := range tokens {
		args = append(args, ParseArg(tok))
	}
	return args
}
