package tokens

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloatToken(t *testing.T) {
	tests := []struct {
		token string
		want  float64
	}{
		{"1", 1},
		{"-4e-2", -0.04},
		{"+0.5", 0.5},
		{".25", 0.25},
		{"12.", 12},
		{"1e+37", 1e37},
		{"-1e+37", -1e37},
		{"8300", 8300},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseFloatToken(tt.token)
			if err != nil {
				t.Fatalf("ParseFloatToken(%q) error = %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParseFloatToken(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestParseFloatToken_Invalid(t *testing.T) {
	for _, token := range []string{"bla", "", "12abc", "0x10", "NaN", "Infinity", "1e", "--1", " 1"} {
		t.Run(token, func(t *testing.T) {
			_, err := ParseFloatToken(token)
			if err == nil {
				t.Fatalf("ParseFloatToken(%q) expected error", token)
			}
			if !IsValueError(err) {
				t.Errorf("ParseFloatToken(%q) error should be a ValueError, got %T", token, err)
			}
		})
	}
}

func TestParseFloatToken_Overflow(t *testing.T) {
	got, err := ParseFloatToken("1e999")
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, 1))

	got, err = ParseFloatToken("-1e999")
	require.NoError(t, err)
	assert.True(t, math.IsInf(got, -1))
}

func TestParseIntToken(t *testing.T) {
	got, err := ParseIntToken("3")
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	_, err = ParseIntToken("1.5")
	assert.True(t, IsValueError(err))

	_, err = ParseIntToken("x")
	assert.True(t, IsValueError(err))

	for _, token := range []string{"1e300", "-1e10", "2147483648"} {
		_, err = ParseIntToken(token)
		assert.ErrorContains(t, err, "integer out of range", token)
	}
}

func TestParseFiniteFloatToken(t *testing.T) {
	got, err := ParseFiniteFloatToken("1e300")
	require.NoError(t, err)
	assert.Equal(t, 1e300, got)

	for _, token := range []string{"1e999", "-1e999"} {
		_, err = ParseFiniteFloatToken(token)
		assert.True(t, IsValueError(err), token)
		assert.ErrorContains(t, err, "number out of range", token)
	}
}

func TestParseBoolToken(t *testing.T) {
	tests := []struct {
		token   string
		want    int
		wantErr bool
	}{
		{"0", 0, false},
		{"1", 1, false},
		{"1.0", 1, false},
		{"2", 0, true},
		{"-1", 0, true},
		{"0.5", 0, true},
		{"yes", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseBoolToken(tt.token)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseBoolToken(%q) expected error", tt.token)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBoolToken(%q) error = %v", tt.token, err)
			}
			if got != tt.want {
				t.Errorf("ParseBoolToken(%q) = %d, want %d", tt.token, got, tt.want)
			}
		})
	}
}

func TestParseStringToken(t *testing.T) {
	tests := []struct {
		name        string
		token       string
		emptyMarker string
		want        string
	}{
		{"plain", "bla", "", "bla"},
		{"escaped dollar", `\$15`, "", "$15"},
		{"escaped dollar inside", `freq-\$1-\$2`, "", "freq-$1-$2"},
		{"escaped comma", `\,bla`, "", ",bla"},
		{"escaped semicolon", `bla\;`, "", "bla;"},
		{"empty marker", "empty", "empty", ""},
		{"dash marker", "-", "-", ""},
		{"marker not matching", "empty", "-", "empty"},
		{"no marker", "empty", "", "empty"},
		{"dollar without escape", "$1", "", "$1"},
		{"escaped space kept", `foo\ bar`, "", `foo\ bar`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseStringToken(tt.token, tt.emptyMarker); got != tt.want {
				t.Errorf("ParseStringToken(%q, %q) = %q, want %q", tt.token, tt.emptyMarker, got, tt.want)
			}
		})
	}
}

func TestParseArg(t *testing.T) {
	assert.Equal(t, 440.0, ParseArg("440"))
	assert.Equal(t, -0.04, ParseArg("-4e-2"))
	assert.Equal(t, "osc~", ParseArg("osc~"))
	assert.Equal(t, "$1", ParseArg(`\$1`))
	assert.Equal(t, "12abc", ParseArg("12abc"))
	assert.Equal(t, "1e999", ParseArg("1e999"))
}

func TestParseArgs(t *testing.T) {
	args := ParseArgs([]string{"myDel", "100", `\$2`})
	require.Len(t, args, 3)
	assert.Equal(t, "myDel", args[0])
	assert.Equal(t, 100.0, args[1])
	assert.Equal(t, "$2", args[2])

	assert.Empty(t, ParseArgs(nil))
}
