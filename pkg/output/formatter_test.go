package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ritzau/pd-parser/pkg/analysis"
	"github.com/ritzau/pd-parser/pkg/diff"
)

const osc = "#N canvas 0 50 450 300 12;\n#X obj 30 27 osc~ 440;\n#X obj 30 70 dac~;\n#X connect 0 0 1 0;\n"

func sampleResults() []*analysis.FileResult {
	return []*analysis.FileResult{
		analysis.ParseText("osc.pd", osc, true),
		analysis.ParseText("declare.pd", "#N canvas 0 50 450 300 12;\n#X declare -lib zexy;\n", true),
		analysis.ParseText("bad.pd", "#N canvas 0 50 450 300 12;\n#X obj x 1 f;\n", true),
		{Path: "gone.pd", ReadError: "open gone.pd: no such file or directory"},
	}
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"summary", "JSON", "yaml"} {
		_, err := ParseFormat(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintSummary(&buf, sampleResults(), false)
	out := buf.String()

	assert.Contains(t, out, "✓ osc.pd  1 patch(es), 0 array(s), 2 node(s), 1 connection(s)")
	assert.Contains(t, out, "✓ declare.pd")
	assert.Contains(t, out, `warning: line 2: "#X declare" chunk is not supported`)
	assert.Contains(t, out, "✗ bad.pd")
	assert.Contains(t, out, "error: line 2:")
	assert.Contains(t, out, "✗ gone.pd\n    open gone.pd")
	assert.Contains(t, out, "Summary: 2 of 4 patch file(s) failed")
}

func TestPrintSummary_Strict(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintSummary(&buf, sampleResults()[:2], true)

	assert.Contains(t, buf.String(), "✗ declare.pd")
	assert.Contains(t, buf.String(), "Summary: 1 of 2 patch file(s) failed")
}

func TestPrintSummary_AllGood(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer
	PrintSummary(&buf, sampleResults()[:1], false)
	assert.Contains(t, buf.String(), "Summary: 1/1 patch file(s) parsed")

	buf.Reset()
	PrintSummary(&buf, nil, false)
	assert.Contains(t, buf.String(), "No patches found")
}

func TestPrintSummary_Changes(t *testing.T) {
	color.NoColor = true

	prev := analysis.ParseText("osc.pd", osc, false)
	next := analysis.ParseText("osc.pd", osc+"#X obj 30 120 print;\n", false)
	next.Changes = diff.Compare(prev.Pd(), next.Pd())

	var buf bytes.Buffer
	PrintSummary(&buf, []*analysis.FileResult{next}, false)
	assert.Contains(t, buf.String(), "    changed: nodes +1 -0 ~0, connections +0 -0\n")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatJSON, sampleResults()[:1], false))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "osc.pd", decoded[0]["path"])

	result := decoded[0]["result"].(map[string]any)
	assert.Equal(t, "success", result["status"])
	pd := result["pd"].(map[string]any)
	assert.Equal(t, float64(0), pd["rootPatchId"])
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, FormatYAML, sampleResults()[:1], false))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "osc.pd", decoded[0]["path"])

	result := decoded[0]["result"].(map[string]any)
	assert.Equal(t, "success", result["status"])
	assert.Contains(t, buf.String(), "type: osc~")
}

func TestWrite_UnknownFormat(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, Format("xml"), nil, false))
}
