package web

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritzau/pd-parser/pkg/analysis"
	"github.com/ritzau/pd-parser/pkg/cycles"
	"github.com/ritzau/pd-parser/pkg/parse"
	"github.com/ritzau/pd-parser/pkg/pubsub"
	"github.com/ritzau/pd-parser/pkg/validate"
)

const loopPatch = `#N canvas 0 50 450 300 12;
#X obj 30 27 f;
#X obj 30 70 + 1;
#X obj 30 120 print;
#N canvas 0 0 450 300 inner 0;
#X obj 10 10 inlet;
#X restore 100 100 pd inner;
#X connect 0 0 1 0;
#X connect 1 0 0 1;
#X connect 0 0 2 0;
`

// parseResponse mirrors analysis.FileResult with the graph left undecoded,
// nodes are an interface type
type parseResponse struct {
	Path   string `json:"path"`
	Result *struct {
		Status string             `json:"status"`
		Errors []parse.Diagnostic `json:"errors"`
		Pd     json.RawMessage    `json:"pd"`
	} `json:"result"`
	Issues        []validate.Issue      `json:"issues"`
	FeedbackLoops []cycles.FeedbackLoop `json:"feedbackLoops"`
}

func newTestServer(t *testing.T) (*Server, *analysis.Store) {
	t.Helper()
	store := analysis.NewStore()
	store.Put(analysis.ParseText("lib/loop.pd", loopPatch, true))
	store.Put(analysis.ParseText("broken.pd", "#X obj 1 2 f;\n", true))
	s := NewServer(store, false)
	t.Cleanup(func() { s.publisher.Close() })
	return s, store
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))
	return rec
}

func TestHandleParse(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name       string
		target     string
		body       string
		wantStatus int
		check      func(t *testing.T, fr parseResponse)
	}{
		{
			name:       "valid patch",
			target:     "/api/parse?name=two.pd",
			body:       "#N canvas 0 50 450 300 12;\n#X obj 30 27 osc~ 440;\n#X obj 30 70 dac~;\n#X connect 0 0 1 0;\n",
			wantStatus: http.StatusOK,
			check: func(t *testing.T, fr parseResponse) {
				assert.Equal(t, "two.pd", fr.Path)
				require.NotNil(t, fr.Result)
				assert.Equal(t, "success", fr.Result.Status)
				assert.NotNil(t, fr.Result.Pd)
				assert.Nil(t, fr.Issues)
			},
		},
		{
			name:       "invalid patch",
			target:     "/api/parse",
			body:       "#N canvas 0 50 450 300 12;\n#X obj 30 27 osc~;\n#X weird;\n",
			wantStatus: http.StatusUnprocessableEntity,
			check: func(t *testing.T, fr parseResponse) {
				assert.Equal(t, "request.pd", fr.Path)
				assert.NotEmpty(t, fr.Result.Errors)
			},
		},
		{
			name:       "validation on request",
			target:     "/api/parse?validate=true",
			body:       loopPatch,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, fr parseResponse) {
				assert.Len(t, fr.FeedbackLoops, 1)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, tt.target, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

			var fr parseResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fr))
			tt.check(t, fr)
		})
	}
}

func TestHandlePatches(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/patches", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summaries []pubsub.PatchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)
	assert.Equal(t, "broken.pd", summaries[0].File)
	assert.Equal(t, "failure", summaries[0].Status)
	assert.Equal(t, "lib/loop.pd", summaries[1].File)
	assert.Equal(t, 2, summaries[1].Patches)
	assert.Equal(t, 5, summaries[1].Nodes)
}

func TestHandlePatch(t *testing.T) {
	s, _ := newTestServer(t)

	for _, target := range []string{"/api/patches/lib/loop.pd", "/api/patches/loop.pd", "/api/patches/loop"} {
		rec := do(t, s, http.MethodGet, target, "")
		require.Equal(t, http.StatusOK, rec.Code, target)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		assert.Equal(t, "lib/loop.pd", raw["path"])
	}

	rec := do(t, s, http.MethodGet, "/api/patches/nope.pd", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlePatchGraph(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/patches/lib/loop.pd/graph", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var data GraphData
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	require.Len(t, data.Patches, 2)

	root := data.Patches[0]
	assert.Equal(t, 0, root.Depth)
	assert.Nil(t, root.Order, "feedback loop prevents ordering")
	require.Len(t, root.FeedbackLoops, 1)
	assert.Len(t, root.FeedbackLoops[0].Nodes, 2)

	inner := data.Patches[1]
	assert.Equal(t, "inner", inner.Name)
	assert.Equal(t, 1, inner.Depth)
	assert.Len(t, inner.Order, 1)

	rec = do(t, s, http.MethodGet, "/api/patches/broken.pd/graph", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleSubscribe(t *testing.T) {
	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	require.NoError(t, s.Publisher().Publish(pubsub.TopicResult, "parsed", pubsub.PatchResult{File: "a.pd", Status: "success"}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/subscribe/parse_result", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var event pubsub.Event
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &event))
		assert.Equal(t, "parsed", event.Type)
		assert.Contains(t, string(event.Data), `"file":"a.pd"`)
		return
	}
	t.Fatalf("stream ended without an event: %v", scanner.Err())
}

func TestHandleSubscribe_UnknownTopic(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/api/subscribe/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthz(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"patches":2`)
}
