package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bberrors "github.com/matzehuels/budgetbubbles/pkg/errors"
	"github.com/matzehuels/budgetbubbles/pkg/graph"
	"github.com/matzehuels/budgetbubbles/pkg/observability"
	"github.com/matzehuels/budgetbubbles/pkg/pipeline"
	"github.com/matzehuels/budgetbubbles/pkg/store"
)

const demoDataset = `{
	"meta": {"revisions": [{"id": "2023"}, {"id": "2024"}]},
	"left": {
		"id": "rev", "label": "Revenue",
		"children": [
			{"id": "tax", "label": "Taxes", "amount": [700, 800]},
			{"id": "other", "label": "Other", "amount": 100}
		]
	},
	"right": {"id": "exp", "label": "Spending", "amount": [600, 900]}
}`

type fixture struct {
	srv    *Server
	runner *pipeline.Runner
}

func newFixture(t *testing.T, mod func(*Options)) fixture {
	t.Helper()
	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	runner := pipeline.NewRunner(nil, nil, nil)
	opts := Options{
		Runner:   runner,
		Store:    st,
		Datasets: NewFSDatasets(fstest.MapFS{"demo.json": {Data: []byte(demoDataset)}}),
		Defaults: pipeline.Options{Iterations: 10},
		BaseURL:  "https://example.org/",
	}
	if mod != nil {
		mod(&opts)
	}
	srv, err := New(opts)
	require.NoError(t, err)
	return fixture{srv: srv, runner: runner}
}

func (f fixture) do(t *testing.T, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) bberrors.Code {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body.Error.Code
}

func (f fixture) savedState(t *testing.T) []byte {
	t.Helper()
	opts := pipeline.DefaultOptions()
	opts.Source = []byte(demoDataset)
	opts.Iterations = 10
	opts.Expand = []string{"left/rev"}
	res, err := f.runner.Execute(context.Background(), opts)
	require.NoError(t, err)
	data, err := graph.MarshalState(res.State)
	require.NoError(t, err)
	return data
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.Contains(t, rec.Body.String(), `"go_version":"go`)
}

func TestVisualizationDataset(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/visualization/demo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Contains(t, doc, "left")
	assert.False(t, graph.IsStateDocument(rec.Body.Bytes()))

	rec = f.do(t, http.MethodGet, "/visualization/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, bberrors.ErrCodeDatasetNotFound, errorCode(t, rec))

	rec = f.do(t, http.MethodGet, "/visualization/-demo", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, bberrors.ErrCodeInvalidID, errorCode(t, rec))
}

func TestSaveAndLoadState(t *testing.T) {
	f := newFixture(t, nil)
	state := f.savedState(t)

	rec := f.do(t, http.MethodPost, "/save_visualization/demo", strings.NewReader(string(state)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var saved saveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	require.NotEmpty(t, saved.ID)
	assert.Equal(t, "https://example.org/view/demo?s="+saved.ID, saved.ShareURL)

	rec = f.do(t, http.MethodGet, "/visualization/demo?s="+saved.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := graph.UnmarshalState(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, doc.Left.Nodes, 3)

	rec = f.do(t, http.MethodGet, "/visualization/demo/states", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		States []store.Summary `json:"states"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.States, 1)
	assert.Equal(t, saved.ID, list.States[0].ID)
}

func TestSaveErrors(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.MaxBodyBytes = 64 << 10 })

	rec := f.do(t, http.MethodPost, "/save_visualization/demo", strings.NewReader(`{"left": {}}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, bberrors.ErrCodeInvalidInput, errorCode(t, rec))

	rec = f.do(t, http.MethodPost, "/save_visualization/missing", strings.NewReader(string(f.savedState(t))))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	huge := `{"type": "state", "pad": "` + strings.Repeat("x", 128<<10) + `"}`
	rec = f.do(t, http.MethodPost, "/save_visualization/demo", strings.NewReader(huge))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodGet, "/visualization/demo?s=nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, bberrors.ErrCodeStateNotFound, errorCode(t, rec))
}

func TestRender(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/render/demo.svg?title=Budget", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<title>Budget</title>")

	rec = f.do(t, http.MethodGet, "/render/demo.json?rev=0&expand=left/rev", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc, err := graph.UnmarshalState(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, doc.Left.Nodes, 3)
	assert.Equal(t, 0, doc.Left.DataMapper.Revision)

	rec = f.do(t, http.MethodGet, "/render/demo.dot?panel=right", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "graph G {"))
	assert.NotContains(t, rec.Body.String(), `"left/`)
}

func TestRenderSavedState(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/save_visualization/demo", strings.NewReader(string(f.savedState(t))))
	require.Equal(t, http.StatusCreated, rec.Code)
	var saved saveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))

	rec = f.do(t, http.MethodGet, "/render/demo.svg?s="+saved.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `id="bubble-left-tax"`)
}

func TestRenderErrors(t *testing.T) {
	f := newFixture(t, nil)
	tests := []struct {
		target string
		status int
		code   bberrors.Code
	}{
		{"/render/demo.gif", http.StatusBadRequest, bberrors.ErrCodeInvalidFormat},
		{"/render/demo.svg?rev=last", http.StatusBadRequest, bberrors.ErrCodeInvalidInput},
		{"/render/demo.svg?links=maybe", http.StatusBadRequest, bberrors.ErrCodeInvalidInput},
		{"/render/demo.svg?panel=middle", http.StatusBadRequest, bberrors.ErrCodeInvalidInput},
		{"/render/demo.svg?expand=left/tax", http.StatusNotFound, bberrors.ErrCodeNotFound},
		{"/render/missing.svg", http.StatusNotFound, bberrors.ErrCodeDatasetNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := f.do(t, http.MethodGet, tt.target, nil)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, errorCode(t, rec))
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, bberrors.ErrCodeNotFound, errorCode(t, rec))
}

func TestMetrics(t *testing.T) {
	m := observability.NewMetrics()
	observability.SetServerHooks(m)
	t.Cleanup(observability.Reset)

	f := newFixture(t, func(o *Options) { o.Metrics = m.Handler() })
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/visualization/demo", nil).Code)

	rec := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(),
		`budgetbubbles_http_requests_total{method="GET",route="/visualization/{id}",status="200"} 1`)
}

func TestCORS(t *testing.T) {
	f := newFixture(t, func(o *Options) { o.CORSOrigins = []string{"https://app.example.org"} })

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://app.example.org")
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example.org", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/save_visualization/demo", nil)
	req.Header.Set("Origin", "https://app.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "content-type")
	rec = httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://app.example.org", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodPost, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))

	req = httptest.NewRequest(http.MethodOptions, "/save_visualization/demo", nil)
	req.Header.Set("Origin", "https://app.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodDelete)
	rec = httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
