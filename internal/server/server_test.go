package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edp1096/spkline/internal/metrics"
	"github.com/edp1096/spkline/pkg/analysis"
	"github.com/edp1096/spkline/pkg/catalog"
	"github.com/edp1096/spkline/pkg/network"
	"github.com/edp1096/spkline/pkg/project"
	"github.com/edp1096/spkline/pkg/quality"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newServer(t *testing.T) (*Server, *metrics.EngineMetrics) {
	t.Helper()
	m, err := metrics.NewEngineMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	engine := analysis.NewEngine(nil, analysis.WithObserver(m))
	return New(Config{Service: analysis.NewService(engine), Metrics: m}), m
}

func sampleProject(t *testing.T) *project.Project {
	t.Helper()
	p := project.New("test")
	inst := p.Rack.Add(catalog.DefaultAmplifierID)
	root, err := p.LowZ.AddNode("", network.Node{})
	require.NoError(t, err)
	root.AmpInstanceID = inst.ID
	root.AmpChannel = 1
	_, err = p.LowZ.AddNode(root.ID, network.Node{})
	require.NoError(t, err)
	return p
}

func do(s *Server, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	s, _ := newServer(t)
	w := do(s, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestProfiles(t *testing.T) {
	s, _ := newServer(t)
	w := do(s, http.MethodGet, "/api/v1/profiles", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Default  string            `json:"default"`
		Profiles []quality.Profile `json:"profiles"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, quality.DefaultProfile, body.Default)
	assert.Len(t, body.Profiles, 3)
}

func TestCalculate(t *testing.T) {
	s, _ := newServer(t)
	w := do(s, http.MethodPost, "/api/v1/calculate", sampleProject(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp CalculateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Output.Summary.Nodes)
	require.Len(t, resp.Schedule, 2)
	assert.NotEmpty(t, resp.Schedule[0].Results.Status)

	root, ok := resp.Project.LowZ.Find("L-1")
	require.True(t, ok)
	require.NotNil(t, root.Results)
	assert.Greater(t, root.Results.SourceVoltage, 0.0)
	inst, _ := resp.Project.Rack.Get("A-1")
	assert.Equal(t, []int{1}, inst.ChannelsUsed)

	w = do(s, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "spkline_recomputes_total 1")
	assert.Contains(t, w.Body.String(), `spkline_http_requests_total{code="200",route="/api/v1/calculate"} 1`)
}

func TestCalculate_Errors(t *testing.T) {
	s, _ := newServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculate", strings.NewReader("{"))
	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	p := sampleProject(t)
	p.Settings.QualityProfile = "studio"
	w = do(s, http.MethodPost, "/api/v1/calculate", p)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "unknown_profile", env.Error.Code)
}

func TestCalculate_LibraryFailure(t *testing.T) {
	engine := analysis.NewEngine(nil)
	s := New(Config{
		Service: analysis.NewService(engine),
		Library: func() (*catalog.Database, error) { return nil, errors.New("disk gone") },
	})
	w := do(s, http.MethodPost, "/api/v1/calculate", sampleProject(t))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(s, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "metrics route is off without a registry")
}

func TestVerify(t *testing.T) {
	s, _ := newServer(t)
	w := do(s, http.MethodPost, "/api/v1/verify", sampleProject(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rep analysis.VerifyReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rep))
	require.Len(t, rep.Roots, 1)
	assert.Empty(t, rep.Roots[0].Error)
	assert.Len(t, rep.Roots[0].Nodes, 2)
	assert.Less(t, rep.Roots[0].MaxDeviationPercent, 1.0)
}

func TestSuggest(t *testing.T) {
	s, _ := newServer(t)

	w := do(s, http.MethodPost, "/api/v1/suggest", SuggestRequest{Project: sampleProject(t), NodeID: "L-1.1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body struct {
		Suggestions []analysis.Suggestion `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Suggestions)

	w = do(s, http.MethodPost, "/api/v1/suggest", SuggestRequest{Project: sampleProject(t), NodeID: "L-9"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(s, http.MethodPost, "/api/v1/suggest", SuggestRequest{Project: sampleProject(t), NodeID: "L-1", Topology: "dc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(s, http.MethodPost, "/api/v1/suggest", map[string]string{"node_id": "L-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
