package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/rpggio/makerlog/internal/config"
)

// fakeBackend mimics the analysis service's wire format.
func fakeBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			http.Error(w, "no file", http.StatusBadRequest)
			return
		}
		_, _ = io.WriteString(w, `{"status":"success","message":{
			"title":"Birdhouse",
			"materials":["plank","nails"],
			"difficulty":"Easy",
			"timeRequired":"2 hours",
			"steps":["cut","sand","nail","paint","hang"],
			"tips":["measure twice"],
			"warnings":{"1":"saw is sharp"}
		}}`)
	})
	mux.HandleFunc("POST /clarify-step", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"success","clarification":{"detailed_steps":["a","b"],"tips":[],"common_mistakes":[]}}`)
	})
	mux.HandleFunc("GET /leaderboard", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"rank":1,"name":"Ada","diy_completed":3,"days_active":9}]`)
	})
	mux.HandleFunc("GET /achievements", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"id":1,"title":"First Build","icon":"hammer","description":"Finish a project"}]`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.Analysis.BaseURL = fakeBackend(t).URL
	cfg.Analysis.Timeout = 5 * time.Second
	if mutate != nil {
		mutate(&cfg)
	}

	logger := slog.New(slog.DiscardHandler)
	a, err := newApp(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	mcpServer := a.mcpServer(cfg)
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer }, nil)

	srv := httptest.NewServer(a.router(cfg, mcpHandler))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func readJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func TestEndToEnd_CaptureStartComplete(t *testing.T) {
	srv := newTestServer(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg"))
	require.NoError(t, mw.Close())

	resp, err := http.Post(srv.URL+"/analyze", mw.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/projects/start", map[string]string{"title": "Birdhouse"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = postJSON(t, srv.URL+"/projects/Birdhouse/steps", map[string]int{"step": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var step struct {
		Found   bool `json:"found"`
		Project struct {
			TotalSteps     int     `json:"totalSteps"`
			CompletedSteps []int   `json:"completedSteps"`
			Progress       float64 `json:"progress"`
		} `json:"project"`
	}
	readJSON(t, resp, &step)
	require.True(t, step.Found)
	require.Equal(t, 5, step.Project.TotalSteps)
	require.Equal(t, 20.0, step.Project.Progress)

	resp = postJSON(t, srv.URL+"/projects/Birdhouse/steps/1/clarify", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	actResp, err := http.Get(srv.URL + "/activity?title=Birdhouse")
	require.NoError(t, err)
	defer actResp.Body.Close()
	var act struct {
		Activity []struct {
			Type string `json:"type"`
		} `json:"activity"`
	}
	readJSON(t, actResp, &act)
	require.Len(t, act.Activity, 2)

	metricsResp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	exposition, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	text := string(exposition)
	require.Contains(t, text, "makerlog_projects_added_total 1")
	require.Contains(t, text, `makerlog_analysis_calls_total{operation="analyze",outcome="success"} 1`)
	require.Contains(t, text, `makerlog_http_requests_total{method="POST",route="/projects/{title}/steps",status="200"} 1`)
}

func TestEndToEnd_Passthrough(t *testing.T) {
	srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/leaderboard")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	require.True(t, strings.Contains(string(b), `"name":"Ada"`))

	resp2, err := http.Get(srv.URL + "/achievements")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
}

func TestEndToEnd_MCPSharesStore(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := postJSON(t, srv.URL+"/projects", map[string]any{"title": "Shelf", "totalSteps": 4})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	ctx := t.Context()
	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{Endpoint: srv.URL + "/mcp"}, nil)
	require.NoError(t, err)
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "mark_step_complete",
		Arguments: map[string]any{"title": "Shelf", "step": 2},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	getResp, err := http.Get(srv.URL + "/projects/Shelf")
	require.NoError(t, err)
	defer getResp.Body.Close()
	var proj struct {
		CompletedSteps []int   `json:"completedSteps"`
		Progress       float64 `json:"progress"`
	}
	readJSON(t, getResp, &proj)
	require.Equal(t, []int{2}, proj.CompletedSteps)
	require.Equal(t, 25.0, proj.Progress)
}

func TestEndToEnd_Auth(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Auth.Enabled = true
		cfg.Auth.Token = "s3cret"
	})

	resp, err := http.Get(srv.URL + "/projects")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
