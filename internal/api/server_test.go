package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specgate/specgate/aggregator"
	"github.com/specgate/specgate/registry"
)

func init() {
	apiLogger = slog.New(slog.DiscardHandler)
}

const upstreamSpec = `{
	"openapi": "3.0.3",
	"info": {"title": "Users API", "version": "1.0.0"},
	"paths": {"/users": {"get": {"summary": "list"}}},
	"components": {"schemas": {"User": {"type": "object"}}}
}`

// newAPIServer stands up one upstream spec server and an API server
// aggregating it.
func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, upstreamSpec)
	}))
	upstream.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(upstream.Close)

	agg := aggregator.New(aggregator.Config{
		Sources: []registry.Source{
			{Name: "user-service", URL: upstream.URL, SpecURL: upstream.URL, Enabled: true},
		},
		Title:    "Platform API",
		Version:  "2.0.0",
		CacheTTL: time.Minute,
	})

	_, router := NewServer(agg)
	server := httptest.NewServer(router)
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func TestOpenAPIEndpoint(t *testing.T) {
	server := newAPIServer(t)

	var doc map[string]any
	status := getJSON(t, server.URL+"/openapi.json", &doc)
	require.Equal(t, http.StatusOK, status)

	info := doc["info"].(map[string]any)
	assert.Equal(t, "Platform API", info["title"])
	assert.Equal(t, "2.0.0", info["version"])

	paths := doc["paths"].(map[string]any)
	assert.Contains(t, paths, "/users")
}

func TestDocsPage(t *testing.T) {
	server := newAPIServer(t)

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	page := string(body)
	assert.Contains(t, page, "<title>Platform API</title>")
	assert.Contains(t, page, "User Service")
	assert.Contains(t, page, "swagger-ui")
}

func TestSourcesEndpoint(t *testing.T) {
	server := newAPIServer(t)

	var payload struct {
		Sources []struct {
			Name        string `json:"name"`
			DisplayName string `json:"display_name"`
			Enabled     bool   `json:"enabled"`
		} `json:"sources"`
	}
	status := getJSON(t, server.URL+"/sources", &payload)
	require.Equal(t, http.StatusOK, status)

	require.Len(t, payload.Sources, 1)
	assert.Equal(t, "user-service", payload.Sources[0].Name)
	assert.Equal(t, "User Service", payload.Sources[0].DisplayName)
	assert.True(t, payload.Sources[0].Enabled)
}

func TestHealthEndpoint(t *testing.T) {
	server := newAPIServer(t)

	var payload map[string]string
	status := getJSON(t, server.URL+"/healthz", &payload)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", payload["status"])
	assert.NotEmpty(t, payload["state"])
}

func TestMetricsEndpoint(t *testing.T) {
	server := newAPIServer(t)

	// A document request populates the run metrics.
	resp, err := http.Get(server.URL + "/openapi.json")
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	metrics := string(body)
	assert.Contains(t, metrics, "specgate_runs_total")
	assert.True(t, strings.Contains(metrics, `specgate_runs_total{outcome="ok"} 1`), metrics)
}

func TestCachedSnapshotObservedOnce(t *testing.T) {
	server := newAPIServer(t)

	for range 3 {
		resp, err := http.Get(server.URL + "/openapi.json")
		require.NoError(t, err)
		_ = resp.Body.Close()
	}

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `specgate_runs_total{outcome="ok"} 1`)
}
