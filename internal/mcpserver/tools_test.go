package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specgate/specgate/aggregator"
	"github.com/specgate/specgate/registry"
)

const usersSpec = `{
	"openapi": "3.0.3",
	"info": {"title": "Users API", "version": "1.0.0"},
	"paths": {"/users": {"get": {"summary": "list"}}},
	"components": {"schemas": {"Error": {"type": "object"}}}
}`

const billingSpec = `{
	"openapi": "3.0.3",
	"info": {"title": "Billing API", "version": "1.0.0"},
	"paths": {"/users": {"get": {"summary": "billing view"}}},
	"components": {"schemas": {"Error": {"type": "string"}}}
}`

func newSpecServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	server.Config.SetKeepAlivesEnabled(false)
	t.Cleanup(server.Close)
	return server
}

func newHandlers(t *testing.T) *handlers {
	t.Helper()
	users := newSpecServer(t, usersSpec)
	billing := newSpecServer(t, billingSpec)

	agg := aggregator.New(aggregator.Config{
		Sources: []registry.Source{
			{Name: "users", URL: users.URL, SpecURL: users.URL, Enabled: true},
			{Name: "billing", URL: billing.URL, SpecURL: billing.URL, Enabled: true},
			{Name: "legacy", SpecURL: "http://127.0.0.1:1/spec", Enabled: false},
		},
		Title:    "Platform API",
		CacheTTL: time.Minute,
	})
	return &handlers{agg: agg}
}

func TestAggregateTool(t *testing.T) {
	h := newHandlers(t)

	result, output, err := h.handleAggregate(context.Background(), &mcp.CallToolRequest{}, aggregateInput{})
	require.NoError(t, err)
	require.Nil(t, result)

	assert.Equal(t, 3, output.Configured)
	assert.Equal(t, 2, output.Eligible)
	assert.Equal(t, 2, output.Fetched)
	assert.Equal(t, 2, output.PathCount)
	assert.Equal(t, 2, output.SchemaCount)

	require.Len(t, output.Collisions, 2)
	assert.Equal(t, "/users", output.Collisions[0].Key)
	assert.Equal(t, "/users_billing", output.Collisions[0].RenamedTo)
	assert.Contains(t, output.Summary, "merged 2 of 3 sources")
}

func TestListSourcesTool(t *testing.T) {
	h := newHandlers(t)

	result, output, err := h.handleListSources(context.Background(), &mcp.CallToolRequest{}, listSourcesInput{})
	require.NoError(t, err)
	require.Nil(t, result)

	require.Len(t, output.Sources, 3)
	assert.Equal(t, "users", output.Sources[0].Name)
	assert.True(t, output.Sources[0].Enabled)
	assert.Nil(t, output.Sources[0].Available)
	assert.False(t, output.Sources[2].Enabled)
	assert.Contains(t, output.Summary, "3 sources configured, 2 enabled")
}

func TestListSourcesToolWithProbe(t *testing.T) {
	h := newHandlers(t)

	result, output, err := h.handleListSources(context.Background(), &mcp.CallToolRequest{}, listSourcesInput{Probe: true})
	require.NoError(t, err)
	require.Nil(t, result)

	require.Len(t, output.Sources, 3)
	require.NotNil(t, output.Sources[0].Available)
	assert.True(t, *output.Sources[0].Available)
	// Disabled sources are not probed.
	assert.Nil(t, output.Sources[2].Available)
}

func TestGetMergedSpecTool(t *testing.T) {
	h := newHandlers(t)

	result, output, err := h.handleGetMergedSpec(context.Background(), &mcp.CallToolRequest{}, getMergedSpecInput{})
	require.NoError(t, err)
	require.Nil(t, result)

	assert.Equal(t, 2, output.PathCount)
	assert.Equal(t, 2, output.Collisions)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(output.Document), &doc))
	assert.Equal(t, "Platform API", doc["info"].(map[string]any)["title"])
}

func TestGetMergedSpecToolRefresh(t *testing.T) {
	h := newHandlers(t)

	ctx := context.Background()
	_, first, err := h.handleGetMergedSpec(ctx, &mcp.CallToolRequest{}, getMergedSpecInput{})
	require.NoError(t, err)
	_, second, err := h.handleGetMergedSpec(ctx, &mcp.CallToolRequest{}, getMergedSpecInput{Refresh: true})
	require.NoError(t, err)

	assert.Equal(t, first.PathCount, second.PathCount)
	assert.JSONEq(t, first.Document, second.Document)
}

func TestAggregateToolDuplicateNames(t *testing.T) {
	users := newSpecServer(t, usersSpec)
	agg := aggregator.New(aggregator.Config{
		Sources: []registry.Source{
			{Name: "users", URL: users.URL, SpecURL: users.URL, Enabled: true},
			{Name: "users", URL: users.URL, SpecURL: users.URL, Enabled: true},
		},
	})
	h := &handlers{agg: agg}

	result, _, err := h.handleAggregate(context.Background(), &mcp.CallToolRequest{}, aggregateInput{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.IsError)
}
