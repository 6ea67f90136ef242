package preparer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specgate/specgate/document"
)

func docWithOperation(op map[string]any) document.Document {
	return document.Document{
		"paths": map[string]any{
			"/users": map[string]any{
				"get": op,
			},
		},
	}
}

func operation(t *testing.T, doc document.Document, path, method string) map[string]any {
	t.Helper()
	item, ok := document.Paths(doc)[path].(map[string]any)
	require.True(t, ok, "path item %s", path)
	op, ok := item[method].(map[string]any)
	require.True(t, ok, "operation %s %s", method, path)
	return op
}

func TestStampOriginCreatesServersList(t *testing.T) {
	doc := docWithOperation(map[string]any{"summary": "list users"})

	got := StampOrigin(doc, "http://users:8000")

	op := operation(t, got, "/users", "get")
	assert.Equal(t, []any{map[string]any{"url": "http://users:8000"}}, op["servers"])
}

func TestStampOriginAppendsToExistingServers(t *testing.T) {
	doc := docWithOperation(map[string]any{
		"servers": []any{map[string]any{"url": "http://other"}},
	})

	got := StampOrigin(doc, "http://users:8000")

	op := operation(t, got, "/users", "get")
	assert.Equal(t, []any{
		map[string]any{"url": "http://other"},
		map[string]any{"url": "http://users:8000"},
	}, op["servers"])
}

func TestStampProxiedOriginDescribesUpstream(t *testing.T) {
	doc := docWithOperation(map[string]any{"summary": "list users"})

	got := StampProxiedOrigin(doc, "/proxy/users", "http://users:8000")

	op := operation(t, got, "/users", "get")
	assert.Equal(t, []any{map[string]any{
		"url":         "/proxy/users",
		"description": "Proxied to http://users:8000",
	}}, op["servers"])
}

func TestStampProxiedOriginIdempotent(t *testing.T) {
	doc := docWithOperation(map[string]any{})

	once := StampProxiedOrigin(doc, "/proxy/users", "http://users:8000")
	twice := StampProxiedOrigin(once, "/proxy/users", "http://users:8000")

	assert.Equal(t, once, twice)
	assert.Len(t, operation(t, twice, "/users", "get")["servers"], 1)
}

func TestStampOriginIdempotent(t *testing.T) {
	doc := docWithOperation(map[string]any{})

	once := StampOrigin(doc, "http://users:8000")
	twice := StampOrigin(once, "http://users:8000")

	assert.Equal(t, once, twice)
	assert.Len(t, operation(t, twice, "/users", "get")["servers"], 1)
}

func TestStampOriginSkipsNonOperationKeys(t *testing.T) {
	doc := document.Document{
		"paths": map[string]any{
			"/users": map[string]any{
				"get":        map[string]any{},
				"summary":    "users resource",
				"parameters": []any{map[string]any{"name": "id"}},
				"x-meta":     map[string]any{"owner": "platform"},
			},
		},
	}

	got := StampOrigin(doc, "http://users:8000")

	item := document.Paths(got)["/users"].(map[string]any)
	assert.Contains(t, item["get"].(map[string]any), "servers")
	assert.NotContains(t, item["x-meta"].(map[string]any), "servers")
	assert.Equal(t, "users resource", item["summary"])
}

func TestStampOriginDoesNotMutateInput(t *testing.T) {
	doc := docWithOperation(map[string]any{})

	_ = StampOrigin(doc, "http://users:8000")

	assert.NotContains(t, operation(t, doc, "/users", "get"), "servers")
}

func TestStampOriginNoPaths(t *testing.T) {
	doc := document.Document{"openapi": "3.0.3"}
	assert.Equal(t, doc, StampOrigin(doc, "http://users:8000"))
}

func TestGroupTagsRewritesGlobalTags(t *testing.T) {
	doc := document.Document{
		"tags": []any{
			map[string]any{"name": "Users", "description": "User accounts"},
		},
	}

	got := GroupTags(doc, "billing", TagModeCollapse)

	tags := document.Tags(got)
	require.Len(t, tags, 1)
	tag := tags[0].(map[string]any)
	assert.Equal(t, "billing | Users", tag["name"])
	assert.Equal(t, "User accounts", tag["description"])
}

func TestGroupTagsCollapsesOperationTagsToLast(t *testing.T) {
	doc := docWithOperation(map[string]any{
		"tags": []any{"Users", "Admin"},
	})

	got := GroupTags(doc, "billing", TagModeCollapse)

	op := operation(t, got, "/users", "get")
	assert.Equal(t, []any{"billing | Admin"}, op["tags"])
}

func TestGroupTagsInPlaceKeepsAllTags(t *testing.T) {
	doc := docWithOperation(map[string]any{
		"tags": []any{"Users", "Admin"},
	})

	got := GroupTags(doc, "billing", TagModeInPlace)

	op := operation(t, got, "/users", "get")
	assert.Equal(t, []any{"billing | Users", "billing | Admin"}, op["tags"])
}

func TestGroupTagsSingleTag(t *testing.T) {
	doc := docWithOperation(map[string]any{"tags": []any{"Users"}})

	got := GroupTags(doc, "billing", TagModeCollapse)

	op := operation(t, got, "/users", "get")
	assert.Equal(t, []any{"billing | Users"}, op["tags"])
}

func TestGroupTagsUntaggedOperationUntouched(t *testing.T) {
	doc := docWithOperation(map[string]any{"summary": "no tags"})

	got := GroupTags(doc, "billing", TagModeCollapse)

	op := operation(t, got, "/users", "get")
	assert.NotContains(t, op, "tags")
}

func TestGroupTagsDoesNotMutateInput(t *testing.T) {
	doc := docWithOperation(map[string]any{"tags": []any{"Users"}})

	_ = GroupTags(doc, "billing", TagModeCollapse)

	assert.Equal(t, []any{"Users"}, operation(t, doc, "/users", "get")["tags"])
}

func TestGroupedTag(t *testing.T) {
	assert.Equal(t, "billing | Users", GroupedTag("billing", "Users"))
}
