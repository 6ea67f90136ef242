package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON(t *testing.T) {
	doc, err := ParseJSON([]byte(`{"openapi":"3.0.3","paths":{"/users":{}}}`))
	require.NoError(t, err)
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Contains(t, Paths(doc), "/users")
}

func TestParseJSONInvalid(t *testing.T) {
	_, err := ParseJSON([]byte(`{"openapi":`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestParseYAML(t *testing.T) {
	doc, err := ParseYAML([]byte("openapi: 3.0.3\npaths:\n  /users: {}\n"))
	require.NoError(t, err)
	assert.Equal(t, "3.0.3", doc["openapi"])
	assert.Contains(t, Paths(doc), "/users")
}

func TestParseYAMLInvalid(t *testing.T) {
	_, err := ParseYAML([]byte("{[not yaml"))
	require.Error(t, err)
}

func TestCloneIsDeep(t *testing.T) {
	doc := Document{
		"info": map[string]any{"title": "API"},
		"tags": []any{map[string]any{"name": "Users"}},
	}

	cp := Clone(doc)
	require.Equal(t, doc, cp)

	// Mutating the clone must not affect the original.
	GetMap(cp, "info")["title"] = "changed"
	cp["tags"].([]any)[0].(map[string]any)["name"] = "changed"

	assert.Equal(t, "API", GetMap(doc, "info")["title"])
	assert.Equal(t, "Users", doc["tags"].([]any)[0].(map[string]any)["name"])
}

func TestCloneNil(t *testing.T) {
	assert.Nil(t, Clone(nil))
}

func TestGetMapWrongType(t *testing.T) {
	doc := Document{"paths": "not a map"}
	assert.Nil(t, Paths(doc))
	assert.Nil(t, GetMap(nil, "paths"))
}

func TestGetSliceWrongType(t *testing.T) {
	doc := Document{"tags": "not a slice"}
	assert.Nil(t, Tags(doc))
	assert.Nil(t, GetSlice(nil, "tags"))
}

func TestEnsureMap(t *testing.T) {
	doc := Document{}
	m := EnsureMap(doc, "components")
	m["schemas"] = map[string]any{}

	assert.NotNil(t, Components(doc))
	// Existing maps are returned, not replaced.
	assert.Equal(t, m, EnsureMap(doc, "components"))

	// A non-map value is replaced by an empty map.
	doc["info"] = 42
	assert.Empty(t, EnsureMap(doc, "info"))
}

func TestComponentSchemas(t *testing.T) {
	doc := Document{
		"components": map[string]any{
			"schemas": map[string]any{"Error": map[string]any{"type": "object"}},
		},
	}
	assert.Contains(t, ComponentSchemas(doc), "Error")
	assert.Nil(t, ComponentSchemas(Document{}))
}

func TestMarshalJSONDeterministic(t *testing.T) {
	doc := Document{"b": 1, "a": 2, "c": map[string]any{"z": 1, "y": 2}}

	first, err := MarshalJSON(doc)
	require.NoError(t, err)
	for range 10 {
		next, err := MarshalJSON(doc)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(next))
	}
}
