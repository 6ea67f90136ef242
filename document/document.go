// Package document provides the untyped structured tree that the
// aggregation pipeline operates on.
//
// A Document is a plain map of object/array/scalar nodes as produced by
// decoding JSON or YAML. The pipeline never interprets it as a validated
// OpenAPI object; it only relies on the structural shape of a handful of
// well-known sections (info, paths, components, tags). Every transform
// works on an exclusively-owned tree, so Clone is used at stage
// boundaries where a document would otherwise be shared.
package document

import (
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v4"
)

// Document is one retrieved specification as an untyped tree.
type Document = map[string]any

// ParseJSON decodes a JSON-encoded specification body.
func ParseJSON(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("document: invalid JSON: %w", err)
	}
	return doc, nil
}

// ParseYAML decodes a YAML-encoded specification body.
func ParseYAML(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("document: invalid YAML: %w", err)
	}
	return doc, nil
}

// MarshalJSON encodes a document as JSON. Map keys are emitted in sorted
// order by encoding/json, which keeps serialized output reproducible.
func MarshalJSON(doc Document) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("document: marshal failed: %w", err)
	}
	return data, nil
}

// Clone returns a deep copy of the document. Scalars are shared (they
// are immutable); every map and slice node is copied.
func Clone(doc Document) Document {
	if doc == nil {
		return nil
	}
	return cloneMap(doc)
}

func cloneMap(m map[string]any) map[string]any {
	cp := make(map[string]any, len(m))
	for k, v := range m {
		cp[k] = cloneValue(v)
	}
	return cp
}

func cloneSlice(s []any) []any {
	cp := make([]any, len(s))
	for i, v := range s {
		cp[i] = cloneValue(v)
	}
	return cp
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		return cloneSlice(t)
	default:
		return v
	}
}

// GetMap returns the map at the given key, or nil if the key is absent
// or holds a non-map value.
func GetMap(doc Document, key string) map[string]any {
	if doc == nil {
		return nil
	}
	m, _ := doc[key].(map[string]any)
	return m
}

// GetSlice returns the slice at the given key, or nil if the key is
// absent or holds a non-slice value.
func GetSlice(doc Document, key string) []any {
	if doc == nil {
		return nil
	}
	s, _ := doc[key].([]any)
	return s
}

// EnsureMap returns the map at the given key, creating an empty one in
// place if the key is absent or holds a non-map value.
func EnsureMap(doc Document, key string) map[string]any {
	if m, ok := doc[key].(map[string]any); ok {
		return m
	}
	m := make(map[string]any)
	doc[key] = m
	return m
}

// Paths returns the document's paths object (nil if absent).
func Paths(doc Document) map[string]any {
	return GetMap(doc, "paths")
}

// Components returns the document's components object (nil if absent).
func Components(doc Document) map[string]any {
	return GetMap(doc, "components")
}

// ComponentSchemas returns the document's components.schemas object
// (nil if absent).
func ComponentSchemas(doc Document) map[string]any {
	return GetMap(Components(doc), "schemas")
}

// Tags returns the document's top-level tags list (nil if absent).
func Tags(doc Document) []any {
	return GetSlice(doc, "tags")
}
