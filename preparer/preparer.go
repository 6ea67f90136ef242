// Package preparer applies per-document transforms before merging.
//
// Two independent, composable transforms are provided: StampOrigin
// injects the serving origin into every operation's servers list, and
// GroupTags namespaces tags with the owning source's name. Each
// transform returns a new tree; the input document is never mutated.
package preparer

import (
	"fmt"

	"github.com/specgate/specgate/document"
	"github.com/specgate/specgate/internal/httputil"
)

// TagMode selects how operation tag lists are rewritten by GroupTags.
type TagMode int

const (
	// TagModeCollapse collapses a multi-tag operation to a
	// single-element list holding the grouped form of its LAST tag.
	// Use TagModeInPlace to rewrite tags one-to-one instead.
	TagModeCollapse TagMode = iota
	// TagModeInPlace rewrites every tag in place, preserving the
	// operation's tag count.
	TagModeInPlace
)

// GroupedTag returns the namespaced form of a tag for a source.
func GroupedTag(sourceName, tag string) string {
	return fmt.Sprintf("%s | %s", sourceName, tag)
}

// StampOrigin returns a copy of doc in which every operation object
// under every path has an operations-level servers list containing
// {url: origin}. The transform is idempotent: an entry with the exact
// url is never duplicated.
func StampOrigin(doc document.Document, origin string) document.Document {
	return stampOrigin(doc, origin, "")
}

// StampProxiedOrigin is StampOrigin for documents served through the
// local proxy. The stamped entry carries the proxy path as its url and
// a description naming the upstream it forwards to.
func StampProxiedOrigin(doc document.Document, origin, upstream string) document.Document {
	return stampOrigin(doc, origin, fmt.Sprintf("Proxied to %s", upstream))
}

func stampOrigin(doc document.Document, origin, description string) document.Document {
	prepared := document.Clone(doc)

	for _, item := range document.Paths(prepared) {
		pathItem, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for method, node := range pathItem {
			if !httputil.IsOperationMethod(method) {
				continue
			}
			op, ok := node.(map[string]any)
			if !ok {
				continue
			}
			op["servers"] = appendServer(op["servers"], origin, description)
		}
	}
	return prepared
}

// appendServer adds {url: origin} to a servers list unless an entry
// with that exact url is already present. A missing or malformed
// servers value is replaced with a fresh list. Each operation gets its
// own entry map so later edits to one cannot alias into another.
func appendServer(servers any, origin, description string) []any {
	list, _ := servers.([]any)
	for _, entry := range list {
		server, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if url, _ := server["url"].(string); url == origin {
			return list
		}
	}
	entry := map[string]any{"url": origin}
	if description != "" {
		entry["description"] = description
	}
	return append(list, entry)
}

// GroupTags returns a copy of doc in which every top-level tag name and
// every operation tag reference carries the "<source> | <tag>" grouped
// form. Top-level tags keep their other fields (description, etc.);
// only the name is rewritten.
func GroupTags(doc document.Document, sourceName string, mode TagMode) document.Document {
	prepared := document.Clone(doc)

	for _, entry := range document.Tags(prepared) {
		tag, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := tag["name"].(string); ok {
			tag["name"] = GroupedTag(sourceName, name)
		}
	}

	for _, item := range document.Paths(prepared) {
		pathItem, ok := item.(map[string]any)
		if !ok {
			continue
		}
		for method, node := range pathItem {
			if !httputil.IsOperationMethod(method) {
				continue
			}
			op, ok := node.(map[string]any)
			if !ok {
				continue
			}
			if tags := groupOperationTags(op["tags"], sourceName, mode); tags != nil {
				op["tags"] = tags
			}
		}
	}
	return prepared
}

// groupOperationTags rewrites one operation's tag list. Returns nil
// when there is nothing to rewrite.
func groupOperationTags(tags any, sourceName string, mode TagMode) []any {
	list, _ := tags.([]any)
	if len(list) == 0 {
		return nil
	}

	switch mode {
	case TagModeInPlace:
		out := make([]any, 0, len(list))
		for _, entry := range list {
			if tag, ok := entry.(string); ok {
				out = append(out, GroupedTag(sourceName, tag))
			} else {
				out = append(out, entry)
			}
		}
		return out
	default:
		// Collapse to the grouped form of the last string tag.
		var last string
		found := false
		for _, entry := range list {
			if tag, ok := entry.(string); ok {
				last = tag
				found = true
			}
		}
		if !found {
			return nil
		}
		return []any{GroupedTag(sourceName, last)}
	}
}
