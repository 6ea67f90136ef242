// Package merger combines prepared documents into one merged
// specification document.
//
// Merging is deterministic and idempotent: given the same ordered input
// list and the same source names, the output is byte-for-byte
// reproducible. Collisions between sources are resolved first-wins:
// the earliest document to claim a path or component name keeps the
// bare key, and every later colliding document is inserted under a key
// suffixed with its own source name.
package merger

import (
	"fmt"
	"log/slog"

	"github.com/specgate/specgate/document"
	"github.com/specgate/specgate/internal/maputil"
)

// mergerLogger is used for collision and shape warnings.
// Tests can replace this with a discard logger to suppress expected warnings.
var mergerLogger = slog.Default()

// Metadata defaults applied when configuration omits a value.
const (
	DefaultTitle   = "Merged API"
	DefaultVersion = "1.0.0"
)

// Options configures a merge.
type Options struct {
	// Grouping concatenates the (already namespaced) tag lists of all
	// documents into the merged document.
	Grouping bool
	// Title, Description, and Version overwrite the merged document's
	// info section. Empty Title and Version fall back to DefaultTitle
	// and DefaultVersion; Description may be legitimately empty.
	Title       string
	Description string
	Version     string
}

// MergeError reports that the merge stage itself could not produce any
// output because an internal invariant was violated. It is the only
// error class that aborts a whole aggregation run.
type MergeError struct {
	Reason string
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("merger: %s", e.Reason)
}

// MergedDocument is the single aggregate document plus derived indices
// into its merged sections. The indices alias the document's maps; they
// are views, not copies.
type MergedDocument struct {
	// Document is the merged specification tree.
	Document document.Document
	// Paths maps each merged path (possibly suffixed) to its operations object.
	Paths map[string]any
	// Schemas maps each merged component schema name to its definition.
	Schemas map[string]any
	// Components maps each non-schema component category to its merged
	// name-to-definition map.
	Components map[string]map[string]any
	// Collisions records every renamed key, in deterministic order.
	Collisions []CollisionWarning
	// ShapeWarnings records sections skipped for lacking mergeable shape.
	ShapeWarnings []ShapeWarning
}

// CollisionCount returns the number of collisions resolved by renaming.
func (m *MergedDocument) CollisionCount() int {
	return len(m.Collisions)
}

// Merge combines prepared documents into a single merged document.
//
// An empty input yields an empty document and no error. Per-document
// shape problems are skipped with a warning. Only an internal invariant
// violation (duplicate source names, which would make collision
// suffixes ambiguous) returns a MergeError.
func Merge(docs []document.NamedDocument, opts Options) (*MergedDocument, error) {
	merged := &MergedDocument{
		Paths:      make(map[string]any),
		Schemas:    make(map[string]any),
		Components: make(map[string]map[string]any),
	}

	if len(docs) == 0 {
		merged.Document = document.Document{}
		return merged, nil
	}

	seen := make(map[string]bool, len(docs))
	for _, nd := range docs {
		if seen[nd.Name] {
			return nil, &MergeError{Reason: fmt.Sprintf("duplicate source name %q makes collision suffixes ambiguous", nd.Name)}
		}
		seen[nd.Name] = true
	}

	st := &mergeState{merged: merged}
	for _, nd := range docs {
		if nd.Doc == nil {
			st.skip(nd.Name, "document", "document failed to load")
			continue
		}
		st.mergePaths(nd)
		st.mergeComponents(nd)
	}

	base := document.Clone(docs[0].Doc)
	if base == nil {
		base = document.Document{}
	}
	base["paths"] = merged.Paths

	components := make(map[string]any, len(merged.Components)+1)
	components["schemas"] = merged.Schemas
	for category, defs := range merged.Components {
		components[category] = defs
	}
	base["components"] = components

	if opts.Grouping {
		allTags := make([]any, 0)
		for _, nd := range docs {
			allTags = append(allTags, document.Tags(nd.Doc)...)
		}
		base["tags"] = allTags
	}

	stampInfo(base, opts)

	merged.Document = base
	return merged, nil
}

// stampInfo overwrites the merged document's info metadata from
// configuration, regardless of what the first source document carried.
func stampInfo(doc document.Document, opts Options) {
	title := opts.Title
	if title == "" {
		title = DefaultTitle
	}
	version := opts.Version
	if version == "" {
		version = DefaultVersion
	}

	info := document.EnsureMap(doc, "info")
	info["title"] = title
	info["description"] = opts.Description
	info["version"] = version
}

// mergeState accumulates merged sections and the per-key owners used
// for collision attribution.
type mergeState struct {
	merged *MergedDocument

	pathOwners      map[string]string
	schemaOwners    map[string]string
	componentOwners map[string]map[string]string
}

func (st *mergeState) mergePaths(nd document.NamedDocument) {
	if _, present := nd.Doc["paths"]; !present {
		return
	}
	paths := document.Paths(nd.Doc)
	if paths == nil {
		st.skip(nd.Name, SectionPaths, "paths is not an object")
		return
	}
	if st.pathOwners == nil {
		st.pathOwners = make(map[string]string)
	}
	// Key order inside one document cannot change which source wins;
	// sorted iteration only keeps warning order reproducible.
	for _, path := range maputil.SortedKeys(paths) {
		st.insert(SectionPaths, st.merged.Paths, st.pathOwners, path, paths[path], nd.Name)
	}
}

func (st *mergeState) mergeComponents(nd document.NamedDocument) {
	if _, present := nd.Doc["components"]; !present {
		return
	}
	components := document.Components(nd.Doc)
	if components == nil {
		st.skip(nd.Name, "components", "components is not an object")
		return
	}

	for _, category := range maputil.SortedKeys(components) {
		defs, ok := components[category].(map[string]any)
		if !ok {
			st.skip(nd.Name, ComponentSection(category), "category is not an object")
			continue
		}

		if category == "schemas" {
			if st.schemaOwners == nil {
				st.schemaOwners = make(map[string]string)
			}
			for _, name := range maputil.SortedKeys(defs) {
				st.insert(SectionSchemas, st.merged.Schemas, st.schemaOwners, name, defs[name], nd.Name)
			}
			continue
		}

		target := st.merged.Components[category]
		if target == nil {
			target = make(map[string]any)
			st.merged.Components[category] = target
		}
		if st.componentOwners == nil {
			st.componentOwners = make(map[string]map[string]string)
		}
		owners := st.componentOwners[category]
		if owners == nil {
			owners = make(map[string]string)
			st.componentOwners[category] = owners
		}
		for _, name := range maputil.SortedKeys(defs) {
			st.insert(ComponentSection(category), target, owners, name, defs[name], nd.Name)
		}
	}
}

// insert applies the first-wins/suffix-on-collision rule for one key.
func (st *mergeState) insert(section string, target map[string]any, owners map[string]string, key string, value any, sourceName string) {
	winner, collides := owners[key]
	if !collides {
		target[key] = value
		owners[key] = sourceName
		return
	}

	newKey := fmt.Sprintf("%s_%s", key, sourceName)
	w := CollisionWarning{
		Section: section,
		Key:     key,
		NewKey:  newKey,
		Winner:  winner,
		Loser:   sourceName,
	}
	st.merged.Collisions = append(st.merged.Collisions, w)
	mergerLogger.Warn("merger: collision resolved",
		"section", section, "key", key, "renamed_to", newKey,
		"kept_from", winner, "renamed_for", sourceName)

	if _, clash := target[newKey]; clash {
		// A literal key equal to the suffixed form already exists.
		// The later document overwrites it; the warning records the loss.
		mergerLogger.Warn("merger: suffixed key overwrites existing entry",
			"section", section, "key", newKey, "source", sourceName)
	}
	target[newKey] = value
	owners[newKey] = sourceName
}

func (st *mergeState) skip(source, section, reason string) {
	w := ShapeWarning{Source: source, Section: section, Reason: reason}
	st.merged.ShapeWarnings = append(st.merged.ShapeWarnings, w)
	mergerLogger.Warn("merger: section skipped",
		"source", source, "section", section, "reason", reason)
}
