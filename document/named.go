package document

import "github.com/specgate/specgate/registry"

// NamedDocument is a retrieved document together with the source it
// came from. It is the unit passed from fetching, through preparation,
// into merging.
type NamedDocument struct {
	// Name is the owning source's name; it seeds collision suffixes.
	Name string
	// Source is the full source record (upstream URL, spec URL).
	Source registry.Source
	// Doc is the decoded specification tree, exclusively owned by the
	// pipeline stage currently processing it.
	Doc Document
}
