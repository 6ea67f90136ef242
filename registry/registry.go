// Package registry holds the static set of configured upstream sources.
//
// A Registry is built once from configuration and is immutable for the
// lifetime of a run. Filtering never reorders sources: the configured
// order decides which source wins a naming collision during merging.
package registry

import (
	"github.com/google/uuid"

	"github.com/specgate/specgate/internal/naming"
)

// fallbackNameLength is the number of UUID characters used when a
// source is configured without a name.
const fallbackNameLength = 10

// Source is one upstream service contributing a specification to the
// aggregate.
type Source struct {
	// Name uniquely identifies the source within a run. It seeds the
	// collision suffix and the proxy path segment, so renaming a source
	// changes the merged document.
	Name string
	// URL is the upstream base URL that operations are served from.
	URL string
	// SpecURL is where the source's OpenAPI document is fetched from.
	SpecURL string
	// Enabled excludes the source from aggregation when false.
	Enabled bool
}

// SafeName returns the URL-safe form of the source name, used as the
// proxy path segment for this source.
func (s Source) SafeName() string {
	return naming.SafeName(s.Name)
}

// Registry is the ordered, immutable set of configured sources.
type Registry struct {
	sources []Source
}

// New builds a Registry from configured sources, preserving order.
// Sources configured without a name are assigned a generated fallback
// name so that log lines and collision suffixes stay attributable.
func New(sources []Source) *Registry {
	owned := make([]Source, len(sources))
	copy(owned, sources)
	for i := range owned {
		if owned[i].Name == "" {
			owned[i].Name = uuid.NewString()[:fallbackNameLength]
		}
	}
	return &Registry{sources: owned}
}

// Sources returns a copy of all configured sources in order.
func (r *Registry) Sources() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Valid returns the sources eligible for aggregation: enabled and with
// a non-empty spec URL. Relative order is preserved.
func (r *Registry) Valid() []Source {
	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		if s.Enabled && s.SpecURL != "" {
			out = append(out, s)
		}
	}
	return out
}

// Len returns the number of configured sources.
func (r *Registry) Len() int {
	return len(r.sources)
}

// Lookup returns the source with the given name, if configured.
func (r *Registry) Lookup(name string) (Source, bool) {
	for _, s := range r.sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}
