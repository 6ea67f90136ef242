package merger

import "fmt"

// Merge sections, used in collision warnings.
const (
	SectionPaths   = "paths"
	SectionSchemas = "components.schemas"
)

// ComponentSection returns the section label for a non-schema component
// category (responses, parameters, securitySchemes, ...).
func ComponentSection(category string) string {
	return "components." + category
}

// CollisionWarning records one resolved naming collision. The earliest
// document to claim a key keeps it; the later collider is inserted
// under a key suffixed with its own source name.
type CollisionWarning struct {
	// Section is the merged section the collision occurred in.
	Section string
	// Key is the colliding path or component name.
	Key string
	// NewKey is the disambiguated key the losing document was inserted under.
	NewKey string
	// Winner is the source that kept the bare key.
	Winner string
	// Loser is the source whose entry was renamed.
	Loser string
}

func (w CollisionWarning) String() string {
	return fmt.Sprintf("merger: collision in %s: '%s' kept from %s; renamed to '%s' for %s",
		w.Section, w.Key, w.Winner, w.NewKey, w.Loser)
}

// ShapeWarning records a document section that was skipped because it
// did not have the expected structural shape for merging.
type ShapeWarning struct {
	Source  string
	Section string
	Reason  string
}

func (w ShapeWarning) String() string {
	return fmt.Sprintf("merger: skipped %s of %s: %s", w.Section, w.Source, w.Reason)
}
