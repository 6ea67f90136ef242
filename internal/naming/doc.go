// Package naming provides shared string transformation utilities for
// source names.
//
// This internal package contains the transforms applied to configured
// source names by multiple specgate packages:
//
//   - SafeName: URL-safe identifiers used for proxy path segments
//     (registry and proxy packages)
//   - DisplayName: human-readable labels used by the documentation UI
//     (internal/api package)
package naming
