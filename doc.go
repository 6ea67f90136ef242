// Package specgate aggregates OpenAPI specifications from multiple
// independently-operated HTTP services into one unified specification
// document.
//
// # Overview
//
// The aggregation engine is built from small, composable packages:
//
//   - registry: the ordered set of configured upstream sources
//   - prober: concurrent reachability checks that filter the source set
//   - fetcher: concurrent retrieval and JSON/YAML parsing of remote specs
//   - preparer: per-document transforms (origin stamping, tag grouping)
//   - merger: conflict-free structural merging of paths, schemas,
//     components, and tags across documents
//   - aggregator: the orchestrator that sequences the pipeline and
//     caches results
//   - proxy: the route table exposed to an external reverse-proxy generator
//
// Documents are treated as structured trees (see the document package),
// not as validated OpenAPI objects. Name collisions between sources are
// resolved deterministically: the first source to claim a path or
// component name keeps it, and later colliders are suffixed with their
// source name.
//
// # Quick Start
//
// Aggregate a set of sources and obtain the merged document:
//
//	cfg := aggregator.Config{
//		Sources: []registry.Source{
//			{Name: "users", URL: "http://users:8000", SpecURL: "http://users:8000/openapi.json", Enabled: true},
//			{Name: "billing", URL: "http://billing:8000", SpecURL: "http://billing:8000/openapi.json", Enabled: true},
//		},
//		Grouping: true,
//	}
//	agg := aggregator.New(cfg)
//	res, err := agg.Run(context.Background())
//	if err != nil {
//		log.Fatal(err)
//	}
//	data, _ := json.Marshal(res.Merged.Document)
//
// # Command-Line Interface
//
// In addition to the library packages, specgate provides a command-line
// interface:
//
//	# Serve the merged document and documentation UI
//	specgate serve --config config.yml
//
//	# One-shot merge to stdout or a file
//	specgate merge --config config.yml --output merged.json
//
//	# Expose the aggregator as an MCP server over stdio
//	specgate mcp --config config.yml
//
// Install the CLI:
//
//	go install github.com/specgate/specgate/cmd/specgate@latest
package specgate
