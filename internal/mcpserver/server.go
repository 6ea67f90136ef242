// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes the aggregation pipeline as MCP tools over stdio.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/specgate/specgate"
	"github.com/specgate/specgate/aggregator"
)

const serverInstructions = `specgate MCP server: aggregates OpenAPI documents from configured upstream services into one merged specification.

Tools:
- aggregate runs the full pipeline (probe, fetch, prepare, merge) and returns summary statistics plus collision warnings.
- list_sources returns the configured sources, optionally with a live availability probe.
- get_merged_spec returns the merged OpenAPI document as inline JSON; results are cached per the configured refresh TTL.

Sources and merge settings come from the configuration file passed to the serving process; tools never modify configuration.`

// Run starts the MCP server over stdio and blocks until the client
// disconnects or the context is cancelled.
func Run(ctx context.Context, agg *aggregator.Aggregator) error {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "specgate", Version: specgate.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	registerAllTools(server, agg)
	return server.Run(ctx, &mcp.StdioTransport{})
}

func registerAllTools(server *mcp.Server, agg *aggregator.Aggregator) {
	h := &handlers{agg: agg}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "aggregate",
		Description: "Run one aggregation pass over the configured sources and return summary statistics: sources configured, eligible, available and fetched, plus merge collision warnings. Does not return the merged document; use get_merged_spec for that.",
	}, h.handleAggregate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_sources",
		Description: "List the configured upstream sources with their URLs and enabled state. Set probe=true to also check each source's live availability.",
	}, h.handleListSources)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_merged_spec",
		Description: "Return the merged OpenAPI document as inline JSON. Serves a cached result when one is fresh; set refresh=true to force a new aggregation run.",
	}, h.handleGetMergedSpec)
}

type handlers struct {
	agg *aggregator.Aggregator
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
