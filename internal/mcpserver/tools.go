package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/specgate/specgate/aggregator"
	"github.com/specgate/specgate/document"
	"github.com/specgate/specgate/prober"
)

type aggregateInput struct{}

type collisionInfo struct {
	Section   string `json:"section"`
	Key       string `json:"key"`
	RenamedTo string `json:"renamed_to"`
	KeptFrom  string `json:"kept_from"`
	Source    string `json:"source"`
}

type aggregateOutput struct {
	Configured  int             `json:"configured"`
	Eligible    int             `json:"eligible"`
	Available   int             `json:"available"`
	Fetched     int             `json:"fetched"`
	PathCount   int             `json:"path_count"`
	SchemaCount int             `json:"schema_count"`
	Collisions  []collisionInfo `json:"collisions,omitempty"`
	Duration    string          `json:"duration"`
	Summary     string          `json:"summary"`
}

func (h *handlers) handleAggregate(ctx context.Context, _ *mcp.CallToolRequest, _ aggregateInput) (*mcp.CallToolResult, aggregateOutput, error) {
	res, err := h.agg.Run(ctx)
	if err != nil {
		return errResult(err), aggregateOutput{}, nil
	}

	output := aggregateOutput{
		Configured:  res.Stats.Configured,
		Eligible:    res.Stats.Eligible,
		Available:   res.Stats.Available,
		Fetched:     res.Stats.Fetched,
		PathCount:   len(res.Merged.Paths),
		SchemaCount: len(res.Merged.Schemas),
		Duration:    res.Stats.Duration.Round(time.Millisecond).String(),
	}
	for _, w := range res.Merged.Collisions {
		output.Collisions = append(output.Collisions, collisionInfo{
			Section:   w.Section,
			Key:       w.Key,
			RenamedTo: w.NewKey,
			KeptFrom:  w.Winner,
			Source:    w.Loser,
		})
	}
	output.Summary = fmt.Sprintf("merged %d of %d sources: %d paths, %d schemas, %d collisions in %s",
		output.Fetched, output.Configured, output.PathCount, output.SchemaCount,
		len(output.Collisions), output.Duration)
	return nil, output, nil
}

type listSourcesInput struct {
	Probe bool `json:"probe,omitempty" jsonschema:"Also check each enabled source's live availability"`
}

type sourceEntry struct {
	Name      string `json:"name"`
	URL       string `json:"url,omitempty"`
	SpecURL   string `json:"spec_url,omitempty"`
	Enabled   bool   `json:"enabled"`
	Available *bool  `json:"available,omitempty"`
}

type listSourcesOutput struct {
	Sources []sourceEntry `json:"sources"`
	Summary string        `json:"summary"`
}

func (h *handlers) handleListSources(ctx context.Context, _ *mcp.CallToolRequest, input listSourcesInput) (*mcp.CallToolResult, listSourcesOutput, error) {
	reg := h.agg.Registry()

	var availability map[string]bool
	if input.Probe {
		availability = make(map[string]bool)
		for _, src := range prober.New(0).Probe(ctx, reg.Valid()) {
			availability[src.Name] = true
		}
	}

	output := listSourcesOutput{}
	enabled := 0
	for _, src := range reg.Sources() {
		entry := sourceEntry{
			Name:    src.Name,
			URL:     src.URL,
			SpecURL: src.SpecURL,
			Enabled: src.Enabled,
		}
		if src.Enabled {
			enabled++
		}
		if input.Probe && src.Enabled && src.SpecURL != "" {
			up := availability[src.Name]
			entry.Available = &up
		}
		output.Sources = append(output.Sources, entry)
	}
	output.Summary = fmt.Sprintf("%d sources configured, %d enabled", reg.Len(), enabled)
	return nil, output, nil
}

type getMergedSpecInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"Force a new aggregation run instead of serving a cached result"`
}

type getMergedSpecOutput struct {
	Document   string `json:"document"`
	PathCount  int    `json:"path_count"`
	Collisions int    `json:"collisions"`
	Summary    string `json:"summary"`
}

func (h *handlers) handleGetMergedSpec(ctx context.Context, _ *mcp.CallToolRequest, input getMergedSpecInput) (*mcp.CallToolResult, getMergedSpecOutput, error) {
	var (
		res *aggregator.Result
		err error
	)
	if input.Refresh {
		h.agg.Invalidate()
	}
	res, err = h.agg.Snapshot(ctx)
	if err != nil {
		return errResult(err), getMergedSpecOutput{}, nil
	}

	body, err := document.MarshalJSON(res.Merged.Document)
	if err != nil {
		return errResult(err), getMergedSpecOutput{}, nil
	}

	output := getMergedSpecOutput{
		Document:   string(body),
		PathCount:  len(res.Merged.Paths),
		Collisions: res.Merged.CollisionCount(),
	}
	output.Summary = fmt.Sprintf("merged document with %d paths and %d resolved collisions",
		output.PathCount, output.Collisions)
	return nil, output, nil
}
