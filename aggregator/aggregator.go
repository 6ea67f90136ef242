// Package aggregator orchestrates the aggregation pipeline: probe the
// configured sources, fetch the available ones, prepare each document,
// and merge the survivors into a single specification.
//
// An Aggregator is built once from a Config and may run any number of
// times. Runs are independent; per-source failures shrink the working
// set but never abort a run. The only fatal condition is a merger
// invariant violation.
package aggregator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/specgate/specgate/document"
	"github.com/specgate/specgate/fetcher"
	"github.com/specgate/specgate/merger"
	"github.com/specgate/specgate/preparer"
	"github.com/specgate/specgate/prober"
	"github.com/specgate/specgate/proxy"
	"github.com/specgate/specgate/registry"
)

// aggregatorLogger may be swapped for test or embedding scenarios.
var aggregatorLogger = slog.Default()

// DefaultCacheTTL is how long a Snapshot result stays fresh when the
// config does not set a TTL.
const DefaultCacheTTL = 30 * time.Second

// State names the pipeline phase a run is in. It is informational;
// transitions are not synchronization points.
type State int

const (
	StateIdle State = iota
	StateProbing
	StateFetching
	StatePreparing
	StateMerging
	StateReady
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:      "idle",
	StateProbing:   "probing",
	StateFetching:  "fetching",
	StatePreparing: "preparing",
	StateMerging:   "merging",
	StateReady:     "ready",
	StateFailed:    "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Config carries everything a run needs. The zero value aggregates
// nothing but is safe to use.
type Config struct {
	// Sources is the ordered upstream set. Order decides merge
	// precedence.
	Sources []registry.Source

	// Grouping namespaces tags per source and concatenates them in the
	// merged document.
	Grouping bool
	// TagMode selects how multi-tag operations are rewritten when
	// Grouping is on.
	TagMode preparer.TagMode

	// Proxy stamps proxy-path origins instead of upstream URLs when a
	// local reverse proxy is reachable.
	Proxy bool

	// Title, Description and Version stamp the merged document's info
	// section. Empty Title and Version use the merger defaults.
	Title       string
	Description string
	Version     string

	// ProbeTimeout and FetchTimeout bound the per-request HTTP calls.
	// Zero uses each package's default.
	ProbeTimeout time.Duration
	FetchTimeout time.Duration

	// CacheTTL is how long Snapshot serves a previous result before
	// re-running. Zero uses DefaultCacheTTL; negative disables caching.
	CacheTTL time.Duration

	// MergeFunc swaps in an alternate merge engine. It must honor the
	// merger.Merge contract (first-wins, deterministic, suffix on
	// collision). Nil uses merger.Merge.
	MergeFunc MergeFunc
}

// MergeFunc is the contract any merge engine must satisfy.
type MergeFunc func([]document.NamedDocument, merger.Options) (*merger.MergedDocument, error)

// Stats summarizes one run for logging and the serving surfaces.
type Stats struct {
	// Configured counts all configured sources, enabled or not.
	Configured int
	// Eligible counts sources that entered the run (enabled, spec URL set).
	Eligible int
	// Available counts sources that passed the availability probe.
	Available int
	// Fetched counts documents successfully retrieved and decoded.
	Fetched int
	// Collisions counts keys renamed during merging.
	Collisions int
	// Duration is the wall time of the run.
	Duration time.Duration
}

// Result is one completed run: the merged document and its stats.
type Result struct {
	Merged *merger.MergedDocument
	Stats  Stats
}

// Aggregator runs the aggregation pipeline over a fixed configuration.
type Aggregator struct {
	cfg      Config
	registry *registry.Registry
	prober   *prober.Prober
	fetcher  *fetcher.Fetcher
	detector *proxy.Detector

	mu       sync.Mutex
	state    State
	cached   *Result
	cachedAt time.Time

	// refreshMu serializes Snapshot refreshes so concurrent stale
	// callers trigger a single run.
	refreshMu sync.Mutex
}

// New builds an Aggregator from the given configuration.
func New(cfg Config) *Aggregator {
	return &Aggregator{
		cfg:      cfg,
		registry: registry.New(cfg.Sources),
		prober:   prober.New(cfg.ProbeTimeout),
		fetcher:  fetcher.New(cfg.FetchTimeout),
		detector: proxy.NewDetector(),
	}
}

// Registry returns the aggregator's source registry.
func (a *Aggregator) Registry() *registry.Registry {
	return a.registry
}

// State returns the phase most recently entered by any run.
func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Aggregator) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// Run executes one full aggregation pass. It is safe to call
// concurrently; each call probes, fetches, prepares and merges
// independently. The returned error is non-nil only for a merger
// invariant violation.
func (a *Aggregator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	stats := Stats{Configured: a.registry.Len()}

	eligible := a.registry.Valid()
	stats.Eligible = len(eligible)
	aggregatorLogger.Info("aggregator: run started",
		"configured", stats.Configured, "eligible", stats.Eligible)

	a.setState(StateProbing)
	available := a.prober.Probe(ctx, eligible)
	stats.Available = len(available)

	a.setState(StateFetching)
	docs := a.fetcher.FetchAll(ctx, available)
	stats.Fetched = len(docs)

	a.setState(StatePreparing)
	prepared := a.prepare(ctx, docs)

	a.setState(StateMerging)
	merge := a.cfg.MergeFunc
	if merge == nil {
		merge = merger.Merge
	}
	merged, err := merge(prepared, merger.Options{
		Grouping:    a.cfg.Grouping,
		Title:       a.cfg.Title,
		Description: a.cfg.Description,
		Version:     a.cfg.Version,
	})
	if err != nil {
		a.setState(StateFailed)
		aggregatorLogger.Error("aggregator: run failed", "error", err)
		return nil, err
	}
	stats.Collisions = merged.CollisionCount()
	stats.Duration = time.Since(start)

	a.setState(StateReady)
	aggregatorLogger.Info("aggregator: run complete",
		"available", stats.Available, "fetched", stats.Fetched,
		"collisions", stats.Collisions, "duration", stats.Duration)
	return &Result{Merged: merged, Stats: stats}, nil
}

// prepare stamps each document's origin and, when grouping is on,
// namespaces its tags. Documents are cloned by the transforms, so the
// fetched trees are never mutated.
func (a *Aggregator) prepare(ctx context.Context, docs []document.NamedDocument) []document.NamedDocument {
	proxied := a.proxyAvailable(ctx)

	prepared := make([]document.NamedDocument, 0, len(docs))
	for _, nd := range docs {
		doc := nd.Doc
		if proxied {
			route := proxy.Route{SafeName: nd.Source.SafeName()}
			doc = preparer.StampProxiedOrigin(doc, route.PathPrefix(), nd.Source.URL)
		} else if nd.Source.URL != "" {
			doc = preparer.StampOrigin(doc, nd.Source.URL)
		}
		if a.cfg.Grouping {
			doc = preparer.GroupTags(doc, nd.Name, a.cfg.TagMode)
		}
		prepared = append(prepared, document.NamedDocument{
			Name:   nd.Name,
			Source: nd.Source,
			Doc:    doc,
		})
	}
	return prepared
}

// proxyAvailable checks the local proxy once per run. When proxying is
// requested but the proxy is down, every source falls back to its
// upstream URL and the run warns a single time.
func (a *Aggregator) proxyAvailable(ctx context.Context) bool {
	if !a.cfg.Proxy {
		return false
	}
	a.detector.Reset()
	if a.detector.Available(ctx) {
		return true
	}
	aggregatorLogger.Warn("aggregator: proxy requested but unreachable, stamping upstream URLs")
	return false
}

// Snapshot returns the most recent run result, re-running when the
// cached result is older than the configured TTL. Concurrent callers
// share one refresh.
func (a *Aggregator) Snapshot(ctx context.Context) (*Result, error) {
	a.mu.Lock()
	if a.cached != nil && time.Since(a.cachedAt) < a.ttl() {
		res := a.cached
		a.mu.Unlock()
		return res, nil
	}
	a.mu.Unlock()

	// The refresh itself runs outside the state mutex; Run takes it
	// briefly for state transitions.
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	a.mu.Lock()
	if a.cached != nil && time.Since(a.cachedAt) < a.ttl() {
		res := a.cached
		a.mu.Unlock()
		return res, nil
	}
	a.mu.Unlock()

	res, err := a.Run(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.cached = res
	a.cachedAt = time.Now()
	a.mu.Unlock()
	return res, nil
}

// Invalidate drops any cached Snapshot result.
func (a *Aggregator) Invalidate() {
	a.mu.Lock()
	a.cached = nil
	a.mu.Unlock()
}

func (a *Aggregator) ttl() time.Duration {
	if a.cfg.CacheTTL == 0 {
		return DefaultCacheTTL
	}
	return a.cfg.CacheTTL
}
