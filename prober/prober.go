// Package prober performs lightweight reachability checks against
// configured sources before they are considered for aggregation.
//
// A probe is distinct from a full specification fetch: it issues a HEAD
// request with a short timeout and only inspects the status code. All
// probes for a batch run concurrently; a slow source times out on its
// own without delaying its siblings.
package prober

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/specgate/specgate"
	"github.com/specgate/specgate/internal/httputil"
	"github.com/specgate/specgate/registry"
)

// proberLogger is used for per-source unavailability warnings.
// Tests can replace this with a discard logger to suppress expected warnings.
var proberLogger = slog.Default()

// DefaultTimeout bounds a single availability check.
const DefaultTimeout = 3 * time.Second

// Prober filters sources to those that answer a reachability check.
//
// A zero-configured Prober from New is safe for concurrent use.
type Prober struct {
	// HTTPClient overrides the default client (useful for tests).
	HTTPClient *http.Client
	// Timeout bounds each individual probe. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// New creates a Prober with the given per-probe timeout.
// A non-positive timeout selects DefaultTimeout.
func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{Timeout: timeout}
}

func (p *Prober) client() *http.Client {
	if p.HTTPClient != nil {
		return p.HTTPClient
	}
	return http.DefaultClient
}

func (p *Prober) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return DefaultTimeout
}

// Probe checks every source concurrently and returns those that are
// available, preserving the input order. Unavailable sources are
// dropped with a logged warning; no partial fetch happens for them.
func (p *Prober) Probe(ctx context.Context, sources []registry.Source) []registry.Source {
	available := make([]bool, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			available[i] = p.check(ctx, src.SpecURL)
			return nil
		})
	}
	_ = g.Wait()

	out := make([]registry.Source, 0, len(sources))
	for i, src := range sources {
		if !available[i] {
			proberLogger.Warn("prober: source unavailable",
				"source", src.Name, "url", src.SpecURL)
			continue
		}
		out = append(out, src)
	}
	return out
}

// check issues a HEAD request against the source's spec URL. Servers
// that reject HEAD outright get one GET retry; any other error, timeout,
// or error-class status marks the source unavailable.
func (p *Prober) check(ctx context.Context, url string) bool {
	status, ok := p.request(ctx, http.MethodHead, url)
	if ok && httputil.IsMethodNotSupported(status) {
		status, ok = p.request(ctx, http.MethodGet, url)
	}
	return ok && httputil.IsSuccessClass(status)
}

func (p *Prober) request(ctx context.Context, method, url string) (int, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, false
	}
	req.Header.Set("User-Agent", specgate.UserAgent())

	resp, err := p.client().Do(req)
	if err != nil {
		return 0, false
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	return resp.StatusCode, true
}
