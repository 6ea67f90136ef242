// Package proxy computes reverse-proxy routes for aggregated sources
// and detects whether a local proxy is actually serving them.
//
// The aggregator itself never proxies traffic. It only decides which
// origin to stamp into merged operations: the upstream URL directly,
// or a proxy path when a local reverse proxy fronts the upstreams.
package proxy

import (
	"context"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/specgate/specgate/registry"
)

// EnvAvailable overrides proxy detection when set. Any value accepted
// by strconv.ParseBool works; an unparseable value is ignored.
const EnvAvailable = "SPECGATE_PROXY_AVAILABLE"

const (
	// DefaultAddr is where a local reverse proxy is expected to listen.
	DefaultAddr = "127.0.0.1:80"
	// DefaultDialTimeout bounds the TCP reachability check.
	DefaultDialTimeout = 2 * time.Second

	pathPrefix = "/proxy/"
)

// Route maps one source's proxy path segment to its upstream.
type Route struct {
	// SourceName is the configured source name.
	SourceName string
	// SafeName is the URL-safe path segment derived from SourceName.
	SafeName string
	// UpstreamURL is the base URL the proxy forwards this route to.
	UpstreamURL string
}

// PathPrefix returns the proxy path that fronts this route's upstream.
func (r Route) PathPrefix() string {
	return pathPrefix + r.SafeName
}

// Routes computes proxy routes for the given sources, in order.
// Sources without an upstream URL get no route; there is nothing to
// forward to.
func Routes(sources []registry.Source) []Route {
	routes := make([]Route, 0, len(sources))
	for _, s := range sources {
		if s.URL == "" {
			continue
		}
		routes = append(routes, Route{
			SourceName:  s.Name,
			SafeName:    s.SafeName(),
			UpstreamURL: s.URL,
		})
	}
	return routes
}

// Detector checks once per run whether a local proxy is reachable.
//
// The environment variable EnvAvailable short-circuits the check, which
// keeps container deployments from depending on TCP probing. Otherwise
// availability means a TCP connection to Addr succeeds within
// DialTimeout. The result is cached until Reset.
type Detector struct {
	// Addr is the proxy's listen address. Empty means DefaultAddr.
	Addr string
	// DialTimeout bounds the TCP check. Zero means DefaultDialTimeout.
	DialTimeout time.Duration

	// lookupEnv is swappable in tests.
	lookupEnv func(string) (string, bool)

	mu        sync.Mutex
	checked   bool
	available bool
}

// NewDetector returns a Detector with default address and timeout.
func NewDetector() *Detector {
	return &Detector{}
}

// Available reports whether the local proxy is reachable. The first
// call performs the check; later calls return the cached result.
func (d *Detector) Available(ctx context.Context) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.checked {
		return d.available
	}
	d.available = d.detect(ctx)
	d.checked = true
	return d.available
}

// Reset clears the cached result so the next Available call re-checks.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checked = false
	d.available = false
}

func (d *Detector) detect(ctx context.Context) bool {
	lookup := d.lookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if raw, ok := lookup(EnvAvailable); ok {
		if forced, err := strconv.ParseBool(raw); err == nil {
			return forced
		}
	}

	addr := d.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	timeout := d.DialTimeout
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
