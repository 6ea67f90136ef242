// Package fetcher retrieves remote OpenAPI documents over HTTP and
// decodes them into untyped document trees.
//
// The response format is classified from the Content-Type header:
// values containing "json" or the OpenAPI media type parse as JSON,
// values containing "yaml"/"yml" parse as YAML, and unknown types
// attempt JSON first with a YAML fallback. Fetching for independent
// sources is concurrent and failure-isolated: one source's timeout or
// parse failure never cancels or delays the others.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/specgate/specgate"
	"github.com/specgate/specgate/document"
	"github.com/specgate/specgate/registry"
)

// fetcherLogger is used for per-source failure warnings.
// Tests can replace this with a discard logger to suppress expected warnings.
var fetcherLogger = slog.Default()

// DefaultTimeout bounds a single specification fetch.
const DefaultTimeout = 5 * time.Second

// maxSpecSize caps the response body read for a single specification.
const maxSpecSize = 64 << 20 // 64 MiB

// FetchError describes a failed specification fetch. All failure modes
// (timeout, error status, unreadable or unparseable body) classify as a
// fetch failure; the batch never aborts on one.
type FetchError struct {
	URL    string
	Status int // HTTP status code, 0 if the request itself failed
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetcher: HTTP %d fetching %s", e.Status, e.URL)
	}
	return fmt.Sprintf("fetcher: failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher fetches and decodes remote specifications.
//
// A zero-configured Fetcher from New is safe for concurrent use.
type Fetcher struct {
	// HTTPClient overrides the default client (useful for tests).
	HTTPClient *http.Client
	// Timeout bounds each individual fetch. Defaults to DefaultTimeout.
	Timeout time.Duration
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// New creates a Fetcher with the given per-fetch timeout.
// A non-positive timeout selects DefaultTimeout.
func New(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Fetcher{Timeout: timeout}
}

func (f *Fetcher) client() *http.Client {
	if f.HTTPClient != nil {
		return f.HTTPClient
	}
	return http.DefaultClient
}

func (f *Fetcher) timeout() time.Duration {
	if f.Timeout > 0 {
		return f.Timeout
	}
	return DefaultTimeout
}

// Fetch retrieves and decodes a single specification document.
func (f *Fetcher) Fetch(ctx context.Context, specURL string) (document.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, specURL, nil)
	if err != nil {
		return nil, &FetchError{URL: specURL, Err: err}
	}
	userAgent := f.UserAgent
	if userAgent == "" {
		userAgent = specgate.UserAgent()
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, &FetchError{URL: specURL, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: specURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSpecSize))
	if err != nil {
		return nil, &FetchError{URL: specURL, Err: err}
	}

	doc, err := decodeBody(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, &FetchError{URL: specURL, Err: err}
	}
	return doc, nil
}

// decodeBody decodes a response body according to its content type.
func decodeBody(body []byte, contentType string) (document.Document, error) {
	switch classifyContentType(contentType) {
	case formatJSON:
		return document.ParseJSON(body)
	case formatYAML:
		return document.ParseYAML(body)
	default:
		// Unknown or OpenAPI media type: attempt JSON, fall back to YAML.
		doc, jsonErr := document.ParseJSON(body)
		if jsonErr == nil {
			return doc, nil
		}
		doc, yamlErr := document.ParseYAML(body)
		if yamlErr == nil {
			return doc, nil
		}
		return nil, fmt.Errorf("fetcher: body is neither JSON nor YAML: %w", errors.Join(jsonErr, yamlErr))
	}
}

type bodyFormat int

const (
	formatUnknown bodyFormat = iota
	formatJSON
	formatYAML
)

// classifyContentType maps a Content-Type header to a decode format.
// The OpenAPI media type (application/vnd.oai.openapi[+json]) is served
// in either format, so it classifies as unknown and gets the
// JSON-then-YAML treatment.
func classifyContentType(contentType string) bodyFormat {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "vnd.oai.openapi"):
		return formatUnknown
	case strings.Contains(ct, "json"):
		return formatJSON
	case strings.Contains(ct, "yaml"), strings.Contains(ct, "yml"):
		return formatYAML
	default:
		return formatUnknown
	}
}

// FetchAll fetches all sources concurrently and returns the documents
// that loaded successfully, preserving the input order. Failures are
// logged with the source name and URL and excluded from the result;
// they never cancel sibling fetches.
func (f *Fetcher) FetchAll(ctx context.Context, sources []registry.Source) []document.NamedDocument {
	results := make([]document.Document, len(sources))
	failures := make([]error, len(sources))

	var g errgroup.Group
	for i, src := range sources {
		g.Go(func() error {
			doc, err := f.Fetch(ctx, src.SpecURL)
			if err != nil {
				failures[i] = err
				return nil // collected per slot; the batch never aborts
			}
			results[i] = doc
			return nil
		})
	}
	_ = g.Wait()

	docs := make([]document.NamedDocument, 0, len(sources))
	for i, src := range sources {
		if failures[i] != nil {
			fetcherLogger.Warn("fetcher: source dropped",
				"source", src.Name, "url", src.SpecURL, "error", failures[i])
			continue
		}
		docs = append(docs, document.NamedDocument{Name: src.Name, Source: src, Doc: results[i]})
	}
	return docs
}
