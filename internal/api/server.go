// Package api serves the merged specification over HTTP: the document
// itself, a documentation page, health, and metrics.
package api

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/specgate/specgate/aggregator"
	"github.com/specgate/specgate/document"
	"github.com/specgate/specgate/internal/naming"
)

var apiLogger = slog.Default()

// Server exposes one aggregator over HTTP.
type Server struct {
	agg     *aggregator.Aggregator
	metrics *Metrics

	mu           sync.Mutex
	lastObserved *aggregator.Result
}

// NewServer builds the HTTP router for the given aggregator.
func NewServer(agg *aggregator.Aggregator) (*Server, *chi.Mux) {
	s := &Server{
		agg:     agg,
		metrics: NewMetrics(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware)

	r.Get("/", s.handleDocs)
	r.Get("/openapi.json", s.handleOpenAPI)
	r.Get("/sources", s.handleSources)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	return s, r
}

// loggingMiddleware logs each request with its status and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		apiLogger.Info("api: request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// snapshot serves the TTL-cached aggregation result and records run
// metrics exactly once per fresh result.
func (s *Server) snapshot(r *http.Request) (*aggregator.Result, error) {
	res, err := s.agg.Snapshot(r.Context())
	if err != nil {
		s.metrics.ObserveFailure()
		return nil, err
	}

	s.mu.Lock()
	fresh := res != s.lastObserved
	s.lastObserved = res
	s.mu.Unlock()
	if fresh {
		s.metrics.ObserveRun(res.Stats)
	}
	return res, nil
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	res, err := s.snapshot(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "aggregation failed")
		return
	}

	body, err := document.MarshalJSON(res.Merged.Document)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "serialization failed")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

// sourceInfo is the JSON shape of one configured source.
type sourceInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	URL         string `json:"url,omitempty"`
	SpecURL     string `json:"spec_url,omitempty"`
	Enabled     bool   `json:"enabled"`
}

func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	sources := s.agg.Registry().Sources()
	out := make([]sourceInfo, 0, len(sources))
	for _, src := range sources {
		out = append(out, sourceInfo{
			Name:        src.Name,
			DisplayName: naming.DisplayName(src.Name),
			URL:         src.URL,
			SpecURL:     src.SpecURL,
			Enabled:     src.Enabled,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"sources": out})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"state":  s.agg.State().String(),
	})
}

var docsTemplate = template.Must(template.New("docs").Parse(docsPage))

// docsData feeds the documentation page template.
type docsData struct {
	Title   string
	Sources []sourceInfo
}

func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	res, err := s.snapshot(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "aggregation failed")
		return
	}

	title, _ := document.GetMap(res.Merged.Document, "info")["title"].(string)

	sources := s.agg.Registry().Sources()
	data := docsData{Title: title}
	for _, src := range sources {
		if !src.Enabled {
			continue
		}
		data.Sources = append(data.Sources, sourceInfo{
			Name:        src.Name,
			DisplayName: naming.DisplayName(src.Name),
			URL:         src.URL,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := docsTemplate.Execute(w, data); err != nil {
		apiLogger.Error("api: docs page render failed", "error", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		apiLogger.Error("api: response encoding failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
