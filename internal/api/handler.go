// Package api serves landlord searches over HTTP.
package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"landlords/internal/geo"
	"landlords/internal/owners"
)

// SearchResult is the body of a successful map search.
type SearchResult struct {
	owners.Match
	Map geo.Map `json:"map"`
}

// Server wires the resolver and map projection into HTTP handlers.
type Server struct {
	resolver *owners.Resolver
	proj     geo.Projection
	logger   *slog.Logger
}

// NewServer returns a Server. A nil logger falls back to slog.Default().
func NewServer(resolver *owners.Resolver, proj geo.Projection, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{resolver: resolver, proj: proj, logger: logger}
}

// Routes returns the handler tree, wrapped in request logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /addresses", s.handleAddresses)
	mux.HandleFunc("POST /map", s.handleMap)
	mux.HandleFunc("GET /health", s.handleHealth)
	return RequestLogger(s.logger, mux)
}

func (s *Server) handleAddresses(w http.ResponseWriter, r *http.Request) {
	addrs := s.resolver.Dataset().Addresses()
	SendJSON(w, http.StatusOK, fmt.Sprintf("%d addresses", len(addrs)), addrs)
}

func (s *Server) handleMap(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(r.FormValue("address"))
	if raw == "" {
		SendError(w, http.StatusBadRequest, errors.New("address is required"))
		return
	}

	m, ds, err := s.resolver.Resolve(raw)
	if errors.Is(err, owners.ErrNotFound) {
		SendError(w, http.StatusNotFound, fmt.Errorf("no address found matching %q", raw))
		return
	}
	if err != nil {
		SendError(w, http.StatusInternalServerError, err)
		return
	}

	result := SearchResult{Match: m, Map: geo.BuildMap(ds, m.Addresses, s.proj)}
	msg := fmt.Sprintf("Addresses with same landlord as %q", raw)
	if m.Empty() {
		msg = fmt.Sprintf("No other addresses found associated with %q", raw)
	}
	SendJSON(w, http.StatusOK, msg, result)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusOK, "", map[string]any{
		"zuluTime": time.Now().UTC().Format(time.RFC3339),
		"records":  s.resolver.Dataset().Len(),
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs method, path, status and duration of every request.
func RequestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "duration", time.Since(start))
	})
}
