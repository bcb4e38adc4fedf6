package server

import (
	"context"
	"net/http"
	"time"

	"livescore/internal/analysis"
	"livescore/internal/archive"
	"livescore/internal/snapshot"
)

// Server encapsulates the HTTP server of the application, providing controlled startup and shutdown.
type Server struct {
	server *http.Server
}

// ListenAndServe starts the HTTP server and blocks until it is stopped.
// After Shutdown it returns http.ErrServerClosed.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server, letting active requests complete
// within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// NewServer creates a server listening on address.
//
// Parameters:
// - static: directory with static files, empty to disable.
// - allowedOrigins: CORS origins, "chrome-extension://*" style wildcards allowed.
// - analyzer: scores uploaded product tables.
// - repo: per-room snapshot history.
// - arch: long-term archive of scored products.
func NewServer(
	address string,
	static string,
	allowedOrigins []string,
	analyzer *analysis.Analyzer,
	repo *snapshot.Repository,
	arch archive.Archive,
) *Server {
	router := NewApiV1Router(static, analyzer, repo, arch)
	s := Server{&http.Server{
		Addr:           address,
		Handler:        loggingMiddleware(corsMiddleware(allowedOrigins, router.Mux())),
		ReadTimeout:    time.Second * 10,
		WriteTimeout:   time.Second * 10,
		MaxHeaderBytes: 1024 * 10,
	}}

	return &s
}
