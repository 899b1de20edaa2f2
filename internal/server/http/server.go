// Package http exposes the vault over an HTTP/JSON API. Mutating entry
// endpoints accept multipart forms so an attachment can travel with the
// metadata in one request.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"legacyvault/internal/logging"
	"legacyvault/internal/server/services"
)

// Server serves the public API and shuts down gracefully when its context
// is cancelled.
type Server struct {
	address   string
	logger    logging.Logger
	users     *services.UserService
	entries   *services.EntryService
	jwtSecret []byte
}

func NewServer(address string, logger logging.Logger, users *services.UserService, entries *services.EntryService, secretKey string) *Server {
	return &Server{
		address:   address,
		logger:    logger.With("component", "http"),
		users:     users,
		entries:   entries,
		jwtSecret: []byte(secretKey),
	}
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware)

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/register", s.handleRegister).Methods(http.MethodPost)
	r.HandleFunc("/api/login", s.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/refresh", s.handleRefresh).Methods(http.MethodPost)

	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(s.authMiddleware)
	authed.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	authed.HandleFunc("/entries", s.handleCreateEntry).Methods(http.MethodPost)
	authed.HandleFunc("/entries", s.handleListEntries).Methods(http.MethodGet)
	authed.HandleFunc("/entries/{id}", s.handleUpdateEntry).Methods(http.MethodPut)
	authed.HandleFunc("/entries/{id}", s.handleDeleteEntry).Methods(http.MethodDelete)

	return r
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "starting http server", "addr", s.address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
