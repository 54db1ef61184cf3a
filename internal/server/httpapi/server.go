// Package httpapi exposes the account service over JSON/HTTP: registration
// and session endpoints plus session-protected user management.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/avoronov/accountd/internal/logging"
	"github.com/avoronov/accountd/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

type HTTPServer struct {
	address string
	users   *services.UserService
	logger  logging.Logger
}

func NewHTTPServer(a string, l logging.Logger, us *services.UserService) *HTTPServer {
	return &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		users:   us,
	}
}

// routes wires the public auth endpoints and the session-protected user
// management endpoints.
func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", s.register)
	mux.HandleFunc("POST /auth/login", s.login)
	mux.Handle("POST /auth/logout", s.withSession(http.HandlerFunc(s.logout)))

	mux.Handle("GET /users", s.withSession(http.HandlerFunc(s.listUsers)))
	mux.Handle("GET /users/{id}", s.withSession(http.HandlerFunc(s.getUser)))
	mux.Handle("PATCH /users/{id}", s.withSession(http.HandlerFunc(s.updateUser)))
	mux.Handle("DELETE /users/{id}", s.withSession(http.HandlerFunc(s.deleteUser)))

	return mux
}

func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:    s.address,
		Handler: s.routes(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
