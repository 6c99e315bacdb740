// Package httpapi exposes the sync service over HTTP/JSON. Every route
// takes a POST with the caller's derived identity in the body; there are
// no sessions or bearer tokens, each request re-presents the verification
// token.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/inkwell-app/inkwell/internal/logging"
	"github.com/inkwell-app/inkwell/internal/server/config"
	"github.com/inkwell-app/inkwell/internal/server/records"
	"github.com/inkwell-app/inkwell/internal/server/users"
)

type Server struct {
	userService    *users.Service
	recordsService *records.Service
	validate       *validator.Validate
	limiter        *multiLimiter
	logger         logging.Logger

	httpServer *http.Server
}

func NewServer(cfg *config.Config, userService *users.Service, recordsService *records.Service, logger logging.Logger) *Server {
	s := &Server{
		userService:    userService,
		recordsService: recordsService,
		validate:       validator.New(),
		limiter:        newMultiLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 10*time.Minute),
		logger:         logger.With("module", "httpapi"),
	}

	s.httpServer = &http.Server{
		Addr:              cfg.EndpointAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// Routes builds the router; exported so tests can drive the handlers
// through httptest without binding a socket.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.rateLimitMiddleware)
	api.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/sync/entries", s.handleSyncBatch(records.KindEntry)).Methods(http.MethodPost)
	api.HandleFunc("/sync/reviews", s.handleSyncBatch(records.KindReview)).Methods(http.MethodPost)
	api.HandleFunc("/sync/entry", s.handleSyncOne).Methods(http.MethodPost)

	return r
}

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
