// Package server provides HTTP server setup and routing.
// It configures the router with all API endpoints following the AIP-136
// custom actions pattern ({prefix}/{resource}:{action}).
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/audit"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/config"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/constants"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/database"
	apperrors "github.com/thalib/decimalcheck/cmd/decimalcheck/internal/errors"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/handlers"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/logging"
	"github.com/thalib/decimalcheck/cmd/decimalcheck/internal/matcher"
)

// route binds an action path to its method and handler
type route struct {
	method  string
	handler http.HandlerFunc
}

// Server represents the HTTP server
type Server struct {
	config  *config.AppConfig
	db      database.Driver
	logger  *logging.Logger
	errs    *apperrors.ErrorHandler
	routes  map[string]route
	handler http.Handler
	server  *http.Server
	version string
}

// New creates a new server instance. db may be nil when auditing is disabled.
func New(cfg *config.AppConfig, rules *matcher.RuleSet, db database.Driver, logger *logging.Logger, version string) *Server {
	srv := &Server{
		config:  cfg,
		db:      db,
		logger:  logger,
		version: version,
		errs: apperrors.NewErrorHandler(apperrors.ErrorHandlerConfig{
			LogStackTrace: cfg.Logging.Level == string(logging.LevelDebug),
			Logger:        logger,
		}),
	}

	srv.setupRoutes(rules)

	mux := http.NewServeMux()
	mux.HandleFunc("/", srv.dispatch)

	srv.handler = logging.NewRequestLogger(logger, cfg.Server.Prefix+"/health").
		Middleware(srv.errs.RecoveryMiddleware(mux))

	srv.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      srv.handler,
		ReadTimeout:  constants.HTTPReadTimeout,
		WriteTimeout: constants.HTTPWriteTimeout,
		IdleTimeout:  constants.HTTPIdleTimeout,
	}

	return srv
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(rules *matcher.RuleSet) {
	var (
		recorder handlers.CheckRecorder
		store    handlers.CheckStore
	)
	if s.db != nil {
		rec := audit.NewRecorder(s.db)
		recorder, store = rec, rec
	}

	decimalsHandler := handlers.NewDecimalsHandler(rules, recorder, s.config.Batch.MaxSize, s.errs, s.logger)
	rulesHandler := handlers.NewRulesHandler(rules)
	checksHandler := handlers.NewChecksHandler(store, s.errs)

	s.routes = map[string]route{
		"health":            {http.MethodGet, s.healthHandler},
		"rules:list":        {http.MethodGet, rulesHandler.List},
		"decimals:validate": {http.MethodPost, decimalsHandler.Validate},
		"checks:list":       {http.MethodGet, checksHandler.List},
		"checks:get":        {http.MethodGet, checksHandler.Get},
	}
}

// dispatch routes {prefix}/{resource}:{action} requests
func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	prefix := s.config.Server.Prefix + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		s.errs.WriteError(w, r, apperrors.NewNotFoundError("Endpoint"))
		return
	}

	rt, ok := s.routes[strings.TrimPrefix(r.URL.Path, prefix)]
	if !ok {
		s.errs.WriteError(w, r, apperrors.NewNotFoundError("Endpoint"))
		return
	}

	if r.Method != rt.method {
		w.Header().Set("Allow", rt.method)
		s.errs.WriteError(w, r, apperrors.NewMethodNotAllowedError(r.Method))
		return
	}

	rt.handler(w, r)
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Infof("Starting server on %s", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown
func (s *Server) Run() error {
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- s.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		s.logger.Infof("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer cancel()

		if err := s.Shutdown(ctx); err != nil {
			if err := s.server.Close(); err != nil {
				return fmt.Errorf("could not stop server gracefully: %w", err)
			}
		}
	}

	return nil
}

// HealthResponse is the response of GET /health
type HealthResponse struct {
	Status  string `json:"status"`
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Health check handler. Always answers 200; clients read the status field.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "live"

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), constants.HealthCheckTimeout)
		defer cancel()
		if err := s.db.Ping(ctx); err != nil {
			s.logger.WithContext(r.Context()).ErrorWithErr("Audit database ping failed", err)
			status = "down"
		}
	}

	apperrors.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  status,
		Name:    config.AppName,
		Version: s.version,
	})
}
