package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/samadammeek/core-geonetwork/internal/auth"
	"github.com/samadammeek/core-geonetwork/internal/catalog"
	"github.com/samadammeek/core-geonetwork/internal/config"
	"github.com/samadammeek/core-geonetwork/internal/domain"
	"github.com/samadammeek/core-geonetwork/internal/metrics"
)

const apiVersion = "0.1"

// FeedbackService is the user feedback collaborator behind the handlers.
type FeedbackService interface {
	Save(ctx context.Context, fb domain.UserFeedback) (domain.UserFeedback, error)
	Remove(ctx context.Context, uuid string) error
	Get(ctx context.Context, uuid string, publishedOnly bool) (domain.UserFeedback, error)
	ListForRecord(ctx context.Context, metadataUUID string, size int, publishedOnly bool) ([]domain.UserFeedback, error)
	List(ctx context.Context, size int, publishedOnly bool) ([]domain.UserFeedback, error)
	Publish(ctx context.Context, uuid string, approver *domain.Principal) error
}

// SettingManager reads and writes system settings.
type SettingManager interface {
	Value(ctx context.Context, name string) (string, error)
	Set(ctx context.Context, name, value string) error
}

// HealthChecker reports whether backing storage is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps bundles the collaborators of the HTTP server.
type Deps struct {
	Health   HealthChecker
	Feedback FeedbackService
	Settings SettingManager
	Catalog  catalog.Client
	Tokens   *auth.Tokens
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	health   HealthChecker
	feedback FeedbackService
	settings SettingManager
	catalog  catalog.Client
	tokens   *auth.Tokens
	logger   zerolog.Logger
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, deps Deps, logger zerolog.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(requestIDLogger)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)

	s := &Server{
		cfg:      cfg,
		health:   deps.Health,
		feedback: deps.Feedback,
		settings: deps.Settings,
		catalog:  deps.Catalog,
		tokens:   deps.Tokens,
		logger:   logger,
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())
	s.router.Route("/api", s.apiRoutes)
	s.router.Route("/api/"+apiVersion, s.apiRoutes)
}

func (s *Server) apiRoutes(r chi.Router) {
	r.Use(auth.Middleware(s.tokens, s.respondStatus))

	reviewer := auth.RequireProfile(domain.ProfileReviewer, s.respondStatus)
	administrator := auth.RequireProfile(domain.ProfileAdministrator, s.respondStatus)

	r.Route("/userfeedback", func(r chi.Router) {
		r.With(s.requireAdvancedRatings).Get("/", s.handleListFeedback)
		r.With(s.requireAdvancedRatings).Post("/", s.handleCreateFeedback)
		r.With(s.requireAdvancedRatings).Get("/{uuid}", s.handleGetFeedback)
		r.With(reviewer, s.requireAdvancedRatings).Delete("/{uuid}", s.handleDeleteFeedback)
		r.With(reviewer, s.requireAdvancedRatings).Get("/{uuid}/publish", s.handlePublishFeedback)
	})
	r.Route("/records/{metadataUuid}", func(r chi.Router) {
		r.With(s.requireAdvancedRatings).Get("/userfeedback", s.handleListRecordFeedback)
		r.With(s.requireAdvancedRatings).Get("/userfeedbackrating", s.handleGetRecordRating)
	})
	r.With(administrator).Put("/settings/*", s.handlePutSetting)
}

// requireAdvancedRatings rejects every request unless ratings run in advanced mode.
func (s *Server) requireAdvancedRatings(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mode, err := s.settings.Value(r.Context(), domain.SettingLocalRatingEnable)
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("read ratings setting failed")
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read settings")
			return
		}
		if mode != domain.RatingsAdvanced {
			metrics.FeatureDisabled.Inc()
			s.respondError(w, http.StatusForbidden, "FORBIDDEN", "User feedback is not enabled")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestIDLogger tags the request logger with the chi request id.
func requestIDLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := middleware.GetReqID(r.Context()); id != "" {
			logger := hlog.FromRequest(r).With().Str("request_id", id).Logger()
			r = r.WithContext(logger.WithContext(r.Context()))
		}
		next.ServeHTTP(w, r)
	})
}

func accessLog(next http.Handler) http.Handler {
	return hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(duration.Seconds())
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(next)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.IdleTimeoutSecs) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health == nil || s.health.HealthCheck(ctx) != nil {
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
