// Package echoapi serves a stand-in of the remote gradebook API for development and tests.
package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/classes"
	"github.com/bobur6/professor-ai-helper/core/documents"
	"github.com/bobur6/professor-ai-helper/core/user"
)

type (
	Deps struct {
		Conf      *core.Config
		Logger    core.Logger
		Validator *core.Validator
		UserSvc   *user.Service
		ClassSvc  *classes.Service
		DocSvc    *documents.Service
		Registry  *prometheus.Registry
	}

	Server struct {
		conf     *core.Config
		app      *echo.Echo
		deps     *Deps
		jwt      middleware.JWTConfig
		requests *prometheus.CounterVec
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps *Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = core.NopLogger{}
	}
	if deps.Validator == nil {
		deps.Validator = core.NewValidator()
	}
	if deps.Registry == nil {
		deps.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		conf:     deps.Conf,
		app:      echo.New(),
		deps:     deps,
		jwt:      newJWTConfig(deps.Conf.Server.SecretKey),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		}, []string{"method", "route", "status"}),
	}
	deps.Registry.MustRegister(s.requests)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.countRequests)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger)
	s.app.Debug = s.conf.Debug && !s.conf.TestMode

	s.app.GET("/", s.home)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{})))

	v1 := s.app.Group("/api/v1")
	jwt := middleware.JWTWithConfig(s.jwt)

	registerAuthAPI(v1, s)
	registerClassAPI(v1, jwt, s.deps.ClassSvc, s.deps.Validator)
	registerAIAPI(v1, jwt, s.deps.Validator)
	if s.deps.DocSvc != nil {
		registerDocumentAPI(v1, jwt, s.deps.DocSvc)
	}
}

func (s *Server) countRequests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if err := next(ctx); err != nil {
			ctx.Error(err) // writes the response so its status is known
		}
		status := strconv.Itoa(ctx.Response().Status)
		s.requests.WithLabelValues(ctx.Request().Method, ctx.Path(), status).Inc()
		return nil
	}
}

// Start listens until the server is shut down; failures are reported on Errors.
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}

// tokenTTL falls back to a day when the configuration leaves it unset.
func (s *Server) tokenTTL() time.Duration {
	if d := s.conf.Server.JWTExpirationDelta; d > 0 {
		return d
	}
	return 24 * time.Hour
}
