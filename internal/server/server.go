package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"llmjobs/internal/config"
	"llmjobs/internal/dispatcher"
)

const (
	// Version is reported by the root endpoint.
	Version = "1.0.0"

	shutdownGracePeriod = 10 * time.Second
	readTimeout         = 60 * time.Second
	writeTimeout        = 120 * time.Second
	idleTimeout         = 120 * time.Second
)

type Server struct {
	cfg        config.ServerConfig
	dispatcher *dispatcher.Dispatcher
	app        *echo.Echo
	log        zerolog.Logger
	address    string
}

// New constructs an HTTP server wired with routing and middleware.
func New(cfg config.ServerConfig, d *dispatcher.Dispatcher, log zerolog.Logger) (*Server, error) {
	if d == nil {
		return nil, errors.New("dispatcher must not be nil")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("server port must be a valid TCP port, got %d", cfg.Port)
	}
	if cfg.MaxUploadBytes <= 0 {
		return nil, fmt.Errorf("max upload bytes must be positive, got %d", cfg.MaxUploadBytes)
	}

	log = log.With().Str("component", "server").Logger()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = detailErrorHandler(log)

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency: true,
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Int64("latency_ms", v.Latency.Milliseconds()).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'; form-action 'none'",
	}))

	srv := &Server{
		cfg:        cfg,
		dispatcher: d,
		app:        e,
		log:        log,
		address:    fmt.Sprintf(":%d", cfg.Port),
	}

	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the routed application, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.app
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	printStartupBanner(s.cfg)
	s.log.Info().Str("addr", s.address).Msg("starting server")

	httpServer := &http.Server{
		Addr:         s.address,
		Handler:      s.app,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.app.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
		defer cancel()
		if err := s.app.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.log.Info().Msg("server shutdown complete")
		return nil
	})

	return g.Wait()
}

func (s *Server) registerRoutes() {
	s.app.GET("/", s.handleRoot)
	s.app.GET("/health", s.handleHealth)
	s.app.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.app.POST("/messages", s.handleCreateMessage)
	s.app.POST("/job", s.handleCreateMessage)
	s.app.GET("/jobs", s.handleListJobs)
	s.app.GET("/jobs/:id", s.handleGetJob)
	s.app.GET("/models", s.handleListModels)
}

func printStartupBanner(cfg config.ServerConfig) {
	host, port := "127.0.0.1", cfg.Port
	fmt.Println()
	fmt.Println("llmjobs ready")
	fmt.Printf("Listening on http://%s:%d (uploads up to %s)\n", host, port, humanize.IBytes(uint64(cfg.MaxUploadBytes)))
	fmt.Println("Endpoints:")
	for _, ep := range endpointList {
		fmt.Printf("  %s\n", ep.route)
	}
	fmt.Printf("Example:\n  curl http://%s:%d/messages -F content='Hello' -F model=gpt-3.5-turbo\n\n", host, port)
}
