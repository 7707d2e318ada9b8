// Package web serves the price list page, its JSON API, the catalog data
// document and the installable web app files.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/vsinha/pricelist/pkg/application/services"
	"github.com/vsinha/pricelist/pkg/infrastructure/config"
	"github.com/vsinha/pricelist/pkg/infrastructure/metrics"
)

// Options configures the server
type Options struct {
	Server   config.ServerConfig
	PWA      config.PWAConfig
	DataFile string
	Version  string
}

// Server is the HTTP front end of the price list
type Server struct {
	echo    *echo.Echo
	opts    Options
	loader  *services.CatalogLoader
	prices  *services.PriceListService
	metrics *metrics.Metrics
	logger  zerolog.Logger

	pages  *pageRenderer
	assets *assetStore
}

// NewServer wires routes and middleware. m may be nil, in which case
// /metrics is not registered.
func NewServer(
	opts Options,
	loader *services.CatalogLoader,
	prices *services.PriceListService,
	m *metrics.Metrics,
	logger zerolog.Logger,
) (*Server, error) {
	pages, err := newPageRenderer()
	if err != nil {
		return nil, err
	}
	if opts.Version == "" {
		opts.Version = uuid.NewString()
	}

	s := &Server{
		echo:    echo.New(),
		opts:    opts,
		loader:  loader,
		prices:  prices,
		metrics: m,
		logger:  logger.With().Str("component", "web").Logger(),
		pages:   pages,
		assets:  newAssetStore(opts.PWA),
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.registerMiddleware()
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	s.echo.Use(s.requestLogger())
	s.echo.Use(s.recordMetrics)
	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/install/qr.png"
		},
	}))
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleIndex)
	s.echo.GET("/index.html", s.handleIndex)

	api := s.echo.Group("/api")
	api.GET("/catalog", s.handleCatalog)
	api.GET("/pricelist", s.handlePriceList)

	s.echo.GET("/data/maintenance.json", s.handleDataFile)
	s.echo.GET("/health", s.handleHealth)
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
	}

	s.registerPWARoutes()
}

// ServeHTTP lets the server be mounted or exercised without a listener
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// Run serves on the configured address until ctx is done, then drains open
// connections within the shutdown timeout
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.opts.Server.Address(),
		Handler:      s.echo,
		ReadTimeout:  s.opts.Server.ReadTimeout.Std(),
		WriteTimeout: s.opts.Server.WriteTimeout.Std(),
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err, ok := <-errChan:
		if ok {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.opts.Server.ShutdownTimeout.Std()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	s.logger.Info().Dur("timeout", timeout).Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	<-errChan
	return nil
}
