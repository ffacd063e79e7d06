// Package server wires the HTTP front end of the AWIC downloader.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mohammed-shakir/awic-downloader/internal/cache/respcache"
	"github.com/mohammed-shakir/awic-downloader/internal/core/config"
	"github.com/mohammed-shakir/awic-downloader/internal/core/executor"
	"github.com/mohammed-shakir/awic-downloader/internal/core/health"
	"github.com/mohammed-shakir/awic-downloader/internal/core/httpclient"
	middleware "github.com/mohammed-shakir/awic-downloader/internal/core/middleware"
	"github.com/mohammed-shakir/awic-downloader/internal/core/router"
	core "github.com/mohammed-shakir/awic-downloader/internal/core/server"
	"github.com/mohammed-shakir/awic-downloader/internal/downloader"
	"github.com/mohammed-shakir/awic-downloader/internal/events"
)

// Deps are the collaborators behind the routes.
type Deps struct {
	Config    config.Config
	Logger    *slog.Logger
	Exec      executor.Interface
	Runner    router.Runner
	Cache     health.CacheReporter
	Metrics   http.Handler
	Publisher events.Publisher
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover(d.Logger))
	r.Use(middleware.Logging(d.Logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(d.Config.BaseURL, d.Cache))
	if d.Metrics != nil {
		r.Get(d.metricsPath(), d.Metrics.ServeHTTP)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Get("/awic", router.HandleAWIC(d.Logger, d.Runner))
		r.Get("/geometries", router.HandleGeometries(d.Logger, d.Config, d.Exec))
	})
	return r
}

func (d Deps) metricsPath() string {
	if d.Config.Metrics.Path == "" {
		return "/metrics"
	}
	return d.Config.Metrics.Path
}

// Build creates the cached executor and downloader used by the routes.
func Build(cfg config.Config, logger *slog.Logger, metrics http.Handler, pub events.Publisher) (Deps, error) {
	cache := respcache.New(cfg.CacheSize, cfg.CacheTTL)
	exec, err := executor.New(logger, httpclient.NewOutbound(cfg.HTTPTimeout), cfg.BaseURL, executor.WithCache(cache))
	if err != nil {
		return Deps{}, fmt.Errorf("executor: %w", err)
	}
	return Deps{
		Config:    cfg,
		Logger:    logger,
		Exec:      exec,
		Runner:    downloader.New(logger, exec, cfg, downloader.WithPublisher(pub)),
		Cache:     cache,
		Metrics:   metrics,
		Publisher: pub,
	}, nil
}

// Run serves until ctx is canceled.
func Run(ctx context.Context, d Deps) error {
	return core.Serve(ctx, d.Config.Addr, d.Logger, NewRouter(d))
}
