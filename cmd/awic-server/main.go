package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/mohammed-shakir/awic-downloader/internal/app/server"
	"github.com/mohammed-shakir/awic-downloader/internal/core/config"
	"github.com/mohammed-shakir/awic-downloader/internal/core/observability"
	"github.com/mohammed-shakir/awic-downloader/internal/events"
	"github.com/mohammed-shakir/awic-downloader/internal/logger"
	"github.com/mohammed-shakir/awic-downloader/internal/metrics"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "awic-server",
		Version:   Version,
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	appLog.Info("starting awic-server",
		"addr", cfg.Addr,
		"version", Version,
		"upstream", cfg.BaseURL,
		"cache_size", cfg.CacheSize,
		"cache_ttl", cfg.CacheTTL)

	prov := metrics.Init(metrics.Config{
		Runtime: true,
		Build: metrics.BuildInfo{
			Version:   Version,
			Revision:  os.Getenv("BUILD_REVISION"),
			Branch:    os.Getenv("BUILD_BRANCH"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})
	prov.Register(observability.Collectors()...)

	var pub events.Publisher = events.Nop{}
	if cfg.Events.Enabled {
		kp, err := events.NewKafka(cfg.Events.BrokerList(), cfg.Events.Topic)
		if err != nil {
			appLog.Warn("kafka events disabled", "err", err)
		} else {
			pub = kp
			appLog.Info("kafka events enabled", "brokers", cfg.Events.Brokers, "topic", cfg.Events.Topic)
		}
	}
	defer func() { _ = pub.Close() }()

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = prov.Handler()
	}
	deps, err := server.Build(cfg, appLog, metricsHandler, pub)
	if err != nil {
		appLog.Error("failed to initialize server", "err", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, deps); err != nil {
		appLog.Error("server error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
