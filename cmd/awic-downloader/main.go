package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohammed-shakir/awic-downloader/internal/core/apperr"
	"github.com/mohammed-shakir/awic-downloader/internal/core/config"
	"github.com/mohammed-shakir/awic-downloader/internal/core/executor"
	"github.com/mohammed-shakir/awic-downloader/internal/core/httpclient"
	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
	"github.com/mohammed-shakir/awic-downloader/internal/core/observability"
	"github.com/mohammed-shakir/awic-downloader/internal/downloader"
	"github.com/mohammed-shakir/awic-downloader/internal/events"
	"github.com/mohammed-shakir/awic-downloader/internal/logger"
	"github.com/mohammed-shakir/awic-downloader/internal/metrics"
)

var Version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// boolFlag takes an explicit value such as -requestGeometries False.
type boolFlag struct{ v bool }

func (b *boolFlag) String() string {
	if b == nil || !b.v {
		return "False"
	}
	return "True"
}

func (b *boolFlag) Set(s string) error {
	v, err := downloader.ParseBool(s)
	if err != nil {
		return err
	}
	b.v = v
	return nil
}

type cliArgs struct {
	params   downloader.Params
	mode     string
	cloudMax int
}

func parseArgs(args []string, cfg config.Config, stderr io.Writer) (cliArgs, error) {
	fs := flag.NewFlagSet("awic-downloader", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		a       cliArgs
		reqGeom boolFlag
	)
	p := &a.params
	fs.StringVar(&a.mode, "returnMode", "", "csv | variable | csv_and_variable | raw (required)")
	fs.StringVar(&p.OutputDir, "outputDir", "", "output directory for csv and raw modes")
	fs.StringVar(&p.GeometryWKTWGS84, "geometrywkt_wgs84", "", "area of interest as WKT in EPSG:4326")
	fs.StringVar(&p.GeometryWKTLAEA, "geometrywkt_laea", "", "area of interest as WKT in EPSG:3035")
	fs.StringVar(&p.GeometryFile, "geometry_file", "", "area of interest as a GeoPackage, GeoJSON or Shapefile")
	fs.StringVar(&p.StartDate, "startDate", "", "first day, YYYY-MM-DD (required)")
	fs.StringVar(&p.CompletionDate, "completionDate", "", "last day, YYYY-MM-DD (required)")
	fs.IntVar(&a.cloudMax, "cloudCoverageMax", cfg.CloudCoverageMax, "maximum cloud coverage, 0-100")
	fs.Var(&reqGeom, "requestGeometries", "also download the river geometries {True|False}")
	fs.StringVar(&p.EUHydroID, "euhydroid", "", "restrict to an EU-Hydro identifier")
	fs.StringVar(&p.BasinName, "basinname", "", "restrict to a basin name")
	fs.StringVar(&p.ObjectName, "objectname", "", "restrict to an object name")
	fs.BoolVar(&p.OnlySize, "getonlysize", false, "only ask the service for the result size")
	fs.BoolVar(&p.OnlyIDs, "getonlyids", false, "only ask the service for geometry identifiers")

	if err := fs.Parse(args); err != nil {
		return cliArgs{}, apperr.ConfigWrap("", "invalid arguments", err)
	}
	if fs.NArg() > 0 {
		return cliArgs{}, apperr.Config("", "unexpected arguments %v", fs.Args())
	}
	if a.mode == "" {
		return cliArgs{}, apperr.Config("returnMode", "is required")
	}
	mode, ok := model.ParseReturnMode(a.mode)
	if !ok {
		return cliArgs{}, apperr.Config("returnMode", "%q is not one of csv, variable, csv_and_variable, raw", a.mode)
	}
	p.ReturnMode = mode
	p.RequestGeometries = reqGeom.v
	p.CloudCoverageMax = &a.cloudMax
	return a, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		Component: "awic-downloader",
		Version:   Version,
	}, stderr)
	appLog := logger.NewSlog(&zl)

	a, err := parseArgs(args, cfg, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		appLog.Error("invalid arguments", "err", err)
		return apperr.ExitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var prov *metrics.Provider
	if cfg.Metrics.PushURL != "" {
		prov = metrics.Init(metrics.Config{Build: metrics.BuildInfo{Version: Version}})
		prov.Register(observability.Collectors()...)
	}

	pub := publisher(cfg, appLog)
	defer func() { _ = pub.Close() }()

	exec, err := executor.New(appLog, httpclient.NewOutbound(cfg.HTTPTimeout), cfg.BaseURL)
	if err != nil {
		appLog.Error("failed to initialize executor", "err", err)
		return apperr.ExitCode(apperr.ConfigWrap("AWIC_BASE_URL", "invalid base url", err))
	}

	d := downloader.New(appLog, exec, cfg, downloader.WithPublisher(pub))
	res, err := d.Download(ctx, a.params)

	if prov != nil {
		pushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if perr := prov.Push(pushCtx, cfg.Metrics.PushURL, cfg.Metrics.Job); perr != nil {
			appLog.Warn("metrics push failed", "err", perr)
		}
		cancel()
	}

	if err != nil {
		appLog.Error("AWIC download failed", "err", err)
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return apperr.ExitCode(err)
	}

	if a.params.ReturnMode.ReturnsData() {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Geometries model.Geometries `json:"geometries,omitempty"`
			Products   []model.Product  `json:"products"`
		}{res.Geometries, res.Products}); err != nil {
			appLog.Error("write result", "err", err)
			return 1
		}
	}
	return 0
}

func publisher(cfg config.Config, log *slog.Logger) events.Publisher {
	if !cfg.Events.Enabled {
		return events.Nop{}
	}
	p, err := events.NewKafka(cfg.Events.BrokerList(), cfg.Events.Topic)
	if err != nil {
		log.Warn("kafka events disabled", "err", err)
		return events.Nop{}
	}
	return p
}
