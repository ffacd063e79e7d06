// Package downloader runs one AWIC download: validate, fetch, format, write.
package downloader

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mohammed-shakir/awic-downloader/internal/aoi"
	"github.com/mohammed-shakir/awic-downloader/internal/awic"
	"github.com/mohammed-shakir/awic-downloader/internal/cache/keys"
	"github.com/mohammed-shakir/awic-downloader/internal/core/apperr"
	"github.com/mohammed-shakir/awic-downloader/internal/core/awicapi"
	"github.com/mohammed-shakir/awic-downloader/internal/core/config"
	"github.com/mohammed-shakir/awic-downloader/internal/core/executor"
	"github.com/mohammed-shakir/awic-downloader/internal/core/geometry"
	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
	"github.com/mohammed-shakir/awic-downloader/internal/core/observability"
	"github.com/mohammed-shakir/awic-downloader/internal/events"
	"github.com/mohammed-shakir/awic-downloader/internal/logger"
	"github.com/mohammed-shakir/awic-downloader/internal/sink"
)

// Result holds what a run hands back to the caller. Data fields are only
// filled for the variable and csv_and_variable modes.
type Result struct {
	Geometries model.Geometries
	Products   []model.Product
	Files      []string
}

type Downloader struct {
	log    *slog.Logger
	exec   executor.Interface
	cfg    config.Config
	events events.Publisher
	now    func() time.Time
}

type Option func(*Downloader)

// WithPublisher sends a DownloadCompleted event after every successful run.
func WithPublisher(p events.Publisher) Option {
	return func(d *Downloader) {
		if p != nil {
			d.events = p
		}
	}
}

func withNow(now func() time.Time) Option {
	return func(d *Downloader) { d.now = now }
}

func New(log *slog.Logger, exec executor.Interface, cfg config.Config, opts ...Option) *Downloader {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	d := &Downloader{
		log:    log,
		exec:   exec,
		cfg:    cfg,
		events: events.Nop{},
		now:    time.Now,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// fetched is everything obtained from the service before any output is written.
type fetched struct {
	geomPayload executor.Payload
	awicPayload executor.Payload
	geometries  model.Geometries
	products    []model.Product
}

// Download validates p, queries the service and dispatches the results to the
// sink chosen by p.ReturnMode. Nothing is written unless every request succeeded.
func (d *Downloader) Download(ctx context.Context, p Params) (Result, error) {
	ctx = logger.WithRunID(ctx, "")
	mode := string(p.ReturnMode)

	res, err := d.download(ctx, p)
	if err != nil {
		observability.IncRun(mode, "error")
		return Result{}, err
	}
	observability.IncRun(mode, "ok")
	d.log.InfoContext(ctx, "End of AWIC download")
	return res, nil
}

func (d *Downloader) download(ctx context.Context, p Params) (Result, error) {
	q, err := Validate(p, d.cfg)
	if err != nil {
		return Result{}, err
	}

	var dir string
	if p.ReturnMode.WritesFiles() {
		if dir, err = sink.EnsureDir(d.log, p.OutputDir); err != nil {
			return Result{}, apperr.ConfigWrap("outputDir", "cannot prepare output directory", err)
		}
	}

	f, err := d.fetch(ctx, q, p)
	if err != nil {
		return Result{}, err
	}

	var files []string
	switch p.ReturnMode {
	case model.ModeRaw:
		files, err = d.writeRaw(ctx, dir, f, p.RequestGeometries)
	case model.ModeCSV, model.ModeCSVAndVariable:
		files, err = d.writeCSV(ctx, dir, f, p.RequestGeometries)
	}
	if err != nil {
		return Result{}, err
	}

	if p.ReturnMode.WritesFiles() {
		path, err := sink.WriteManifest(dir, d.manifest(ctx, q, p, f, files))
		if err != nil {
			return Result{}, err
		}
		d.log.InfoContext(ctx, "file written", "path", path)
		files = append(files, path)
	}

	d.publish(ctx, q, p, f, files)

	out := Result{Files: files}
	if p.ReturnMode.ReturnsData() {
		out.Geometries = f.geometries
		out.Products = f.products
	}
	return out, nil
}

func (d *Downloader) fetch(ctx context.Context, q model.Query, p Params) (fetched, error) {
	var f fetched
	decode := p.ReturnMode != model.ModeRaw

	if p.RequestGeometries {
		pl, err := d.exec.FetchGeometries(ctx, q)
		if err != nil {
			return fetched{}, err
		}
		f.geomPayload = pl
		if decode {
			rows, err := executor.DecodeItems(pl)
			if err != nil {
				return fetched{}, apperr.Response(pl.URL, 0, "invalid geometries payload", err)
			}
			if f.geometries, err = awic.FormatGeometries(rows); err != nil {
				return fetched{}, apperr.Response(pl.URL, 0, "invalid geometry record", err)
			}
			observability.AddRecords("geometry", len(f.geometries))
			d.log.InfoContext(ctx, "geometries received", "count", len(f.geometries))
		}
	}

	pl, err := d.exec.FetchAWIC(ctx, q)
	if err != nil {
		return fetched{}, err
	}
	f.awicPayload = pl
	if decode {
		rows, err := executor.DecodeItems(pl)
		if err != nil {
			return fetched{}, apperr.Response(pl.URL, 0, "invalid AWIC payload", err)
		}
		if f.products, err = awic.FormatProducts(rows); err != nil {
			return fetched{}, apperr.Response(pl.URL, 0, "invalid AWIC record", err)
		}
		observability.AddRecords("product", len(f.products))
		if len(f.products) == 0 {
			d.log.WarnContext(ctx, "No AWIC data was found")
		} else {
			d.log.InfoContext(ctx, "AWIC products received", "count", len(f.products))
		}
	}
	return f, nil
}

func (d *Downloader) writeCSV(ctx context.Context, dir string, f fetched, withGeoms bool) ([]string, error) {
	var files []string
	if withGeoms {
		path, err := sink.WriteGeometriesCSV(dir, f.geometries)
		if err != nil {
			return nil, err
		}
		d.log.InfoContext(ctx, "file written", "path", path, "rows", len(f.geometries))
		files = append(files, path)
	}
	path, err := sink.WriteAWICCSV(dir, f.products)
	if err != nil {
		return nil, err
	}
	d.log.InfoContext(ctx, "file written", "path", path, "rows", len(f.products))
	files = append(files, path)

	meta, err := sink.WriteMetadata(dir, awicapi.MetadataURL)
	if err != nil {
		return nil, err
	}
	return append(files, meta), nil
}

func (d *Downloader) writeRaw(ctx context.Context, dir string, f fetched, withGeoms bool) ([]string, error) {
	var files []string
	if withGeoms {
		path, err := sink.WriteRaw(dir, sink.RawGeomFile, f.geomPayload.Body)
		if err != nil {
			return nil, err
		}
		d.log.InfoContext(ctx, "file written", "path", path)
		files = append(files, path)
	}
	path, err := sink.WriteRaw(dir, sink.RawAWICFile, f.awicPayload.Body)
	if err != nil {
		return nil, err
	}
	d.log.InfoContext(ctx, "file written", "path", path)
	return append(files, path), nil
}

func (d *Downloader) manifest(ctx context.Context, q model.Query, p Params, f fetched, files []string) sink.Manifest {
	m := sink.Manifest{
		GeneratedAt:      d.now().UTC().Format(time.RFC3339),
		ReturnMode:       string(p.ReturnMode),
		StartDate:        q.StartDate.Format(model.DateLayout),
		CompletionDate:   q.CompletionDate.Format(model.DateLayout),
		CRS:              q.Geometry.SRID.String(),
		GeometryWKT:      q.Geometry.WKT,
		GeometryFile:     q.Geometry.File,
		CloudCoverageMax: q.CloudCoverageMax,
		Geometries:       len(f.geometries),
		Products:         len(f.products),
		Files:            files,
	}
	if cells := d.aoiCells(ctx, q.Geometry); len(cells) > 0 {
		m.H3Res = d.cfg.H3Res
		m.AOICells = cells
	}
	return m
}

// aoiCells covers WGS84 areas with H3 cells; LAEA inputs get none.
func (d *Downloader) aoiCells(ctx context.Context, src model.GeometrySource) []string {
	if src.SRID != model.SRIDWGS84 {
		return nil
	}
	g, err := geometry.ParseWKT(src.WKT)
	if err != nil {
		d.log.WarnContext(ctx, "aoi cells skipped", "err", err)
		return nil
	}
	cells, err := aoi.Cells(g, d.cfg.H3Res)
	if err != nil {
		d.log.WarnContext(ctx, "aoi cells skipped", "err", err)
		return nil
	}
	return cells
}

// publish is best effort; a failed notification never fails the run.
func (d *Downloader) publish(ctx context.Context, q model.Query, p Params, f fetched, files []string) {
	ev := events.DownloadCompleted{
		Key:            keys.Key(awicapi.ProcAWIC, awicapi.BuildAWICParams(q)),
		ReturnMode:     string(p.ReturnMode),
		StartDate:      q.StartDate.Format(model.DateLayout),
		CompletionDate: q.CompletionDate.Format(model.DateLayout),
		CRS:            q.Geometry.SRID.String(),
		Geometries:     len(f.geometries),
		Products:       len(f.products),
		Files:          files,
		TS:             d.now().UTC(),
	}
	if err := d.events.Publish(ctx, ev); err != nil {
		d.log.WarnContext(ctx, "download event not published", "err", err)
	}
}
