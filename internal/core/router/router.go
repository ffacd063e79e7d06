// Package router exposes AWIC queries over HTTP as JSON.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/awic-downloader/internal/awic"
	"github.com/mohammed-shakir/awic-downloader/internal/core/apperr"
	"github.com/mohammed-shakir/awic-downloader/internal/core/config"
	"github.com/mohammed-shakir/awic-downloader/internal/core/executor"
	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
	"github.com/mohammed-shakir/awic-downloader/internal/downloader"
)

// Runner runs one in-memory download.
type Runner interface {
	Download(ctx context.Context, p downloader.Params) (downloader.Result, error)
}

type awicResponse struct {
	Geometries model.Geometries `json:"geometries,omitempty"`
	Products   []model.Product  `json:"products"`
}

type geometriesResponse struct {
	Geometries model.Geometries `json:"geometries"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleAWIC serves /v1/awic through the downloader in variable mode.
func HandleAWIC(logger *slog.Logger, run Runner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := ParseParams(r)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		res, err := run.Download(r.Context(), p)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		out := awicResponse{Geometries: res.Geometries, Products: res.Products}
		if out.Products == nil {
			out.Products = []model.Product{}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// HandleGeometries serves /v1/geometries with a single get_geometries call.
func HandleGeometries(logger *slog.Logger, cfg config.Config, exec executor.Interface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := ParseParams(r)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		// dates are not sent to get_geometries
		if p.StartDate == "" {
			p.StartDate, p.CompletionDate = "1970-01-01", "1970-01-01"
		}
		q, err := downloader.Validate(p, cfg)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		pl, err := exec.FetchGeometries(r.Context(), q)
		if err != nil {
			writeError(w, logger, r, err)
			return
		}
		rows, err := executor.DecodeItems(pl)
		if err != nil {
			writeError(w, logger, r, apperr.Response(pl.URL, 0, "invalid geometries payload", err))
			return
		}
		geoms, err := awic.FormatGeometries(rows)
		if err != nil {
			writeError(w, logger, r, apperr.Response(pl.URL, 0, "invalid geometry record", err))
			return
		}
		if geoms == nil {
			geoms = model.Geometries{}
		}
		writeJSON(w, http.StatusOK, geometriesResponse{Geometries: geoms})
	}
}

// ParseParams reads the CLI-named query parameters. Vector files are not
// accepted over HTTP since the path would be resolved on the server.
func ParseParams(r *http.Request) (downloader.Params, error) {
	v := r.URL.Query()
	if strings.TrimSpace(v.Get("geometry_file")) != "" {
		return downloader.Params{}, apperr.Config("geometry_file", "not accepted over HTTP; send WKT instead")
	}

	p := downloader.Params{
		ReturnMode:       model.ModeVariable,
		StartDate:        v.Get("startDate"),
		CompletionDate:   v.Get("completionDate"),
		GeometryWKTWGS84: v.Get("geometrywkt_wgs84"),
		GeometryWKTLAEA:  v.Get("geometrywkt_laea"),
		EUHydroID:        v.Get("euhydroid"),
		BasinName:        v.Get("basinname"),
		ObjectName:       v.Get("objectname"),
	}

	if s := strings.TrimSpace(v.Get("cloudCoverageMax")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return downloader.Params{}, apperr.ConfigWrap("cloudCoverageMax", "must be an integer", err)
		}
		p.CloudCoverageMax = &n
	}

	var err error
	if p.RequestGeometries, err = boolParam(v.Get("requestGeometries"), "requestGeometries"); err != nil {
		return downloader.Params{}, err
	}
	if p.OnlySize, err = boolParam(v.Get("getonlysize"), "getonlysize"); err != nil {
		return downloader.Params{}, err
	}
	if p.OnlyIDs, err = boolParam(v.Get("getonlyids"), "getonlyids"); err != nil {
		return downloader.Params{}, err
	}
	return p, nil
}

func boolParam(s, field string) (bool, error) {
	if strings.TrimSpace(s) == "" {
		return false, nil
	}
	b, err := downloader.ParseBool(s)
	if err != nil {
		return false, apperr.ConfigWrap(field, "invalid boolean", err)
	}
	return b, nil
}

// StatusFor maps the error taxonomy onto HTTP statuses.
func StatusFor(err error) int {
	switch {
	case apperr.IsConfiguration(err):
		return http.StatusBadRequest
	case apperr.IsNetwork(err):
		return http.StatusGatewayTimeout
	case apperr.IsResponse(err):
		return http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, r *http.Request, err error) {
	code := StatusFor(err)
	lvl := slog.LevelWarn
	if code >= 500 {
		lvl = slog.LevelError
	}
	logger.Log(r.Context(), lvl, "request failed", "status", code, "err", err)
	writeJSON(w, code, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
