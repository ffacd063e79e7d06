package downloader

import (
	"strings"
	"time"

	"github.com/mohammed-shakir/awic-downloader/internal/core/apperr"
	"github.com/mohammed-shakir/awic-downloader/internal/core/config"
	"github.com/mohammed-shakir/awic-downloader/internal/core/geometry"
	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
)

// Params is the full set of inputs of one download run.
type Params struct {
	ReturnMode        model.ReturnMode
	OutputDir         string
	StartDate         string
	CompletionDate    string
	GeometryWKTWGS84  string
	GeometryWKTLAEA   string
	GeometryFile      string
	CloudCoverageMax  *int
	RequestGeometries bool
	EUHydroID         string
	BasinName         string
	ObjectName        string
	OnlySize          bool
	OnlyIDs           bool
}

// Validate checks p without touching the network and returns the normalized
// query. ReturnMode must be one of the model constants exactly. Every failure
// is an *apperr.ConfigurationError.
func Validate(p Params, _ config.Config) (model.Query, error) {
	if m, ok := model.ParseReturnMode(string(p.ReturnMode)); !ok || m != p.ReturnMode {
		return model.Query{}, apperr.Config("returnMode",
			"%q is not one of csv, variable, csv_and_variable, raw", p.ReturnMode)
	}
	if p.ReturnMode.WritesFiles() && strings.TrimSpace(p.OutputDir) == "" {
		return model.Query{}, apperr.Config("outputDir", "required when returnMode is %s", p.ReturnMode)
	}

	start, err := parseDate("startDate", p.StartDate)
	if err != nil {
		return model.Query{}, err
	}
	end, err := parseDate("completionDate", p.CompletionDate)
	if err != nil {
		return model.Query{}, err
	}
	if start.After(end) {
		return model.Query{}, apperr.Config("startDate",
			"%s is after completionDate %s", p.StartDate, p.CompletionDate)
	}

	// unset stays unset; the service reads absence as NONE
	var cc *int
	if p.CloudCoverageMax != nil {
		v := *p.CloudCoverageMax
		if v < 0 || v > 100 {
			return model.Query{}, apperr.Config("cloudCoverageMax", "%d is outside 0..100", v)
		}
		cc = &v
	}

	src, err := geometry.Resolve(geometry.Input{
		WKTWGS84: p.GeometryWKTWGS84,
		WKTLAEA:  p.GeometryWKTLAEA,
		File:     p.GeometryFile,
	})
	if err != nil {
		return model.Query{}, err
	}

	return model.Query{
		StartDate:        start,
		CompletionDate:   end,
		Geometry:         src,
		CloudCoverageMax: cc,
		EUHydroID:        strings.TrimSpace(p.EUHydroID),
		BasinName:        strings.TrimSpace(p.BasinName),
		ObjectName:       strings.TrimSpace(p.ObjectName),
		OnlySize:         p.OnlySize,
		OnlyIDs:          p.OnlyIDs,
	}, nil
}

func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperr.Config(field, "is required (YYYY-MM-DD)")
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, apperr.ConfigWrap(field, "must be a valid YYYY-MM-DD date", err)
	}
	return t, nil
}

// ParseBool accepts the spellings the command line has always taken for
// requestGeometries.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "t", "y", "1":
		return true, nil
	case "no", "false", "f", "n", "0":
		return false, nil
	}
	return false, apperr.Config("", "boolean value expected, got %q", s)
}
