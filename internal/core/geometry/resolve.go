package geometry

import (
	"strings"

	"github.com/mohammed-shakir/awic-downloader/internal/core/apperr"
	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
)

// Input holds the three mutually exclusive ways to give an area of interest.
type Input struct {
	WKTWGS84 string
	WKTLAEA  string
	File     string
}

// Resolve validates that exactly one source is set and normalizes it.
// Every failure is a configuration error.
func Resolve(in Input) (model.GeometrySource, error) {
	wgs := strings.TrimSpace(in.WKTWGS84)
	laea := strings.TrimSpace(in.WKTLAEA)
	file := strings.TrimSpace(in.File)

	n := 0
	for _, s := range []string{wgs, laea, file} {
		if s != "" {
			n++
		}
	}
	switch {
	case n == 0:
		return model.GeometrySource{}, apperr.Config("geometry",
			"must be specified (geometrywkt_wgs84, geometrywkt_laea or geometry_file)")
	case n > 1:
		return model.GeometrySource{}, apperr.Config("geometry",
			"only one of geometrywkt_wgs84, geometrywkt_laea or geometry_file may be given")
	}

	switch {
	case wgs != "":
		if _, err := ParseWKT(wgs); err != nil {
			return model.GeometrySource{}, apperr.ConfigWrap("geometrywkt_wgs84", "invalid wkt", err)
		}
		return model.GeometrySource{SRID: model.SRIDWGS84, WKT: wgs}, nil
	case laea != "":
		if _, err := ParseWKT(laea); err != nil {
			return model.GeometrySource{}, apperr.ConfigWrap("geometrywkt_laea", "invalid wkt", err)
		}
		return model.GeometrySource{SRID: model.SRIDLAEA, WKT: laea}, nil
	}

	src, err := LoadFile(file)
	if err != nil {
		return model.GeometrySource{}, apperr.ConfigWrap("geometry_file", "cannot use vector file", err)
	}
	return model.GeometrySource{SRID: src.SRID, WKT: src.WKT, File: file}, nil
}
