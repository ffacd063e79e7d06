// Package geometry normalizes the area of interest into a WKT string in a
// supported CRS, from either inline WKT or a vector file.
package geometry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
)

var ErrUnsupportedType = errors.New("only Point, Polygon or MultiPolygon is accepted")

// ParseWKT parses s and checks the geometry type is one the service accepts.
func ParseWKT(s string) (orb.Geometry, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty wkt")
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, fmt.Errorf("parse wkt: %w", err)
	}
	if err := checkType(g); err != nil {
		return nil, err
	}
	return g, nil
}

func checkType(g orb.Geometry) error {
	switch g.(type) {
	case orb.Point, orb.Polygon, orb.MultiPolygon:
		return nil
	case nil:
		return errors.New("empty geometry")
	default:
		return fmt.Errorf("%s: %w", g.GeoJSONType(), ErrUnsupportedType)
	}
}

// MarshalWKT renders g the way it is sent to the service.
func MarshalWKT(g orb.Geometry) string {
	return wkt.MarshalString(g)
}

// SRIDFromEPSG accepts the two CRS codes the service understands.
func SRIDFromEPSG(code int) (model.SRID, error) {
	switch model.SRID(code) {
	case model.SRIDWGS84:
		return model.SRIDWGS84, nil
	case model.SRIDLAEA:
		return model.SRIDLAEA, nil
	}
	return 0, fmt.Errorf("EPSG from your input file must be 3035 or 4326, got %d", code)
}
