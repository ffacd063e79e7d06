package geometry

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// merge folds the features of a layer into one geometry. Polygons are
// collected into a MultiPolygon, shared edges are not dissolved.
func merge(geoms []orb.Geometry) (orb.Geometry, error) {
	if len(geoms) == 0 {
		return nil, errors.New("layer contains no geometry")
	}
	if len(geoms) == 1 {
		g := geoms[0]
		if mp, ok := g.(orb.MultiPolygon); ok && len(mp) == 1 {
			return mp[0], nil
		}
		return g, nil
	}

	var polys orb.MultiPolygon
	for i, g := range geoms {
		switch v := g.(type) {
		case orb.Polygon:
			polys = append(polys, v)
		case orb.MultiPolygon:
			polys = append(polys, v...)
		case nil:
			continue
		default:
			return nil, fmt.Errorf("feature %d is a %s: %w", i, g.GeoJSONType(), ErrUnsupportedType)
		}
	}
	switch len(polys) {
	case 0:
		return nil, errors.New("layer contains no polygon")
	case 1:
		return polys[0], nil
	}
	return polys, nil
}
