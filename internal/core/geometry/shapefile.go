package geometry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	shp "github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
)

func readShapefile(path string) (orb.Geometry, int, error) {
	epsg, err := shapefileEPSG(path)
	if err != nil {
		return nil, 0, err
	}

	r, err := shp.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open shapefile: %w", err)
	}
	defer func() { _ = r.Close() }()

	var geoms []orb.Geometry
	for r.Next() {
		_, shape := r.Shape()
		g, err := shapeToOrb(shape)
		if err != nil {
			return nil, 0, err
		}
		if g != nil {
			geoms = append(geoms, g)
		}
	}
	if err := r.Err(); err != nil {
		return nil, 0, fmt.Errorf("read shapefile: %w", err)
	}

	g, err := merge(geoms)
	if err != nil {
		return nil, 0, err
	}
	return g, epsg, nil
}

func shapeToOrb(s shp.Shape) (orb.Geometry, error) {
	switch v := s.(type) {
	case *shp.Null:
		return nil, nil
	case *shp.Point:
		return orb.Point{v.X, v.Y}, nil
	case *shp.PointZ:
		return orb.Point{v.X, v.Y}, nil
	case *shp.Polygon:
		return ringsToPolygons(v.Parts, v.Points), nil
	case *shp.PolygonZ:
		return ringsToPolygons(v.Parts, v.Points), nil
	case *shp.PolygonM:
		return ringsToPolygons(v.Parts, v.Points), nil
	default:
		return nil, fmt.Errorf("shape %T: %w", s, ErrUnsupportedType)
	}
}

// ringsToPolygons groups shapefile parts into polygons. Outer rings are
// clockwise, holes counter-clockwise and follow their outer ring.
func ringsToPolygons(parts []int32, pts []shp.Point) orb.Geometry {
	var out orb.MultiPolygon
	for i, start := range parts {
		end := int32(len(pts))
		if i+1 < len(parts) {
			end = parts[i+1]
		}
		ring := make(orb.Ring, 0, end-start)
		for _, p := range pts[start:end] {
			ring = append(ring, orb.Point{p.X, p.Y})
		}
		if ring.Orientation() == orb.CW || len(out) == 0 {
			out = append(out, orb.Polygon{ring})
			continue
		}
		last := len(out) - 1
		out[last] = append(out[last], ring)
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

// shapefileEPSG inspects the sibling .prj. Only the two service CRSs are
// recognized; anything else is reported as unknown.
func shapefileEPSG(path string) (int, error) {
	prj := strings.TrimSuffix(path, filepath.Ext(path)) + ".prj"
	b, err := os.ReadFile(prj)
	if errors.Is(err, os.ErrNotExist) {
		return 0, errors.New("shapefile has no .prj, cannot determine its projection")
	}
	if err != nil {
		return 0, fmt.Errorf("read prj: %w", err)
	}
	return epsgFromPRJ(string(b))
}

func epsgFromPRJ(wkt string) (int, error) {
	s := strings.ToUpper(wkt)
	switch {
	case strings.Contains(s, `AUTHORITY["EPSG","3035"]`),
		strings.Contains(s, "LAMBERT_AZIMUTHAL_EQUAL_AREA") && strings.Contains(s, "ETRS"):
		return 3035, nil
	case strings.HasPrefix(strings.TrimSpace(s), "PROJCS"):
		return 0, errors.New("projection in .prj must be EPSG:3035 or EPSG:4326")
	case strings.Contains(s, "WGS_1984") || strings.Contains(s, "WGS 84"):
		return 4326, nil
	}
	return 0, errors.New("projection in .prj must be EPSG:3035 or EPSG:4326")
}
