package geometry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"

	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
)

// Source is a loaded area of interest.
type Source struct {
	SRID     model.SRID
	WKT      string
	Geometry orb.Geometry
}

// LoadFile reads a GeoPackage, GeoJSON or Shapefile and returns its features
// merged into one geometry together with the layer CRS.
func LoadFile(path string) (Source, error) {
	if _, err := os.Stat(path); err != nil {
		return Source{}, fmt.Errorf("open %s: %w", path, err)
	}

	var (
		g    orb.Geometry
		epsg int
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".geojson", ".json":
		g, epsg, err = readGeoJSON(path)
	case ".gpkg":
		g, epsg, err = readGeoPackage(path)
	case ".shp":
		g, epsg, err = readShapefile(path)
	default:
		return Source{}, fmt.Errorf("unsupported vector format %q (want .gpkg, .geojson or .shp)", ext)
	}
	if err != nil {
		return Source{}, err
	}

	srid, err := SRIDFromEPSG(epsg)
	if err != nil {
		return Source{}, err
	}
	if err := checkType(g); err != nil {
		return Source{}, err
	}
	return Source{SRID: srid, WKT: MarshalWKT(g), Geometry: g}, nil
}
