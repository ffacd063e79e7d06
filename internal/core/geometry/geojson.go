package geometry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var epsgCodeRE = regexp.MustCompile(`EPSG:+(\d+)$`)

func readGeoJSON(path string) (orb.Geometry, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read geojson: %w", err)
	}

	var hdr struct {
		Type string `json:"type"`
		CRS  *struct {
			Properties struct {
				Name string `json:"name"`
			} `json:"properties"`
		} `json:"crs"`
	}
	if err := json.Unmarshal(data, &hdr); err != nil {
		return nil, 0, fmt.Errorf("parse geojson: %w", err)
	}

	epsg := 4326
	if hdr.CRS != nil {
		epsg, err = epsgFromCRSName(hdr.CRS.Properties.Name)
		if err != nil {
			return nil, 0, err
		}
	}

	var geoms []orb.Geometry
	switch strings.TrimSpace(hdr.Type) {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, 0, fmt.Errorf("parse feature collection: %w", err)
		}
		for _, f := range fc.Features {
			geoms = append(geoms, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, 0, fmt.Errorf("parse feature: %w", err)
		}
		geoms = append(geoms, f.Geometry)
	case "":
		return nil, 0, errors.New("geojson has no type member")
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, 0, fmt.Errorf("parse geometry: %w", err)
		}
		geoms = append(geoms, g.Geometry())
	}

	g, err := merge(geoms)
	if err != nil {
		return nil, 0, err
	}
	return g, epsg, nil
}

// legacy "crs" member, e.g. urn:ogc:def:crs:EPSG::3035
func epsgFromCRSName(name string) (int, error) {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, "CRS84") {
		return 4326, nil
	}
	m := epsgCodeRE.FindStringSubmatch(name)
	if m == nil {
		return 0, fmt.Errorf("unrecognized geojson crs %q", name)
	}
	return strconv.Atoi(m[1])
}
