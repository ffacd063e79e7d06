// Package aoi maps a WGS84 area of interest onto H3 cells.
package aoi

import (
	"errors"
	"fmt"
	"sort"

	"github.com/paulmach/orb"
	h3 "github.com/uber/h3-go/v4"
)

// Cells returns the sorted, unique H3 cells covering g at res. Points map to
// their containing cell; polygons are polyfilled and fall back to the cell of
// their first vertex when smaller than one cell.
func Cells(g orb.Geometry, res int) ([]string, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	switch v := g.(type) {
	case orb.Point:
		c, err := h3.LatLngToCell(h3.LatLng{Lat: v.Lat(), Lng: v.Lon()}, res)
		if err != nil {
			return nil, fmt.Errorf("h3 cell: %w", err)
		}
		return []string{c.String()}, nil
	case orb.Polygon:
		return polyfill(orb.MultiPolygon{v}, res)
	case orb.MultiPolygon:
		return polyfill(v, res)
	case nil:
		return nil, errors.New("empty geometry")
	default:
		return nil, fmt.Errorf("unsupported geometry %s", g.GeoJSONType())
	}
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}

func polyfill(mp orb.MultiPolygon, res int) ([]string, error) {
	seen := make(map[string]struct{})
	var out []string
	add := func(c h3.Cell) {
		s := c.String()
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	for pi, poly := range mp {
		if len(poly) == 0 {
			return nil, fmt.Errorf("polygon %d is empty", pi)
		}
		outer := toLoop(poly[0])
		if len(outer) < 3 {
			return nil, fmt.Errorf("polygon %d outer ring has < 3 distinct vertices", pi)
		}
		var holes []h3.GeoLoop
		for _, r := range poly[1:] {
			holes = append(holes, toLoop(r))
		}

		cells, err := h3.PolygonToCells(h3.GeoPolygon{GeoLoop: outer, Holes: holes}, res)
		if err != nil {
			return nil, fmt.Errorf("h3 polyfill: %w", err)
		}
		if len(cells) == 0 {
			c, err := h3.LatLngToCell(outer[0], res)
			if err != nil {
				return nil, fmt.Errorf("h3 cell: %w", err)
			}
			cells = []h3.Cell{c}
		}
		for _, c := range cells {
			add(c)
		}
	}
	sort.Strings(out)
	return out, nil
}

// toLoop converts a ring to an h3.GeoLoop, dropping the closing vertex.
func toLoop(r orb.Ring) h3.GeoLoop {
	loop := make(h3.GeoLoop, 0, len(r))
	for _, p := range r {
		loop = append(loop, h3.LatLng{Lat: p.Lat(), Lng: p.Lon()})
	}
	if len(loop) >= 2 && loop[0] == loop[len(loop)-1] {
		loop = loop[:len(loop)-1]
	}
	return loop
}
