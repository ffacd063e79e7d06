package aoi

import (
	"sort"
	"testing"

	"github.com/paulmach/orb"
	h3 "github.com/uber/h3-go/v4"
)

func TestCells_Point(t *testing.T) {
	cells, err := Cells(orb.Point{22.457940, 49.367854}, 6)
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	want, err := h3.LatLngToCell(h3.LatLng{Lat: 49.367854, Lng: 22.457940}, 6)
	if err != nil {
		t.Fatalf("LatLngToCell: %v", err)
	}
	if len(cells) != 1 || cells[0] != want.String() {
		t.Fatalf("cells=%v want [%s]", cells, want)
	}
}

func TestCells_PolygonSortedUnique(t *testing.T) {
	sq := orb.Polygon{{{18.0, 59.3}, {18.1, 59.3}, {18.1, 59.4}, {18.0, 59.4}, {18.0, 59.3}}}
	cells, err := Cells(orb.MultiPolygon{sq, sq}, 7)
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	if len(cells) == 0 {
		t.Fatal("expected cells for polygon")
	}
	if !sort.StringsAreSorted(cells) {
		t.Fatal("cells not sorted")
	}
	seen := map[string]bool{}
	for _, c := range cells {
		if seen[c] {
			t.Fatalf("duplicate cell %s", c)
		}
		seen[c] = true
	}
}

func TestCells_TinyPolygonFallsBackToVertexCell(t *testing.T) {
	tiny := orb.Polygon{{{18.0, 59.3}, {18.00001, 59.3}, {18.00001, 59.30001}, {18.0, 59.3}}}
	cells, err := Cells(tiny, 3)
	if err != nil {
		t.Fatalf("Cells: %v", err)
	}
	if len(cells) != 1 {
		t.Fatalf("cells=%v want exactly one", cells)
	}
}

func TestCells_Errors(t *testing.T) {
	if _, err := Cells(orb.Point{1, 2}, 16); err == nil {
		t.Fatal("expected resolution error")
	}
	if _, err := Cells(orb.LineString{{0, 0}, {1, 1}}, 5); err == nil {
		t.Fatal("expected unsupported geometry error")
	}
	if _, err := Cells(nil, 5); err == nil {
		t.Fatal("expected error for nil geometry")
	}
}
