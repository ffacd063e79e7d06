package keys

import (
	"net/url"
	"regexp"
	"testing"
)

func params(kv ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(kv); i += 2 {
		v.Add(kv[i], kv[i+1])
	}
	return v
}

func TestDeterminism_SameInputsSameKey(t *testing.T) {
	p := params("geometrywkt_wgs84", "POINT(22.457940 49.367854)", "startdate", "2025-01-15")
	if Key("get_awic", p) != Key("get_awic", p) {
		t.Fatal("determinism failed")
	}
}

func TestNormalization_WKTSpacingVariantsProduceSameKey(t *testing.T) {
	a := params("geometrywkt_wgs84", "POLYGON((1 2,3 4,5 6,1 2))")
	b := params("geometrywkt_wgs84", "  POLYGON ( ( 1   2 , 3 4, 5 6 ,1 2 ) ) ")
	k1, k2 := Key("get_geometries", a), Key(" get_geometries ", b)
	if k1 != k2 {
		t.Fatalf("normalized keys differ:\n k1=%s\n k2=%s", k1, k2)
	}
	if !regexp.MustCompile(`^[A-Za-z0-9:_=\-]+$`).MatchString(k1) {
		t.Fatalf("key contains disallowed characters: %s", k1)
	}
}

func TestDifference_ProcAndParamsMatter(t *testing.T) {
	p := params("geometrywkt_wgs84", "POINT(1 2)")
	if Key("get_awic", p) == Key("get_geometries", p) {
		t.Fatal("procedures must produce different keys")
	}
	q := params("geometrywkt_wgs84", "POINT(1 2)", "cloudcoveragemax", "50")
	if Key("get_awic", p) == Key("get_awic", q) {
		t.Fatal("different params must produce different keys")
	}
}

func TestParamOrderDoesNotMatter(t *testing.T) {
	a := url.Values{}
	a.Set("startdate", "2025-01-15")
	a.Set("completiondate", "2025-01-25")
	b := url.Values{}
	b.Set("completiondate", "2025-01-25")
	b.Set("startdate", "2025-01-15")
	if Key("get_awic", a) != Key("get_awic", b) {
		t.Fatal("param insertion order leaked into key")
	}
}

func TestNormalization_CoordinateSpacingIsSignificant(t *testing.T) {
	a := params("geometrywkt_wgs84", "POINT(3.5 49)")
	b := params("geometrywkt_wgs84", "POINT(3 .5 49)")
	if Key("get_awic", a) == Key("get_awic", b) {
		t.Fatal("distinct coordinate lists produced the same key")
	}
	c := params("geometrywkt_wgs84", "POINT(3.5 49)")
	d := params("geometrywkt_wgs84", "POINT (3.5  49)")
	if Key("get_awic", c) != Key("get_awic", d) {
		t.Fatal("whitespace-only variants must share a key")
	}
}
