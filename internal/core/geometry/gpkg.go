package geometry

import (
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	_ "modernc.org/sqlite"
)

// GeoPackage header flag bits, see the OGC GeoPackage binary format.
const (
	gpkgFlagLittleEndian = 0x01
	gpkgFlagEnvelopeMask = 0x0e
	gpkgFlagEmpty        = 0x10
)

func readGeoPackage(path string) (orb.Geometry, int, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, 0, fmt.Errorf("open geopackage: %w", err)
	}
	defer func() { _ = db.Close() }()

	var table, column string
	var srsID int
	err = db.QueryRow(
		`SELECT table_name, column_name, srs_id FROM gpkg_geometry_columns ORDER BY table_name LIMIT 1`,
	).Scan(&table, &column, &srsID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, errors.New("geopackage has no feature layer")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read gpkg_geometry_columns: %w", err)
	}

	rows, err := db.Query(fmt.Sprintf(`SELECT %s FROM %s`, quoteIdent(column), quoteIdent(table)))
	if err != nil {
		return nil, 0, fmt.Errorf("query layer %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var geoms []orb.Geometry
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, 0, fmt.Errorf("scan geometry: %w", err)
		}
		if blob == nil {
			continue
		}
		// undefined layer srs (0 or -1): trust the geometry header
		if srsID <= 0 {
			srsID = int(gpkgSRSID(blob))
		}
		g, err := decodeGPKGBlob(blob)
		if err != nil {
			return nil, 0, err
		}
		if g != nil {
			geoms = append(geoms, g)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate layer %s: %w", table, err)
	}

	g, err := merge(geoms)
	if err != nil {
		return nil, 0, err
	}
	return g, srsID, nil
}

// decodeGPKGBlob strips the GeoPackage header and decodes the WKB body.
// Empty geometries decode to nil.
func decodeGPKGBlob(b []byte) (orb.Geometry, error) {
	if len(b) < 8 || b[0] != 'G' || b[1] != 'P' {
		return nil, errors.New("invalid geopackage geometry header")
	}
	flags := b[3]
	if flags&gpkgFlagEmpty != 0 {
		return nil, nil
	}

	var envelope int
	switch (flags & gpkgFlagEnvelopeMask) >> 1 {
	case 0:
	case 1:
		envelope = 32
	case 2, 3:
		envelope = 48
	case 4:
		envelope = 64
	default:
		return nil, fmt.Errorf("invalid geopackage envelope flag in %#x", flags)
	}

	hdr := 8 + envelope
	if len(b) < hdr {
		return nil, errors.New("truncated geopackage geometry")
	}
	g, err := wkb.Unmarshal(b[hdr:])
	if err != nil {
		return nil, fmt.Errorf("decode wkb: %w", err)
	}
	return g, nil
}

// gpkgSRSID reads the srs_id stored in a geometry header.
func gpkgSRSID(b []byte) int32 {
	if len(b) < 8 {
		return 0
	}
	if b[3]&gpkgFlagLittleEndian != 0 {
		return int32(binary.LittleEndian.Uint32(b[4:8]))
	}
	return int32(binary.BigEndian.Uint32(b[4:8]))
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
