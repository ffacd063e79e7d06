// Package awic turns raw service rows into geometry and statistics records.
package awic

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
)

const (
	productFields  = 12 // mission code is optional
	geometryFields = 7
	obsLayout      = "20060102T150405"
	outLayout      = "2006-01-02T15:04:05"
)

var missionLabels = map[int]string{
	0: "Sentinel-1 Sentinel-2",
	1: "Sentinel-1",
	2: "Sentinel-2",
}

// MissionLabel names the mission code; unknown codes map to "".
func MissionLabel(code int) string {
	return missionLabels[code]
}

// FormatProduct converts one get_awic row
//
//	[river_km_id, YYYYMMDD, HHMMSS, water, ice, other, cloud, shadow, nodata, qa, s1, s2, mission]
//
// into a Product whose ID is index+1.
func FormatProduct(row []json.RawMessage, index int) (model.Product, error) {
	if len(row) < productFields {
		return model.Product{}, fmt.Errorf("awic row has %d fields, want at least %d", len(row), productFields)
	}

	dt, err := observationTime(row[1], row[2])
	if err != nil {
		return model.Product{}, fmt.Errorf("invalid date/time in AWIC product: %w", err)
	}

	p := model.Product{
		ID:         index + 1,
		GeometryID: text(row[0]),
		Datetime:   dt.Format(outLayout),
		WaterPerc:  number(row[3]),
		IcePerc:    number(row[4]),
		OtherPerc:  number(row[5]),
		CloudPerc:  number(row[6]),
		ShadowPerc: number(row[7]),
		NoDataPerc: number(row[8]),
		QA:         number(row[9]),
		S1Perc:     number(row[10]),
		S2Perc:     number(row[11]),
	}
	if len(row) > productFields {
		if code, err := strconv.Atoi(text(row[12])); err == nil {
			p.Source = MissionLabel(code)
		}
	}
	return p, nil
}

// FormatGeometry converts one get_geometries row
//
//	[id, geometry, basin_name, eu_hydro_id, object_nam, area, river_km]
func FormatGeometry(row []json.RawMessage) (model.Geometry, error) {
	if len(row) < geometryFields {
		return model.Geometry{}, fmt.Errorf("geometry row has %d fields, want %d", len(row), geometryFields)
	}
	return model.Geometry{
		ID:         text(row[0]),
		Geometry:   text(row[1]),
		BasinName:  text(row[2]),
		EUHydroID:  text(row[3]),
		ObjectName: text(row[4]),
		Area:       text(row[5]),
		RiverKm:    text(row[6]),
	}, nil
}

// FormatProducts formats every non-empty row, failing on the first malformed
// one. Product ids follow the row position, empty rows included.
func FormatProducts(rows [][]json.RawMessage) ([]model.Product, error) {
	out := make([]model.Product, 0, len(rows))
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		p, err := FormatProduct(r, i)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func FormatGeometries(rows [][]json.RawMessage) (model.Geometries, error) {
	out := make(model.Geometries, 0, len(rows))
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		g, err := FormatGeometry(r)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out = append(out, g)
	}
	return out, nil
}

func observationTime(dateRaw, timeRaw json.RawMessage) (time.Time, error) {
	date := text(dateRaw)
	clock := text(timeRaw)
	if date == "" || clock == "" {
		return time.Time{}, errors.New("missing date or time")
	}
	if len(clock) < 6 {
		clock = strings.Repeat("0", 6-len(clock)) + clock
	}
	return time.Parse(obsLayout, date+"T"+clock)
}

// text renders a JSON scalar without quotes; null becomes "".
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

func number(raw json.RawMessage) json.Number {
	return json.Number(text(raw))
}
