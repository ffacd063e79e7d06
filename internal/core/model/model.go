// Package model defines core domain types shared across the downloader.
package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

type ReturnMode string

const (
	ModeCSV            ReturnMode = "csv"
	ModeVariable       ReturnMode = "variable"
	ModeCSVAndVariable ReturnMode = "csv_and_variable"
	ModeRaw            ReturnMode = "raw"
)

func ParseReturnMode(s string) (ReturnMode, bool) {
	switch m := ReturnMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeCSV, ModeVariable, ModeCSVAndVariable, ModeRaw:
		return m, true
	}
	return "", false
}

// WritesCSV reports whether formatted CSV files are produced.
func (m ReturnMode) WritesCSV() bool { return m == ModeCSV || m == ModeCSVAndVariable }

// ReturnsData reports whether records are handed back to the caller.
func (m ReturnMode) ReturnsData() bool { return m == ModeVariable || m == ModeCSVAndVariable }

// WritesFiles reports whether the mode needs an output directory.
func (m ReturnMode) WritesFiles() bool { return m != ModeVariable }

type SRID int

const (
	SRIDWGS84 SRID = 4326
	SRIDLAEA  SRID = 3035
)

// OutputSRID is the token get_geometries expects in output_srid.
func (s SRID) OutputSRID() string {
	if s == SRIDLAEA {
		return "laea"
	}
	return "wgs84"
}

func (s SRID) String() string {
	if s == SRIDLAEA {
		return "EPSG:3035"
	}
	return "EPSG:4326"
}

// GeometrySource is the normalized area of interest, always a WKT string in a known CRS.
type GeometrySource struct {
	SRID SRID
	WKT  string
	// File is set when the WKT was derived from a vector file.
	File string
}

// Query is a validated request against the AWIC service.
type Query struct {
	StartDate        time.Time
	CompletionDate   time.Time
	Geometry         GeometrySource
	CloudCoverageMax *int
	EUHydroID        string
	BasinName        string
	ObjectName       string
	OnlySize         bool
	OnlyIDs          bool
}

const DateLayout = "2006-01-02"

// Geometry is one row of the get_geometries payload.
type Geometry struct {
	ID         string `json:"id"`
	Geometry   string `json:"geometry"`
	BasinName  string `json:"basin_name"`
	EUHydroID  string `json:"eu_hydro_id"`
	ObjectName string `json:"object_nam"`
	Area       string `json:"area"`
	RiverKm    string `json:"river_km"`
}

func (g Geometry) Fields() []string {
	return []string{g.ID, g.Geometry, g.BasinName, g.EUHydroID, g.ObjectName, g.Area, g.RiverKm}
}

type Geometries []Geometry

// ByID indexes the geometries by identifier; later duplicates win.
func (gs Geometries) ByID() map[string]Geometry {
	out := make(map[string]Geometry, len(gs))
	for _, g := range gs {
		out[g.ID] = g
	}
	return out
}

// Product is one formatted AWIC statistics record. Metric values keep the
// textual form the service returned so file and in-memory outputs agree.
type Product struct {
	ID         int         `json:"id"`
	GeometryID string      `json:"geometries_id"`
	Datetime   string      `json:"datetime"`
	WaterPerc  json.Number `json:"water_perc"`
	IcePerc    json.Number `json:"ice_perc"`
	OtherPerc  json.Number `json:"other_perc"`
	CloudPerc  json.Number `json:"cloud_perc"`
	ShadowPerc json.Number `json:"shdw_perc"`
	NoDataPerc json.Number `json:"nd_perc"`
	QA         json.Number `json:"qa"`
	S1Perc     json.Number `json:"s1_perc"`
	S2Perc     json.Number `json:"s2_perc"`
	Source     string      `json:"source"`
}

func (p Product) Fields() []string {
	return []string{
		strconv.Itoa(p.ID), p.GeometryID, p.Datetime,
		p.WaterPerc.String(), p.IcePerc.String(), p.OtherPerc.String(),
		p.CloudPerc.String(), p.ShadowPerc.String(), p.NoDataPerc.String(),
		p.QA.String(), p.S1Perc.String(), p.S2Perc.String(),
		p.Source,
	}
}

var (
	GeometryHeader = []string{"id", "geometry", "basin_name", "eu_hydro_id", "object_nam", "area", "river_km"}
	ProductHeader  = []string{
		"id", "geometries_id", "datetime", "water_perc", "ice_perc", "other_perc",
		"cloud_perc", "shdw_perc", "nd_perc", "qa", "s1_perc", "s2_perc", "source",
	}
)
