// Package awicapi builds query strings for the HR-WSI AWIC service.
package awicapi

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
)

const (
	ProcAWIC       = "get_awic"
	ProcGeometries = "get_geometries"
)

const (
	ParamGeometryWGS84    = "geometrywkt_wgs84"
	ParamGeometryLAEA     = "geometrywkt_laea"
	ParamStartDate        = "startdate"
	ParamCompletionDate   = "completiondate"
	ParamCloudCoverageMax = "cloudcoveragemax"
	ParamEUHydroID        = "euhydroid"
	ParamBasinName        = "basinname"
	ParamObjectName       = "objectname"
	ParamOnlySize         = "getonlysize"
	ParamOutputSRID       = "output_srid"
	ParamOnlyIDs          = "getonlyids"
)

// MetadataURL is the catalogue record linked from AWIC_MTD.xml.
const MetadataURL = "https://sdi.eea.europa.eu/catalogue/srv/eng/catalog.search#/metadata/5752e8b5-ecda-4013-8eb9-e27f8515b87e"

func Endpoint(base, proc string) string {
	return strings.TrimRight(base, "/") + "/" + proc
}

// GeometryParam returns the query key matching the geometry CRS.
func GeometryParam(srid model.SRID) string {
	if srid == model.SRIDLAEA {
		return ParamGeometryLAEA
	}
	return ParamGeometryWGS84
}

func BuildAWICParams(q model.Query) url.Values {
	params := url.Values{}
	params.Set(GeometryParam(q.Geometry.SRID), q.Geometry.WKT)
	if q.CloudCoverageMax != nil {
		params.Set(ParamCloudCoverageMax, strconv.Itoa(*q.CloudCoverageMax))
	}
	if !q.StartDate.IsZero() {
		params.Set(ParamStartDate, q.StartDate.Format(model.DateLayout))
	}
	if !q.CompletionDate.IsZero() {
		params.Set(ParamCompletionDate, q.CompletionDate.Format(model.DateLayout))
	}
	setIdentifiers(params, q)
	if q.OnlySize {
		params.Set(ParamOnlySize, "true")
	}
	return params
}

func BuildGeometriesParams(q model.Query) url.Values {
	params := url.Values{}
	params.Set(GeometryParam(q.Geometry.SRID), q.Geometry.WKT)
	setIdentifiers(params, q)
	params.Set(ParamOutputSRID, q.Geometry.SRID.OutputSRID())
	if q.OnlyIDs {
		params.Set(ParamOnlyIDs, "true")
	}
	return params
}

// unset identifiers are omitted; the service reads absence as NONE
func setIdentifiers(params url.Values, q model.Query) {
	if v := strings.TrimSpace(q.EUHydroID); v != "" {
		params.Set(ParamEUHydroID, v)
	}
	if v := strings.TrimSpace(q.BasinName); v != "" {
		params.Set(ParamBasinName, v)
	}
	if v := strings.TrimSpace(q.ObjectName); v != "" {
		params.Set(ParamObjectName, v)
	}
}

// RequestURL joins endpoint and encoded params.
func RequestURL(base, proc string, params url.Values) string {
	return Endpoint(base, proc) + "?" + params.Encode()
}
