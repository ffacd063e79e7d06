// Package sink writes download results to the output directory.
package sink

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/mohammed-shakir/awic-downloader/internal/core/model"
)

const (
	AWICFile       = "awic.csv"
	GeometriesFile = "geometries.csv"
	MetadataFile   = "AWIC_MTD.xml"
	ManifestFile   = "manifest.json"
	RawAWICFile    = "awic.json"
	RawGeomFile    = "geometries.json"
)

// Separator is the CSV field delimiter used by every output file.
const Separator = ';'

// EnsureDir creates dir when missing and returns its absolute path.
func EnsureDir(logger *slog.Logger, dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	st, err := os.Stat(abs)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("creating directory", "dir", abs)
		if err := os.MkdirAll(abs, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	case err != nil:
		return "", fmt.Errorf("stat output dir: %w", err)
	case !st.IsDir():
		return "", fmt.Errorf("output path %s is not a directory", abs)
	default:
		logger.Warn("existing directory", "dir", abs)
	}
	return abs, nil
}

func WriteAWICCSV(dir string, products []model.Product) (string, error) {
	rows := make([][]string, 0, len(products))
	for _, p := range products {
		rows = append(rows, p.Fields())
	}
	return writeCSV(filepath.Join(dir, AWICFile), model.ProductHeader, rows)
}

func WriteGeometriesCSV(dir string, geoms model.Geometries) (string, error) {
	rows := make([][]string, 0, len(geoms))
	for _, g := range geoms {
		rows = append(rows, g.Fields())
	}
	return writeCSV(filepath.Join(dir, GeometriesFile), model.GeometryHeader, rows)
}

func writeCSV(path string, header []string, rows [][]string) (string, error) {
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	w := csv.NewWriter(f)
	w.Comma = Separator
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s header: %w", filepath.Base(path), err)
	}
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	return path, nil
}

// WriteRaw stores an upstream body untouched.
func WriteRaw(dir, name string, body []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return path, nil
}

type metadataLink struct {
	XMLName xml.Name `xml:"MT_Metadata"`
	URL     string   `xml:"url,attr"`
}

// WriteMetadata writes the catalogue link file shipped next to the CSVs.
func WriteMetadata(dir, url string) (string, error) {
	b, err := xml.Marshal(metadataLink{URL: url})
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	return WriteRaw(dir, MetadataFile, b)
}

// Manifest summarizes one run for downstream tooling.
type Manifest struct {
	GeneratedAt      string   `json:"generated_at"`
	ReturnMode       string   `json:"return_mode"`
	StartDate        string   `json:"start_date"`
	CompletionDate   string   `json:"completion_date"`
	CRS              string   `json:"crs"`
	GeometryWKT      string   `json:"geometry_wkt"`
	GeometryFile     string   `json:"geometry_file,omitempty"`
	CloudCoverageMax *int     `json:"cloud_coverage_max,omitempty"`
	Geometries       int      `json:"geometries"`
	Products         int      `json:"products"`
	Files            []string `json:"files"`
	H3Res            int      `json:"h3_res,omitempty"`
	AOICells         []string `json:"aoi_cells,omitempty"`
}

func WriteManifest(dir string, m Manifest) (string, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode manifest: %w", err)
	}
	return WriteRaw(dir, ManifestFile, append(b, '\n'))
}
