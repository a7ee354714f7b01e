package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wgdzlh/wetarea/estimate"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
basins: [Superior, Erie]
class_mapping:
  1: bog
  2: fen
  3: swamp
  4: marsh
  5: water
  9: shallow water
pixel_area_km2: 0.0009
expected_crs: epsg:3348
include_empty_classes: true
workers: 2
paths:
  boundary: /data/boundaryShapefiles/USCAN/{basin}/{basin}Boundaries.shp
  rasters: /data/predictionRasters/{basin}
  report: /data/areaEstimate/wetlandAreas{slug}.xlsx
archive: /data/areas.db
`

func TestParse(t *testing.T) {
	c, err := Parse([]byte(sample))
	require.NoError(t, err)
	assert.Equal(t, []string{"Superior", "Erie"}, c.Basins)
	assert.Equal(t, "shallow water", c.ClassMapping[9])
	assert.True(t, c.IncludeEmptyClasses)
	assert.Equal(t, "/data/areas.db", c.Archive)
	assert.Equal(t, estimate.DEFAULT_UNKNOWN_LABEL, c.UnknownLabel)

	s := c.Settings()
	assert.Equal(t, "epsg:3348", s.ExpectedCRS)
	assert.True(t, s.PixelAreaKm2.Equal(decimal.RequireFromString("0.0009")))
	assert.Equal(t, 2, s.Workers)
	assert.Len(t, s.Classes, 6)
}

func TestParseKeepsDefaults(t *testing.T) {
	c, err := Parse([]byte("basins: [Huron]\n"))
	require.NoError(t, err)
	d := Default()
	assert.Equal(t, []string{"Huron"}, c.Basins)
	assert.Equal(t, d.ClassMapping, c.ClassMapping)
	assert.Equal(t, d.Paths, c.Paths)
	assert.Equal(t, estimate.DEFAULT_EXPECTED_CRS, c.ExpectedCRS)
	assert.InDelta(t, 0.0009, c.PixelAreaKm2, 1e-12)
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"duplicated basin": "basins: [Erie, Erie]",
		"negative area":    "pixel_area_km2: -1",
		"duplicate label":  "class_mapping: {1: bog, 2: bog}",
		"bad crs":          "expected_crs: nonsense",
		"negative workers": "workers: -2",
		"blank basin":      "basins: [' ']",
		"bad yaml":         "basins: [",
		"csv report":       "paths: {report: 'out/{basin}.csv'}",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
	_, err := Parse([]byte("basins: [Erie, Erie]"))
	assert.ErrorIs(t, err, ErrDuplicatedBasin)
	_, err = Parse([]byte("paths: {report: 'out/{basin}.csv'}"))
	assert.ErrorIs(t, err, ErrReportExt)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wetarea.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))
	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Basins, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLayout(t *testing.T) {
	dir := t.TempDir()
	rasterDir := filepath.Join(dir, "predictionRasters", "Lac Saint-Jean")
	require.NoError(t, os.MkdirAll(rasterDir, 0o755))
	for _, n := range []string{"m2.img", "m1.tif", "readme.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(rasterDir, n), nil, 0o644))
	}
	l := Layout{
		Boundary: filepath.Join(dir, "boundaryShapefiles", "{basin}", "{basin}Boundaries.shp"),
		Rasters:  filepath.Join(dir, "predictionRasters", "{basin}"),
		Report:   filepath.Join(dir, "areaEstimate", "wetlandAreas{slug}.xlsx"),
	}
	basin := "Lac Saint-Jean"
	assert.Equal(t, filepath.Join(dir, "boundaryShapefiles", basin, basin+"Boundaries.shp"), l.BoundaryPath(basin))
	assert.Equal(t, filepath.Join(dir, "areaEstimate", "wetlandAreasLac_Saint_Jean.xlsx"), l.ReportPath(basin))

	rasters, err := l.RasterPaths(basin)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(rasterDir, "m1.tif"), filepath.Join(rasterDir, "m2.img")}, rasters)

	single := Layout{Rasters: filepath.Join(dir, "{basin}.tif")}
	rasters, err = single.RasterPaths("Erie")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "Erie.tif")}, rasters)

	_, err = l.RasterPaths("Missing")
	assert.Error(t, err)
}

func TestLayoutImplementsResolver(t *testing.T) {
	var _ estimate.PathResolver = Default().Layout()
}
