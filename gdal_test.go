package wetarea

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wgdzlh/wetarea/estimate"

	"github.com/lukeroth/gdal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSrid = 3348

// 在内存中生成单波段30m分类影像
func newMemDataset(t *testing.T, g *GdalToolbox, w, h int, data []int32) gdal.Dataset {
	t.Helper()
	driver, err := gdal.GetDriverByName(MEM_DRIVER_NAME)
	if err != nil {
		t.Skip("gdal MEM driver unavailable:", err)
	}
	ds := driver.Create("", w, h, 1, gdal.Int32, nil)
	require.NoError(t, ds.SetGeoTransform([6]float64{7000000, 30, 0, 1000000, 0, -30}))
	ref, err := g.getSridRef(testSrid)
	require.NoError(t, err)
	wkt, err := ref.ToWKT()
	require.NoError(t, err)
	require.NoError(t, ds.SetProjection(wkt))
	band := ds.RasterBand(1)
	require.NoError(t, band.SetNoDataValue(0))
	require.NoError(t, band.IO(gdal.Write, 0, 0, w, h, data, w, h, 0, 0))
	return ds
}

func TestGdalRasterReadWindow(t *testing.T) {
	g := NewGdalToolbox(estimate.DEFAULT_EXPECTED_CRS)
	data := make([]int32, 4*3)
	for i := range data {
		data[i] = int32(i)
	}
	r, err := g.NewGdalRaster("mem.tif", newMemDataset(t, g, 4, 3, data))
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "EPSG:3348", r.CRS())
	w, h := r.Size()
	assert.Equal(t, [2]int{4, 3}, [2]int{w, h})
	assert.Equal(t, 1, r.BandCount())
	assert.Equal(t, estimate.GeoTransform{7000000, 30, 0, 1000000, 0, -30}, r.GeoTransform())
	assert.Equal(t, estimate.NoData{Value: 0, Set: true}, r.NoData(1))

	buf, err := r.ReadWindow(1, estimate.Window{XOff: 1, YOff: 1, Width: 2, Height: 2})
	require.NoError(t, err)
	assert.Equal(t, []int32{5, 6, 9, 10}, buf)

	_, err = r.ReadWindow(2, estimate.Window{Width: 1, Height: 1})
	assert.ErrorIs(t, err, ErrWrongBand)
	_, err = r.ReadWindow(1, estimate.Window{XOff: 3, Width: 2, Height: 1})
	assert.ErrorIs(t, err, ErrWrongWindow)
}

// 写出测试用shp
func writeTestShapefile(t *testing.T, g *GdalToolbox, shp string, srid int, wkts ...string) {
	t.Helper()
	driver := gdal.OGRDriverByName(SHP_DRIVER_NAME)
	ds, ok := driver.Create(shp, nil)
	if !ok {
		t.Skip("gdal shapefile driver unavailable")
	}
	defer ds.Destroy()
	ref, err := g.getSridRef(srid)
	require.NoError(t, err)
	layer := ds.CreateLayer("boundary", ref, gdal.GT_Polygon, []string{ENCODING_OPTION})
	def := layer.Definition()
	for i, wkt := range wkts {
		geo, err := gdal.CreateFromWKT(wkt, ref)
		require.NoError(t, err)
		feature := def.Create()
		require.NoError(t, feature.SetFID(int64(i)))
		require.NoError(t, feature.SetGeometryDirectly(geo))
		require.NoError(t, layer.Create(feature))
		feature.Destroy()
	}
}

func TestLoadBoundaryUnionsFeatures(t *testing.T) {
	g := NewGdalToolbox(estimate.DEFAULT_EXPECTED_CRS)
	shp := filepath.Join(t.TempDir(), "SuperiorBoundaries.shp")
	writeTestShapefile(t, g, shp, testSrid,
		"POLYGON((0 0, 20 0, 20 10, 0 10, 0 0))",
		"POLYGON((10 0, 30 0, 30 10, 10 10, 10 0))",
	)

	b, err := g.LoadBoundary(shp)
	require.NoError(t, err)
	assert.Equal(t, "EPSG:3348", b.CRS)
	assert.Equal(t, 2, b.Features)
	require.NoError(t, b.Validate())
	bound := b.Bound()
	assert.InDelta(t, 0, bound.Min[0], 1e-9)
	assert.InDelta(t, 30, bound.Max[0], 1e-9)

	m, err := estimate.ExtractMask(b, "r.tif", estimate.GeoTransform{0, 1, 0, 10, 0, -1}, 40, 10)
	require.NoError(t, err)
	assert.Equal(t, 300, m.Count())
}

func TestLoadBoundaryMissingFile(t *testing.T) {
	_, err := NewGdalToolbox(estimate.DEFAULT_EXPECTED_CRS).LoadBoundary(filepath.Join(t.TempDir(), "nope.shp"))
	assert.ErrorIs(t, err, ErrGdalDriverOpen)
}

// ESRI格式（无AUTHORITY节点）的坐标系WKT
func esriWkt(t *testing.T, g *GdalToolbox, srid int) string {
	t.Helper()
	ref, err := g.getSridRef(srid)
	require.NoError(t, err)
	sp := ref.Clone()
	defer sp.Destroy()
	require.NoError(t, sp.MorphToESRI())
	wkt, err := sp.ToWKT()
	require.NoError(t, err)
	require.NotContains(t, wkt, AUTHORITY_NODE)
	return wkt
}

func TestCRSFromWktWithoutAuthority(t *testing.T) {
	g := NewGdalToolbox(estimate.DEFAULT_EXPECTED_CRS)
	wkt := esriWkt(t, g, testSrid)

	crs, err := g.crsFromWkt(wkt)
	require.NoError(t, err)
	assert.Equal(t, "EPSG:3348", crs)

	// 参数不同的坐标系不应被认作期望坐标系
	shifted := strings.Replace(wkt, "6200000", "6200100", 1)
	require.NotEqual(t, wkt, shifted)
	_, err = g.crsFromWkt(shifted)
	assert.ErrorIs(t, err, ErrVoidSrid)
}

func TestLoadBoundaryEsriPrj(t *testing.T) {
	g := NewGdalToolbox(estimate.DEFAULT_EXPECTED_CRS)
	shp := filepath.Join(t.TempDir(), "HuronBoundaries.shp")
	writeTestShapefile(t, g, shp, testSrid, "POLYGON((0 0, 20 0, 20 10, 0 10, 0 0))")
	prj := strings.TrimSuffix(shp, filepath.Ext(shp)) + ".prj"
	require.NoError(t, os.WriteFile(prj, []byte(esriWkt(t, g, testSrid)), 0o644))

	b, err := g.LoadBoundary(shp)
	require.NoError(t, err)
	assert.Equal(t, "EPSG:3348", b.CRS)
}
