package estimate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/paulmach/orb"
)

type memRaster struct {
	path   string
	crs    string
	gt     GeoTransform
	width  int
	height int
	bands  [][]int32
	nodata []NoData
	closed bool
}

func (r *memRaster) Path() string               { return r.path }
func (r *memRaster) CRS() string                { return r.crs }
func (r *memRaster) Size() (int, int)           { return r.width, r.height }
func (r *memRaster) GeoTransform() GeoTransform { return r.gt }
func (r *memRaster) BandCount() int             { return len(r.bands) }
func (r *memRaster) Close() error               { r.closed = true; return nil }

func (r *memRaster) NoData(band int) NoData {
	if band-1 < len(r.nodata) {
		return r.nodata[band-1]
	}
	return NoData{}
}

func (r *memRaster) ReadWindow(band int, w Window) ([]int32, error) {
	if band < 1 || band > len(r.bands) {
		return nil, fmt.Errorf("no band %d", band)
	}
	src := r.bands[band-1]
	out := make([]int32, 0, w.Size())
	for row := w.YOff; row < w.YOff+w.Height; row++ {
		out = append(out, src[row*r.width+w.XOff:row*r.width+w.XOff+w.Width]...)
	}
	return out, nil
}

// 30m像元，左上角位于(x0, y0)
func newMemRaster(path, crs string, x0, y0 float64, width, height int, bands ...[]int32) *memRaster {
	return &memRaster{
		path:   path,
		crs:    crs,
		gt:     GeoTransform{x0, 30, 0, y0, 0, -30},
		width:  width,
		height: height,
		bands:  bands,
	}
}

func rectBoundary(path, crs string, minX, minY, maxX, maxY float64) Boundary {
	return Boundary{
		Path:     path,
		CRS:      crs,
		Features: 1,
		Geometry: orb.MultiPolygon{{{
			{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY}, {minX, minY},
		}}},
	}
}

type fakeOpener struct {
	mu      sync.Mutex
	rasters map[string]*memRaster
	opened  []*memRaster
}

func (o *fakeOpener) OpenRaster(path string) (Raster, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	r, ok := o.rasters[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	cp := *r
	o.opened = append(o.opened, &cp)
	return &cp, nil
}

func (o *fakeOpener) allClosed() bool {
	for _, r := range o.opened {
		if !r.closed {
			return false
		}
	}
	return true
}

type fakeLoader map[string]Boundary

func (l fakeLoader) LoadBoundary(path string) (Boundary, error) {
	b, ok := l[path]
	if !ok {
		return Boundary{}, fmt.Errorf("open %s: no such file", path)
	}
	return b, nil
}

type fakePaths struct {
	rasters map[string][]string
}

func (fakePaths) BoundaryPath(basin string) string {
	return filepath.Join("boundaries", basin, basin+"Boundaries.shp")
}

func (p fakePaths) RasterPaths(basin string) ([]string, error) {
	return p.rasters[basin], nil
}

func (fakePaths) ReportPath(basin string) string {
	return filepath.Join("out", "wetlandAreas"+basin+".xlsx")
}

type captureWriter struct {
	mu      sync.Mutex
	reports map[string]Report
	fail    map[string]bool
}

func (w *captureWriter) WriteReport(_ context.Context, r Report, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail[r.Basin] {
		return errors.New("permission denied")
	}
	if w.reports == nil {
		w.reports = map[string]Report{}
	}
	w.reports[path] = r
	return nil
}
