package estimate

import (
	"context"
	"math"

	"github.com/paulmach/orb"
)

// GDAL仿射变换参数：
// Xgeo = gt[0] + col*gt[1] + row*gt[2]
// Ygeo = gt[3] + col*gt[4] + row*gt[5]
type GeoTransform [6]float64

func (gt GeoTransform) IsNorthUp() bool {
	return gt[2] == 0 && gt[4] == 0 && gt[1] > 0 && gt[5] < 0
}

func (gt GeoTransform) Extent(width, height int) orb.Bound {
	return orb.Bound{
		Min: orb.Point{gt[0], gt[3] + float64(height)*gt[5]},
		Max: orb.Point{gt[0] + float64(width)*gt[1], gt[3]},
	}
}

func (gt GeoTransform) PixelCenter(col, row int) orb.Point {
	return orb.Point{
		gt[0] + (float64(col)+0.5)*gt[1],
		gt[3] + (float64(row)+0.5)*gt[5],
	}
}

// 覆盖bound的像元范围（未裁剪到影像大小）
func (gt GeoTransform) pixelSpan(b orb.Bound) (col0, row0, col1, row1 int) {
	col0 = int(math.Floor((b.Min[0] - gt[0]) / gt[1]))
	col1 = int(math.Ceil((b.Max[0] - gt[0]) / gt[1]))
	row0 = int(math.Floor((b.Max[1] - gt[3]) / gt[5]))
	row1 = int(math.Ceil((b.Min[1] - gt[3]) / gt[5]))
	return
}

// 影像中的像元窗口
type Window struct {
	XOff   int
	YOff   int
	Width  int
	Height int
}

func (w Window) Size() int {
	return w.Width * w.Height
}

func (w Window) Empty() bool {
	return w.Width <= 0 || w.Height <= 0
}

type NoData struct {
	Value float64
	Set   bool
}

func (n NoData) Match(v int32) bool {
	return n.Set && float64(v) == n.Value
}

// 分类结果影像，每个波段对应一个模型（波段1=模型1）
type Raster interface {
	Path() string
	CRS() string
	Size() (width, height int)
	GeoTransform() GeoTransform
	BandCount() int
	// band从1开始
	NoData(band int) NoData
	ReadWindow(band int, win Window) ([]int32, error)
	Close() error
}

type RasterOpener interface {
	OpenRaster(path string) (Raster, error)
}

type BoundaryLoader interface {
	LoadBoundary(path string) (Boundary, error)
}

// 流域输入输出路径的解析策略
type PathResolver interface {
	BoundaryPath(basin string) string
	RasterPaths(basin string) ([]string, error)
	ReportPath(basin string) string
}

type ReportWriter interface {
	WriteReport(ctx context.Context, r Report, path string) error
}

// 可选的结果归档
type Archive interface {
	SaveReport(ctx context.Context, runID string, r Report) error
}
