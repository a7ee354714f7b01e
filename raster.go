package wetarea

import (
	"github.com/wgdzlh/wetarea/estimate"
	"github.com/wgdzlh/wetarea/log"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// 打开的分类影像，使用完需Close
type GdalRaster struct {
	path   string
	crs    string
	ds     gdal.Dataset
	width  int
	height int
	bands  int
	gt     estimate.GeoTransform
	logTag string
}

// 只读打开影像
func (g *GdalToolbox) OpenRaster(path string) (r estimate.Raster, err error) {
	ds, err := gdal.Open(path, gdal.ReadOnly)
	if err != nil {
		log.Error(g.logTag+"open tif failed", zap.String("tif", path), zap.Error(err))
		err = ErrInvalidTif
		return
	}
	gr, err := g.NewGdalRaster(path, ds)
	if err != nil {
		ds.Close()
		return
	}
	r = gr
	return
}

// 包装已打开的数据集，所有权交给GdalRaster
func (g *GdalToolbox) NewGdalRaster(path string, ds gdal.Dataset) (r *GdalRaster, err error) {
	r = &GdalRaster{
		path:   path,
		ds:     ds,
		width:  ds.RasterXSize(),
		height: ds.RasterYSize(),
		bands:  ds.RasterCount(),
		gt:     estimate.GeoTransform(ds.GeoTransform()),
		logTag: g.logTag,
	}
	if r.bands == 0 || r.width == 0 || r.height == 0 {
		log.Error(g.logTag+"empty tif", zap.String("tif", path), zap.Int("bands", r.bands))
		err = ErrInvalidTif
		return
	}
	// 坐标系缺失时保留空标识，由校验环节报告不一致
	if r.crs, err = g.crsFromWkt(ds.Projection()); err != nil {
		log.Warn(g.logTag+"tif has no usable crs", zap.String("tif", path), zap.Error(err))
		err = nil
	}
	log.Info(g.logTag+"opened tif", zap.String("tif", path), zap.String("crs", r.crs),
		zap.Int("bands", r.bands), zap.Int("width", r.width), zap.Int("height", r.height))
	return
}

func (r *GdalRaster) Path() string {
	return r.path
}

func (r *GdalRaster) CRS() string {
	return r.crs
}

func (r *GdalRaster) Size() (width, height int) {
	return r.width, r.height
}

func (r *GdalRaster) GeoTransform() estimate.GeoTransform {
	return r.gt
}

func (r *GdalRaster) BandCount() int {
	return r.bands
}

func (r *GdalRaster) NoData(band int) (nd estimate.NoData) {
	if band < 1 || band > r.bands {
		return
	}
	nd.Value, nd.Set = r.ds.RasterBand(band).NoDataValue()
	return
}

// 读取波段窗口内的类别编码
func (r *GdalRaster) ReadWindow(band int, win estimate.Window) (buf []int32, err error) {
	if band < 1 || band > r.bands {
		err = ErrWrongBand
		return
	}
	if win.Empty() || win.XOff < 0 || win.YOff < 0 || win.XOff+win.Width > r.width || win.YOff+win.Height > r.height {
		err = ErrWrongWindow
		return
	}
	buf = make([]int32, win.Size())
	rb := r.ds.RasterBand(band)
	if err = rb.IO(gdal.Read, win.XOff, win.YOff, win.Width, win.Height, buf, win.Width, win.Height, 0, 0); err != nil {
		log.Error(r.logTag+"read tif band failed", zap.String("tif", r.path), zap.Int("band", band), zap.Error(err))
		err = ErrTifReadFailed
	}
	return
}

func (r *GdalRaster) Close() error {
	r.ds.Close()
	return nil
}
