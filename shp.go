package wetarea

import (
	"github.com/wgdzlh/wetarea/estimate"
	"github.com/wgdzlh/wetarea/log"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// 合并shp中所有要素为单个几何（不做坐标转换）
func (g *GdalToolbox) parseShp(shp string) (ret gdal.Geometry, crs string, features int, err error) {
	driver := gdal.OGRDriverByName(SHP_DRIVER_NAME)
	ds, ok := driver.Open(shp, 0)
	if !ok {
		err = ErrGdalDriverOpen
		return
	}
	defer ds.Destroy()
	var (
		layer   = ds.LayerByIndex(0)
		feature *gdal.Feature
		geo     gdal.Geometry
		gc      []destroyable
	)
	if crs, err = g.getCRS(layer.SpatialReference()); err != nil {
		log.Warn(g.logTag+"shp has no usable crs", zap.String("shp", shp), zap.Error(err))
		crs, err = "", nil
	}
	defer func() {
		for _, v := range gc {
			v.Destroy()
		}
	}()
	ret = gdal.Create(gdal.GT_Polygon)
	for {
		if feature = layer.NextFeature(); feature == nil {
			break
		}
		gc = append(gc, *feature)
		features++
		geo = feature.Geometry()
		switch geo.Type() {
		case gdal.GT_Polygon, gdal.GT_MultiPolygon:
		default:
			log.Error(g.logTag+"non polygon feature in boundary", zap.String("shp", shp), zap.Int64("fid", feature.FID()), zap.Uint("type", uint(geo.Type())))
			gc = append(gc, ret)
			err = ErrGdalWrongGeoType
			return
		}
		gc = append(gc, ret)
		ret = ret.Union(geo)
	}
	return
}

// 读取流域边界shp：所有面要素取并集
func (g *GdalToolbox) LoadBoundary(shp string) (b estimate.Boundary, err error) {
	log.Info(g.logTag+"start load boundary", zap.String("shp", shp))
	geo, crs, features, err := g.parseShp(shp)
	if err != nil {
		if err == ErrGdalWrongGeoType {
			err = &estimate.GeometryError{Path: shp, Reason: "boundary contains non polygon features"}
		}
		return
	}
	defer geo.Destroy()
	if geo.IsEmpty() {
		err = &estimate.GeometryError{Path: shp, Reason: "empty geometry"}
		return
	}
	wkb, err := geo.ToWKB()
	if err != nil {
		log.Error(g.logTag+"err in wkb convert", zap.String("shp", shp), zap.Error(err))
		return
	}
	b, err = estimate.BoundaryFromWKB(shp, crs, features, wkb)
	log.Info(g.logTag+"got boundary from shp", zap.String("shp", shp), zap.String("crs", crs),
		zap.Int("features", features), zap.Bool("succeed", err == nil))
	return
}
