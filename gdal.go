package wetarea

import (
	"strconv"
	"strings"
	"sync"

	"github.com/wgdzlh/wetarea/estimate"
	"github.com/wgdzlh/wetarea/log"

	"github.com/lukeroth/gdal"
	"go.uber.org/zap"
)

// 基于GDAL读取分类影像与流域边界shp
type GdalToolbox struct {
	expected string // 期望坐标系，prj缺少AUTHORITY时用于比对
	refMap   map[int]gdal.SpatialReference
	rLock    sync.Mutex
	logTag   string
}

// 由GDAL库C语言创建的内存对象，需要手动调用Destroy回收
type destroyable interface {
	Destroy()
}

func NewGdalToolbox(expectedCRS string) *GdalToolbox {
	return &GdalToolbox{
		expected: estimate.NormalizeCRS(expectedCRS),
		refMap:   map[int]gdal.SpatialReference{},
		logTag:   "GdalToolbox:",
	}
}

// 获取srid对应的坐标系（可复用，故无需回收）
func (g *GdalToolbox) getSridRef(srid int) (ref gdal.SpatialReference, err error) {
	g.rLock.Lock()
	defer g.rLock.Unlock()
	ref, ok := g.refMap[srid]
	if ok {
		return
	}
	ref = gdal.CreateSpatialReference("")
	if err = ref.FromEPSG(srid); err != nil {
		log.Error(g.logTag+"set ref srid failed", zap.Int("srid", srid), zap.Error(err))
		ref.Destroy()
		return
	}
	// 数据轴次序固定为(x,y)，即传统GIS坐标序
	ref.SetAxisMappingStrategy(gdal.OAMS_TraditionalGisOrder)
	g.refMap[srid] = ref
	return
}

// 由坐标系得到"EPSG:xxxx"形式的标识
func (g *GdalToolbox) getCRS(sp gdal.SpatialReference) (crs string, err error) {
	name, _ := sp.AttrValue(AUTHORITY_NODE, 0)
	rawId, ok := sp.AttrValue(AUTHORITY_NODE, 1)
	if !ok || rawId == "" {
		// 不规范的prj文件可能缺少AUTHORITY节点
		if e := sp.AutoIdentifyEPSG(); e == nil {
			name, _ = sp.AttrValue(AUTHORITY_NODE, 0)
			rawId, ok = sp.AttrValue(AUTHORITY_NODE, 1)
		}
	}
	if !ok || rawId == "" {
		if g.sameAsExpected(sp) {
			crs = g.expected
			log.Debug(g.logTag+"spatial ref matches expected crs", zap.String("crs", crs))
			return
		}
		wkt, _ := sp.ToWKT()
		log.Warn(g.logTag+"spatial ref without authority", zap.String("wkt", wkt))
		err = ErrVoidSrid
		return
	}
	if _, e := strconv.Atoi(rawId); e != nil || name == "" {
		name = EPSG_AUTHORITY
	}
	crs = estimate.NormalizeCRS(name + ":" + rawId)
	log.Debug(g.logTag+"got crs from sp", zap.String("crs", crs))
	return
}

// ESRI格式的prj通常没有AUTHORITY节点，与期望坐标系逐项比对
func (g *GdalToolbox) sameAsExpected(sp gdal.SpatialReference) bool {
	auth, code, found := strings.Cut(g.expected, ":")
	if !found || auth != EPSG_AUTHORITY {
		return false
	}
	srid, err := strconv.Atoi(code)
	if err != nil {
		return false
	}
	ref, err := g.getSridRef(srid)
	if err != nil {
		return false
	}
	return sp.IsSame(ref)
}

// 由影像投影WKT得到坐标系标识
func (g *GdalToolbox) crsFromWkt(wkt string) (crs string, err error) {
	if wkt == "" {
		err = ErrVoidSrid
		return
	}
	sp := gdal.CreateSpatialReference(wkt)
	defer sp.Destroy()
	return g.getCRS(sp)
}
