package estimate

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// RFC 7946 GeoJSON的默认坐标系
const GEOJSON_DEFAULT_CRS = "EPSG:4326"

// 流域边界：一个或多个面要素，按并集参与掩膜
type Boundary struct {
	Path     string
	CRS      string
	Geometry orb.MultiPolygon
	Features int
}

// 收集几何中的面，非面几何返回GeometryError
func NewBoundary(path, crs string, gs ...orb.Geometry) (b Boundary, err error) {
	b = Boundary{Path: path, CRS: crs, Features: len(gs)}
	for _, g := range gs {
		switch v := g.(type) {
		case nil:
			continue
		case orb.Polygon:
			b.Geometry = append(b.Geometry, v)
		case orb.MultiPolygon:
			b.Geometry = append(b.Geometry, v...)
		case orb.Collection:
			var sub Boundary
			if sub, err = NewBoundary(path, crs, v...); err != nil {
				return
			}
			b.Geometry = append(b.Geometry, sub.Geometry...)
		default:
			err = &GeometryError{Path: path, Reason: fmt.Sprintf("unsupported geometry type %s", g.GeoJSONType())}
			return
		}
	}
	return
}

// 从WKB（GDAL导出）构造边界
func BoundaryFromWKB(path, crs string, features int, data []byte) (b Boundary, err error) {
	g, err := wkb.Unmarshal(data)
	if err != nil {
		err = &GeometryError{Path: path, Reason: "decode wkb: " + err.Error()}
		return
	}
	if b, err = NewBoundary(path, crs, g); err != nil {
		return
	}
	b.Features = features
	return
}

func (b Boundary) Bound() orb.Bound {
	return b.Geometry.Bound()
}

func (b Boundary) Validate() error {
	if len(b.Geometry) == 0 {
		return &GeometryError{Path: b.Path, Reason: "empty geometry"}
	}
	for i, p := range b.Geometry {
		if len(p) == 0 {
			return &GeometryError{Path: b.Path, Reason: fmt.Sprintf("polygon %d has no rings", i)}
		}
		for j, r := range p {
			if len(r) < 4 {
				return &GeometryError{Path: b.Path, Reason: fmt.Sprintf("polygon %d ring %d has %d points", i, j, len(r))}
			}
			for _, pt := range r {
				if math.IsNaN(pt[0]) || math.IsNaN(pt[1]) || math.IsInf(pt[0], 0) || math.IsInf(pt[1], 0) {
					return &GeometryError{Path: b.Path, Reason: fmt.Sprintf("polygon %d ring %d has non-finite coordinates", i, j)}
				}
			}
		}
		if planar.Area(p[0]) == 0 {
			return &GeometryError{Path: b.Path, Reason: fmt.Sprintf("polygon %d has zero area", i)}
		}
	}
	return nil
}

// 不依赖GDAL的GeoJSON边界读取
type GeoJSONLoader struct{}

func (GeoJSONLoader) LoadBoundary(path string) (b Boundary, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		err = &GeometryError{Path: path, Reason: "decode geojson: " + err.Error()}
		return
	}
	gs := make([]orb.Geometry, 0, len(fc.Features))
	for _, f := range fc.Features {
		gs = append(gs, f.Geometry)
	}
	return NewBoundary(path, geoJSONCRS(fc), gs...)
}

// 兼容旧版GeoJSON中的crs成员
func geoJSONCRS(fc *geojson.FeatureCollection) string {
	crs, ok := fc.ExtraMembers["crs"].(map[string]interface{})
	if !ok {
		return GEOJSON_DEFAULT_CRS
	}
	props, ok := crs["properties"].(map[string]interface{})
	if !ok {
		return GEOJSON_DEFAULT_CRS
	}
	name, ok := props["name"].(string)
	if !ok || name == "" {
		return GEOJSON_DEFAULT_CRS
	}
	return NormalizeCRS(name)
}

// 按文件扩展名选择边界读取器
type ExtBoundaryLoader map[string]BoundaryLoader

func (m ExtBoundaryLoader) LoadBoundary(path string) (b Boundary, err error) {
	l, ok := m[strings.ToLower(filepath.Ext(path))]
	if !ok {
		err = fmt.Errorf("no boundary loader for %q", path)
		return
	}
	return l.LoadBoundary(path)
}
