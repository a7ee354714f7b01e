package estimate

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// 裁剪窗口内的掩膜，Inside按行优先存储
type Mask struct {
	Window Window
	Inside []bool
}

func (m Mask) Count() (n int) {
	for _, v := range m.Inside {
		if v {
			n++
		}
	}
	return
}

func (m Mask) Equal(o Mask) bool {
	if m.Window != o.Window || len(m.Inside) != len(o.Inside) {
		return false
	}
	for i := range m.Inside {
		if m.Inside[i] != o.Inside[i] {
			return false
		}
	}
	return true
}

// 按边界外包框裁剪影像，并按扫描线生成窗口内的掩膜
// 像元中心落在边界面内（含任一环的边上）的像元为true；多个面取并集，面内按奇偶规则处理洞
func ExtractMask(b Boundary, path string, gt GeoTransform, width, height int) (m Mask, err error) {
	if err = b.Validate(); err != nil {
		return
	}
	if !gt.IsNorthUp() {
		err = ErrRotatedRaster
		return
	}
	bb := b.Bound()
	extent := gt.Extent(width, height)
	boundsErr := &RasterBoundsError{Raster: path, Boundary: bb, Extent: extent}
	if !bb.Intersects(extent) {
		err = boundsErr
		return
	}
	col0, row0, col1, row1 := gt.pixelSpan(bb)
	col0, col1 = clamp(col0, 0, width), clamp(col1, 0, width)
	row0, row1 = clamp(row0, 0, height), clamp(row1, 0, height)
	m.Window = Window{XOff: col0, YOff: row0, Width: col1 - col0, Height: row1 - row0}
	if m.Window.Empty() {
		err = boundsErr
		return
	}
	m.Inside = make([]bool, m.Window.Size())
	polys := make([][]edge, len(b.Geometry))
	for i, p := range b.Geometry {
		polys[i] = polygonEdges(p)
	}
	sl := scanline{gt: gt, col0: col0}
	for r := 0; r < m.Window.Height; r++ {
		sl.row = m.Inside[r*m.Window.Width : (r+1)*m.Window.Width]
		y := gt.PixelCenter(col0, row0+r)[1]
		for _, edges := range polys {
			sl.fill(edges, y)
		}
	}
	return
}

type edge struct {
	a, b       orb.Point
	minY, maxY float64
}

// 面的所有环（外环与洞）的边
func polygonEdges(p orb.Polygon) (edges []edge) {
	for _, ring := range p {
		n := len(ring)
		for i := 0; i < n; i++ {
			a, b := ring[i], ring[(i+1)%n]
			if a == b {
				continue
			}
			edges = append(edges, edge{a: a, b: b, minY: math.Min(a[1], b[1]), maxY: math.Max(a[1], b[1])})
		}
	}
	return
}

// 单行扫描：row为窗口中的一行，col0为窗口起始列
type scanline struct {
	gt   GeoTransform
	col0 int
	row  []bool
	xs   []float64
}

func (s *scanline) fill(edges []edge, y float64) {
	s.xs = s.xs[:0]
	for _, e := range edges {
		if y < e.minY || y > e.maxY {
			continue
		}
		switch {
		case e.a[1] == y && e.b[1] == y:
			s.burn(math.Min(e.a[0], e.b[0]), math.Max(e.a[0], e.b[0]))
			continue
		case e.a[1] == y:
			s.burn(e.a[0], e.a[0])
		}
		// 半开区间判定交点，顶点不会重复计入
		if (e.a[1] > y) != (e.b[1] > y) {
			s.xs = append(s.xs, e.a[0]+(y-e.a[1])*(e.b[0]-e.a[0])/(e.b[1]-e.a[1]))
		}
	}
	sort.Float64s(s.xs)
	for i := 0; i+1 < len(s.xs); i += 2 {
		s.burn(s.xs[i], s.xs[i+1])
	}
}

// 将中心x坐标落在[x0, x1]内的像元置为true
func (s *scanline) burn(x0, x1 float64) {
	c0 := int(math.Ceil((x0-s.gt[0])/s.gt[1]-0.5)) - s.col0
	c1 := int(math.Floor((x1-s.gt[0])/s.gt[1]-0.5)) - s.col0
	if c0 < 0 {
		c0 = 0
	}
	if c1 > len(s.row)-1 {
		c1 = len(s.row) - 1
	}
	for c := c0; c <= c1; c++ {
		s.row[c] = true
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
