package config

import (
	"path/filepath"
	"strings"

	"github.com/wgdzlh/wetarea/utils"
)

const (
	PH_BASIN = "{basin}"
	PH_SLUG  = "{slug}"
)

// 本地磁盘布局：按流域名展开路径模板
type Layout Paths

func expand(tpl, basin string) string {
	r := strings.NewReplacer(PH_BASIN, basin, PH_SLUG, utils.Slug(basin))
	return filepath.Clean(r.Replace(tpl))
}

func (l Layout) BoundaryPath(basin string) string {
	return expand(l.Boundary, basin)
}

// 目录下的所有影像；模板直接指向影像文件时返回该文件
func (l Layout) RasterPaths(basin string) ([]string, error) {
	p := expand(l.Rasters, basin)
	if utils.IsRasterFile(p) {
		return []string{p}, nil
	}
	return utils.ListRasterFiles(p)
}

func (l Layout) ReportPath(basin string) string {
	return expand(l.Report, basin)
}
