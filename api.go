package wetarea

import "github.com/wgdzlh/wetarea/estimate"

var (
	_ estimate.RasterOpener   = (*GdalToolbox)(nil)
	_ estimate.BoundaryLoader = (*GdalToolbox)(nil)
	_ estimate.Raster         = (*GdalRaster)(nil)
)
