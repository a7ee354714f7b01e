package wetarea

import "errors"

var (
	ErrGdalDriverOpen   = errors.New("gdal driver open err")
	ErrVoidSrid         = errors.New("gdal spatial ref with void srid")
	ErrInvalidTif       = errors.New("invalid tif")
	ErrTifReadFailed    = errors.New("tif read failed")
	ErrWrongBand        = errors.New("wrong band index")
	ErrWrongWindow      = errors.New("window outside raster")
	ErrGdalWrongGeoType = errors.New("gdal wrong geo type")
)
