package estimate

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

var (
	ErrCRSMismatch   = errors.New("crs mismatch")
	ErrGeometry      = errors.New("invalid boundary geometry")
	ErrRasterBounds  = errors.New("boundary does not overlap raster")
	ErrWrite         = errors.New("report write failed")
	ErrNoRasters     = errors.New("no raster files")
	ErrRotatedRaster = errors.New("rotated or south-up geotransform not supported")
	ErrWindowSize    = errors.New("band data does not match mask window")
	ErrEmptyBasin    = errors.New("empty basin name")
)

// 流程阶段，用于定位失败位置
const (
	StageBoundary    = "load-boundary"
	StageRasters     = "list-rasters"
	StageOpenRaster  = "open-raster"
	StageValidateCRS = "validate-crs"
	StageMask        = "mask"
	StageReadBand    = "read-band"
	StageWrite       = "write"
	StageArchive     = "archive"
	StageRun         = "run"
)

type CRSMismatchError struct {
	Input    string // raster / boundary
	Path     string
	Actual   string
	Expected string
}

func (e *CRSMismatchError) Error() string {
	actual := e.Actual
	if actual == "" {
		actual = "<undefined>"
	}
	return fmt.Sprintf("%s %s has crs %s, expected %s", e.Input, e.Path, actual, e.Expected)
}

func (e *CRSMismatchError) Unwrap() error { return ErrCRSMismatch }

type GeometryError struct {
	Path   string
	Reason string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("boundary %s: %s", e.Path, e.Reason)
}

func (e *GeometryError) Unwrap() error { return ErrGeometry }

type RasterBoundsError struct {
	Raster   string
	Boundary orb.Bound
	Extent   orb.Bound
}

func (e *RasterBoundsError) Error() string {
	return fmt.Sprintf("boundary bbox %v does not intersect raster %s extent %v",
		[4]float64{e.Boundary.Min[0], e.Boundary.Min[1], e.Boundary.Max[0], e.Boundary.Max[1]},
		e.Raster,
		[4]float64{e.Extent.Min[0], e.Extent.Min[1], e.Extent.Max[0], e.Extent.Max[1]})
}

func (e *RasterBoundsError) Unwrap() error { return ErrRasterBounds }

type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// 单个流域的失败，不影响其他流域
type BasinError struct {
	Basin string
	Stage string
	Err   error
}

func (e *BasinError) Error() string {
	return fmt.Sprintf("basin %s: %s: %v", e.Basin, e.Stage, e.Err)
}

func (e *BasinError) Unwrap() error { return e.Err }

func basinErr(basin, stage string, err error) error {
	var be *BasinError
	if errors.As(err, &be) {
		return err
	}
	return &BasinError{Basin: basin, Stage: stage, Err: err}
}
