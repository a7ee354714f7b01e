package estimate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wgdzlh/wetarea/log"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// 流域湿地面积估算流程
type Estimator struct {
	settings   Settings
	paths      PathResolver
	rasters    RasterOpener
	boundaries BoundaryLoader
	writer     ReportWriter
	archive    Archive
	logTag     string
}

type Option func(*Estimator)

func WithArchive(a Archive) Option {
	return func(e *Estimator) { e.archive = a }
}

func NewEstimator(s Settings, paths PathResolver, rasters RasterOpener, boundaries BoundaryLoader, writer ReportWriter, opts ...Option) (e *Estimator, err error) {
	if err = s.Validate(); err != nil {
		return
	}
	if paths == nil || rasters == nil || boundaries == nil {
		err = errors.New("estimator needs a path resolver, raster opener and boundary loader")
		return
	}
	e = &Estimator{
		settings:   s.clone(),
		paths:      paths,
		rasters:    rasters,
		boundaries: boundaries,
		writer:     writer,
		logTag:     "Estimator:",
	}
	for _, o := range opts {
		o(e)
	}
	return
}

func (e *Estimator) Settings() Settings {
	return e.settings.clone()
}

type BasinResult struct {
	Basin      string
	ReportPath string // 未写出时为空
	Rows       int
	Pixels     int64
	Err        error
}

type RunSummary struct {
	RunID   string
	Results []BasinResult
}

func (s RunSummary) Failed() (ret []BasinResult) {
	for _, r := range s.Results {
		if r.Err != nil {
			ret = append(ret, r)
		}
	}
	return
}

// 所有失败流域的错误合并，无失败时为nil
func (s RunSummary) Err() (err error) {
	for _, r := range s.Results {
		err = multierr.Append(err, r.Err)
	}
	return
}

// 依次（或按Workers并行）处理各流域，单个流域失败不影响其他流域
func (e *Estimator) Run(ctx context.Context, basins []string) (sum RunSummary) {
	sum.RunID = uuid.NewString()
	sum.Results = make([]BasinResult, len(basins))
	log.Info(e.logTag+"start run", zap.String("run", sum.RunID), zap.Strings("basins", basins), zap.Int("workers", e.settings.Workers))

	if e.settings.Workers <= 1 {
		for i, b := range basins {
			sum.Results[i] = e.processOrCancel(ctx, sum.RunID, b)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(e.settings.Workers)
		for i, b := range basins {
			g.Go(func() error {
				sum.Results[i] = e.processOrCancel(ctx, sum.RunID, b)
				return nil
			})
		}
		_ = g.Wait()
	}

	failed := len(sum.Failed())
	log.Info(e.logTag+"run done", zap.String("run", sum.RunID), zap.Int("basins", len(basins)), zap.Int("failed", failed))
	return
}

func (e *Estimator) processOrCancel(ctx context.Context, runID, basin string) BasinResult {
	if err := ctx.Err(); err != nil {
		return BasinResult{Basin: basin, Err: basinErr(basin, StageRun, err)}
	}
	return e.ProcessBasin(ctx, runID, basin)
}

// 估算单个流域并写出报表
func (e *Estimator) ProcessBasin(ctx context.Context, runID, basin string) (res BasinResult) {
	res.Basin = basin
	log.Info(e.logTag+"processing basin", zap.String("basin", basin))
	defer func() {
		if res.Err != nil {
			var be *BasinError
			stage := ""
			if errors.As(res.Err, &be) {
				stage = be.Stage
			}
			log.Error(e.logTag+"basin failed", zap.String("basin", basin), zap.String("stage", stage), zap.Error(res.Err))
		}
	}()

	r, err := e.EstimateBasin(ctx, basin)
	if err != nil {
		res.Err = err
		return
	}
	res.Pixels = r.TotalPixels()
	if r.Empty() {
		log.Warn(e.logTag+"no data processed", zap.String("basin", basin))
		return
	}
	if e.writer != nil {
		path := e.paths.ReportPath(basin)
		if err = e.writer.WriteReport(ctx, r, path); err != nil {
			var we *WriteError
			if !errors.As(err, &we) {
				err = &WriteError{Path: path, Err: err}
			}
			res.Err = basinErr(basin, StageWrite, err)
			return
		}
		res.ReportPath = path
		log.Info(e.logTag+"saved basin wetland area estimates", zap.String("basin", basin), zap.String("out", path), zap.Int("rows", len(r.Records)))
	}
	if e.archive != nil {
		if err = e.archive.SaveReport(ctx, runID, r); err != nil {
			res.Err = basinErr(basin, StageArchive, err)
			return
		}
	}
	res.Rows = len(r.Records)
	return
}

// 估算单个流域的面积，不写出任何文件
func (e *Estimator) EstimateBasin(ctx context.Context, basin string) (r Report, err error) {
	if strings.TrimSpace(basin) == "" {
		err = basinErr(basin, StageBoundary, ErrEmptyBasin)
		return
	}
	bPath := e.paths.BoundaryPath(basin)
	boundary, err := e.boundaries.LoadBoundary(bPath)
	if err != nil {
		err = basinErr(basin, StageBoundary, err)
		return
	}
	if err = boundary.Validate(); err != nil {
		err = basinErr(basin, StageBoundary, err)
		return
	}
	log.Info(e.logTag+"loaded basin boundary", zap.String("basin", basin), zap.String("shp", bPath),
		zap.String("crs", boundary.CRS), zap.Int("features", boundary.Features), zap.Int("polygons", len(boundary.Geometry)))
	if err = ValidateCRS(e.settings.ExpectedCRS, CRSRef{Input: "boundary", Path: bPath, ID: boundary.CRS}); err != nil {
		err = basinErr(basin, StageValidateCRS, err)
		return
	}

	rPaths, err := e.paths.RasterPaths(basin)
	if err == nil && len(rPaths) == 0 {
		err = ErrNoRasters
	}
	if err != nil {
		err = basinErr(basin, StageRasters, err)
		return
	}

	var (
		tallies   = map[int]ClassTally{}
		used      []string
		boundsErr error
	)
	for _, p := range rPaths {
		if err = ctx.Err(); err != nil {
			err = basinErr(basin, StageRun, err)
			return
		}
		var (
			stage string
			ok    bool
		)
		if stage, ok, err = e.tallyRaster(p, boundary, tallies); err != nil {
			if errors.Is(err, ErrRasterBounds) {
				log.Warn(e.logTag+"raster outside basin boundary, skipped", zap.String("basin", basin), zap.String("raster", p), zap.Error(err))
				boundsErr = err
				err = nil
				continue
			}
			err = basinErr(basin, stage, err)
			return
		}
		if ok {
			used = append(used, p)
		}
	}
	if len(used) == 0 {
		err = basinErr(basin, StageMask, boundsErr)
		return
	}
	r = AssembleReport(basin, tallies, e.settings)
	r.Rasters = used
	return
}

// 单张影像：坐标系校验 -> 掩膜 -> 各波段计数，影像在返回前关闭
func (e *Estimator) tallyRaster(path string, boundary Boundary, tallies map[int]ClassTally) (stage string, ok bool, err error) {
	stage = StageOpenRaster
	ras, err := e.rasters.OpenRaster(path)
	if err != nil {
		return
	}
	defer func() {
		if cErr := ras.Close(); cErr != nil {
			log.Warn(e.logTag+"close raster failed", zap.String("raster", path), zap.Error(cErr))
		}
	}()

	stage = StageValidateCRS
	if err = ValidateCRS(e.settings.ExpectedCRS,
		CRSRef{Input: "raster", Path: path, ID: ras.CRS()},
		CRSRef{Input: "boundary", Path: boundary.Path, ID: boundary.CRS},
	); err != nil {
		return
	}

	stage = StageMask
	w, h := ras.Size()
	m, err := ExtractMask(boundary, path, ras.GeoTransform(), w, h)
	if err != nil {
		return
	}
	inside := m.Count()
	log.Info(e.logTag+"masked raster", zap.String("raster", ras.Path()), zap.Int("bands", ras.BandCount()),
		zap.Int("xoff", m.Window.XOff), zap.Int("yoff", m.Window.YOff),
		zap.Int("width", m.Window.Width), zap.Int("height", m.Window.Height), zap.Int("inside", inside))

	stage = StageReadBand
	for band := 1; band <= ras.BandCount(); band++ {
		var data []int32
		if data, err = ras.ReadWindow(band, m.Window); err != nil {
			err = fmt.Errorf("band %d of %s: %w", band, path, err)
			return
		}
		var t ClassTally
		if t, err = SummarizeBand(band, data, m, ras.NoData(band)); err != nil {
			return
		}
		acc, exists := tallies[band]
		if !exists {
			acc = NewClassTally(band)
		}
		acc.Merge(t)
		tallies[band] = acc
	}
	ok = true
	return
}

// 仅校验流域输入的坐标系
func (e *Estimator) CheckBasin(basin string) (err error) {
	bPath := e.paths.BoundaryPath(basin)
	boundary, err := e.boundaries.LoadBoundary(bPath)
	if err != nil {
		return basinErr(basin, StageBoundary, err)
	}
	refs := []CRSRef{{Input: "boundary", Path: bPath, ID: boundary.CRS}}
	rPaths, err := e.paths.RasterPaths(basin)
	if err == nil && len(rPaths) == 0 {
		err = ErrNoRasters
	}
	if err != nil {
		return basinErr(basin, StageRasters, err)
	}
	for _, p := range rPaths {
		ras, oErr := e.rasters.OpenRaster(p)
		if oErr != nil {
			return basinErr(basin, StageOpenRaster, oErr)
		}
		refs = append(refs, CRSRef{Input: "raster", Path: ras.Path(), ID: ras.CRS()})
		ras.Close()
	}
	if err = ValidateCRS(e.settings.ExpectedCRS, refs...); err != nil {
		return basinErr(basin, StageValidateCRS, err)
	}
	log.Info(e.logTag+"crs ok", zap.String("basin", basin), zap.Int("rasters", len(rPaths)))
	return
}
