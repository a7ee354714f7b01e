// Package report 将流域面积统计写出为Excel表格
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wgdzlh/wetarea/estimate"
	"github.com/wgdzlh/wetarea/log"
	"github.com/wgdzlh/wetarea/utils"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	SHEET_AREAS   = "areas"
	SHEET_SOURCES = "rasters"
)

// 写出xlsx：先写同目录临时文件，成功后rename覆盖，失败时不影响已有文件
type XLSXWriter struct {
	logTag string
}

func NewXLSXWriter() *XLSXWriter {
	return &XLSXWriter{logTag: "XLSXWriter:"}
}

func (w *XLSXWriter) WriteReport(ctx context.Context, r estimate.Report, path string) (err error) {
	if err = ctx.Err(); err != nil {
		return
	}
	f, err := Build(r)
	if err != nil {
		return &estimate.WriteError{Path: path, Err: err}
	}
	defer f.Close()
	if err = WriteAtomic(path, func(tmp *os.File) error {
		_, e := f.WriteTo(tmp)
		return e
	}); err != nil {
		log.Error(w.logTag+"write report failed", zap.String("basin", r.Basin), zap.String("out", path), zap.Error(err))
		return &estimate.WriteError{Path: path, Err: err}
	}
	log.Info(w.logTag+"report written", zap.String("basin", r.Basin), zap.String("out", path), zap.Int("rows", len(r.Records)))
	return
}

// 生成报表工作簿：areas表为面积统计，rasters表列出参与统计的影像
func Build(r estimate.Report) (f *excelize.File, err error) {
	f = excelize.NewFile()
	defer func() {
		if err != nil {
			f.Close()
			f = nil
		}
	}()
	if err = f.SetSheetName("Sheet1", SHEET_AREAS); err != nil {
		return
	}
	header := make([]interface{}, len(estimate.ReportColumns))
	for i, c := range estimate.ReportColumns {
		header[i] = c
	}
	if err = f.SetSheetRow(SHEET_AREAS, "A1", &header); err != nil {
		return
	}
	for i, rec := range r.Records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{rec.Model, rec.Class, rec.PixelCount, rec.AreaKm2.InexactFloat64()}
		if err = f.SetSheetRow(SHEET_AREAS, cell, &row); err != nil {
			return
		}
	}
	if _, err = f.NewSheet(SHEET_SOURCES); err != nil {
		return
	}
	if err = f.SetCellValue(SHEET_SOURCES, "A1", "raster"); err != nil {
		return
	}
	for i, p := range r.Rasters {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err = f.SetCellValue(SHEET_SOURCES, cell, p); err != nil {
			return
		}
	}
	return
}

// 原子写文件：写临时文件并fsync后rename到目标路径
func WriteAtomic(path string, write func(*os.File) error) (err error) {
	if err = os.MkdirAll(filepath.Dir(path), os.ModePerm); err != nil {
		return
	}
	tmpPath := utils.GetUniqTmpPath(path)
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()
	if err = write(tmp); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return
	}
	if err = tmp.Close(); err != nil {
		return
	}
	return os.Rename(tmpPath, path)
}
