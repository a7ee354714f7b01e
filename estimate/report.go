package estimate

import (
	"sort"

	"github.com/shopspring/decimal"
)

var ReportColumns = []string{"model", "class", "pixel_count", "area_km2"}

type AreaRecord struct {
	Basin      string
	Model      int
	Class      string
	PixelCount int64
	AreaKm2    decimal.Decimal
}

// 单个流域的面积统计结果
type Report struct {
	Basin   string
	Rasters []string
	Records []AreaRecord
}

func (r Report) Empty() bool {
	return len(r.Records) == 0
}

func (r Report) TotalPixels() (n int64) {
	for _, rec := range r.Records {
		n += rec.PixelCount
	}
	return
}

// 按模型升序、类别编码升序组装记录，未映射编码合并为unknown行
func AssembleReport(basin string, tallies map[int]ClassTally, s Settings) Report {
	r := Report{Basin: basin}
	models := make([]int, 0, len(tallies))
	for m := range tallies {
		models = append(models, m)
	}
	sort.Ints(models)
	for _, model := range models {
		t := tallies[model]
		if t.Classified() == 0 && !s.IncludeEmptyClasses {
			continue
		}
		for _, code := range s.Classes.Codes() {
			n := t.Counts[code]
			if n == 0 && !s.IncludeEmptyClasses {
				continue
			}
			r.Records = append(r.Records, newRecord(basin, model, s.Classes[code], n, s.PixelAreaKm2))
		}
		var unknown int64
		for code, n := range t.Counts {
			if _, ok := s.Classes.Label(code); !ok {
				unknown += n
			}
		}
		if unknown > 0 {
			r.Records = append(r.Records, newRecord(basin, model, s.UnknownLabel, unknown, s.PixelAreaKm2))
		}
	}
	return r
}

func newRecord(basin string, model int, class string, n int64, pixelArea decimal.Decimal) AreaRecord {
	return AreaRecord{
		Basin:      basin,
		Model:      model,
		Class:      class,
		PixelCount: n,
		AreaKm2:    AreaKm2(n, pixelArea),
	}
}
