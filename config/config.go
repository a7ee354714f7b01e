// Package config 加载流域面积估算的YAML配置
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wgdzlh/wetarea/estimate"
	"github.com/wgdzlh/wetarea/utils"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoBasins        = errors.New("no basins configured")
	ErrDuplicatedBasin = errors.New("duplicated basin")
	ErrMissingTemplate = errors.New("path template missing")
	ErrReportExt       = errors.New("report template must end with " + utils.FILE_EXT_XLSX)
)

var DefaultBasins = []string{"Superior", "Huron", "Erie", "Ontario", "Lawrence", "GLSLRB"}

type Paths struct {
	Boundary string `yaml:"boundary"`
	Rasters  string `yaml:"rasters"`
	Report   string `yaml:"report"`
}

type Config struct {
	Basins              []string         `yaml:"basins"`
	ClassMapping        map[int32]string `yaml:"class_mapping"`
	PixelAreaKm2        float64          `yaml:"pixel_area_km2"`
	ExpectedCRS         string           `yaml:"expected_crs"`
	UnknownLabel        string           `yaml:"unknown_label"`
	IncludeEmptyClasses bool             `yaml:"include_empty_classes"`
	Workers             int              `yaml:"workers"`
	Paths               Paths            `yaml:"paths"`
	Archive             string           `yaml:"archive"`
}

func Default() Config {
	return Config{
		Basins:       append([]string(nil), DefaultBasins...),
		ClassMapping: estimate.DefaultClasses(),
		PixelAreaKm2: estimate.DefaultPixelAreaKm2.InexactFloat64(),
		ExpectedCRS:  estimate.DEFAULT_EXPECTED_CRS,
		UnknownLabel: estimate.DEFAULT_UNKNOWN_LABEL,
		Workers:      1,
		Paths: Paths{
			Boundary: "boundaryShapefiles/{basin}/{basin}Boundaries.shp",
			Rasters:  "predictionRasters/{basin}",
			Report:   "areaEstimate/wetlandAreas{basin}.xlsx",
		},
	}
}

// 读取YAML配置，未出现的字段保留默认值
func Load(path string) (c Config, err error) {
	c = Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	return Parse(data)
}

func Parse(data []byte) (c Config, err error) {
	c = Default()
	var raw Config
	if err = yaml.Unmarshal(data, &raw); err != nil {
		err = fmt.Errorf("parse config: %w", err)
		return
	}
	c.merge(raw)
	err = c.Validate()
	return
}

func (c *Config) merge(o Config) {
	if len(o.Basins) > 0 {
		c.Basins = o.Basins
	}
	if len(o.ClassMapping) > 0 {
		c.ClassMapping = o.ClassMapping
	}
	if o.PixelAreaKm2 != 0 {
		c.PixelAreaKm2 = o.PixelAreaKm2
	}
	if o.ExpectedCRS != "" {
		c.ExpectedCRS = o.ExpectedCRS
	}
	if o.UnknownLabel != "" {
		c.UnknownLabel = o.UnknownLabel
	}
	if o.Workers != 0 {
		c.Workers = o.Workers
	}
	if o.Paths.Boundary != "" {
		c.Paths.Boundary = o.Paths.Boundary
	}
	if o.Paths.Rasters != "" {
		c.Paths.Rasters = o.Paths.Rasters
	}
	if o.Paths.Report != "" {
		c.Paths.Report = o.Paths.Report
	}
	if o.Archive != "" {
		c.Archive = o.Archive
	}
	c.IncludeEmptyClasses = c.IncludeEmptyClasses || o.IncludeEmptyClasses
}

func (c Config) Validate() (err error) {
	if len(c.Basins) == 0 {
		return ErrNoBasins
	}
	seen := map[string]struct{}{}
	for _, b := range c.Basins {
		if strings.TrimSpace(b) == "" {
			return estimate.ErrEmptyBasin
		}
		if _, ok := seen[b]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicatedBasin, b)
		}
		seen[b] = struct{}{}
	}
	for name, tpl := range map[string]string{"boundary": c.Paths.Boundary, "rasters": c.Paths.Rasters, "report": c.Paths.Report} {
		if tpl == "" {
			return fmt.Errorf("%w: %s", ErrMissingTemplate, name)
		}
	}
	if !strings.EqualFold(filepath.Ext(c.Paths.Report), utils.FILE_EXT_XLSX) {
		return fmt.Errorf("%w: %s", ErrReportExt, c.Paths.Report)
	}
	if crs := estimate.NormalizeCRS(c.ExpectedCRS); !strings.Contains(crs, ":") {
		return fmt.Errorf("malformed expected crs %q", c.ExpectedCRS)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", c.Workers)
	}
	return c.Settings().Validate()
}

// 转为估算流程的只读配置
func (c Config) Settings() estimate.Settings {
	return estimate.Settings{
		ExpectedCRS:         c.ExpectedCRS,
		PixelAreaKm2:        decimal.NewFromFloat(c.PixelAreaKm2),
		Classes:             estimate.ClassMapping(c.ClassMapping).Clone(),
		UnknownLabel:        c.UnknownLabel,
		IncludeEmptyClasses: c.IncludeEmptyClasses,
		Workers:             c.Workers,
	}
}

func (c Config) Layout() Layout {
	return Layout(c.Paths)
}
