package estimate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	DEFAULT_EXPECTED_CRS  = "EPSG:3348" // NAD83 / Statistics Canada Lambert
	DEFAULT_UNKNOWN_LABEL = "unknown"
)

var (
	// 30m x 30m 像元
	DefaultPixelAreaKm2 = decimal.RequireFromString("0.0009")

	ErrEmptyClasses     = errors.New("class mapping is empty")
	ErrNonPositiveArea  = errors.New("pixel area must be positive")
	ErrEmptyExpectedCRS = errors.New("expected crs is empty")
)

// 像元类别编码 -> 湿地类型
type ClassMapping map[int32]string

func DefaultClasses() ClassMapping {
	return ClassMapping{
		1: "bog",
		2: "fen",
		3: "swamp",
		4: "marsh",
		5: "water",
	}
}

func (m ClassMapping) Clone() ClassMapping {
	c := make(ClassMapping, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// 按编码升序
func (m ClassMapping) Codes() []int32 {
	codes := make([]int32, 0, len(m))
	for k := range m {
		codes = append(codes, k)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

func (m ClassMapping) Label(code int32) (label string, ok bool) {
	label, ok = m[code]
	return
}

// 估算流程的只读配置，构造Estimator时复制一份
type Settings struct {
	ExpectedCRS         string
	PixelAreaKm2        decimal.Decimal
	Classes             ClassMapping
	UnknownLabel        string
	IncludeEmptyClasses bool
	Workers             int
}

func DefaultSettings() Settings {
	return Settings{
		ExpectedCRS:  DEFAULT_EXPECTED_CRS,
		PixelAreaKm2: DefaultPixelAreaKm2,
		Classes:      DefaultClasses(),
		UnknownLabel: DEFAULT_UNKNOWN_LABEL,
		Workers:      1,
	}
}

// 在补全默认值之后校验，与构造Estimator时实际使用的配置一致
func (s Settings) Validate() error {
	s = s.clone()
	if strings.TrimSpace(s.ExpectedCRS) == "" {
		return ErrEmptyExpectedCRS
	}
	if !s.PixelAreaKm2.IsPositive() {
		return ErrNonPositiveArea
	}
	if len(s.Classes) == 0 {
		return ErrEmptyClasses
	}
	seen := make(map[string]int32, len(s.Classes))
	for _, code := range s.Classes.Codes() {
		label := strings.TrimSpace(s.Classes[code])
		if label == "" {
			return fmt.Errorf("class %d has an empty label", code)
		}
		if prev, ok := seen[label]; ok {
			return fmt.Errorf("classes %d and %d share label %q", prev, code, label)
		}
		seen[label] = code
	}
	if _, ok := seen[s.UnknownLabel]; ok {
		return fmt.Errorf("unknown label %q collides with a class label", s.UnknownLabel)
	}
	return nil
}

func (s Settings) clone() Settings {
	c := s
	c.Classes = s.Classes.Clone()
	c.ExpectedCRS = NormalizeCRS(s.ExpectedCRS)
	if c.UnknownLabel = strings.TrimSpace(c.UnknownLabel); c.UnknownLabel == "" {
		c.UnknownLabel = DEFAULT_UNKNOWN_LABEL
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return c
}
