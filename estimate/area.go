package estimate

import "github.com/shopspring/decimal"

// 面积（km²）= 像元数 × 单像元面积
func AreaKm2(pixels int64, pixelArea decimal.Decimal) decimal.Decimal {
	return pixelArea.Mul(decimal.NewFromInt(pixels))
}
