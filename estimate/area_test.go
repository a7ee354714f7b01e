package estimate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAreaKm2(t *testing.T) {
	cases := map[int64]string{
		0:   "0",
		1:   "0.0009",
		50:  "0.045",
		100: "0.09",
		850: "0.765",
	}
	for n, want := range cases {
		got := AreaKm2(n, DefaultPixelAreaKm2)
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%d pixels: %s", n, got)
	}
}

func TestAreaKm2Monotonic(t *testing.T) {
	prev := AreaKm2(0, DefaultPixelAreaKm2)
	assert.True(t, prev.IsZero())
	for n := int64(1); n < 5000; n += 7 {
		cur := AreaKm2(n, DefaultPixelAreaKm2)
		assert.False(t, cur.LessThan(prev), "area decreased at %d", n)
		prev = cur
	}
}
