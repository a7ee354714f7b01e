package estimate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembleReportOrderAndUnknown(t *testing.T) {
	s := DefaultSettings()
	tallies := map[int]ClassTally{
		2: {Model: 2, Counts: map[int32]int64{3: 10, 42: 2, 43: 1}},
		1: {Model: 1, Counts: map[int32]int64{5: 7, 1: 3}, NoData: 9},
	}
	r := AssembleReport("Huron", tallies, s)
	require.Len(t, r.Records, 4)

	type row struct {
		model int
		class string
		n     int64
	}
	var got []row
	for _, rec := range r.Records {
		assert.Equal(t, "Huron", rec.Basin)
		got = append(got, row{rec.Model, rec.Class, rec.PixelCount})
	}
	assert.Equal(t, []row{
		{1, "bog", 3},
		{1, "water", 7},
		{2, "swamp", 10},
		{2, "unknown", 3},
	}, got)
	assert.EqualValues(t, 23, r.TotalPixels())
}

func TestAssembleReportIncludeEmptyClasses(t *testing.T) {
	s := DefaultSettings()
	s.IncludeEmptyClasses = true
	r := AssembleReport("Erie", map[int]ClassTally{1: {Model: 1, Counts: map[int32]int64{2: 4}}}, s)
	require.Len(t, r.Records, 5)
	assert.Equal(t, "bog", r.Records[0].Class)
	assert.Zero(t, r.Records[0].PixelCount)
	assert.True(t, r.Records[0].AreaKm2.IsZero())
	assert.EqualValues(t, 4, r.Records[1].PixelCount)
}

func TestAssembleReportEmpty(t *testing.T) {
	r := AssembleReport("Ontario", map[int]ClassTally{1: NewClassTally(1)}, DefaultSettings())
	assert.True(t, r.Empty())
}
