package estimate

import "fmt"

// 单个模型（波段）的类别像元计数
type ClassTally struct {
	Model  int
	Counts map[int32]int64
	NoData int64
}

func NewClassTally(model int) ClassTally {
	return ClassTally{Model: model, Counts: map[int32]int64{}}
}

// 有效像元数（不含nodata）
func (t ClassTally) Classified() (n int64) {
	for _, c := range t.Counts {
		n += c
	}
	return
}

func (t ClassTally) Total() int64 {
	return t.Classified() + t.NoData
}

func (t *ClassTally) Merge(o ClassTally) {
	if t.Counts == nil {
		t.Counts = map[int32]int64{}
	}
	for code, c := range o.Counts {
		t.Counts[code] += c
	}
	t.NoData += o.NoData
}

// 统计掩膜内各类别编码的像元数，nodata像元单独计数
func SummarizeBand(model int, data []int32, m Mask, nd NoData) (t ClassTally, err error) {
	if len(data) != m.Window.Size() || len(m.Inside) != len(data) {
		err = fmt.Errorf("%w: %d values for %dx%d window", ErrWindowSize, len(data), m.Window.Width, m.Window.Height)
		return
	}
	t = NewClassTally(model)
	for i, v := range data {
		if !m.Inside[i] {
			continue
		}
		if nd.Match(v) {
			t.NoData++
			continue
		}
		t.Counts[v]++
	}
	return
}
