package lookup

import (
	"math"
	"strconv"
)

// VolumePoint 是参照表中的一条记录，加载后不再修改。
type VolumePoint struct {
	Circumference float64 `json:"circ"`
	Length        float64 `json:"len"`
	Volume        float64 `json:"vol"`
}

// Table 是只读参照表，index 在构造时一次建好。
type Table struct {
	points []VolumePoint
	index  map[string]float64
}

// NewTable 基于给定记录构建参照表。同一 (circumference, length) 出现多次时保留第一条。
func NewTable(points []VolumePoint) *Table {
	t := &Table{
		points: append([]VolumePoint(nil), points...),
		index:  make(map[string]float64, len(points)),
	}
	for _, p := range t.points {
		key, ok := indexKey(p.Circumference, p.Length)
		if !ok {
			continue
		}
		if _, exists := t.index[key]; exists {
			continue
		}
		t.index[key] = p.Volume
	}
	return t
}

// FindExactVolume 仅在参照表中存在完全相同的 (circumference, length) 时返回体积。
// 不做插值或近邻匹配。
func (t *Table) FindExactVolume(circumference, length float64) (float64, bool) {
	if t == nil {
		return 0, false
	}
	key, ok := indexKey(circumference, length)
	if !ok {
		return 0, false
	}
	vol, found := t.index[key]
	return vol, found
}

// Len 返回参照表中的记录数（含重复键）。
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.points)
}

// Points 返回记录副本。
func (t *Table) Points() []VolumePoint {
	if t == nil {
		return nil
	}
	return append([]VolumePoint(nil), t.points...)
}

// indexKey 以最短往返格式拼接两个数值；-0 归一为 0，NaN/Inf 不可索引。
func indexKey(circumference, length float64) (string, bool) {
	if !isFinite(circumference) || !isFinite(length) {
		return "", false
	}
	return formatKeyPart(circumference) + "|" + formatKeyPart(length), true
}

func formatKeyPart(v float64) string {
	if v == 0 {
		v = 0 // -0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
