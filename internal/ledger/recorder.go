package ledger

import (
	"math"
)

// VolumeFinder 是 Recorder 需要的参照表查询能力。
type VolumeFinder interface {
	FindExactVolume(circumference, length float64) (float64, bool)
}

// Measurement 是一次"查表并记录"的输入。
type Measurement struct {
	Species       string  `json:"species"`
	Length        float64 `json:"length"`
	Circumference float64 `json:"circumference"`
	Truck         string  `json:"truck,omitempty"`
}

// Recorder 组合参照表与台账：只有参照表中存在精确匹配时才写入台账。
type Recorder struct {
	ledger *Ledger
	finder VolumeFinder
}

// NewRecorder 创建 Recorder。
func NewRecorder(ledger *Ledger, finder VolumeFinder) *Recorder {
	return &Recorder{ledger: ledger, finder: finder}
}

// Record 查询体积并追加条目；体积保留 6 位小数。未命中时返回 ErrVolumeNotFound。
func (r *Recorder) Record(m Measurement) (MeasurementEntry, error) {
	if !isFinite(m.Length) || !isFinite(m.Circumference) {
		return MeasurementEntry{}, ErrInvalidMeasurement
	}
	vol, ok := r.finder.FindExactVolume(m.Circumference, m.Length)
	if !ok || math.IsNaN(vol) {
		return MeasurementEntry{}, ErrVolumeNotFound
	}
	return r.ledger.Add(MeasurementEntry{
		Species:       m.Species,
		Length:        m.Length,
		Circumference: m.Circumference,
		Volume:        RoundVolume(vol),
		Truck:         m.Truck,
	})
}

// RoundVolume 将体积四舍五入到 6 位小数。
func RoundVolume(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
