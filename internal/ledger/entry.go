package ledger

import (
	"errors"
	"strings"
	"time"
)

const (
	// EntriesKey 保存台账 JSON 数组的存储键。
	EntriesKey = "tree_volume_entries_v1"
	// TrucksKey 保存车辆标签 JSON 数组的存储键。
	TrucksKey = "tree_volume_trucks_v1"

	// DefaultSpecies 是未填写树种时使用的名称。
	DefaultSpecies = "Unknown"

	idLayout = "2006-01-02T15:04:05.000Z"
)

var (
	// ErrDuplicateID 表示调用方指定的 createdAt 已存在。
	ErrDuplicateID = errors.New("ledger entry id already exists")
	// ErrVolumeNotFound 表示参照表中没有完全匹配的 (circumference, length)。
	ErrVolumeNotFound = errors.New("volume not found in lookup table")
	// ErrInvalidMeasurement 表示长度或周长不是有效数值。
	ErrInvalidMeasurement = errors.New("length and circumference must be valid numbers")
	// ErrEmptyTruck 表示车辆标签为空。
	ErrEmptyTruck = errors.New("truck name required")
)

// MeasurementEntry 是一条测量记录。JSON 字段名沿用浏览器版本，便于导入导出。
type MeasurementEntry struct {
	Species       string  `json:"species"`
	Length        float64 `json:"len"`
	Circumference float64 `json:"circ"`
	Volume        float64 `json:"vol"`
	CreatedAt     string  `json:"createdAt"`
	Truck         string  `json:"truck,omitempty"`
}

// ID 返回条目的唯一标识（即 createdAt）。
func (e MeasurementEntry) ID() string {
	return e.CreatedAt
}

// FormatID 将时间格式化为毫秒精度的 UTC 标识。
func FormatID(t time.Time) string {
	return t.UTC().Format(idLayout)
}

func normalizeSpecies(species string) string {
	if trimmed := strings.TrimSpace(species); trimmed != "" {
		return trimmed
	}
	return DefaultSpecies
}
