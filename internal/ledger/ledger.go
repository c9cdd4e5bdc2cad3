package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/treevol/treevol/internal/logging"
)

// Ledger 提供台账的追加、删除、清空与读取。所有写操作都是整表读-改-写，
// 由 Store.Update 保证单次写入的原子性。
type Ledger struct {
	store  Store
	logger *logrus.Logger
	now    func() time.Time
}

// New 基于 store 创建台账，logger 可为 nil。
func New(store Store, logger *logrus.Logger) *Ledger {
	return &Ledger{store: store, logger: logger, now: time.Now}
}

// List 返回当前全部条目；底层数据损坏时降级为空列表，不返回错误。
func (l *Ledger) List() []MeasurementEntry {
	raw, err := l.store.Read(EntriesKey)
	if err != nil {
		l.warn("ledger_read_failed", err)
		return []MeasurementEntry{}
	}
	return l.decodeEntries(raw)
}

// Add 追加一条记录。未指定 CreatedAt 时以当前时间（毫秒精度）生成，
// 与已有标识冲突则顺延 1ms 直到唯一。
func (l *Ledger) Add(entry MeasurementEntry) (MeasurementEntry, error) {
	entry.Species = normalizeSpecies(entry.Species)
	entry.Truck = strings.TrimSpace(entry.Truck)

	var count int
	err := l.store.Update(EntriesKey, func(current []byte) ([]byte, error) {
		entries := l.decodeEntries(current)
		taken := make(map[string]struct{}, len(entries))
		for _, e := range entries {
			taken[e.CreatedAt] = struct{}{}
		}

		if entry.CreatedAt == "" {
			candidate := l.now().UTC().Truncate(time.Millisecond)
			for {
				if _, exists := taken[FormatID(candidate)]; !exists {
					break
				}
				candidate = candidate.Add(time.Millisecond)
			}
			entry.CreatedAt = FormatID(candidate)
		} else if _, exists := taken[entry.CreatedAt]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, entry.CreatedAt)
		}

		entries = append(entries, entry)
		count = len(entries)
		return json.Marshal(entries)
	})
	if err != nil {
		return MeasurementEntry{}, err
	}
	l.info("add", count)
	return entry, nil
}

// Remove 删除指定标识的条目，标识不存在时为 no-op；其余条目保持原顺序。
func (l *Ledger) Remove(id string) error {
	var count int
	err := l.store.Update(EntriesKey, func(current []byte) ([]byte, error) {
		entries := l.decodeEntries(current)
		kept := entries[:0]
		for _, e := range entries {
			if e.CreatedAt != id {
				kept = append(kept, e)
			}
		}
		count = len(kept)
		return json.Marshal(kept)
	})
	if err != nil {
		return err
	}
	l.info("remove", count)
	return nil
}

// Clear 清空台账，不可恢复。确认交互由调用方（CLI/HTTP）负责。
func (l *Ledger) Clear() error {
	err := l.store.Update(EntriesKey, func([]byte) ([]byte, error) {
		return []byte("[]"), nil
	})
	if err != nil {
		return err
	}
	l.info("clear", 0)
	return nil
}

// Trucks 返回车辆标签列表，数据损坏时为空。
func (l *Ledger) Trucks() []string {
	raw, err := l.store.Read(TrucksKey)
	if err != nil {
		l.warn("ledger_read_failed", err)
		return []string{}
	}
	return l.decodeTrucks(raw)
}

// AddTruck 添加车辆标签（去除首尾空白、去重）。
func (l *Ledger) AddTruck(name string) ([]string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyTruck
	}
	var result []string
	err := l.store.Update(TrucksKey, func(current []byte) ([]byte, error) {
		trucks := l.decodeTrucks(current)
		for _, t := range trucks {
			if t == name {
				result = trucks
				return json.Marshal(trucks)
			}
		}
		result = append(trucks, name)
		return json.Marshal(result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// RemoveTruck 删除车辆标签，不存在时为 no-op。已有条目上的 truck 字段不受影响。
func (l *Ledger) RemoveTruck(name string) ([]string, error) {
	name = strings.TrimSpace(name)
	var result []string
	err := l.store.Update(TrucksKey, func(current []byte) ([]byte, error) {
		trucks := l.decodeTrucks(current)
		result = make([]string, 0, len(trucks))
		for _, t := range trucks {
			if t != name {
				result = append(result, t)
			}
		}
		return json.Marshal(result)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (l *Ledger) decodeEntries(raw []byte) []MeasurementEntry {
	entries := []MeasurementEntry{}
	if len(raw) == 0 {
		return entries
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		l.warn("ledger_decode_failed", err)
		return []MeasurementEntry{}
	}
	if entries == nil {
		return []MeasurementEntry{}
	}
	return entries
}

func (l *Ledger) decodeTrucks(raw []byte) []string {
	trucks := []string{}
	if len(raw) == 0 {
		return trucks
	}
	if err := json.Unmarshal(raw, &trucks); err != nil {
		l.warn("ledger_decode_failed", err)
		return []string{}
	}
	if trucks == nil {
		return []string{}
	}
	return trucks
}

func (l *Ledger) info(op string, entries int) {
	if l.logger == nil {
		return
	}
	l.logger.WithFields(logging.LedgerFields(op, entries)).Info("ledger_write")
}

func (l *Ledger) warn(event string, err error) {
	if l.logger == nil {
		return
	}
	l.logger.WithError(err).WithField("action", "ledger").Warn(event)
}
