package lookup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Status 描述最近一次加载的结果，Notice 面向用户展示。
type Status struct {
	Source    string    `json:"source"`
	Points    int       `json:"points"`
	Discarded int       `json:"discarded"`
	LoadedAt  time.Time `json:"loaded_at"`
	Error     string    `json:"error,omitempty"`
	Notice    string    `json:"notice"`
}

// Holder 持有进程内唯一的参照表。Reload 整体替换，读取方无需加锁。
type Holder struct {
	loader Loader
	source string
	logger *logrus.Logger

	table atomic.Pointer[Table]

	mu     sync.RWMutex
	status Status
}

// NewHolder 创建空表的 Holder，需调用 Reload 完成首次加载。
func NewHolder(loader Loader, source string, logger *logrus.Logger) *Holder {
	h := &Holder{loader: loader, source: source, logger: logger}
	h.table.Store(NewTable(nil))
	h.status = Status{Source: source, Notice: "参照表尚未加载"}
	return h
}

// Table 返回当前参照表，永不为 nil。
func (h *Holder) Table() *Table {
	return h.table.Load()
}

// FindExactVolume 在当前参照表上做精确查询。
func (h *Holder) FindExactVolume(circumference, length float64) (float64, bool) {
	return h.Table().FindExactVolume(circumference, length)
}

// Status 返回最近一次加载状态。
func (h *Holder) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

// Reload 重新加载参照表。失败时当前表被替换为空表（所有查询都将落空），
// 错误写入 Status 并返回给调用方；不做重试。
func (h *Holder) Reload(ctx context.Context) error {
	started := time.Now()
	table, stats, err := h.loader.Load(ctx, h.source)

	status := Status{
		Source:    h.source,
		Discarded: stats.Discarded,
		LoadedAt:  time.Now().UTC(),
	}
	fields := logrus.Fields{
		"action":     "lookup_reload",
		"source":     h.source,
		"elapsed_ms": time.Since(started).Milliseconds(),
	}

	if err != nil {
		h.table.Store(NewTable(nil))
		status.Error = err.Error()
		status.Notice = fmt.Sprintf("无法加载 %s，请确认数据文件与页面位于同一目录", h.source)
		h.setStatus(status)
		if h.logger != nil {
			h.logger.WithFields(fields).WithError(err).Error("lookup_reload_failed")
		}
		return err
	}

	h.table.Store(table)
	status.Points = table.Len()
	status.Notice = fmt.Sprintf("已从 %s 加载 %d 条记录", h.source, table.Len())
	h.setStatus(status)
	if h.logger != nil {
		fields["points"] = table.Len()
		fields["discarded"] = stats.Discarded
		h.logger.WithFields(fields).Info("lookup_reload_complete")
	}
	return nil
}

func (h *Holder) setStatus(status Status) {
	h.mu.Lock()
	h.status = status
	h.mu.Unlock()
}
