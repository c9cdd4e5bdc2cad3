package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ActivateReport 汇总一次 Activate 的结果。
type ActivateReport struct {
	Generation  string    `json:"generation"`
	Purged      []string  `json:"purged"`
	Errors      []string  `json:"errors,omitempty"`
	ActivatedAt time.Time `json:"activated_at"`
}

// Activate 删除当前代际以外的全部缓存代际，然后接管请求。清理失败会记录在
// 报告里并以错误返回，但 worker 仍会进入 activated 阶段。
func (w *Worker) Activate(ctx context.Context) (*ActivateReport, error) {
	w.setPhase(PhaseActivating)
	started := time.Now()
	report := &ActivateReport{
		Generation: w.opts.CacheName,
		Purged:     []string{},
	}

	var errs []error
	generations, err := w.store.Generations(ctx)
	if err != nil {
		errs = append(errs, fmt.Errorf("list generations: %w", err))
	}
	for _, name := range generations {
		if name == w.opts.CacheName {
			continue
		}
		if err := w.store.DeleteGeneration(ctx, name); err != nil {
			errs = append(errs, fmt.Errorf("delete generation %s: %w", name, err))
			continue
		}
		report.Purged = append(report.Purged, name)
	}
	for _, e := range errs {
		report.Errors = append(report.Errors, e.Error())
	}

	report.ActivatedAt = time.Now()
	w.mu.Lock()
	w.phase = PhaseActivated
	w.lastActivate = report
	w.mu.Unlock()

	entry := w.logger.WithFields(logrus.Fields{
		"action":     "activate",
		"generation": w.opts.CacheName,
		"purged":     report.Purged,
		"elapsed_ms": elapsedMillis(started),
	})
	if len(errs) > 0 {
		entry.WithField("errors", report.Errors).Warn("worker_activate_partial")
	} else {
		entry.Info("worker_activate_complete")
	}
	return report, errors.Join(errs...)
}
