package worker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/treevol/treevol/internal/cache"
)

// AssetFailure 记录单个预缓存资源的失败原因。
type AssetFailure struct {
	Path  string `json:"path"`
	URL   string `json:"url"`
	Error string `json:"error"`
}

// InstallReport 汇总一次 Install 的结果。
type InstallReport struct {
	Generation  string         `json:"generation"`
	Cached      []string       `json:"cached"`
	Failed      []AssetFailure `json:"failed,omitempty"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
}

// Install 逐个拉取预缓存清单并写入当前代际。单个资源失败只会被记录，
// 不会中断循环；结束后无条件进入 installed 阶段。
// 仅当 ctx 被取消时返回错误，此时报告依旧完整。
func (w *Worker) Install(ctx context.Context) (*InstallReport, error) {
	w.setPhase(PhaseInstalling)
	started := time.Now()
	report := &InstallReport{
		Generation: w.opts.CacheName,
		Cached:     make([]string, 0, len(w.opts.Precache)),
		StartedAt:  started,
	}

	for _, asset := range w.opts.Precache {
		target := w.resolve(asset)
		if err := w.precache(ctx, target.String(), locatorPath(target)); err != nil {
			report.Failed = append(report.Failed, AssetFailure{
				Path:  asset,
				URL:   target.String(),
				Error: err.Error(),
			})
			w.logger.WithFields(logrus.Fields{
				"action":     "install",
				"generation": w.opts.CacheName,
				"asset":      asset,
				"url":        target.String(),
				"error":      err.Error(),
			}).Warn("worker_precache_failed")
			continue
		}
		report.Cached = append(report.Cached, asset)
	}

	report.CompletedAt = time.Now()
	w.mu.Lock()
	w.phase = PhaseInstalled
	w.lastInstall = report
	w.mu.Unlock()

	w.logger.WithFields(logrus.Fields{
		"action":     "install",
		"generation": w.opts.CacheName,
		"cached":     len(report.Cached),
		"failed":     len(report.Failed),
		"elapsed_ms": elapsedMillis(started),
	}).Info("worker_install_complete")

	return report, ctx.Err()
}

func (w *Worker) precache(ctx context.Context, target, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return fmt.Errorf("upstream status %d", resp.StatusCode)
	}

	locator := cache.Locator{Generation: w.opts.CacheName, Path: key}
	if _, err := w.store.Put(ctx, locator, resp.Body, cache.PutOptions{}); err != nil {
		return fmt.Errorf("store asset: %w", err)
	}
	return nil
}
