package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/treevol/treevol/internal/cache"
	"github.com/treevol/treevol/internal/config"
	"github.com/treevol/treevol/internal/ledger"
	"github.com/treevol/treevol/internal/lookup"
	"github.com/treevol/treevol/internal/proxy"
	"github.com/treevol/treevol/internal/server"
	"github.com/treevol/treevol/internal/server/routes"
	"github.com/treevol/treevol/internal/worker"
)

// ledgerLockTimeout 限制等待台账文件锁的时间，避免与 treevolctl 互相阻塞。
const ledgerLockTimeout = time.Second

// shell 持有一次启动装配出的全部组件。
type shell struct {
	app    *fiber.App
	worker *worker.Worker
	lookup *lookup.Holder
	ledger *ledger.BoltStore
	port   int
}

// buildShell 完成组件装配：worker 先完成 install/activate，参照表再经由 worker
// 加载，这样数据文件同样进入离线缓存。预缓存与参照表失败都不会阻止启动。
func buildShell(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*shell, error) {
	site, err := server.NewSite(cfg)
	if err != nil {
		return nil, err
	}

	store, err := cache.NewStore(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("初始化缓存目录失败: %w", err)
	}

	w, err := worker.New(server.NewUpstreamClient(cfg), store, logger, worker.Options{
		Origin:         site.Origin,
		CacheName:      cfg.Worker.CacheName,
		Precache:       cfg.Worker.Precache,
		ShellPage:      cfg.Worker.ShellPage,
		OfflinePage:    cfg.Worker.OfflinePage,
		IconPrefix:     cfg.Worker.IconPrefix,
		IconFallback:   cfg.Worker.IconFallback,
		MaxIconEntries: cfg.Worker.MaxIconEntries,
	})
	if err != nil {
		return nil, fmt.Errorf("初始化 worker 失败: %w", err)
	}
	if _, err := w.Install(ctx); err != nil {
		return nil, fmt.Errorf("worker install 中断: %w", err)
	}
	if _, err := w.Activate(ctx); err != nil {
		logger.WithError(err).WithField("action", "activate").Warn("worker_activate_incomplete")
	}

	holder := lookup.NewHolder(lookup.Loader{Fetcher: w, Base: site.Origin}, cfg.Global.DataSource, logger)
	if err := holder.Reload(ctx); err != nil && errors.Is(err, context.Canceled) {
		return nil, err
	}

	boltStore, err := ledger.OpenBoltStore(cfg.Global.LedgerPath, ledgerLockTimeout)
	if err != nil {
		return nil, fmt.Errorf("打开台账失败: %w", err)
	}
	book := ledger.New(boltStore, logger)

	app, err := server.NewApp(server.AppOptions{
		Logger:     logger,
		Site:       site,
		Proxy:      proxy.NewHandler(w, logger),
		ListenPort: cfg.Global.ListenPort,
	})
	if err != nil {
		boltStore.Close()
		return nil, err
	}
	routes.Register(app, routes.Deps{
		Logger:   logger,
		Worker:   w,
		Lookup:   holder,
		Ledger:   book,
		Recorder: ledger.NewRecorder(book, holder),
	})

	return &shell{
		app:    app,
		worker: w,
		lookup: holder,
		ledger: boltStore,
		port:   cfg.Global.ListenPort,
	}, nil
}

// Listen 阻塞监听，ctx 取消后优雅关闭。
func (s *shell) Listen(ctx context.Context, logger *logrus.Logger) error {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = s.app.Shutdown()
		case <-done:
		}
	}()
	defer close(done)

	logListen(logger, s.port)
	return s.app.Listen(fmt.Sprintf(":%d", s.port), fiber.ListenConfig{DisableStartupMessage: true})
}

// Close 释放台账文件锁。
func (s *shell) Close() error {
	return s.ledger.Close()
}
