package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/treevol/treevol/internal/config"
	"github.com/treevol/treevol/internal/ledger"
	"github.com/treevol/treevol/internal/logging"
	"github.com/treevol/treevol/internal/lookup"
	"github.com/treevol/treevol/internal/server"
	"github.com/treevol/treevol/internal/version"
)

// ledgerLockTimeout 限制等待 server 释放台账文件锁的时间。
const ledgerLockTimeout = 2 * time.Second

// session 在一次命令执行内惰性加载配置、台账与参照表。
type session struct {
	configPath string
	verbose    bool
	errOut     io.Writer

	cfg    *config.Config
	logger *logrus.Logger
	store  *ledger.BoltStore
	book   *ledger.Ledger
	holder *lookup.Holder
}

// NewRootCmd 构建 treevolctl 命令树。每次调用返回独立的命令树，便于测试。
func NewRootCmd() *cobra.Command {
	s := &session{}

	root := &cobra.Command{
		Use:     "treevolctl",
		Short:   "treevolctl - offline tree volume ledger admin",
		Version: version.Full("treevolctl"),
		Long: `treevolctl reads the same config file as the treevol server and works
on the volume lookup table and the measurement ledger directly.
The server holds the ledger lock while running; stop it first.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&s.configPath, "config", "", "config file (default ./config.toml, or $TREEVOL_CONFIG)")
	root.PersistentFlags().BoolVarP(&s.verbose, "verbose", "v", false, "write JSON logs to stderr")

	root.AddCommand(lookupCmd(s))
	root.AddCommand(entriesCmd(s))
	root.AddCommand(summaryCmd(s))
	root.AddCommand(trucksCmd(s))
	return root
}

func (s *session) loadConfig() (*config.Config, error) {
	if s.cfg != nil {
		return s.cfg, nil
	}
	cfg, err := config.Load(config.ResolvePath(s.configPath))
	if err != nil {
		return nil, err
	}
	s.cfg = cfg

	s.logger = logging.Discard()
	if s.verbose {
		logger, err := logging.InitLogger(cfg.Global)
		if err != nil {
			return nil, err
		}
		if s.errOut != nil {
			logger.SetOutput(s.errOut)
		}
		s.logger = logger
	}
	return cfg, nil
}

func (s *session) openLedger() (*ledger.Ledger, error) {
	if s.book != nil {
		return s.book, nil
	}
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := ledger.OpenBoltStore(cfg.Global.LedgerPath, ledgerLockTimeout)
	if err != nil {
		return nil, err
	}
	s.store = store
	s.book = ledger.New(store, s.logger)
	return s.book, nil
}

// loadLookup 加载参照表：本地文件优先，否则从源站拉取。
func (s *session) loadLookup(ctx context.Context) (*lookup.Holder, error) {
	if s.holder != nil {
		return s.holder, nil
	}
	cfg, err := s.loadConfig()
	if err != nil {
		return nil, err
	}
	loader := lookup.Loader{
		Fetcher: server.NewUpstreamClient(cfg),
		Base:    cfg.Worker.OriginURL(),
	}
	holder := lookup.NewHolder(loader, cfg.Global.DataSource, s.logger)
	if err := holder.Reload(ctx); err != nil {
		return nil, fmt.Errorf("load lookup table: %w", err)
	}
	s.holder = holder
	return holder, nil
}

// runE 包装命令实现：记录 stderr 并在结束时释放台账文件锁，无论成功与否。
func (s *session) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s.errOut = cmd.ErrOrStderr()
		defer s.close()
		return fn(cmd, args)
	}
}

func (s *session) close() {
	if s.store != nil {
		_ = s.store.Close()
		s.store = nil
		s.book = nil
	}
}

// parseNumber 接受首尾带空白的数值字符串，拒绝 NaN/Inf。
func parseNumber(name, raw string) (float64, error) {
	n, err := cast.ToFloat64E(strings.TrimSpace(raw))
	if err != nil || strings.TrimSpace(raw) == "" || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	return n, nil
}
