package worker

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/treevol/treevol/internal/cache"
)

// Phase 表示 worker 生命周期所处阶段。
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseInstalling Phase = "installing"
	PhaseInstalled  Phase = "installed"
	PhaseActivating Phase = "activating"
	PhaseActivated  Phase = "activated"
)

// Options 描述 worker 的静态配置。路径均相对 Origin 解析。
type Options struct {
	Origin         *url.URL
	CacheName      string
	Precache       []string
	ShellPage      string
	OfflinePage    string
	IconPrefix     string
	IconFallback   string
	MaxIconEntries int
}

// Worker 负责 install/activate 生命周期与请求拦截。多个 Fetch 可以并发执行，
// 它们之间只共享缓存存储。
type Worker struct {
	client *http.Client
	store  cache.Store
	logger *logrus.Logger
	opts   Options

	iconPath string
	icons    cache.BoundedWriter

	mu           sync.RWMutex
	phase        Phase
	lastInstall  *InstallReport
	lastActivate *ActivateReport
}

// New 创建处于 idle 阶段的 worker。
func New(client *http.Client, store cache.Store, logger *logrus.Logger, opts Options) (*Worker, error) {
	if client == nil {
		return nil, errors.New("http client is required")
	}
	if store == nil {
		return nil, errors.New("cache store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if opts.Origin == nil || opts.Origin.Host == "" {
		return nil, errors.New("origin is required")
	}
	if strings.TrimSpace(opts.CacheName) == "" {
		return nil, errors.New("cache name is required")
	}

	origin := *opts.Origin
	if !strings.HasSuffix(origin.Path, "/") {
		origin.Path += "/"
	}
	opts.Origin = &origin

	w := &Worker{
		client: client,
		store:  store,
		logger: logger,
		opts:   opts,
		phase:  PhaseIdle,
	}
	if opts.IconPrefix != "" {
		iconURL := w.resolve(opts.IconPrefix)
		w.iconPath = cleanPath(iconURL.Path)
		w.icons = cache.NewBoundedWriter(store, locatorPath(iconURL), opts.MaxIconEntries, w.pinnedPaths()...)
	}
	return w, nil
}

// pinnedPaths 返回预缓存清单与备用图标的缓存键，这些条目不参与图标淘汰。
func (w *Worker) pinnedPaths() []string {
	paths := make([]string, 0, len(w.opts.Precache)+1)
	for _, rel := range w.opts.Precache {
		paths = append(paths, locatorPath(w.resolve(rel)))
	}
	if w.opts.IconFallback != "" {
		paths = append(paths, locatorPath(w.resolve(w.opts.IconFallback)))
	}
	return paths
}

// Phase 返回当前阶段。
func (w *Worker) Phase() Phase {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.phase
}

// Generation 返回当前缓存代际名称。
func (w *Worker) Generation() string {
	return w.opts.CacheName
}

// Snapshot 是 worker 状态的只读视图，供 /-/status 输出。
type Snapshot struct {
	Phase        Phase           `json:"phase"`
	Generation   string          `json:"generation"`
	Origin       string          `json:"origin"`
	LastInstall  *InstallReport  `json:"last_install,omitempty"`
	LastActivate *ActivateReport `json:"last_activate,omitempty"`
}

// Snapshot 返回当前状态。
func (w *Worker) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Snapshot{
		Phase:        w.phase,
		Generation:   w.opts.CacheName,
		Origin:       w.opts.Origin.String(),
		LastInstall:  w.lastInstall,
		LastActivate: w.lastActivate,
	}
}

// Do 让 worker 满足 lookup.Fetcher，参照表加载因此同样享有离线回退。
func (w *Worker) Do(req *http.Request) (*http.Response, error) {
	return w.Fetch(req.Context(), req)
}

func (w *Worker) setPhase(phase Phase) {
	w.mu.Lock()
	w.phase = phase
	w.mu.Unlock()
}

func (w *Worker) controlling() bool {
	return w.Phase() == PhaseActivated
}

// resolve 将相对 Origin 的路径解析为绝对 URL。
func (w *Worker) resolve(rel string) *url.URL {
	ref, err := url.Parse(rel)
	if err != nil {
		ref = &url.URL{Path: rel}
	}
	return w.opts.Origin.ResolveReference(ref)
}

func elapsedMillis(started time.Time) int64 {
	return time.Since(started).Milliseconds()
}
