package server

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/treevol/treevol/internal/config"
)

// Site 将配置中的资源源站与派生属性聚合在一起，供路由/代理层直接复用，
// 避免每个请求重复解析配置。
type Site struct {
	// Origin 是资源源站，路径总以 / 结尾。
	Origin *url.URL
	// ListenPort 记录当前监听端口，方便日志/转发头输出。
	ListenPort int
	// Generation 是当前缓存代际名称。
	Generation string
}

// NewSite 根据配置构建 Site。调用方应在启动阶段创建一次并复用。
func NewSite(cfg *config.Config) (*Site, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	origin := cfg.Worker.OriginURL()
	if origin == nil || origin.Host == "" {
		return nil, fmt.Errorf("invalid origin: %q", cfg.Worker.Origin)
	}
	return &Site{
		Origin:     origin,
		ListenPort: cfg.Global.ListenPort,
		Generation: cfg.Worker.CacheName,
	}, nil
}

// Resolve 将 shell 上的请求路径映射为源站 URL：/ 对应源站根，其余路径相对
// 源站路径解析。路径先被规范化，无法逃逸出源站路径。
func (s *Site) Resolve(rawPath, rawQuery string) *url.URL {
	clean := path.Clean("/" + rawPath)
	if strings.HasSuffix(rawPath, "/") && clean != "/" {
		clean += "/"
	}
	relative := &url.URL{Path: strings.TrimPrefix(clean, "/"), RawQuery: rawQuery}
	return s.Origin.ResolveReference(relative)
}
