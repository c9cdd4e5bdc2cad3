package worker

import (
	"crypto/sha1"
	"encoding/hex"
	"net"
	"net/http"
	"net/url"
	"path"
	"strings"
)

// Mode 表示请求命中的缓存策略。
type Mode string

const (
	ModeBypass   Mode = "bypass"
	ModeNavigate Mode = "navigate"
	ModeIcon     Mode = "icon"
	ModeAsset    Mode = "asset"
)

// classify 依据方法、导航标记与路径决定策略。未激活时一律直连网络。
func (w *Worker) classify(req *http.Request) Mode {
	if req.Method != http.MethodGet || !w.controlling() {
		return ModeBypass
	}
	if isNavigation(req) {
		return ModeNavigate
	}
	if w.iconPath != "" && w.sameOrigin(req.URL) &&
		strings.HasPrefix(cleanPath(req.URL.Path), w.iconPath) {
		return ModeIcon
	}
	return ModeAsset
}

func isNavigation(req *http.Request) bool {
	mode := strings.TrimSpace(req.Header.Get("Sec-Fetch-Mode"))
	if mode != "" {
		return strings.EqualFold(mode, "navigate")
	}
	return strings.Contains(strings.ToLower(req.Header.Get("Accept")), "text/html")
}

func (w *Worker) sameOrigin(u *url.URL) bool {
	if u == nil {
		return false
	}
	origin := w.opts.Origin
	return strings.EqualFold(u.Scheme, origin.Scheme) &&
		canonicalHost(u) == canonicalHost(origin)
}

// canonicalHost 去掉默认端口并统一小写。
func canonicalHost(u *url.URL) string {
	host := strings.ToLower(u.Hostname())
	port := u.Port()
	switch {
	case port == "":
	case port == "80" && strings.EqualFold(u.Scheme, "http"):
	case port == "443" && strings.EqualFold(u.Scheme, "https"):
	default:
		host = net.JoinHostPort(host, port)
	}
	return host
}

// locatorPath 生成缓存键：host + 规范化路径，查询串以摘要形式附加。
func locatorPath(u *url.URL) string {
	key := canonicalHost(u) + cleanPath(u.Path)
	if u.RawQuery != "" {
		sum := sha1.Sum([]byte(u.RawQuery))
		key = strings.TrimSuffix(key, "/") + "/__qs/" + hex.EncodeToString(sum[:])
	}
	return key
}

// cleanPath 规范化路径并保留目录风格的结尾斜杠。
func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	cleaned := path.Clean("/" + p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}
