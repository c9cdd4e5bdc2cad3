package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/treevol/treevol/internal/cache"
	"github.com/treevol/treevol/internal/logging"
)

// maxCacheableBytes 之外的响应照常返回但不写缓存。
const maxCacheableBytes = 64 << 20

// Fetch 将拦截到的请求映射为响应。网络层的 HTTP 错误状态视为正常响应；
// 只有传输失败才会触发回退链。
func (w *Worker) Fetch(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req == nil || req.URL == nil {
		return nil, errors.New("request is required")
	}
	mode := w.classify(req)

	var (
		resp *http.Response
		err  error
	)
	switch mode {
	case ModeNavigate:
		resp, err = w.networkFirst(ctx, req, mode, w.navigationFallbacks(), http.StatusServiceUnavailable)
	case ModeIcon:
		resp, err = w.cacheFirst(ctx, req)
	case ModeAsset:
		resp, err = w.networkFirst(ctx, req, mode, []string{locatorPath(req.URL)}, http.StatusGatewayTimeout)
	default:
		return w.network(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	w.logger.WithFields(logging.FetchFields(
		w.opts.CacheName,
		req.Method,
		req.URL.String(),
		string(mode),
		resp.Header.Get(HeaderCache) != cacheMiss,
		resp.Header.Get(HeaderSource),
	)).Debug("worker_fetch")
	return resp, nil
}

func (w *Worker) network(ctx context.Context, req *http.Request) (*http.Response, error) {
	out := req.Clone(ctx)
	out.RequestURI = ""
	return w.client.Do(out)
}

// networkFirst 先请求网络，成功时写入同源 200 响应；传输失败时依次尝试
// fallbacks 中的缓存键，全部缺失则合成 finalStatus 响应。
func (w *Worker) networkFirst(ctx context.Context, req *http.Request, mode Mode, fallbacks []string, finalStatus int) (*http.Response, error) {
	resp, err := w.network(ctx, req)
	if err == nil {
		resp, err = w.storeCopy(ctx, req, resp, cache.BoundedWriter{})
		if err == nil {
			return markNetwork(resp), nil
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	w.logger.WithFields(logrus.Fields{
		"action":     "fetch",
		"generation": w.opts.CacheName,
		"mode":       string(mode),
		"url":        req.URL.String(),
		"error":      err.Error(),
	}).Warn("worker_network_failed")

	return w.fallback(ctx, req, fallbacks, finalStatus)
}

// cacheFirst 服务图标类资源：命中直接返回，未命中请求网络并写入有上限的图标缓存。
func (w *Worker) cacheFirst(ctx context.Context, req *http.Request) (*http.Response, error) {
	key := locatorPath(req.URL)
	if resp := w.lookup(ctx, req, key, cacheHit); resp != nil {
		return resp, nil
	}

	resp, err := w.network(ctx, req)
	if err == nil {
		resp, err = w.storeCopy(ctx, req, resp, w.icons)
		if err == nil {
			return markNetwork(resp), nil
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	w.logger.WithFields(logrus.Fields{
		"action":     "fetch",
		"generation": w.opts.CacheName,
		"mode":       string(ModeIcon),
		"url":        req.URL.String(),
		"error":      err.Error(),
	}).Warn("worker_network_failed")

	var fallbacks []string
	if w.opts.IconFallback != "" {
		fallbacks = append(fallbacks, locatorPath(w.resolve(w.opts.IconFallback)))
	}
	return w.fallback(ctx, req, fallbacks, http.StatusServiceUnavailable)
}

func (w *Worker) navigationFallbacks() []string {
	var keys []string
	for _, page := range []string{w.opts.ShellPage, w.opts.OfflinePage} {
		if page == "" {
			continue
		}
		keys = append(keys, locatorPath(w.resolve(page)))
	}
	return keys
}

func (w *Worker) fallback(ctx context.Context, req *http.Request, keys []string, finalStatus int) (*http.Response, error) {
	for _, key := range keys {
		if resp := w.lookup(ctx, req, key, cacheFallback); resp != nil {
			return resp, nil
		}
	}
	return offlineResponse(req, finalStatus), nil
}

// lookup 在当前代际中查找 key，未命中或读取失败返回 nil。
func (w *Worker) lookup(ctx context.Context, req *http.Request, key, state string) *http.Response {
	result, err := w.store.Get(ctx, cache.Locator{Generation: w.opts.CacheName, Path: key})
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			w.logger.WithFields(logrus.Fields{
				"action":     "fetch",
				"generation": w.opts.CacheName,
				"key":        key,
				"error":      err.Error(),
			}).Warn("worker_cache_read_failed")
		}
		return nil
	}
	return cachedResponse(req, result, key, state)
}

// storeCopy 缓冲正文并写入缓存，返回可再次读取正文的响应。只有同源的 200
// 响应会被写入；正文读取失败视为网络失败。bounded 未启用时直接写存储。
func (w *Worker) storeCopy(ctx context.Context, req *http.Request, resp *http.Response, bounded cache.BoundedWriter) (*http.Response, error) {
	if resp.StatusCode != http.StatusOK || !w.sameOrigin(req.URL) {
		return resp, nil
	}

	buf, err := io.ReadAll(io.LimitReader(resp.Body, maxCacheableBytes+1))
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("read upstream body: %w", err)
	}
	if len(buf) > maxCacheableBytes {
		resp.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(buf), resp.Body), resp.Body}
		return resp, nil
	}
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(buf))

	locator := cache.Locator{Generation: w.opts.CacheName, Path: locatorPath(req.URL)}
	fields := logrus.Fields{
		"action":     "fetch",
		"generation": w.opts.CacheName,
		"key":        locator.Path,
	}
	if bounded.Enabled() {
		_, evicted, err := bounded.Put(ctx, locator, bytes.NewReader(buf))
		if err != nil {
			w.logger.WithFields(fields).WithField("error", err.Error()).Warn("worker_cache_write_failed")
		} else if len(evicted) > 0 {
			w.logger.WithFields(fields).WithField("evicted", len(evicted)).Info("worker_cache_trimmed")
		}
		return resp, nil
	}
	if _, err := w.store.Put(ctx, locator, bytes.NewReader(buf), cache.PutOptions{}); err != nil {
		w.logger.WithFields(fields).WithField("error", err.Error()).Warn("worker_cache_write_failed")
	}
	return resp, nil
}
