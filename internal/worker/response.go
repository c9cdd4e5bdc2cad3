package worker

import (
	"bytes"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/treevol/treevol/internal/cache"
)

const (
	// HeaderCache 标记响应是否来自缓存：hit/miss/fallback。
	HeaderCache = "X-Treevol-Cache"
	// HeaderSource 标记响应来源：network/cache/offline。
	HeaderSource = "X-Treevol-Source"

	cacheHit      = "hit"
	cacheMiss     = "miss"
	cacheFallback = "fallback"

	sourceNetwork = "network"
	sourceCache   = "cache"
	sourceOffline = "offline"
)

// cachedResponse 将缓存条目包装为 200 响应，正文直接流式读取缓存文件。
func cachedResponse(req *http.Request, result *cache.ReadResult, urlPath, state string) *http.Response {
	header := make(http.Header)
	header.Set("Content-Type", contentTypeFor(urlPath, result.Reader))
	header.Set("Content-Length", strconv.FormatInt(result.Entry.SizeBytes, 10))
	header.Set("Last-Modified", result.Entry.ModTime.UTC().Format(http.TimeFormat))
	header.Set(HeaderCache, state)
	header.Set(HeaderSource, sourceCache)
	return &http.Response{
		Status:        "200 OK",
		StatusCode:    http.StatusOK,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          result.Reader,
		ContentLength: result.Entry.SizeBytes,
		Request:       req,
	}
}

// offlineResponse 在回退链耗尽时合成响应。
func offlineResponse(req *http.Request, status int) *http.Response {
	body := []byte(http.StatusText(status) + ": offline\n")
	header := make(http.Header)
	header.Set("Content-Type", "text/plain; charset=utf-8")
	header.Set("Content-Length", strconv.Itoa(len(body)))
	header.Set("Cache-Control", "no-store")
	header.Set(HeaderCache, cacheFallback)
	header.Set(HeaderSource, sourceOffline)
	return &http.Response{
		Status:        strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func markNetwork(resp *http.Response) *http.Response {
	if resp.Header == nil {
		resp.Header = make(http.Header)
	}
	resp.Header.Set(HeaderCache, cacheMiss)
	resp.Header.Set(HeaderSource, sourceNetwork)
	return resp
}

// contentTypeFor 优先根据扩展名推断类型，目录风格路径视为 HTML，其余嗅探正文。
func contentTypeFor(urlPath string, body io.ReadSeeker) string {
	if urlPath == "" || strings.HasSuffix(urlPath, "/") {
		return "text/html; charset=utf-8"
	}
	if ct := mime.TypeByExtension(path.Ext(urlPath)); ct != "" {
		return ct
	}
	buf := make([]byte, 512)
	n, _ := io.ReadFull(body, buf)
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "application/octet-stream"
	}
	return http.DetectContentType(buf[:n])
}
