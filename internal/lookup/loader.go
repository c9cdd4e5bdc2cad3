package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cast"
)

// Fetcher 抽象出 HTTP 取数能力；*http.Client 与离线缓存 worker 均满足该接口。
type Fetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// ErrNoData 表示数据源无法定位（既不是本地文件，也无法按源站解析）。
var ErrNoData = errors.New("lookup data source unavailable")

// maxDataBytes 限制参照表文件大小，防止异常响应耗尽内存。
const maxDataBytes = 32 << 20

// Loader 负责定位并读取参照表数据文件。
type Loader struct {
	// Fetcher 用于 http(s) 源以及相对 Base 的源。
	Fetcher Fetcher
	// Base 是相对路径数据源的解析基准（通常是资源源站）。
	Base *url.URL
}

// Load 读取 source 并构建参照表。source 可以是 http(s) 地址、本地文件，
// 或相对 Base 的路径；本地文件优先。任何网络或解析错误都会原样返回。
func (l Loader) Load(ctx context.Context, source string) (*Table, LoadStats, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, LoadStats{}, ErrNoData
	}

	var (
		reader io.ReadCloser
		err    error
	)
	switch {
	case isHTTPURL(source):
		reader, err = l.fetch(ctx, source)
	case fileExists(source):
		reader, err = os.Open(source)
	case l.Base != nil:
		ref, parseErr := url.Parse(source)
		if parseErr != nil {
			return nil, LoadStats{}, fmt.Errorf("invalid data source %q: %w", source, parseErr)
		}
		reader, err = l.fetch(ctx, l.Base.ResolveReference(ref).String())
	default:
		return nil, LoadStats{}, fmt.Errorf("%w: %s", ErrNoData, source)
	}
	if err != nil {
		return nil, LoadStats{}, err
	}
	defer reader.Close()

	points, stats, err := Parse(io.LimitReader(reader, maxDataBytes))
	if err != nil {
		return nil, stats, err
	}
	return NewTable(points), stats, nil
}

func (l Loader) fetch(ctx context.Context, target string) (io.ReadCloser, error) {
	if l.Fetcher == nil {
		return nil, fmt.Errorf("%w: no fetcher for %s", ErrNoData, target)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	resp, err := l.Fetcher.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", target, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: HTTP %d", target, resp.StatusCode)
	}
	return resp.Body, nil
}

// LoadStats 记录一次解析的统计信息。
type LoadStats struct {
	Records   int `json:"records"`
	Discarded int `json:"discarded"`
}

// Parse 解码 [{circ, len, vol}] 数组。任一字段无法解析为数值的记录被丢弃，
// 数值与数值字符串均可接受；缺失、null 或空字符串视为无法解析。
func Parse(r io.Reader) ([]VolumePoint, LoadStats, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, LoadStats{}, fmt.Errorf("decode lookup data: %w", err)
	}

	stats := LoadStats{Records: len(raw)}
	points := make([]VolumePoint, 0, len(raw))
	for _, item := range raw {
		var record map[string]interface{}
		if err := json.Unmarshal(item, &record); err != nil || record == nil {
			stats.Discarded++
			continue
		}
		circ, okC := toNumber(record["circ"])
		length, okL := toNumber(record["len"])
		vol, okV := toNumber(record["vol"])
		if !okC || !okL || !okV {
			stats.Discarded++
			continue
		}
		points = append(points, VolumePoint{Circumference: circ, Length: length, Volume: vol})
	}
	return points, stats, nil
}

func toNumber(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case string:
		v = strings.TrimSpace(v)
		if v == "" {
			return 0, false
		}
		value = v
	case map[string]interface{}, []interface{}:
		return 0, false
	}
	n, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func isHTTPURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func fileExists(source string) bool {
	info, err := os.Stat(source)
	return err == nil && !info.IsDir()
}
