package cache

import (
	"context"
	"errors"
	"io"
	"sort"
)

// ErrStoreUnavailable 表示当前未注入缓存存储实例。
var ErrStoreUnavailable = errors.New("cache store unavailable")

// BoundedWriter 在写入某一类条目（同一 Path 前缀）后将其数量限制在 max 以内，
// 超出部分按 ModTime 从旧到新淘汰。max <= 0 表示不设上限。
// pinned 中的条目既不计数也不会被淘汰。
type BoundedWriter struct {
	store  Store
	prefix string
	max    int
	pinned map[string]struct{}
}

// NewBoundedWriter 构造带上限的写入器，pinned 为永不淘汰的 Locator.Path。
func NewBoundedWriter(store Store, prefix string, max int, pinned ...string) BoundedWriter {
	w := BoundedWriter{store: store, prefix: prefix, max: max}
	if len(pinned) > 0 {
		w.pinned = make(map[string]struct{}, len(pinned))
		for _, p := range pinned {
			w.pinned[p] = struct{}{}
		}
	}
	return w
}

// Enabled 返回当前是否具备缓存写入能力。
func (w BoundedWriter) Enabled() bool {
	return w.store != nil
}

// Put 写入正文后执行淘汰，返回新条目与被淘汰的 Locator。淘汰失败不会撤销写入。
func (w BoundedWriter) Put(ctx context.Context, locator Locator, body io.Reader) (*Entry, []Locator, error) {
	if w.store == nil {
		return nil, nil, ErrStoreUnavailable
	}
	entry, err := w.store.Put(ctx, locator, body, PutOptions{})
	if err != nil {
		return nil, nil, err
	}
	evicted, err := w.Trim(ctx, locator.Generation)
	return entry, evicted, err
}

// Trim 将 generation 内前缀匹配的条目裁剪到 max 个。
func (w BoundedWriter) Trim(ctx context.Context, generation string) ([]Locator, error) {
	if w.store == nil {
		return nil, ErrStoreUnavailable
	}
	if w.max <= 0 {
		return nil, nil
	}
	listed, err := w.store.List(ctx, generation, w.prefix)
	if err != nil {
		return nil, err
	}
	entries := listed[:0]
	for _, entry := range listed {
		if _, ok := w.pinned[entry.Locator.Path]; !ok {
			entries = append(entries, entry)
		}
	}
	if len(entries) <= w.max {
		return nil, nil
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ModTime.Equal(entries[j].ModTime) {
			return entries[i].Locator.Path < entries[j].Locator.Path
		}
		return entries[i].ModTime.Before(entries[j].ModTime)
	})

	overflow := entries[:len(entries)-w.max]
	evicted := make([]Locator, 0, len(overflow))
	for _, entry := range overflow {
		if err := w.store.Remove(ctx, entry.Locator); err != nil {
			return evicted, err
		}
		evicted = append(evicted, entry.Locator)
	}
	return evicted, nil
}
