package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// Store 负责管理磁盘缓存的读写。磁盘布局遵循：
//
//	<StoragePath>/<Generation>/<host>/<path>.body    # 实际正文
//
// 每个条目仅由正文文件组成，文件的 ModTime/Size 由文件系统提供，ModTime 即写入时间。
type Store interface {
	// Get 返回一个可流式读取的缓存条目。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, locator Locator) (*ReadResult, error)

	// Put 写入正文并产出新的 Entry 描述。实现需通过临时文件 + rename
	// 保证写入原子性，并在失败时清理临时文件。
	Put(ctx context.Context, locator Locator, body io.Reader, opts PutOptions) (*Entry, error)

	// Remove 删除正文文件；条目不存在时视为成功。
	Remove(ctx context.Context, locator Locator) error

	// List 返回某个代际下 Path 以 prefix 开头的全部条目，顺序不作保证。
	List(ctx context.Context, generation, prefix string) ([]Entry, error)

	// Generations 返回磁盘上现存的全部缓存代际名称（按名称排序）。
	Generations(ctx context.Context) ([]string, error)

	// DeleteGeneration 删除整个缓存代际；代际不存在时视为成功。
	DeleteGeneration(ctx context.Context, generation string) error
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	ModTime time.Time
}

// Locator 唯一定位一个缓存条目（代际 + 请求键），Path 为 URL 路径风格。
type Locator struct {
	Generation string
	Path       string
}

// Entry 表示一次缓存命中结果，包含绝对文件路径及文件信息。
type Entry struct {
	Locator   Locator   `json:"locator"`
	FilePath  string    `json:"file_path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// ReadResult 组合 Entry 与正文 Reader，便于调用方直接将 Body 流式返回。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadSeekCloser
}

// ErrNotFound 表示缓存不存在。
var ErrNotFound = errors.New("cache entry not found")

// ErrInvalidGeneration 表示代际名称为空或包含路径分隔符。
var ErrInvalidGeneration = errors.New("invalid cache generation")
