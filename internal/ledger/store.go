package ledger

import "errors"

// Store 是台账使用的持久化键值存储。Update 中的读-改-写必须在同一事务内完成。
type Store interface {
	// Read 返回 key 对应的原始字节；不存在时返回 nil, nil。
	Read(key string) ([]byte, error)
	// Update 以当前值调用 fn，并写回 fn 的返回值；返回 nil 表示删除该键。
	Update(key string, fn func(current []byte) ([]byte, error)) error
	Close() error
}

// ErrLedgerLocked 表示台账文件被其他进程占用（例如 server 正在运行）。
var ErrLedgerLocked = errors.New("ledger file is locked by another process")
