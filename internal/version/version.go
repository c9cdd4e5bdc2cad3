package version

import "fmt"

// Version/Commit 可在构建时通过 -ldflags 注入，默认使用开发占位符。
var (
	Version = "0.1.0"
	Commit  = "dev"
)

// Full 返回便于 CLI 打印的完整版本信息，name 为二进制名称。
func Full(name string) string {
	return fmt.Sprintf("%s %s (%s)", name, Version, Commit)
}

// UserAgent 返回 worker 访问源站时使用的 User-Agent。
func UserAgent() string {
	return "treevol/" + Version
}
