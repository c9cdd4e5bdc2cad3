package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述进程级运行参数：监听端口、日志、存储位置与数据文件。
type GlobalConfig struct {
	ListenPort      int      `mapstructure:"ListenPort"`
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	StoragePath     string   `mapstructure:"StoragePath"`
	LedgerPath      string   `mapstructure:"LedgerPath"`
	DataSource      string   `mapstructure:"DataSource"`
	UpstreamTimeout Duration `mapstructure:"UpstreamTimeout"`
}

// WorkerConfig 决定离线缓存 worker 的资源来源、缓存代际与回退页面。
type WorkerConfig struct {
	Origin         string   `mapstructure:"Origin"`
	CacheName      string   `mapstructure:"CacheName"`
	Precache       []string `mapstructure:"Precache"`
	ShellPage      string   `mapstructure:"ShellPage"`
	OfflinePage    string   `mapstructure:"OfflinePage"`
	IconPrefix     string   `mapstructure:"IconPrefix"`
	IconFallback   string   `mapstructure:"IconFallback"`
	MaxIconEntries int      `mapstructure:"MaxIconEntries"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	Worker WorkerConfig `mapstructure:"Worker"`
}

// DefaultPrecache 是未配置 Precache 时使用的安装清单。
// 调整清单后需要同时修改 CacheName，才能触发一次干净的重新缓存。
var DefaultPrecache = []string{
	"index.html",
	"manifest.json",
	"style.css",
	"script.js",
	"book_data.json",
	"offline.html",
	"icons/icon-192.png",
	"icons/icon-512.png",
}
