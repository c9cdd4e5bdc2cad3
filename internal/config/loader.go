package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvConfigPath 是覆盖默认配置路径的环境变量。
const EnvConfigPath = "TREEVOL_CONFIG"

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	if err := rejectAbsolutePrecache(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	applyWorkerDefaults(&cfg.Worker)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	absStorage, err := filepath.Abs(cfg.Global.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("无法解析缓存目录: %w", err)
	}
	cfg.Global.StoragePath = absStorage

	absLedger, err := filepath.Abs(cfg.Global.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("无法解析台账路径: %w", err)
	}
	cfg.Global.LedgerPath = absLedger

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("StoragePath", "./storage")
	v.SetDefault("LedgerPath", "./ledger.db")
	v.SetDefault("DataSource", "book_data.json")
	v.SetDefault("UpstreamTimeout", "30s")
	v.SetDefault("Worker.CacheName", "treevol-static-v1")
	v.SetDefault("Worker.ShellPage", "index.html")
	v.SetDefault("Worker.OfflinePage", "offline.html")
	v.SetDefault("Worker.IconPrefix", "icons/")
	v.SetDefault("Worker.IconFallback", "icons/icon-192.png")
	v.SetDefault("Worker.MaxIconEntries", 50)
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
	if g.UpstreamTimeout.DurationValue() == 0 {
		g.UpstreamTimeout = Duration(30 * time.Second)
	}
	if strings.TrimSpace(g.LedgerPath) == "" {
		g.LedgerPath = "./ledger.db"
	}
	g.DataSource = strings.TrimSpace(g.DataSource)
}

func applyWorkerDefaults(w *WorkerConfig) {
	w.Origin = strings.TrimSpace(w.Origin)
	w.CacheName = strings.TrimSpace(w.CacheName)
	if len(w.Precache) == 0 {
		w.Precache = append([]string(nil), DefaultPrecache...)
	}
	cleaned := make([]string, 0, len(w.Precache))
	for _, item := range w.Precache {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	w.Precache = cleaned
	if w.MaxIconEntries < 0 {
		w.MaxIconEntries = 0
	}
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(Duration(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			if v == "" {
				return Duration(0), nil
			}
			if parsed, err := time.ParseDuration(v); err == nil {
				return Duration(parsed), nil
			}
			if seconds, err := strconv.ParseFloat(v, 64); err == nil {
				return Duration(time.Duration(seconds * float64(time.Second))), nil
			}
			return nil, fmt.Errorf("无法解析 Duration 字段: %s", v)
		case int:
			return Duration(time.Duration(v) * time.Second), nil
		case int64:
			return Duration(time.Duration(v) * time.Second), nil
		case float64:
			return Duration(time.Duration(v * float64(time.Second))), nil
		case time.Duration:
			return Duration(v), nil
		case Duration:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的 Duration 类型: %T", v)
		}
	}
}

// rejectAbsolutePrecache 拒绝以 / 或协议开头的安装清单项：清单必须相对 Origin 解析，
// 否则同一份配置在不同部署路径下会缓存到错误的资源。
func rejectAbsolutePrecache(v *viper.Viper) error {
	raw, ok := v.Get("Worker.Precache").([]interface{})
	if !ok {
		return nil
	}
	for idx, entry := range raw {
		item, ok := entry.(string)
		if !ok {
			return newFieldError(workerField(fmt.Sprintf("Precache[%d]", idx)), "必须为字符串")
		}
		item = strings.TrimSpace(item)
		if strings.HasPrefix(item, "/") || strings.Contains(item, "://") {
			return newFieldError(workerField(fmt.Sprintf("Precache[%d]", idx)), "必须为相对 Origin 的路径")
		}
	}
	return nil
}

// ResolvePath 计算最终配置路径：flag 优先，其次 TREEVOL_CONFIG，最后 ./config.toml。
func ResolvePath(flagValue string) string {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue
	}
	if env := strings.TrimSpace(os.Getenv(EnvConfigPath)); env != "" {
		return env
	}
	return "config.toml"
}
