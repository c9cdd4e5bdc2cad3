package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validate 针对语义级别做进一步校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", "无法识别的日志级别")
	}
	if g.StoragePath == "" {
		return newFieldError("Global.StoragePath", "不能为空")
	}
	if g.LedgerPath == "" {
		return newFieldError("Global.LedgerPath", "不能为空")
	}
	if g.UpstreamTimeout.DurationValue() <= 0 {
		return newFieldError("Global.UpstreamTimeout", "必须大于 0")
	}

	w := c.Worker
	if err := validateOrigin(w.Origin); err != nil {
		return fmt.Errorf("%s: %w", workerField("Origin"), err)
	}
	if w.CacheName == "" {
		return newFieldError(workerField("CacheName"), "不能为空")
	}
	if strings.ContainsAny(w.CacheName, `/\`) || w.CacheName == "." || w.CacheName == ".." {
		return newFieldError(workerField("CacheName"), "不能包含路径分隔符")
	}
	if len(w.Precache) == 0 {
		return newFieldError(workerField("Precache"), "至少需要一个资源")
	}
	if w.ShellPage == "" {
		return newFieldError(workerField("ShellPage"), "不能为空")
	}
	if w.MaxIconEntries < 0 {
		return newFieldError(workerField("MaxIconEntries"), "不能为负数")
	}

	return nil
}

func validateOrigin(raw string) error {
	if raw == "" {
		return errors.New("缺少资源源站地址")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("仅支持 http/https，源站: %s", raw)
	}
	if parsed.Host == "" {
		return fmt.Errorf("源站缺少 Host: %s", raw)
	}
	return nil
}

// OriginURL 返回解析后的源站地址，路径统一以 / 结尾，便于相对路径解析。
// 调用方需保证 Validate 已通过。
func (w WorkerConfig) OriginURL() *url.URL {
	parsed, err := url.Parse(w.Origin)
	if err != nil {
		return nil
	}
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed
}
