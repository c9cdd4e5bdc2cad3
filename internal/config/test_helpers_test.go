package config

import (
	"os"
	"path/filepath"
	"testing"
)

const fixtureDir = "testdata"

// testConfigPath 返回 testdata 下的 TOML 夹具路径。
func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(fixtureDir, name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("缺少配置夹具 %s: %v", name, err)
	}
	return path
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}
