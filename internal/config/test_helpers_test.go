package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testConfigPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join("testdata", name)
}

// writeTempConfig 把 TOML 内容写入临时目录并返回路径。
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(strings.TrimSpace(content)), 0o600); err != nil {
		t.Fatalf("写入临时配置失败: %v", err)
	}
	return path
}

// validConfig 返回一份可通过 Validate 的最小配置，供各测试按需修改。
func validConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			ListenPort:       5000,
			LogLevel:         "info",
			HydratorDir:      "./var/cache/hydrators",
			HydratorDirMode:  DefaultDirMode,
			DocumentManagers: []string{"default"},
		},
		Managers: []ManagerConfig{
			{
				Name:       "default",
				MappingDir: "./mapping/default",
				Package:    "hydrators",
			},
		},
	}
}
