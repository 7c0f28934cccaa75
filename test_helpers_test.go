package main

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// repoRoot 在包初始化时沿目录向上查找 go.mod 得到。
var repoRoot string

func init() {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return
	}
	for dir := filepath.Dir(file); ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			repoRoot = dir
			return
		}
		if filepath.Dir(dir) == dir {
			return
		}
	}
}

func projectRoot(t *testing.T) string {
	t.Helper()
	if repoRoot == "" {
		t.Fatal("无法定位项目根目录")
	}
	return repoRoot
}

// configFixture 返回 internal/config/testdata 下的 TOML 样例。
func configFixture(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(projectRoot(t), "internal", "config", "testdata", name)
}

// mappingFixture 返回 metadata 包自带的 YAML 映射目录（User/Product/Category）。
func mappingFixture(t *testing.T) string {
	t.Helper()
	return filepath.Join(projectRoot(t), "internal", "metadata", "testdata", "mapping")
}
