package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfgPath := testConfigPath(t, "valid.toml")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load 返回错误: %v", err)
	}
	if !filepath.IsAbs(cfg.Global.HydratorDir) {
		t.Fatalf("HydratorDir 应被转换为绝对路径: %s", cfg.Global.HydratorDir)
	}
	if !filepath.IsAbs(cfg.Global.CacheDir) {
		t.Fatalf("CacheDir 应自动填充默认值: %s", cfg.Global.CacheDir)
	}
	if cfg.Global.HydratorDirMode != 0o750 {
		t.Fatalf("HydratorDirMode 应按八进制解析，得到 %s", cfg.Global.HydratorDirMode)
	}
	if cfg.Global.ListenPort != 5000 {
		t.Fatalf("ListenPort 应使用默认值")
	}
	if cfg.Global.AutoGenerateHydratorClasses {
		t.Fatalf("AutoGenerateHydratorClasses 默认应为 false")
	}
	if got := cfg.Global.DocumentManagers; len(got) != 2 || got[0] != "default" || got[1] != "secondary" {
		t.Fatalf("DocumentManagers 应保持顺序并标准化，得到 %v", got)
	}
	if m, ok := cfg.Manager("DEFAULT"); !ok || m.Package != "defaulthydrators" {
		t.Fatalf("未设置 Package 时应使用 <name>hydrators，得到 %+v", m)
	}
	if m, _ := cfg.Manager("secondary"); m.Package != "reporting" {
		t.Fatalf("Package 应被保留，得到 %s", m.Package)
	}
}

func TestValidateRejectsUnknownManager(t *testing.T) {
	cfgPath := testConfigPath(t, "missing.toml")

	_, err := Load(cfgPath)
	if err == nil {
		t.Fatalf("引用未定义 manager 的配置应返回错误")
	}
	fieldErr, ok := err.(FieldError)
	if !ok || fieldErr.Field != "Global.DocumentManagers" {
		t.Fatalf("期望 DocumentManagers 字段错误，得到 %v", err)
	}
}

func TestValidateEnforcesListenPortRange(t *testing.T) {
	cfg := validConfig()
	cfg.Global.ListenPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatalf("ListenPort 超出范围应当报错")
	}
}

func TestValidateDirMode(t *testing.T) {
	testCases := []struct {
		name      string
		mode      FileMode
		shouldErr bool
	}{
		{"default", DefaultDirMode, false},
		{"owner only", 0o700, false},
		{"legacy permissive", 0o777, false},
		{"read only", 0o555, true},
		{"no exec", 0o666, true},
		{"setuid bits", 0o4775, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Global.HydratorDirMode = tc.mode
			err := cfg.Validate()
			if tc.shouldErr && err == nil {
				t.Fatalf("expected error for mode %s", tc.mode)
			}
			if !tc.shouldErr && err != nil {
				t.Fatalf("unexpected error for mode %s: %v", tc.mode, err)
			}
		})
	}
}

func TestValidateManagers(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty name", func(c *Config) { c.Managers[0].Name = "" }},
		{"path in name", func(c *Config) { c.Managers[0].Name = "a/b" }},
		{"missing mapping dir", func(c *Config) { c.Managers[0].MappingDir = "" }},
		{"duplicate name", func(c *Config) { c.Managers = append(c.Managers, c.Managers[0]) }},
		{"duplicate listed", func(c *Config) { c.Global.DocumentManagers = []string{"default", "default"} }},
		{"bad log level", func(c *Config) { c.Global.LogLevel = "loud" }},
		{"empty hydrator dir", func(c *Config) { c.Global.HydratorDir = " " }},
		{"negative workers", func(c *Config) { c.Global.GenerateWorkers = -1 }},
		{"negative timeout", func(c *Config) { c.Global.WarmupTimeout = Duration(-time.Second) }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestManagerDefinedButNotListedIsAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Managers = append(cfg.Managers, ManagerConfig{Name: "archive", MappingDir: "./mapping/archive"})
	if err := cfg.Validate(); err != nil {
		t.Fatalf("未列入 DocumentManagers 的定义应被允许: %v", err)
	}
	if names := cfg.ManagerNames(); len(names) != 2 || names[1] != "archive" {
		t.Fatalf("ManagerNames 应保持配置顺序，得到 %v", names)
	}
}

func TestParseFileMode(t *testing.T) {
	for raw, want := range map[string]FileMode{"0775": 0o775, "0o750": 0o750, "700": 0o700, "": 0} {
		got, err := ParseFileMode(raw)
		if err != nil || got != want {
			t.Fatalf("ParseFileMode(%q) = %s, %v", raw, got, err)
		}
	}
	if _, err := ParseFileMode("0999"); err == nil {
		t.Fatalf("非八进制数字应报错")
	}
}
