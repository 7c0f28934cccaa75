package config

import (
	"fmt"
	"os"
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

// FileMode 是目录权限位，字符串形式按八进制解析（"0775"、"0o750"、"750"）。
type FileMode uint32

// ParseFileMode 解析八进制权限字符串。
func ParseFileMode(raw string) (FileMode, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "0o"), "0O")
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(raw, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid file mode: %s", raw)
	}
	return FileMode(v), nil
}

// Perm 返回 os.FileMode 形式的权限位。
func (m FileMode) Perm() os.FileMode {
	return os.FileMode(m) & os.ModePerm
}

func (m FileMode) String() string {
	return fmt.Sprintf("%#o", uint32(m))
}

// DefaultDirMode 是 HydratorDir 的默认创建权限。
const DefaultDirMode FileMode = 0o775

// GlobalConfig 描述 warm-up 的全局行为。
type GlobalConfig struct {
	ListenPort    int    `mapstructure:"ListenPort"`
	LogLevel      string `mapstructure:"LogLevel"`
	LogFilePath   string `mapstructure:"LogFilePath"`
	LogMaxSize    int    `mapstructure:"LogMaxSize"`
	LogMaxBackups int    `mapstructure:"LogMaxBackups"`
	LogCompress   bool   `mapstructure:"LogCompress"`

	// CacheDir 是整体缓存根目录，仅作为 warm-up 参数传递给各 warmer。
	CacheDir string `mapstructure:"CacheDir"`
	// HydratorDir 是 hydrator 生成目录，warm-up 时确保存在且可写。
	HydratorDir     string   `mapstructure:"HydratorDir"`
	HydratorDirMode FileMode `mapstructure:"HydratorDirMode"`
	// AutoGenerateHydratorClasses 打开后 warm-up 不预生成，由运行时按需生成。
	AutoGenerateHydratorClasses bool `mapstructure:"AutoGenerateHydratorClasses"`
	// DocumentManagers 决定预生成的 manager 及其顺序。
	DocumentManagers []string `mapstructure:"DocumentManagers"`

	EnableOptionalWarmers bool     `mapstructure:"EnableOptionalWarmers"`
	GenerateWorkers       int      `mapstructure:"GenerateWorkers"`
	WarmupTimeout         Duration `mapstructure:"WarmupTimeout"`
}

// ManagerConfig 声明一个 document manager：名称、映射目录与生成代码包名。
type ManagerConfig struct {
	Name       string `mapstructure:"Name"`
	MappingDir string `mapstructure:"MappingDir"`
	Package    string `mapstructure:"Package"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global   GlobalConfig    `mapstructure:",squash"`
	Managers []ManagerConfig `mapstructure:"DocumentManager"`
}

// Manager 按名称查找 manager 定义。
func (c *Config) Manager(name string) (ManagerConfig, bool) {
	normalized := NormalizeName(name)
	for _, m := range c.Managers {
		if NormalizeName(m.Name) == normalized {
			return m, true
		}
	}
	return ManagerConfig{}, false
}

// ManagerNames 返回全部已声明 manager 的名称，顺序与配置一致。
func (c *Config) ManagerNames() []string {
	if len(c.Managers) == 0 {
		return nil
	}
	result := make([]string, len(c.Managers))
	for i, m := range c.Managers {
		result[i] = m.Name
	}
	return result
}

// NormalizeName 统一 manager 名称的大小写与空白。
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
