package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix 是可覆盖全局配置项的环境变量前缀，例如 HYDRA_WARM_HYDRATORDIR。
const EnvPrefix = "HYDRA_WARM"

// Load 读取并解析 TOML 配置文件，同时注入默认值与校验逻辑。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	hook := mapstructure.ComposeDecodeHookFunc(
		durationDecodeHook(),
		fileModeDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(hook)); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)
	for i := range cfg.Managers {
		applyManagerDefaults(&cfg.Managers[i])
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := absolutize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", 5000)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("CacheDir", "./var/cache")
	v.SetDefault("HydratorDir", "./var/cache/hydrators")
	v.SetDefault("HydratorDirMode", DefaultDirMode.String())
	v.SetDefault("AutoGenerateHydratorClasses", false)
	v.SetDefault("DocumentManagers", []string{})
	v.SetDefault("EnableOptionalWarmers", false)
	v.SetDefault("GenerateWorkers", 0)
	v.SetDefault("WarmupTimeout", "0s")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = 5000
	}
	if g.HydratorDirMode == 0 {
		g.HydratorDirMode = DefaultDirMode
	}
	names := make([]string, 0, len(g.DocumentManagers))
	for _, name := range g.DocumentManagers {
		if normalized := NormalizeName(name); normalized != "" {
			names = append(names, normalized)
		}
	}
	g.DocumentManagers = names
}

func applyManagerDefaults(m *ManagerConfig) {
	m.Name = NormalizeName(m.Name)
	if strings.TrimSpace(m.Package) == "" {
		m.Package = m.Name + "hydrators"
	}
}

func absolutize(cfg *Config) error {
	var err error
	if cfg.Global.HydratorDir, err = filepath.Abs(cfg.Global.HydratorDir); err != nil {
		return fmt.Errorf("无法解析 hydrator 目录: %w", err)
	}
	if cfg.Global.CacheDir, err = filepath.Abs(cfg.Global.CacheDir); err != nil {
		return fmt.Errorf("无法解析缓存目录: %w", err)
	}
	for i := range cfg.Managers {
		m := &cfg.Managers[i]
		if m.MappingDir, err = filepath.Abs(m.MappingDir); err != nil {
			return fmt.Errorf("%s: %w", managerField(m.Name, "MappingDir"), err)
		}
	}
	return nil
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

// fileModeDecodeHook 字符串按八进制解析，整数（如 TOML 中的 0o775）按原值使用。
func fileModeDecodeHook() mapstructure.DecodeHookFunc {
	targetType := reflect.TypeOf(FileMode(0))

	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != targetType {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return ParseFileMode(v)
		case int:
			return FileMode(v), nil
		case int64:
			return FileMode(v), nil
		case float64:
			return FileMode(uint32(v)), nil
		case FileMode:
			return v, nil
		default:
			return nil, fmt.Errorf("不支持的权限类型: %T", v)
		}
	}
}
