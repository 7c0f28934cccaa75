package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// ownerWriteExec 是 HydratorDir 必须保留的属主权限，否则创建后无法写入。
const ownerWriteExec FileMode = 0o300

// Validate 针对语义级别做进一步校验，防止非法配置进入 warm-up。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("Global.ListenPort", "必须在 1-65535")
	}
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("Global.LogLevel", "无法识别的日志级别 "+g.LogLevel)
	}
	if strings.TrimSpace(g.HydratorDir) == "" {
		return newFieldError("Global.HydratorDir", "不能为空")
	}
	if g.HydratorDirMode&^FileMode(0o777) != 0 {
		return newFieldError("Global.HydratorDirMode", "仅允许权限位 0000-0777")
	}
	if g.HydratorDirMode&ownerWriteExec != ownerWriteExec {
		return newFieldError("Global.HydratorDirMode", "必须包含属主写与执行权限 (0300)")
	}
	if g.GenerateWorkers < 0 {
		return newFieldError("Global.GenerateWorkers", "不能为负数")
	}
	if g.WarmupTimeout.DurationValue() < 0 {
		return newFieldError("Global.WarmupTimeout", "不能为负数")
	}

	seenNames := map[string]struct{}{}
	for i := range c.Managers {
		m := &c.Managers[i]
		if m.Name == "" {
			return newFieldError("DocumentManager[].Name", "不能为空")
		}
		if strings.ContainsAny(m.Name, `/\ `) || m.Name == "." || m.Name == ".." {
			return newFieldError(managerField(m.Name, "Name"), "不能包含路径分隔符或空格")
		}
		if _, exists := seenNames[m.Name]; exists {
			return newFieldError(managerField(m.Name, "Name"), "重复")
		}
		seenNames[m.Name] = struct{}{}

		if strings.TrimSpace(m.MappingDir) == "" {
			return newFieldError(managerField(m.Name, "MappingDir"), "不能为空")
		}
	}

	listed := map[string]struct{}{}
	for _, name := range g.DocumentManagers {
		if _, ok := seenNames[name]; !ok {
			return newFieldError("Global.DocumentManagers", fmt.Sprintf("未定义的 manager: %s", name))
		}
		if _, dup := listed[name]; dup {
			return newFieldError("Global.DocumentManagers", fmt.Sprintf("重复的 manager: %s", name))
		}
		listed[name] = struct{}{}
	}

	return nil
}
