package logging

import (
	"time"

	"github.com/sirupsen/logrus"
)

// BaseFields 构建 action + 配置路径等基础字段，便于不同入口复用。
func BaseFields(action, configPath string) logrus.Fields {
	return logrus.Fields{
		"action":     action,
		"configPath": configPath,
	}
}

// WarmerFields 描述一次 warmer 执行结果，供 aggregate 日志复用。
func WarmerFields(name string, optional bool, elapsed time.Duration) logrus.Fields {
	return logrus.Fields{
		"warmer":      name,
		"optional":    optional,
		"duration_ms": elapsed.Milliseconds(),
	}
}

// ManagerFields 描述单个 document manager 的 hydrator 生成情况。
func ManagerFields(manager string, classes int, elapsed time.Duration) logrus.Fields {
	return logrus.Fields{
		"document_manager": manager,
		"classes":          classes,
		"duration_ms":      elapsed.Milliseconds(),
	}
}
