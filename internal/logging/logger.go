package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/hydra-warm/hydra-warm/internal/config"
)

const (
	sinkConsole = "console"
	sinkFile    = "file"
)

// consoleOutput 与 warnOutput 在测试中可替换。
var (
	consoleOutput io.Writer = os.Stdout
	warnOutput    io.Writer = os.Stderr
)

// InitLogger 按全局配置创建 hydra-warm 的 JSON logger。
// LogFilePath 不可用时不会中止 warm-up，而是退回控制台并记录一条 log_sink_fallback。
func InitLogger(cfg config.GlobalConfig) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("无法解析日志级别: %w", err)
	}

	output, sink, sinkErr := openSink(cfg)
	if sinkErr != nil {
		fmt.Fprintf(warnOutput, "hydra-warm: 日志文件 %s 不可用，改用控制台: %v\n", cfg.LogFilePath, sinkErr)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(output)
	logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})

	// 依赖库里直接使用 logrus 标准 logger 的日志也写入同一个 sink。
	logrus.SetFormatter(logger.Formatter)
	logrus.SetOutput(logger.Out)
	logrus.SetLevel(logger.GetLevel())

	if sinkErr != nil {
		logger.WithFields(logrus.Fields{
			"action":         "log_sink_fallback",
			"sink":           sink,
			"requested_path": cfg.LogFilePath,
		}).Warn(sinkErr.Error())
	}

	return logger, nil
}

// Discard 返回丢弃所有输出的 logger，供测试与未注入 logger 的组件使用。
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// openSink 返回日志 Writer 与其类型；文件目录无法创建时返回控制台及原因。
func openSink(cfg config.GlobalConfig) (io.Writer, string, error) {
	if cfg.LogFilePath == "" {
		return consoleOutput, sinkConsole, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFilePath), 0o755); err != nil {
		return consoleOutput, sinkConsole, fmt.Errorf("创建日志目录失败: %w", err)
	}

	return &lumberjack.Logger{
		Filename:   cfg.LogFilePath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		Compress:   cfg.LogCompress,
		LocalTime:  true,
	}, sinkFile, nil
}
