package warmer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hydra-warm/hydra-warm/internal/logging"
)

// Result 是 Aggregate 中单个 warmer 的执行结果。
type Result struct {
	Name     string        `json:"name"`
	Optional bool          `json:"optional"`
	Skipped  bool          `json:"skipped"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
}

// Status 返回 ok / skipped / failed，用于日志与诊断输出。
func (r Result) Status() string {
	switch {
	case r.Skipped:
		return "skipped"
	case r.Err != nil:
		return "failed"
	default:
		return "ok"
	}
}

type namedWarmer struct {
	name   string
	warmer CacheWarmer
}

// Aggregate 按注册顺序执行多个 warmer。
type Aggregate struct {
	warmers        []namedWarmer
	enableOptional bool
	logger         *logrus.Logger

	mu   sync.RWMutex
	last []Result
}

// NewAggregate 创建执行器；enableOptional 为 false 时可选 warmer 全部跳过。
func NewAggregate(enableOptional bool, logger *logrus.Logger) *Aggregate {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Aggregate{enableOptional: enableOptional, logger: logger}
}

// Add 追加一个 warmer，名称用于日志与诊断。
func (a *Aggregate) Add(name string, w CacheWarmer) *Aggregate {
	a.warmers = append(a.warmers, namedWarmer{name: name, warmer: w})
	return a
}

// Names 返回已注册 warmer 的名称，保持注册顺序。
func (a *Aggregate) Names() []string {
	names := make([]string, len(a.warmers))
	for i, w := range a.warmers {
		names[i] = w.name
	}
	return names
}

// WarmUp 依次执行全部 warmer。必选 warmer 失败时立即中止并返回错误，
// 可选 warmer 失败只记录日志。
func (a *Aggregate) WarmUp(ctx context.Context, cacheDir string) ([]Result, error) {
	results := make([]Result, 0, len(a.warmers))
	defer func() { a.record(results) }()

	for _, entry := range a.warmers {
		optional := entry.warmer.IsOptional()
		if optional && !a.enableOptional {
			results = append(results, Result{Name: entry.name, Optional: true, Skipped: true})
			continue
		}

		start := time.Now()
		err := entry.warmer.WarmUp(ctx, cacheDir)
		result := Result{Name: entry.name, Optional: optional, Duration: time.Since(start), Err: err}
		results = append(results, result)

		fields := logging.WarmerFields(entry.name, optional, result.Duration)
		fields["action"] = "warmup"
		fields["status"] = result.Status()
		if err == nil {
			a.logger.WithFields(fields).Info("warmer finished")
			continue
		}
		if optional {
			a.logger.WithFields(fields).WithError(err).Warn("optional warmer failed")
			continue
		}
		a.logger.WithFields(fields).WithError(err).Error("mandatory warmer failed")
		return results, fmt.Errorf("warmer %s: %w", entry.name, err)
	}
	return results, nil
}

// LastResults 返回最近一次 WarmUp 的结果副本。
func (a *Aggregate) LastResults() []Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Result(nil), a.last...)
}

func (a *Aggregate) record(results []Result) {
	a.mu.Lock()
	a.last = append([]Result(nil), results...)
	a.mu.Unlock()
}
