package warmer

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/hydra-warm/hydra-warm/internal/logging"
	"github.com/hydra-warm/hydra-warm/internal/metadata"
)

// CacheWarmer 是启动阶段执行的一次性预计算步骤。
type CacheWarmer interface {
	// IsOptional 为 false 时，WarmUp 失败必须中止启动。
	IsOptional() bool
	// WarmUp 执行预计算；cacheDir 为整体缓存根目录，具体 warmer 可以忽略。
	WarmUp(ctx context.Context, cacheDir string) error
}

// MetadataFactory 返回某个 document manager 已知的全部类映射。
type MetadataFactory interface {
	AllMetadata(ctx context.Context) ([]*metadata.Class, error)
}

// HydratorGenerator 根据类映射生成 hydrator 产物。
type HydratorGenerator interface {
	GenerateHydratorClasses(ctx context.Context, classes []*metadata.Class) error
}

// DocumentManager 是 warmer 对 document manager 的最小视图。
type DocumentManager interface {
	Name() string
	MetadataFactory() MetadataFactory
	HydratorFactory() HydratorGenerator
}

// Registry 按名称查找 document manager。
type Registry interface {
	ResolveManager(name string) (DocumentManager, bool)
}

// HydratorOptions 显式注入 HydratorCacheWarmer 的全部依赖。
type HydratorOptions struct {
	HydratorDir      string
	DirMode          os.FileMode
	AutoGenerate     bool
	DocumentManagers []string
	Registry         Registry
	FS               afero.Fs
	Logger           *logrus.Logger
}

// Report 记录最近一次 warm-up 的结果，供诊断接口展示。
type Report struct {
	HydratorDir string          `json:"hydrator_dir"`
	DirCreated  bool            `json:"dir_created"`
	Skipped     bool            `json:"skipped"`
	Managers    []ManagerReport `json:"managers"`
	StartedAt   time.Time       `json:"started_at"`
	Duration    time.Duration   `json:"duration"`
	Error       string          `json:"error,omitempty"`
}

// ManagerReport 是单个 document manager 的生成统计。
type ManagerReport struct {
	Name     string        `json:"name"`
	Classes  int           `json:"classes"`
	Duration time.Duration `json:"duration"`
}

// HydratorCacheWarmer 在启动时准备 hydrator 目录并预生成全部 hydrator。
// 该步骤不可选：缺失 hydrator 会在运行时导致致命错误。
type HydratorCacheWarmer struct {
	dir          string
	mode         os.FileMode
	autoGenerate bool
	managers     []string
	registry     Registry
	fs           afero.Fs
	logger       *logrus.Logger
	now          func() time.Time

	mu     sync.RWMutex
	last   Report
	hasRun bool
}

// NewHydratorCacheWarmer 校验依赖并构造 warmer。
func NewHydratorCacheWarmer(opts HydratorOptions) (*HydratorCacheWarmer, error) {
	if opts.HydratorDir == "" {
		return nil, errors.New("hydrator directory is required")
	}
	if opts.Registry == nil && !opts.AutoGenerate && len(opts.DocumentManagers) > 0 {
		return nil, errors.New("document manager registry is required")
	}
	mode := opts.DirMode
	if mode == 0 {
		mode = 0o775
	}
	fsys := opts.FS
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &HydratorCacheWarmer{
		dir:          opts.HydratorDir,
		mode:         mode,
		autoGenerate: opts.AutoGenerate,
		managers:     append([]string(nil), opts.DocumentManagers...),
		registry:     opts.Registry,
		fs:           fsys,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// IsOptional 始终返回 false。
func (w *HydratorCacheWarmer) IsOptional() bool {
	return false
}

// WarmUp 准备目录，并在未开启自动生成时按配置顺序为每个 manager 生成 hydrator。
// 任意一步失败立即返回，不做重试。
func (w *HydratorCacheWarmer) WarmUp(ctx context.Context, _ string) (err error) {
	started := w.now()
	report := Report{HydratorDir: w.dir, StartedAt: started}
	defer func() {
		report.Duration = w.now().Sub(started)
		if err != nil {
			report.Error = err.Error()
		}
		w.record(report)
	}()

	// 无论采用哪种生成策略，目录都必须可用。
	report.DirCreated, err = prepareDir(w.fs, w.dir, w.mode)
	if err != nil {
		return err
	}

	if w.autoGenerate {
		report.Skipped = true
		w.logger.WithFields(logrus.Fields{
			"action":       "warmup_hydrators",
			"hydrator_dir": w.dir,
		}).Info("auto-generate enabled, skip hydrator generation")
		return nil
	}

	for _, name := range w.managers {
		if err := ctx.Err(); err != nil {
			return err
		}

		managerStart := w.now()
		dm, ok := w.resolve(name)
		if !ok {
			return &UnknownManagerError{Name: name}
		}

		classes, err := dm.MetadataFactory().AllMetadata(ctx)
		if err != nil {
			return &GenerationError{Manager: name, Stage: stageMetadata, Err: err}
		}
		if err := dm.HydratorFactory().GenerateHydratorClasses(ctx, classes); err != nil {
			return &GenerationError{Manager: name, Stage: stageGenerate, Err: err}
		}

		elapsed := w.now().Sub(managerStart)
		report.Managers = append(report.Managers, ManagerReport{Name: name, Classes: len(classes), Duration: elapsed})
		w.logger.WithFields(logging.ManagerFields(name, len(classes), elapsed)).Info("hydrators generated")
	}
	return nil
}

// LastReport 返回最近一次 WarmUp 的报告；尚未执行时 ok 为 false。
func (w *HydratorCacheWarmer) LastReport() (Report, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	report := w.last
	report.Managers = append([]ManagerReport(nil), w.last.Managers...)
	return report, w.hasRun
}

func (w *HydratorCacheWarmer) resolve(name string) (DocumentManager, bool) {
	if w.registry == nil {
		return nil, false
	}
	dm, ok := w.registry.ResolveManager(name)
	if !ok || dm == nil {
		return nil, false
	}
	return dm, true
}

func (w *HydratorCacheWarmer) record(report Report) {
	w.mu.Lock()
	w.last = report
	w.hasRun = true
	w.mu.Unlock()
}
