package hydrator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/hydra-warm/hydra-warm/internal/cache"
	"github.com/hydra-warm/hydra-warm/internal/metadata"
)

// DefaultPackage 是未配置包名时生成代码使用的包名。
const DefaultPackage = "hydrators"

// ErrHydratorMissing 表示关闭自动生成时 hydrator 文件尚未生成。
var ErrHydratorMissing = errors.New("hydrator not generated")

// Options 控制 hydrator 生成行为。
type Options struct {
	// Store 是产物写入的目标，根目录即 HydratorDir。
	Store cache.Store
	// Namespace 是 Store 中的子目录，通常为 document manager 名称。
	Namespace string
	// Package 是生成代码的包名。
	Package string
	// AutoGenerate 打开后 Ensure 会按需生成缺失的 hydrator。
	AutoGenerate bool
	// Workers 限制单次生成的并发数，<=0 时使用 GOMAXPROCS。
	Workers int
	Logger  *logrus.Logger
}

// Factory 负责为一个 document manager 生成全部 hydrator。
type Factory struct {
	store        cache.Store
	namespace    string
	pkg          string
	autoGenerate bool
	workers      int
	logger       *logrus.Logger
}

// NewFactory 校验依赖并构造 Factory。
func NewFactory(opts Options) (*Factory, error) {
	if opts.Store == nil {
		return nil, errors.New("artifact store is required")
	}
	if opts.Namespace == "" {
		return nil, errors.New("namespace is required")
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Factory{
		store:        opts.Store,
		namespace:    opts.Namespace,
		pkg:          sanitizePackage(opts.Package),
		autoGenerate: opts.AutoGenerate,
		workers:      workers,
		logger:       logger,
	}, nil
}

// Package 返回生成代码的包名。
func (f *Factory) Package() string {
	return f.pkg
}

// AutoGenerate 返回是否启用按需生成。
func (f *Factory) AutoGenerate() bool {
	return f.autoGenerate
}

// GenerateHydratorClasses 为 classes 生成全部 hydrator 文件以及共享 helper。
// 任意一个文件失败都会取消其余任务并返回第一个错误。
func (f *Factory) GenerateHydratorClasses(ctx context.Context, classes []*metadata.Class) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(f.workers)

	eg.Go(func() error {
		src, err := renderHelpers(f.pkg)
		if err != nil {
			return err
		}
		return f.write(ctx, helpersFile, src)
	})

	for _, class := range classes {
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return f.generate(ctx, class)
			}
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	f.logger.WithFields(logrus.Fields{
		"action":    "generate_hydrators",
		"namespace": f.namespace,
		"classes":   len(classes),
	}).Debug("hydrators generated")
	return nil
}

// Ensure 确保 class 的 hydrator 已存在。关闭自动生成时缺失返回 ErrHydratorMissing。
func (f *Factory) Ensure(ctx context.Context, class *metadata.Class) (*cache.Entry, error) {
	locator := f.locator(FileName(class))
	entry, err := f.store.Stat(ctx, locator)
	if err == nil {
		return entry, nil
	}
	if !errors.Is(err, cache.ErrNotFound) {
		return nil, err
	}
	if !f.autoGenerate {
		return nil, fmt.Errorf("%s: %w", class.Name, ErrHydratorMissing)
	}

	if _, err := f.store.Stat(ctx, f.locator(helpersFile)); errors.Is(err, cache.ErrNotFound) {
		src, err := renderHelpers(f.pkg)
		if err != nil {
			return nil, err
		}
		if err := f.write(ctx, helpersFile, src); err != nil {
			return nil, err
		}
	}
	if err := f.generate(ctx, class); err != nil {
		return nil, err
	}
	return f.store.Stat(ctx, locator)
}

// HydratorPath 返回 class 对应 hydrator 的绝对路径，不检查文件是否存在。
func (f *Factory) HydratorPath(class *metadata.Class) string {
	return filepath.Join(f.store.BasePath(), f.namespace, FileName(class))
}

// Artifacts 列出当前已生成的文件。
func (f *Factory) Artifacts(ctx context.Context) ([]cache.Entry, error) {
	return f.store.List(ctx, f.namespace)
}

func (f *Factory) generate(ctx context.Context, class *metadata.Class) error {
	src, err := renderClass(f.pkg, class)
	if err != nil {
		return err
	}
	return f.write(ctx, FileName(class), src)
}

func (f *Factory) write(ctx context.Context, name string, src []byte) error {
	if _, err := f.store.Put(ctx, f.locator(name), bytes.NewReader(src), cache.PutOptions{}); err != nil {
		return fmt.Errorf("write %s/%s: %w", f.namespace, name, err)
	}
	return nil
}

func (f *Factory) locator(name string) cache.Locator {
	return cache.Locator{Namespace: f.namespace, Name: name}
}
