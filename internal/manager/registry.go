package manager

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/hydra-warm/hydra-warm/internal/cache"
	"github.com/hydra-warm/hydra-warm/internal/config"
	"github.com/hydra-warm/hydra-warm/internal/hydrator"
	"github.com/hydra-warm/hydra-warm/internal/metadata"
	"github.com/hydra-warm/hydra-warm/internal/warmer"
)

// Registry 按标准化名称保存 Manager，并记录注册顺序。
type Registry struct {
	mu       sync.RWMutex
	managers map[string]*Manager
	ordered  []*Manager
}

// NewRegistry 创建空注册表。
func NewRegistry() *Registry {
	return &Registry{managers: make(map[string]*Manager)}
}

// Register 将 Manager 加入注册表，重复名称会返回错误。
func (r *Registry) Register(m *Manager) error {
	if m == nil {
		return errors.New("manager is nil")
	}
	key := normalizeKey(m.Name())
	if key == "" {
		return fmt.Errorf("manager name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.managers[key]; exists {
		return fmt.Errorf("manager %s already registered", key)
	}
	r.managers[key] = m
	r.ordered = append(r.ordered, m)
	return nil
}

// MustRegister 在注册失败时 panic。
func (r *Registry) MustRegister(m *Manager) {
	if err := r.Register(m); err != nil {
		panic(err)
	}
}

// Resolve 返回指定名称的 Manager，大小写与首尾空白不敏感。
func (r *Registry) Resolve(name string) (*Manager, bool) {
	if name == "" {
		return nil, false
	}
	normalized := normalizeKey(name)

	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.managers[normalized]
	return m, ok
}

// ResolveManager 满足 warmer.Registry。
func (r *Registry) ResolveManager(name string) (warmer.DocumentManager, bool) {
	m, ok := r.Resolve(name)
	if !ok {
		return nil, false
	}
	return m, true
}

// List 返回按名称排序的 Manager 列表。
func (r *Registry) List() []*Manager {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.managers) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.managers))
	for key := range r.managers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]*Manager, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.managers[key])
	}
	return result
}

// Names 返回按注册顺序排列的名称。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]string, len(r.ordered))
	for i, m := range r.ordered {
		result[i] = m.Name()
	}
	return result
}

// BuildOptions 控制从配置构建注册表时使用的文件系统与日志。
type BuildOptions struct {
	FS     afero.Fs
	Logger *logrus.Logger
}

// FromConfig 根据配置中全部 [[DocumentManager]] 构建注册表。
// 所有 manager 共享 HydratorDir，各自写入 <HydratorDir>/<name>/。
func FromConfig(cfg *config.Config, opts BuildOptions) (*Registry, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	store, err := cache.NewStore(opts.FS, cfg.Global.HydratorDir)
	if err != nil {
		return nil, fmt.Errorf("hydrator store: %w", err)
	}

	registry := NewRegistry()
	for _, mc := range cfg.Managers {
		hydrators, err := hydrator.NewFactory(hydrator.Options{
			Store:        store,
			Namespace:    mc.Name,
			Package:      mc.Package,
			AutoGenerate: cfg.Global.AutoGenerateHydratorClasses,
			Workers:      cfg.Global.GenerateWorkers,
			Logger:       opts.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("manager %s: %w", mc.Name, err)
		}

		m := New(mc.Name, mc.MappingDir, metadata.NewFactory(opts.FS, mc.MappingDir), hydrators)
		if err := registry.Register(m); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

var _ warmer.Registry = (*Registry)(nil)
