package manager

import (
	"github.com/hydra-warm/hydra-warm/internal/hydrator"
	"github.com/hydra-warm/hydra-warm/internal/metadata"
	"github.com/hydra-warm/hydra-warm/internal/warmer"
)

// Manager 是一个已配置的 document manager。
type Manager struct {
	name       string
	mappingDir string
	metadata   *metadata.Factory
	hydrators  *hydrator.Factory
}

// New 以显式依赖构造 Manager。
func New(name, mappingDir string, meta *metadata.Factory, hydrators *hydrator.Factory) *Manager {
	return &Manager{
		name:       normalizeKey(name),
		mappingDir: mappingDir,
		metadata:   meta,
		hydrators:  hydrators,
	}
}

// Name 返回标准化后的名称。
func (m *Manager) Name() string {
	return m.name
}

// MappingDir 返回映射目录。
func (m *Manager) MappingDir() string {
	return m.mappingDir
}

// Metadata 返回具体的元数据工厂。
func (m *Manager) Metadata() *metadata.Factory {
	return m.metadata
}

// Hydrators 返回具体的 hydrator 工厂。
func (m *Manager) Hydrators() *hydrator.Factory {
	return m.hydrators
}

// MetadataFactory 满足 warmer.DocumentManager。
func (m *Manager) MetadataFactory() warmer.MetadataFactory {
	return m.metadata
}

// HydratorFactory 满足 warmer.DocumentManager。
func (m *Manager) HydratorFactory() warmer.HydratorGenerator {
	return m.hydrators
}

var _ warmer.DocumentManager = (*Manager)(nil)
