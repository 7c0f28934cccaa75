package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ErrMappingDirMissing 表示映射目录不存在。
var ErrMappingDirMissing = errors.New("mapping directory not found")

// Factory 从映射目录加载全部文档类，首次成功加载后缓存结果。
type Factory struct {
	fs  afero.Fs
	dir string

	mu      sync.Mutex
	loaded  bool
	classes []*Class
}

// NewFactory 构建基于 dir 的元数据工厂；fs 为空时使用真实文件系统。
func NewFactory(fs afero.Fs, dir string) *Factory {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Factory{fs: fs, dir: dir}
}

// Dir 返回映射目录。
func (f *Factory) Dir() string {
	return f.dir
}

// AllMetadata 返回按名称排序的全部类映射。失败不会被缓存，下次调用会重新读取。
func (f *Factory) AllMetadata(ctx context.Context) ([]*Class, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.loaded {
		classes, err := f.load(ctx)
		if err != nil {
			return nil, err
		}
		f.classes = classes
		f.loaded = true
	}
	// 返回副本，调用方排序或追加不影响缓存。
	return append([]*Class(nil), f.classes...), nil
}

// Metadata 按类名查找单个映射。
func (f *Factory) Metadata(ctx context.Context, name string) (*Class, error) {
	classes, err := f.AllMetadata(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range classes {
		if c.Name == name {
			return c, nil
		}
	}
	return nil, fmt.Errorf("class %s: %w", name, ErrClassNotFound)
}

// ErrClassNotFound 表示映射中不存在该类。
var ErrClassNotFound = errors.New("class not mapped")

// Reset 丢弃缓存，下次 AllMetadata 会重新读取映射目录。
func (f *Factory) Reset() {
	f.mu.Lock()
	f.loaded = false
	f.classes = nil
	f.mu.Unlock()
}

func (f *Factory) load(ctx context.Context) ([]*Class, error) {
	exists, err := afero.DirExists(f.fs, f.dir)
	if err != nil {
		return nil, fmt.Errorf("stat mapping dir %s: %w", f.dir, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: %w", f.dir, ErrMappingDirMissing)
	}

	entries, err := afero.ReadDir(f.fs, f.dir)
	if err != nil {
		return nil, fmt.Errorf("read mapping dir %s: %w", f.dir, err)
	}

	var (
		classes []*Class
		seen    = map[string]string{}
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() || !isMappingFile(entry.Name()) {
			continue
		}
		path := filepath.Join(f.dir, entry.Name())
		parsed, err := f.parseFile(path)
		if err != nil {
			return nil, err
		}
		for _, c := range parsed {
			// 以生成的类型名判重，避免两个类写入同一个 hydrator 文件。
			key := c.GoName()
			if prev, dup := seen[key]; dup {
				return nil, &MappingError{Source: path, Class: c.Name, Field: "name", Reason: "与 " + prev + " 中的类生成同名类型 " + key}
			}
			seen[key] = path
			classes = append(classes, c)
		}
	}

	sort.Slice(classes, func(i, j int) bool {
		return classes[i].Name < classes[j].Name
	})
	return classes, nil
}

// parseFile 支持单文件多文档（--- 分隔），每个文档对应一个类。
func (f *Factory) parseFile(path string) ([]*Class, error) {
	file, err := f.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open mapping %s: %w", path, err)
	}
	defer file.Close()

	var result []*Class
	dec := yaml.NewDecoder(file)
	dec.KnownFields(true)
	for {
		var c Class
		err := dec.Decode(&c)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode mapping %s: %w", path, err)
		}
		c.Source = path
		if c.Collection == "" {
			c.Collection = strings.ToLower(c.Name)
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		result = append(result, &c)
	}
	return result, nil
}

func isMappingFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yml" || ext == ".yaml"
}
