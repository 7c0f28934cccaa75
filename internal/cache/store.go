package cache

import (
	"context"
	"errors"
	"io"
	"time"
)

// Store 负责管理生成产物的读写。磁盘布局遵循：
//
//	<HydratorDir>/<Namespace>/<Name>
//
// Namespace 通常是 document manager 名称，Name 是产物文件名。
type Store interface {
	// Get 返回一个可流式读取的产物。若不存在则返回 ErrNotFound。
	Get(ctx context.Context, locator Locator) (*ReadResult, error)

	// Stat 仅返回产物的文件信息，不打开文件。
	Stat(ctx context.Context, locator Locator) (*Entry, error)

	// Put 写入产物，实现需通过临时文件 + rename 保证写入原子性，并在失败时清理临时文件。
	Put(ctx context.Context, locator Locator, body io.Reader, opts PutOptions) (*Entry, error)

	// Remove 删除产物文件，不存在时视为成功。
	Remove(ctx context.Context, locator Locator) error

	// List 返回某个 Namespace 下的全部产物，按文件名排序。
	List(ctx context.Context, namespace string) ([]Entry, error)

	// BasePath 返回根目录绝对路径。
	BasePath() string
}

// PutOptions 控制写入过程中的可选属性。
type PutOptions struct {
	ModTime time.Time
	Mode    uint32
}

// Locator 唯一定位一个产物（Namespace + 文件名）。
type Locator struct {
	Namespace string
	Name      string
}

// Entry 描述一个已存在的产物。
type Entry struct {
	Locator   Locator   `json:"locator"`
	FilePath  string    `json:"file_path"`
	SizeBytes int64     `json:"size_bytes"`
	ModTime   time.Time `json:"mod_time"`
}

// ReadResult 组合 Entry 与正文 Reader。
type ReadResult struct {
	Entry  Entry
	Reader io.ReadCloser
}

// ErrNotFound 表示产物不存在。
var ErrNotFound = errors.New("artifact not found")
