package warmer

import (
	"errors"
	"fmt"
)

// ErrNotDirectory 表示 hydrator 路径已存在但不是目录。
var ErrNotDirectory = errors.New("not a directory")

// DirectoryCreationError 表示 hydrator 目录不存在且创建失败。Path 为父目录。
type DirectoryCreationError struct {
	Path string
	Err  error
}

func (e *DirectoryCreationError) Error() string {
	return fmt.Sprintf("unable to create the hydrator directory (%s): %v", e.Path, e.Err)
}

func (e *DirectoryCreationError) Unwrap() error { return e.Err }

// DirectoryPermissionError 表示 hydrator 目录存在但当前进程不可写。
type DirectoryPermissionError struct {
	Path string
	Err  error
}

func (e *DirectoryPermissionError) Error() string {
	return fmt.Sprintf("hydrator directory (%s) is not writable for the current system user", e.Path)
}

func (e *DirectoryPermissionError) Unwrap() error { return e.Err }

// UnknownManagerError 表示配置中的 document manager 未注册。
type UnknownManagerError struct {
	Name string
}

func (e *UnknownManagerError) Error() string {
	return fmt.Sprintf("document manager %q is not registered", e.Name)
}

// GenerationError 包装 metadata 读取或 hydrator 生成阶段的错误，Err 保持原值。
type GenerationError struct {
	Manager string
	Stage   string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("document manager %s: %s: %v", e.Manager, e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

const (
	stageMetadata = "load metadata"
	stageGenerate = "generate hydrators"
)
