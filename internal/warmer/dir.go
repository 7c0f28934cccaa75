package warmer

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const probePattern = ".hydra-warm-probe-*"

// prepareDir 确保 dir 存在；已存在时检查可写。返回值表示本次是否新建了目录。
func prepareDir(fsys afero.Fs, dir string, mode os.FileMode) (bool, error) {
	info, err := fsys.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := fsys.MkdirAll(dir, mode); err != nil {
			return false, &DirectoryCreationError{Path: filepath.Dir(dir), Err: err}
		}
		return true, nil
	case err != nil:
		return false, &DirectoryCreationError{Path: filepath.Dir(dir), Err: err}
	case !info.IsDir():
		return false, &DirectoryCreationError{Path: dir, Err: ErrNotDirectory}
	}

	if err := probeWritable(fsys, dir); err != nil {
		return false, &DirectoryPermissionError{Path: dir, Err: err}
	}
	return false, nil
}

// probeWritable 通过创建并删除临时文件判断目录可写，兼容 afero 的各种实现。
func probeWritable(fsys afero.Fs, dir string) error {
	f, err := afero.TempFile(fsys, dir, probePattern)
	if err != nil {
		return err
	}
	name := f.Name()
	closeErr := f.Close()
	removeErr := fsys.Remove(name)
	if closeErr != nil {
		return closeErr
	}
	return removeErr
}
