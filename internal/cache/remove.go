package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// RemoveTree 递归删除目录：先处理子目录（后序），再删除文件，最后删除已清空的目录。
// 路径不存在视为成功；任一条目失败立即返回，已删除的部分不会回滚。
// 符号链接只删除链接本身，不会跟随。
func RemoveTree(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return os.Remove(path)
	}
	return removeDir(path)
}

func removeDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := removeDir(child); err != nil {
				return err
			}
			continue
		}
		if err := os.Remove(child); err != nil {
			return err
		}
	}
	return os.Remove(dir)
}
