package utils

import (
	"os"
	"path/filepath"
)

// ResolvePath 将相对路径解析为相对于可执行文件所在目录的绝对路径
func ResolvePath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return ResolveFrom(filepath.Dir(exe), p), nil
}

// ResolveFrom 以 base 为基准解析相对路径
func ResolveFrom(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
