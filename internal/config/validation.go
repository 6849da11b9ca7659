package config

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Validate 针对运行参数做语义校验，防止非法配置启动服务。
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("配置为空")
	}

	g := c.Global
	if g.ListenPort <= 0 || g.ListenPort > 65535 {
		return newFieldError("ListenPort", "必须在 1-65535")
	}
	if _, err := logrus.ParseLevel(g.LogLevel); err != nil {
		return newFieldError("LogLevel", "无法识别的日志级别")
	}
	if g.BodyLimit < 0 {
		return newFieldError("BodyLimit", "不能为负数")
	}
	if strings.TrimSpace(c.Paths.MapproxyDir) == "" {
		return newFieldError("MapproxyDir", "不能为空")
	}
	return nil
}

// Validate 要求目录已展开为绝对路径，并保证缓存根目录位于沙箱内。
func (p PathsConfig) Validate() error {
	for field, dir := range map[string]string{
		"ProjectsDir": p.ProjectsDir,
		"CacheDir":    p.CacheDir,
		"SandboxRoot": p.SandboxRoot,
	} {
		if !filepath.IsAbs(dir) {
			return newFieldError(field, "必须是绝对路径")
		}
	}
	if p.SandboxRoot == string(filepath.Separator) {
		return newFieldError("SandboxRoot", "不能是文件系统根目录")
	}
	if !Within(p.SandboxRoot, p.CacheDir) {
		return newFieldError("CacheDir", "必须位于 SandboxRoot 之内")
	}
	return nil
}

// Within 判断 path 是否等于 root 或位于 root 之下（纯词法比较）。
func Within(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
