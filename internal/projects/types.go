package projects

import (
	"path/filepath"
	"strings"
)

// Config 是一次读取得到的 MapProxy 配置：文件名 + 解析后的 YAML 树。
type Config struct {
	Name string
	Data map[string]any
}

// Caches 返回 caches 段；缺失或类型不符时返回 nil。
func (c *Config) Caches() map[string]any {
	if c == nil {
		return nil
	}
	caches, _ := c.Data["caches"].(map[string]any)
	return caches
}

// CacheNames 返回 caches 段中声明的全部缓存名。
func (c *Config) CacheNames() []string {
	caches := c.Caches()
	names := make([]string, 0, len(caches))
	for name := range caches {
		names = append(names, name)
	}
	return names
}

// GlobalCacheBaseDir 读取 globals.cache.base_dir，未声明时返回空串。
func (c *Config) GlobalCacheBaseDir() string {
	if c == nil {
		return ""
	}
	globals, _ := c.Data["globals"].(map[string]any)
	cacheSection, _ := globals["cache"].(map[string]any)
	baseDir, _ := cacheSection["base_dir"].(string)
	return strings.TrimSpace(baseDir)
}

// isConfigFile 判断目录项是否为可识别的 YAML 配置。
func isConfigFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
