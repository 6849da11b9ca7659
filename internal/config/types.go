package config

import "path/filepath"

// GlobalConfig 描述管理服务的运行参数，所有请求共享同一份目录与日志设置。
type GlobalConfig struct {
	ListenPort        int      `mapstructure:"ListenPort"`
	LogLevel          string   `mapstructure:"LogLevel"`
	LogFilePath       string   `mapstructure:"LogFilePath"`
	LogMaxSize        int      `mapstructure:"LogMaxSize"`
	LogMaxBackups     int      `mapstructure:"LogMaxBackups"`
	LogCompress       bool     `mapstructure:"LogCompress"`
	MaxParallelClears int      `mapstructure:"MaxParallelClears"`
	BodyLimit         int      `mapstructure:"BodyLimit"`
	AllowOrigins      []string `mapstructure:"AllowOrigins"`
}

// PathsConfig 决定 MapProxy 配置目录、缓存目录以及删除操作的沙箱边界。
type PathsConfig struct {
	// MapproxyDir 是 MapProxy 安装根目录，ProjectsDir/CacheDir 为相对路径时以它为基准。
	MapproxyDir string `mapstructure:"MapproxyDir"`
	// ProjectsDir 存放各个 MapProxy YAML 配置，trash 子目录用于回收被删除的配置。
	ProjectsDir string `mapstructure:"ProjectsDir"`
	// CacheDir 是未覆盖 base_dir 时缓存目录的默认根。
	CacheDir string `mapstructure:"CacheDir"`
	// SandboxRoot 限定所有递归删除的范围，默认等于 CacheDir。
	SandboxRoot string `mapstructure:"SandboxRoot"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig `mapstructure:",squash"`
	Paths  PathsConfig  `mapstructure:",squash"`
}

// TrashDir 返回回收站目录（位于配置目录下的 trash）。
func (p PathsConfig) TrashDir() string {
	return filepath.Join(p.ProjectsDir, "trash")
}
