package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	defaultListenPort = 8083
	defaultBodyLimit  = 5 * 1024 * 1024
)

// Load 读取并解析 TOML 配置文件，同时注入默认值、解析目录并执行校验。
func Load(path string) (*Config, error) {
	if path == "" {
		path = "config.toml"
	}

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	applyGlobalDefaults(&cfg.Global)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := resolvePaths(&cfg.Paths); err != nil {
		return nil, err
	}
	if err := cfg.Paths.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ListenPort", defaultListenPort)
	v.SetDefault("LogLevel", "info")
	v.SetDefault("LogFilePath", "")
	v.SetDefault("LogMaxSize", 100)
	v.SetDefault("LogMaxBackups", 10)
	v.SetDefault("LogCompress", true)
	v.SetDefault("MaxParallelClears", 4)
	v.SetDefault("BodyLimit", defaultBodyLimit)
	v.SetDefault("AllowOrigins", []string{"*"})
	v.SetDefault("ProjectsDir", "projects")
	v.SetDefault("CacheDir", "cache_data")
	v.SetDefault("SandboxRoot", "")
}

func applyGlobalDefaults(g *GlobalConfig) {
	if g.ListenPort == 0 {
		g.ListenPort = defaultListenPort
	}
	if g.LogLevel == "" {
		g.LogLevel = "info"
	}
	if g.MaxParallelClears < 0 {
		g.MaxParallelClears = 0
	}
	if g.BodyLimit == 0 {
		g.BodyLimit = defaultBodyLimit
	}
	if len(g.AllowOrigins) == 0 {
		g.AllowOrigins = []string{"*"}
	}
}

// resolvePaths 把相对目录展开为基于 MapproxyDir 的绝对路径，SandboxRoot 缺省时取 CacheDir。
func resolvePaths(p *PathsConfig) error {
	if strings.TrimSpace(p.MapproxyDir) == "" {
		return newFieldError("MapproxyDir", "不能为空")
	}
	root, err := filepath.Abs(p.MapproxyDir)
	if err != nil {
		return fmt.Errorf("无法解析 MapproxyDir: %w", err)
	}
	p.MapproxyDir = root

	p.ProjectsDir = underRoot(root, p.ProjectsDir)
	p.CacheDir = underRoot(root, p.CacheDir)
	if strings.TrimSpace(p.SandboxRoot) == "" {
		p.SandboxRoot = p.CacheDir
	} else {
		p.SandboxRoot = underRoot(root, p.SandboxRoot)
	}
	return nil
}

func underRoot(root, dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return root
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

// byteSizeDecodeHook 允许 BodyLimit 写成 "5MB"/"512KB" 或纯字节数。
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to.Kind() != reflect.Int || from.Kind() != reflect.String {
			return data, nil
		}
		raw := strings.ToUpper(strings.TrimSpace(data.(string)))
		if raw == "" {
			return 0, nil
		}
		multiplier := 1
		for _, unit := range []struct {
			suffix string
			factor int
		}{{"MB", 1024 * 1024}, {"KB", 1024}, {"B", 1}} {
			if strings.HasSuffix(raw, unit.suffix) {
				multiplier = unit.factor
				raw = strings.TrimSpace(strings.TrimSuffix(raw, unit.suffix))
				break
			}
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("无法解析字节大小: %v", data)
		}
		return value * multiplier, nil
	}
}
