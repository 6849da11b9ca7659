package cache

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/any-hub/mapproxy-admin/internal/backend"
	"github.com/any-hub/mapproxy-admin/internal/projects"
)

// Descriptor 是解析后的缓存描述，BaseDir 已经按覆盖链折算为唯一的生效目录。
type Descriptor struct {
	Project        string
	Name           string
	Type           string
	DisableStorage bool
	Grids          []string
	// BaseDir 是扫描 <cache>_<suffix> 目录的父目录；设置 Directory 时与之相同。
	BaseDir string
	// Directory 非空时直接指向缓存目录，跳过后缀匹配。
	Directory string
}

// cacheSection 对应 YAML 中 caches.<name> 的字段子集。
type cacheSection struct {
	Grids          []string `mapstructure:"grids"`
	DisableStorage bool     `mapstructure:"disable_storage"`
	BaseDir        string   `mapstructure:"base_dir"`
	Directory      string   `mapstructure:"directory"`
	Cache          struct {
		Type      string `mapstructure:"type"`
		Directory string `mapstructure:"directory"`
	} `mapstructure:"cache"`
}

// Describe 从已加载的配置中提取缓存描述。
func (r *Resolver) Describe(cfg *projects.Config, cacheName string) (Descriptor, error) {
	raw, ok := cfg.Caches()[cacheName]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s not in %s", ErrCacheNotFound, cacheName, cfg.Name)
	}

	var section cacheSection
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &section,
	})
	if err != nil {
		return Descriptor{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Descriptor{}, fmt.Errorf("decode cache %s: %w", cacheName, err)
	}

	if section.DisableStorage {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrStorageDisabled, cacheName)
	}

	cacheType := backend.DefaultKey()
	if declared := strings.TrimSpace(section.Cache.Type); declared != "" {
		if _, ok := backend.Resolve(declared); !ok {
			return Descriptor{}, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedCacheType, declared, strings.Join(backend.Keys(), ","))
		}
		cacheType = declared
	}

	desc := Descriptor{
		Project: cfg.Name,
		Name:    cacheName,
		Type:    cacheType,
		Grids:   section.Grids,
		BaseDir: r.paths.CacheDir,
	}
	if global := cfg.GlobalCacheBaseDir(); global != "" {
		desc.BaseDir = r.absolute(global)
	}
	if baseDir := strings.TrimSpace(section.BaseDir); baseDir != "" {
		desc.BaseDir = r.absolute(baseDir)
	}
	directory := strings.TrimSpace(section.Directory)
	if directory == "" {
		directory = strings.TrimSpace(section.Cache.Directory)
	}
	if directory != "" {
		desc.Directory = r.absolute(directory)
		desc.BaseDir = desc.Directory
	}
	return desc, nil
}

// absolute 按 MapProxy 的规则把相对路径解释为相对于配置文件所在目录。
func (r *Resolver) absolute(dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(r.paths.ProjectsDir, dir)
}
