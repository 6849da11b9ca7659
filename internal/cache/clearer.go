package cache

import (
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/any-hub/mapproxy-admin/internal/logging"
	"github.com/any-hub/mapproxy-admin/internal/projects"
)

// Result 是单个缓存清理的结果：Err 为 nil 时 Paths 为已删除的目录。
type Result struct {
	Project string
	Cache   string
	Paths   []string
	Err     error
}

// Clearer 组合配置读取、路径解析与递归删除，负责清理缓存目录。
type Clearer struct {
	store    *projects.Store
	resolver *Resolver
	logger   *logrus.Logger
	parallel int
}

// ClearerOptions 控制 Clearer 的依赖与并发度。
type ClearerOptions struct {
	Store    *projects.Store
	Resolver *Resolver
	Logger   *logrus.Logger
	// MaxParallel 限制 ClearAll 同时清理的缓存数量，<=0 表示不限制。
	MaxParallel int
}

// NewClearer 校验依赖并构建 Clearer。
func NewClearer(opts ClearerOptions) (*Clearer, error) {
	if opts.Store == nil {
		return nil, errors.New("projects store is required")
	}
	if opts.Resolver == nil {
		return nil, errors.New("cache resolver is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Clearer{
		store:    opts.Store,
		resolver: opts.Resolver,
		logger:   logger,
		parallel: opts.MaxParallel,
	}, nil
}

// ClearOne 读取配置、解析缓存目录并依次删除。没有匹配目录时返回 ErrCacheEmpty；
// 某个目录删除失败时立即停止，剩余目录不再尝试，Paths 中只包含已删除的部分。
func (c *Clearer) ClearOne(project, cacheName string) Result {
	result := Result{Project: project, Cache: cacheName}

	cfg, err := c.store.Load(project)
	if err != nil {
		result.Err = err
		return result
	}
	desc, err := c.resolver.Describe(cfg, cacheName)
	if err != nil {
		result.Err = err
		return result
	}
	resolution, err := c.resolver.Resolve(desc)
	if err != nil {
		result.Err = err
		return result
	}
	if len(resolution.Paths) == 0 {
		result.Err = fmt.Errorf("%w: no matching directories for %s", ErrCacheEmpty, cacheName)
		return result
	}

	fields := logging.CacheFields("clear_cache", project, cacheName)
	for _, dir := range resolution.Paths {
		if err := RemoveTree(dir); err != nil {
			c.logger.WithFields(fields).WithError(err).WithField("path", dir).Warn("cache_clear_failed")
			result.Err = err
			return result
		}
		result.Paths = append(result.Paths, dir)
	}
	c.logger.WithFields(fields).WithField("paths", result.Paths).Info("cache_cleared")
	return result
}

// ClearAll 对配置中声明的每个缓存并发执行 ClearOne。单个缓存失败不影响其它缓存，
// 返回值按缓存名排序；只有配置本身无法读取时才返回 error。
func (c *Clearer) ClearAll(project string) ([]Result, error) {
	cfg, err := c.store.Load(project)
	if err != nil {
		return nil, err
	}
	names := cfg.CacheNames()
	sort.Strings(names)

	results := make([]Result, len(names))
	var g errgroup.Group
	if c.parallel > 0 {
		g.SetLimit(c.parallel)
	}
	for i, name := range names {
		g.Go(func() error {
			results[i] = c.ClearOne(project, name)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// Failed 统计结果中失败的缓存数量。
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
