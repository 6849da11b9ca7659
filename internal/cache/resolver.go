package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/mapproxy-admin/internal/config"
)

// Resolution 是一次路径解析的结果。Paths 为空不算错误。
type Resolution struct {
	Paths []string
	// Unmatched 记录形如 <cache>_xxx 却无法对应任何 grid 的后缀，通常意味着配置不一致。
	Unmatched []string
}

// Resolver 把缓存描述转换为沙箱内真实存在的目录集合。
type Resolver struct {
	paths  config.PathsConfig
	logger *logrus.Logger
}

// NewResolver 注入目录布局；logger 可为 nil。
func NewResolver(paths config.PathsConfig, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Resolver{paths: paths, logger: logger}
}

// Resolve 列出描述对应的缓存目录。任一候选路径越出沙箱都会让整个解析失败。
func (r *Resolver) Resolve(desc Descriptor) (Resolution, error) {
	root := canonicalPath(r.paths.SandboxRoot)

	if desc.Directory != "" {
		dir := canonicalPath(desc.Directory)
		if !strictlyWithin(root, dir) {
			return Resolution{}, fmt.Errorf("%w: %s is outside %s", ErrSandboxViolation, desc.Directory, r.paths.SandboxRoot)
		}
		info, err := os.Stat(dir)
		switch {
		case err == nil && info.IsDir():
			return Resolution{Paths: []string{dir}}, nil
		case err == nil, errors.Is(err, fs.ErrNotExist):
			return Resolution{}, nil
		default:
			return Resolution{}, err
		}
	}

	base := canonicalPath(desc.BaseDir)
	if !config.Within(root, base) {
		return Resolution{}, fmt.Errorf("%w: %s is outside %s", ErrSandboxViolation, desc.BaseDir, r.paths.SandboxRoot)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Resolution{}, nil
		}
		return Resolution{}, err
	}

	matcher := newSuffixMatcher(desc.Grids)
	var result Resolution
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), desc.Name) {
			continue
		}
		remainder := strings.TrimPrefix(entry.Name(), desc.Name)
		outcome := matcher.match(remainder)
		if outcome == matchUnknown {
			result.Unmatched = append(result.Unmatched, remainder)
			r.logger.WithFields(logrus.Fields{
				"action":    "resolve_cache",
				"project":   desc.Project,
				"cache":     desc.Name,
				"remainder": remainder,
			}).Debug("cache directory suffix matches no grid")
		}
		if !outcome.accepted() {
			continue
		}
		candidate := filepath.Join(base, entry.Name())
		if !strictlyWithin(root, candidate) {
			return Resolution{}, fmt.Errorf("%w: %s is outside %s", ErrSandboxViolation, candidate, r.paths.SandboxRoot)
		}
		result.Paths = append(result.Paths, candidate)
	}
	return result, nil
}

// strictlyWithin 要求 path 是 root 的真子孙，root 自身不允许被删除。
func strictlyWithin(root, path string) bool {
	return config.Within(root, path) && filepath.Clean(root) != filepath.Clean(path)
}

// canonicalPath 解析符号链接；路径尚不存在时解析最长的已存在祖先再拼回剩余部分。
func canonicalPath(path string) string {
	path = filepath.Clean(path)
	rest := ""
	for cur := path; ; {
		if resolved, err := filepath.EvalSymlinks(cur); err == nil {
			return filepath.Join(resolved, rest)
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return path
		}
		rest = filepath.Join(filepath.Base(cur), rest)
		cur = parent
	}
}
