package cache

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/mapproxy-admin/internal/config"
	"github.com/any-hub/mapproxy-admin/internal/projects"
)

// testEnv 在临时目录中搭建 projects/ 与 cache_data/，沙箱根即 cache_data。
type testEnv struct {
	paths    config.PathsConfig
	store    *projects.Store
	resolver *Resolver
	logger   *logrus.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("eval tempdir: %v", err)
	}
	paths := config.PathsConfig{
		MapproxyDir: root,
		ProjectsDir: filepath.Join(root, "projects"),
		CacheDir:    filepath.Join(root, "cache_data"),
		SandboxRoot: filepath.Join(root, "cache_data"),
	}
	if err := os.MkdirAll(paths.CacheDir, 0o755); err != nil {
		t.Fatalf("mkdir cache: %v", err)
	}
	store, err := projects.NewStore(paths.ProjectsDir)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &testEnv{
		paths:    paths,
		store:    store,
		resolver: NewResolver(paths, logger),
		logger:   logger,
	}
}

func (e *testEnv) cachePath(parts ...string) string {
	return filepath.Join(append([]string{e.paths.CacheDir}, parts...)...)
}

// mkTileDir 创建一个带少量瓦片文件的缓存目录。
func (e *testEnv) mkTileDir(t *testing.T, dir string) {
	t.Helper()
	tile := filepath.Join(dir, "03", "000", "000", "004.png")
	if err := os.MkdirAll(filepath.Dir(tile), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	if err := os.WriteFile(tile, []byte("png"), 0o644); err != nil {
		t.Fatalf("write tile: %v", err)
	}
}

func (e *testEnv) saveProject(t *testing.T, name string, caches map[string]any) {
	t.Helper()
	if err := e.store.Save(name, map[string]any{"caches": caches}); err != nil {
		t.Fatalf("save %s: %v", name, err)
	}
}

func (e *testEnv) describe(t *testing.T, project, cacheName string) Descriptor {
	t.Helper()
	cfg, err := e.store.Load(project)
	if err != nil {
		t.Fatalf("load %s: %v", project, err)
	}
	desc, err := e.resolver.Describe(cfg, cacheName)
	if err != nil {
		t.Fatalf("describe %s: %v", cacheName, err)
	}
	return desc
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
