package routes

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/mapproxy-admin/internal/cache"
	"github.com/any-hub/mapproxy-admin/internal/config"
	"github.com/any-hub/mapproxy-admin/internal/projects"
	"github.com/any-hub/mapproxy-admin/internal/server"
	"github.com/any-hub/mapproxy-admin/internal/trash"
)

type testAdmin struct {
	*fiber.App
	paths config.PathsConfig
	store *projects.Store
}

func newTestAdmin(t *testing.T) *testAdmin {
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
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store, err := projects.NewStore(paths.ProjectsDir)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	resolver := cache.NewResolver(paths, logger)
	clearer, err := cache.NewClearer(cache.ClearerOptions{Store: store, Resolver: resolver, Logger: logger})
	if err != nil {
		t.Fatalf("clearer: %v", err)
	}
	rotator, err := trash.NewRotator(store, clearer, paths.TrashDir(), logger)
	if err != nil {
		t.Fatalf("rotator: %v", err)
	}

	app, err := server.NewApp(server.AppOptions{Logger: logger, BodyLimit: 1 << 20})
	if err != nil {
		t.Fatalf("app: %v", err)
	}
	RegisterProjectRoutes(app, ProjectDeps{
		Store:     store,
		Clearer:   clearer,
		Inspector: cache.NewInspector(store, resolver),
		Rotator:   rotator,
		Logger:    logger,
	})
	RegisterBackendRoutes(app)
	return &testAdmin{App: app, paths: paths, store: store}
}

func (a *testAdmin) seedTiles(t *testing.T, dir string) string {
	t.Helper()
	full := filepath.Join(a.paths.CacheDir, dir)
	if err := os.MkdirAll(full, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(full, "0.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return full
}

func decodeJSON(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
