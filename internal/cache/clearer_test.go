package cache

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/any-hub/mapproxy-admin/internal/projects"
)

func newTestClearer(t *testing.T, env *testEnv, parallel int) *Clearer {
	t.Helper()
	clearer, err := NewClearer(ClearerOptions{
		Store:       env.store,
		Resolver:    env.resolver,
		Logger:      env.logger,
		MaxParallel: parallel,
	})
	if err != nil {
		t.Fatalf("new clearer: %v", err)
	}
	return clearer
}

func TestNewClearerRequiresDependencies(t *testing.T) {
	if _, err := NewClearer(ClearerOptions{}); err == nil {
		t.Fatalf("missing store should fail")
	}
	env := newTestEnv(t)
	if _, err := NewClearer(ClearerOptions{Store: env.store}); err == nil {
		t.Fatalf("missing resolver should fail")
	}
}

func TestClearOneRemovesResolvedDirectories(t *testing.T) {
	env := newTestEnv(t)
	env.mkTileDir(t, env.cachePath("osm_EPSG3857"))
	env.mkTileDir(t, env.cachePath("osm_custom"))
	env.mkTileDir(t, env.cachePath("osmosis_EPSG3857"))
	env.saveProject(t, "osm.yaml", map[string]any{
		"osm": map[string]any{"grids": []any{"custom"}},
	})

	result := newTestClearer(t, env, 0).ClearOne("osm.yaml", "osm")
	if result.Err != nil {
		t.Fatalf("clear error: %v", result.Err)
	}
	if len(result.Paths) != 2 || result.Project != "osm.yaml" || result.Cache != "osm" {
		t.Fatalf("unexpected result %+v", result)
	}
	if exists(env.cachePath("osm_EPSG3857")) || exists(env.cachePath("osm_custom")) {
		t.Fatalf("resolved directories should be removed")
	}
	if !exists(env.cachePath("osmosis_EPSG3857")) {
		t.Fatalf("unrelated prefix must survive")
	}
}

func TestClearOneStorageDisabledDoesNotTouchDisk(t *testing.T) {
	env := newTestEnv(t)
	env.mkTileDir(t, env.cachePath("osm_EPSG3857"))
	env.saveProject(t, "osm.yaml", map[string]any{
		"osm": map[string]any{"disable_storage": true},
	})

	result := newTestClearer(t, env, 0).ClearOne("osm.yaml", "osm")
	if !errors.Is(result.Err, ErrStorageDisabled) {
		t.Fatalf("expected ErrStorageDisabled, got %v", result.Err)
	}
	if !exists(env.cachePath("osm_EPSG3857")) {
		t.Fatalf("storage-disabled cache must not be deleted")
	}
}

func TestClearOneEmptyAndMissingConfig(t *testing.T) {
	env := newTestEnv(t)
	env.saveProject(t, "osm.yaml", map[string]any{"osm": map[string]any{}})
	clearer := newTestClearer(t, env, 0)

	if result := clearer.ClearOne("osm.yaml", "osm"); !errors.Is(result.Err, ErrCacheEmpty) {
		t.Fatalf("expected ErrCacheEmpty, got %v", result.Err)
	}
	if result := clearer.ClearOne("nope.yaml", "osm"); !errors.Is(result.Err, projects.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", result.Err)
	}
}

func TestClearAllReportsEveryCache(t *testing.T) {
	env := newTestEnv(t)
	env.mkTileDir(t, env.cachePath("a_EPSG4326"))
	env.mkTileDir(t, env.cachePath("b_EPSG4326"))
	env.mkTileDir(t, env.cachePath("c_EPSG4326"))
	env.saveProject(t, "multi.yaml", map[string]any{
		"a":        map[string]any{},
		"b":        map[string]any{},
		"c":        map[string]any{},
		"disabled": map[string]any{"disable_storage": true},
		"empty":    map[string]any{},
		"escape":   map[string]any{"base_dir": "/"},
	})

	for _, parallel := range []int{0, 1} {
		results, err := newTestClearer(t, env, parallel).ClearAll("multi.yaml")
		if err != nil {
			t.Fatalf("clear all: %v", err)
		}
		if len(results) != 6 {
			t.Fatalf("expected 6 results, got %d", len(results))
		}
		names := make([]string, len(results))
		for i, r := range results {
			names[i] = r.Cache
		}
		if !reflect.DeepEqual(names, []string{"a", "b", "c", "disabled", "empty", "escape"}) {
			t.Fatalf("results should be sorted by cache name, got %v", names)
		}
		if parallel == 0 && Failed(results) != 3 {
			t.Fatalf("expected 3 failures on first pass, got %d", Failed(results))
		}
		if !errors.Is(results[5].Err, ErrSandboxViolation) {
			t.Fatalf("escape should be a sandbox violation, got %v", results[5].Err)
		}
	}
	for _, dir := range []string{"a_EPSG4326", "b_EPSG4326", "c_EPSG4326"} {
		if exists(env.cachePath(dir)) {
			t.Fatalf("%s should be cleared", dir)
		}
	}
}

func TestClearAllMissingConfig(t *testing.T) {
	env := newTestEnv(t)
	if _, err := newTestClearer(t, env, 0).ClearAll("ghost.yaml"); !errors.Is(err, projects.ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}
}

func TestClearOneStopsAtFirstFailure(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	env := newTestEnv(t)
	first := env.cachePath("osm_EPSG3857")
	second := env.cachePath("osm_custom")
	env.mkTileDir(t, first)
	env.mkTileDir(t, second)
	locked := filepath.Join(second, "locked")
	if err := os.Mkdir(locked, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(locked, "0.png"), []byte("png"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Chmod(locked, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })
	env.saveProject(t, "osm.yaml", map[string]any{
		"osm": map[string]any{"grids": []any{"custom"}},
	})

	result := newTestClearer(t, env, 0).ClearOne("osm.yaml", "osm")
	var pathErr *fs.PathError
	if !errors.As(result.Err, &pathErr) {
		t.Fatalf("expected *fs.PathError, got %v", result.Err)
	}
	if !reflect.DeepEqual(result.Paths, []string{first}) {
		t.Fatalf("only the first directory should be reported, got %v", result.Paths)
	}
	if exists(first) {
		t.Fatalf("first directory should be removed")
	}
	if !exists(second) {
		t.Fatalf("failing directory should remain")
	}
}
