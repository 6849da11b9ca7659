package routes

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/any-hub/mapproxy-admin/internal/cache"
	"github.com/any-hub/mapproxy-admin/internal/projects"
	"github.com/any-hub/mapproxy-admin/internal/server"
	"github.com/any-hub/mapproxy-admin/internal/trash"
)

// ProjectDeps 汇总管理接口依赖的组件，全部由 main 在启动时构建。
type ProjectDeps struct {
	Store     *projects.Store
	Clearer   *cache.Clearer
	Inspector *cache.Inspector
	Rotator   *trash.Rotator
	Logger    *logrus.Logger
}

// RegisterProjectRoutes 注册 MapProxy 配置的读写、缓存清理与回收接口。
// 路径沿用旧版管理前端使用的 /mapproxy* 形式，参数统一经过 SanitizeName 清洗。
func RegisterProjectRoutes(app *fiber.App, deps ProjectDeps) {
	if app == nil || deps.Store == nil {
		return
	}
	h := projectHandlers{deps: deps}

	app.Get("/mapproxylist", h.list)
	app.Get("/mapproxyread/:mpconfig", h.read)
	app.Post("/mapproxyupdate/:mpconfig", h.update)
	app.Get("/mapproxydelete/:mpconfig", h.retire)
	app.Get("/mapproxyclearcache/:mpconfig/:cachename", h.clearCache)
	app.Get("/mapproxyusage/:mpconfig/:cachename", h.usage)
}

type projectHandlers struct {
	deps ProjectDeps
}

type configPayload struct {
	Name   string         `json:"name"`
	Config map[string]any `json:"config,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type cacheResultPayload struct {
	Name   string   `json:"name"`
	Cache  string   `json:"cache"`
	Result []string `json:"result,omitempty"`
	Error  string   `json:"error,omitempty"`
}

type retirePayload struct {
	Name   string               `json:"name"`
	Result string               `json:"result,omitempty"`
	Slot   string               `json:"slot,omitempty"`
	Caches []cacheResultPayload `json:"caches,omitempty"`
	Error  string               `json:"error,omitempty"`
}

func (h projectHandlers) list(c fiber.Ctx) error {
	names, err := h.deps.Store.List()
	if err != nil {
		h.logFailure(c, "list_projects", "", "", err)
		return c.Status(statusFor(err)).JSON([]configPayload{{Error: err.Error()}})
	}
	result := make([]configPayload, 0, len(names))
	for _, name := range names {
		cfg, err := h.deps.Store.Load(name)
		if err != nil {
			result = append(result, configPayload{Name: name, Error: err.Error()})
			continue
		}
		result = append(result, configPayload{Name: name, Config: cfg.Data})
	}
	return c.JSON(result)
}

func (h projectHandlers) read(c fiber.Ctx) error {
	name := projects.SanitizeName(c.Params("mpconfig"))
	cfg, err := h.deps.Store.Load(name)
	if err != nil {
		return c.Status(statusFor(err)).JSON(configPayload{Name: name, Error: err.Error()})
	}
	return c.JSON(configPayload{Name: name, Config: cfg.Data})
}

func (h projectHandlers) update(c fiber.Ctx) error {
	name := projects.SanitizeName(c.Params("mpconfig"))
	var data map[string]any
	if err := c.Bind().Body(&data); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"name": name, "error": "invalid JSON body: " + err.Error()})
	}
	if err := h.deps.Store.Save(name, data); err != nil {
		h.logFailure(c, "save_project", name, "", err)
		return c.Status(statusFor(err)).JSON(fiber.Map{"name": name, "error": err.Error()})
	}
	h.logger().WithFields(logrus.Fields{
		"action":     "save_project",
		"project":    name,
		"request_id": server.RequestID(c),
	}).Info("configuration saved")
	return c.JSON(fiber.Map{"name": name, "result": "saved"})
}

func (h projectHandlers) retire(c fiber.Ctx) error {
	name := projects.SanitizeName(c.Params("mpconfig"))
	outcome, err := h.deps.Rotator.Retire(name)
	payload := retirePayload{Name: name, Caches: encodeCacheResults(outcome.Caches)}
	if err != nil {
		h.logFailure(c, "retire_project", name, "", err)
		payload.Error = err.Error()
		return c.Status(statusFor(err)).JSON(payload)
	}
	payload.Result = "ok"
	payload.Slot = outcome.Slot
	return c.JSON(payload)
}

func (h projectHandlers) clearCache(c fiber.Ctx) error {
	name := projects.SanitizeName(c.Params("mpconfig"))
	cacheName := projects.SanitizeName(c.Params("cachename"))
	result := h.deps.Clearer.ClearOne(name, cacheName)
	payload := encodeCacheResult(result)
	if result.Err != nil {
		h.logFailure(c, "clear_cache", name, cacheName, result.Err)
		return c.Status(statusFor(result.Err)).JSON(payload)
	}
	return c.JSON(payload)
}

func (h projectHandlers) usage(c fiber.Ctx) error {
	name := projects.SanitizeName(c.Params("mpconfig"))
	cacheName := projects.SanitizeName(c.Params("cachename"))
	report, err := h.deps.Inspector.Usage(c.Context(), name, cacheName)
	if err != nil {
		return c.Status(statusFor(err)).JSON(cacheResultPayload{Name: name, Cache: cacheName, Error: err.Error()})
	}
	return c.JSON(report)
}

func (h projectHandlers) logger() *logrus.Logger {
	if h.deps.Logger != nil {
		return h.deps.Logger
	}
	return logrus.StandardLogger()
}

func (h projectHandlers) logFailure(c fiber.Ctx, action, project, cacheName string, err error) {
	h.logger().WithFields(logrus.Fields{
		"action":     action,
		"project":    project,
		"cache":      cacheName,
		"request_id": server.RequestID(c),
	}).WithError(err).Warn("admin operation failed")
}

func encodeCacheResult(r cache.Result) cacheResultPayload {
	payload := cacheResultPayload{Name: r.Project, Cache: r.Cache, Result: r.Paths}
	if r.Err != nil {
		payload.Error = r.Err.Error()
	}
	return payload
}

func encodeCacheResults(results []cache.Result) []cacheResultPayload {
	if len(results) == 0 {
		return nil
	}
	out := make([]cacheResultPayload, len(results))
	for i, r := range results {
		out[i] = encodeCacheResult(r)
	}
	return out
}

// statusFor 将领域错误映射为 HTTP 状态码，响应体始终携带 error 字段。
func statusFor(err error) int {
	var parseErr *projects.ParseError
	switch {
	case errors.Is(err, projects.ErrInvalidName):
		return fiber.StatusBadRequest
	case errors.Is(err, projects.ErrConfigNotFound),
		errors.Is(err, cache.ErrCacheNotFound),
		errors.Is(err, cache.ErrCacheEmpty):
		return fiber.StatusNotFound
	case errors.As(err, &parseErr),
		errors.Is(err, cache.ErrUnsupportedCacheType):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, cache.ErrStorageDisabled):
		return fiber.StatusConflict
	case errors.Is(err, cache.ErrSandboxViolation):
		return fiber.StatusForbidden
	case errors.Is(err, trash.ErrTrashFull):
		return fiber.StatusInsufficientStorage
	default:
		return fiber.StatusInternalServerError
	}
}
