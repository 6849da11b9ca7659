package routes

import (
	"sort"

	"github.com/gofiber/fiber/v3"

	"github.com/any-hub/mapproxy-admin/internal/backend"
)

// RegisterBackendRoutes 暴露 /-/backends 诊断接口，列出当前支持的缓存类型。
func RegisterBackendRoutes(app *fiber.App) {
	if app == nil {
		return
	}

	app.Get("/-/backends", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"default":  backend.DefaultKey(),
			"backends": encodeBackends(backend.List()),
		})
	})
}

type backendPayload struct {
	Key            string   `json:"key"`
	Description    string   `json:"description"`
	TileExtensions []string `json:"tile_extensions"`
	CountsTiles    bool     `json:"counts_tiles"`
}

func encodeBackends(items []backend.Metadata) []backendPayload {
	if len(items) == 0 {
		return nil
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Key < items[j].Key
	})
	result := make([]backendPayload, 0, len(items))
	for _, meta := range items {
		result = append(result, backendPayload{
			Key:            meta.Key,
			Description:    meta.Description,
			TileExtensions: append([]string(nil), meta.TileExtensions...),
			CountsTiles:    meta.CountTiles != nil,
		})
	}
	return result
}
