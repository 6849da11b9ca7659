// Package file 描述 MapProxy 默认的 file 缓存：每个瓦片一个图片文件，按目录布局分层存放。
package file

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/any-hub/mapproxy-admin/internal/backend"
)

var tileExtensions = []string{".png", ".jpeg", ".jpg", ".gif", ".webp", ".tiff", ".mvt", ".pbf"}

func init() {
	backend.MustRegister(backend.Metadata{
		Key:            "file",
		Description:    "One image file per tile below <cache>_<grid>/",
		TileExtensions: tileExtensions,
		CountTiles:     CountTiles,
	})
}

// CountTiles 递归统计目录下扩展名属于瓦片格式的普通文件，不跟随符号链接。
func CountTiles(ctx context.Context, dir string) (int64, error) {
	var count int64
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if isTileFile(d.Name()) {
			count++
		}
		return nil
	})
	return count, err
}

func isTileFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range tileExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}
