// Package sqlite 描述 MapProxy 的 sqlite 缓存：每个缩放级别一个 <level>.sqlite 文件，
// 瓦片存放在 tiles 表中。统计时以只读方式打开，不会改动缓存内容。
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/any-hub/mapproxy-admin/internal/backend"
)

var levelExtensions = []string{".sqlite", ".mbtiles"}

func init() {
	backend.MustRegister(backend.Metadata{
		Key:            "sqlite",
		Description:    "One SQLite database per zoom level below <cache>_<grid>/",
		TileExtensions: levelExtensions,
		CountTiles:     CountTiles,
	})
}

// CountTiles 汇总目录内每个级别数据库 tiles 表的行数。
func CountTiles(ctx context.Context, dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !isLevelFile(entry.Name()) {
			continue
		}
		n, err := countLevel(ctx, filepath.Join(dir, entry.Name()))
		if err != nil {
			return total, fmt.Errorf("count %s: %w", entry.Name(), err)
		}
		total += n
	}
	return total, nil
}

func countLevel(ctx context.Context, path string) (int64, error) {
	dsn := (&url.URL{Scheme: "file", Path: filepath.ToSlash(path), RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return 0, fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	var n int64
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tiles").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func isLevelFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, candidate := range levelExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}
