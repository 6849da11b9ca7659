package backend

import "context"

// TileCounter 统计一个缓存目录中的瓦片数量。
type TileCounter func(ctx context.Context, dir string) (int64, error)

// Metadata 记录一个缓存后端的静态信息，供描述解析、用量统计和诊断端使用。
type Metadata struct {
	Key         string
	Description string
	// TileExtensions 列出该后端落盘文件的扩展名（小写，带点）。
	TileExtensions []string
	CountTiles     TileCounter
}

// DefaultKey 返回未声明 cache.type 时使用的后端。
func DefaultKey() string {
	return defaultKey
}
