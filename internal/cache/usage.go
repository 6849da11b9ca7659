package cache

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/any-hub/mapproxy-admin/internal/backend"
	"github.com/any-hub/mapproxy-admin/internal/projects"
)

// DirUsage 汇总一个缓存目录的占用情况。
type DirUsage struct {
	Path  string `json:"path"`
	Files int64  `json:"files"`
	Bytes int64  `json:"bytes"`
	Tiles int64  `json:"tiles"`
}

// UsageReport 是只读的缓存占用报告，目录集合与清理时完全一致。
type UsageReport struct {
	Project   string     `json:"name"`
	Cache     string     `json:"cache"`
	Type      string     `json:"type"`
	Dirs      []DirUsage `json:"dirs"`
	Unmatched []string   `json:"unmatched,omitempty"`
}

// Inspector 在不修改磁盘的前提下报告缓存占用。
type Inspector struct {
	store    *projects.Store
	resolver *Resolver
}

// NewInspector 复用 Clearer 相同的 Store 与 Resolver。
func NewInspector(store *projects.Store, resolver *Resolver) *Inspector {
	return &Inspector{store: store, resolver: resolver}
}

// Usage 解析缓存目录并统计文件数、字节数以及后端识别出的瓦片数。
func (i *Inspector) Usage(ctx context.Context, project, cacheName string) (UsageReport, error) {
	report := UsageReport{Project: project, Cache: cacheName}

	cfg, err := i.store.Load(project)
	if err != nil {
		return report, err
	}
	desc, err := i.resolver.Describe(cfg, cacheName)
	if err != nil {
		return report, err
	}
	report.Type = desc.Type

	resolution, err := i.resolver.Resolve(desc)
	if err != nil {
		return report, err
	}
	report.Unmatched = resolution.Unmatched

	meta, _ := backend.Resolve(desc.Type)
	for _, dir := range resolution.Paths {
		usage, err := diskUsage(ctx, dir)
		if err != nil {
			return report, err
		}
		if meta.CountTiles != nil {
			if usage.Tiles, err = meta.CountTiles(ctx, dir); err != nil {
				return report, err
			}
		}
		report.Dirs = append(report.Dirs, usage)
	}
	return report, nil
}

func diskUsage(ctx context.Context, dir string) (DirUsage, error) {
	usage := DirUsage{Path: dir}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		usage.Files++
		usage.Bytes += info.Size()
		return nil
	})
	return usage, err
}
