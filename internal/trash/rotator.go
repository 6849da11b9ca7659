// Package trash retires MapProxy configurations: their caches are cleared
// first, then the file is renamed into the first free numbered slot below
// <projects>/trash. Nothing is ever erased, and a full trash leaves the
// original file in place.
package trash

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/any-hub/mapproxy-admin/internal/cache"
	"github.com/any-hub/mapproxy-admin/internal/logging"
	"github.com/any-hub/mapproxy-admin/internal/projects"
)

// MaxSlots 是单个配置名可占用的回收槽数量（后缀 0..MaxSlots-1）。
const MaxSlots = 300

// ErrTrashFull 表示所有回收槽都已占用。
var ErrTrashFull = errors.New("move to trash failed, need to empty trash?")

// Outcome 描述一次成功的回收：最终槽位以及各缓存的清理结果。
type Outcome struct {
	Name   string
	Slot   string
	Caches []cache.Result
}

// Rotator 串联 加载 → 清理缓存 → 确保 trash 目录 → 寻找空槽并 rename 的流程。
type Rotator struct {
	store   *projects.Store
	clearer *cache.Clearer
	logger  *logrus.Logger
	dir     string
}

// NewRotator 以 dir 作为回收站目录，dir 为空时使用配置目录下的 trash 子目录。
func NewRotator(store *projects.Store, clearer *cache.Clearer, dir string, logger *logrus.Logger) (*Rotator, error) {
	if store == nil {
		return nil, errors.New("projects store is required")
	}
	if clearer == nil {
		return nil, errors.New("cache clearer is required")
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if dir == "" {
		dir = filepath.Join(store.Dir(), "trash")
	}
	return &Rotator{
		store:   store,
		clearer: clearer,
		logger:  logger,
		dir:     dir,
	}, nil
}

// Dir 返回回收站目录。
func (r *Rotator) Dir() string {
	return r.dir
}

// Retire 清空配置声明的全部缓存后把配置文件移入回收站。
// 缓存清理失败只记录日志、不阻塞回收；创建 trash 目录失败或槽位耗尽则整体失败。
func (r *Rotator) Retire(name string) (Outcome, error) {
	outcome := Outcome{Name: name}
	fields := logging.CacheFields("retire", name, "")

	source, err := r.store.Path(name)
	if err != nil {
		return outcome, err
	}
	if _, err := r.store.Load(name); err != nil {
		return outcome, err
	}

	results, err := r.clearer.ClearAll(name)
	if err != nil {
		return outcome, err
	}
	outcome.Caches = results
	for _, res := range results {
		if res.Err != nil {
			r.logger.WithFields(fields).WithField("cache", res.Cache).WithError(res.Err).Warn("cache_clear_skipped")
		}
	}

	if err := os.Mkdir(r.dir, 0o755); err != nil && !errors.Is(err, fs.ErrExist) {
		r.logger.WithFields(fields).WithError(err).Error("trash_mkdir_failed")
		return outcome, fmt.Errorf("create trash dir: %w", err)
	}

	for i := 0; i < MaxSlots; i++ {
		slot := filepath.Join(r.dir, name+strconv.Itoa(i))
		if _, err := os.Lstat(slot); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			r.logger.WithFields(fields).WithField("slot", slot).WithError(err).Warn("trash_slot_probe_failed")
			continue
		}
		if err := os.Rename(source, slot); err != nil {
			r.logger.WithFields(fields).WithField("slot", slot).WithError(err).Warn("trash_rename_failed")
			continue
		}
		outcome.Slot = slot
		r.logger.WithFields(fields).WithFields(logrus.Fields{
			"slot":         slot,
			"caches":       len(results),
			"cache_errors": cache.Failed(results),
		}).Info("configuration_trashed")
		return outcome, nil
	}

	r.logger.WithFields(fields).Error("trash_full")
	return outcome, fmt.Errorf("%w (%s)", ErrTrashFull, name)
}
