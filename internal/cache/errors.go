package cache

import "errors"

var (
	// ErrCacheNotFound 表示配置中没有声明该缓存。
	ErrCacheNotFound = errors.New("cache not declared")
	// ErrStorageDisabled 表示缓存设置了 disable_storage，没有磁盘目录可供清理。
	ErrStorageDisabled = errors.New("storage for this cache is disabled")
	// ErrUnsupportedCacheType 表示 cache.type 不是已注册的后端。
	ErrUnsupportedCacheType = errors.New("unsupported cache type")
	// ErrSandboxViolation 表示解析出的目录位于沙箱根目录之外。
	ErrSandboxViolation = errors.New("path is outside the sandbox root")
	// ErrCacheEmpty 表示缓存已声明，但磁盘上没有匹配的目录。
	ErrCacheEmpty = errors.New("cache not found")
)
