package backend

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

const defaultKey = "file"

var globalRegistry = newRegistry()

type registry struct {
	mu       sync.RWMutex
	backends map[string]Metadata
}

func newRegistry() *registry {
	return &registry{backends: make(map[string]Metadata)}
}

// Register 将后端元数据加入全局注册表，重复键会返回错误。
func Register(meta Metadata) error {
	return globalRegistry.register(meta)
}

// MustRegister 在注册失败时 panic，适合后端 init() 中调用。
func MustRegister(meta Metadata) {
	if err := Register(meta); err != nil {
		panic(err)
	}
}

// Resolve 返回指定键的后端元数据。键区分大小写，与 MapProxy 一致。
func Resolve(key string) (Metadata, bool) {
	return globalRegistry.resolve(key)
}

// List 返回按键排序的后端元数据列表。
func List() []Metadata {
	return globalRegistry.list()
}

// Keys 返回所有已注册后端的键值。
func Keys() []string {
	items := List()
	result := make([]string, len(items))
	for i, meta := range items {
		result[i] = meta.Key
	}
	return result
}

func (r *registry) register(meta Metadata) error {
	key := strings.TrimSpace(meta.Key)
	if key == "" {
		return fmt.Errorf("backend key is required")
	}
	meta.Key = key

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.backends[key]; exists {
		return fmt.Errorf("backend %s already registered", key)
	}
	r.backends[key] = meta
	return nil
}

func (r *registry) resolve(key string) (Metadata, bool) {
	if key == "" {
		return Metadata{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	meta, ok := r.backends[key]
	return meta, ok
}

func (r *registry) list() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.backends) == 0 {
		return nil
	}

	keys := make([]string, 0, len(r.backends))
	for key := range r.backends {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make([]Metadata, 0, len(keys))
	for _, key := range keys {
		result = append(result, r.backends[key])
	}
	return result
}
