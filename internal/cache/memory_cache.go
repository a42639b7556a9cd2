package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache 基于go-cache的进程内缓存
// 与 RedisCache 一样按 KeyPrefix 划分命名空间，多个实例可以共用同一个存储
type MemoryCache struct {
	store  *gocache.Cache
	prefix string
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache(config Config) (Cache, error) {
	defaultTTL := config.DefaultTTL
	if defaultTTL <= 0 {
		defaultTTL = 24 * time.Hour
	}
	cleanup := config.CleanupInterval
	if cleanup <= 0 {
		cleanup = 10 * time.Minute
	}
	return NewSharedMemoryCache(gocache.New(defaultTTL, cleanup), config.KeyPrefix), nil
}

// NewSharedMemoryCache 在已有的go-cache存储上创建一个带前缀的视图
func NewSharedMemoryCache(store *gocache.Cache, prefix string) *MemoryCache {
	return &MemoryCache{store: store, prefix: prefix}
}

func (m *MemoryCache) key(key string) string {
	if m.prefix == "" {
		return key
	}
	return GenerateCacheKey(m.prefix, key)
}

// Get 获取缓存内容，非字符串的值视为未命中
func (m *MemoryCache) Get(key string) (string, bool, error) {
	value, found := m.store.Get(m.key(key))
	if !found {
		return "", false, nil
	}
	str, ok := value.(string)
	return str, ok, nil
}

// Set 设置缓存内容，ttl为0时使用默认过期时间
func (m *MemoryCache) Set(key string, value string, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	m.store.Set(m.key(key), value, ttl)
	return nil
}

// Delete 删除缓存项
func (m *MemoryCache) Delete(key string) error {
	m.store.Delete(m.key(key))
	return nil
}

// Clear 清空当前前缀下的缓存，没有前缀时清空整个存储
func (m *MemoryCache) Clear() error {
	if m.prefix == "" {
		m.store.Flush()
		return nil
	}
	ns := m.prefix + ":"
	for k := range m.store.Items() {
		if strings.HasPrefix(k, ns) {
			m.store.Delete(k)
		}
	}
	return nil
}

// Close 内存缓存无需释放资源
func (m *MemoryCache) Close() error {
	return nil
}

func init() {
	RegisterCache("memory", NewMemoryCache)
}
