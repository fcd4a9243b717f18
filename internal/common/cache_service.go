package common

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// CacheService is the in-memory cache used when no Redis address is configured.
type CacheService struct {
	cache *cache.Cache
}

// Ensure CacheService implements CacheInterface
var _ CacheInterface = (*CacheService)(nil)

func NewCacheService(defaultExpiration, cleanUpInterval time.Duration) *CacheService {
	c := cache.New(defaultExpiration, cleanUpInterval)
	return &CacheService{cache: c}
}

// Set keeps its own copy so later writes to value do not leak in.
func (cs *CacheService) Set(key string, value []byte, duration time.Duration) {
	cs.cache.Set(key, append([]byte(nil), value...), duration)
}

func (cs *CacheService) Get(key string) ([]byte, bool) {
	v, found := cs.cache.Get(key)
	if !found {
		return nil, false
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, false
	}
	return append([]byte(nil), b...), true
}

func (cs *CacheService) Delete(key string) {
	cs.cache.Delete(key)
}

// SetIfAbsent relies on go-cache's Add, which fails when the key is present.
func (cs *CacheService) SetIfAbsent(key string, duration time.Duration) bool {
	return cs.cache.Add(key, []byte("1"), duration) == nil
}

// Len counts stored keys, expired ones included until the next sweep.
func (cs *CacheService) Len() int {
	return cs.cache.ItemCount()
}

// Close closes the cache (no-op for in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}
