package cache

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"

	"github.com/ppiankov/supplematch/internal/model"
)

// Cache stores raw values by key
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key derives a cache key for one user's result. variant identifies everything
// besides the snapshot that changes the result (catalog, scoring config), so a
// new fingerprint or a new variant always misses.
func Key(userID, fingerprint, variant string) string {
	sum := xxhash.Sum64String(strings.Join([]string{userID, fingerprint, variant}, "\x00"))
	return fmt.Sprintf("supplematch:v1:%016x", sum)
}

// Results wraps a Cache with typed access to recommendation results
type Results struct {
	store Cache
	ttl   time.Duration
}

// NewResults creates a result cache. A nil store disables caching.
func NewResults(store Cache, ttl time.Duration) *Results {
	return &Results{store: store, ttl: ttl}
}

// Get returns a cached result; undecodable entries are dropped and reported as misses
func (r *Results) Get(key string) (*model.RecommendationResult, bool) {
	if r == nil || r.store == nil {
		return nil, false
	}
	data, ok := r.store.Get(key)
	if !ok {
		return nil, false
	}
	var result model.RecommendationResult
	if err := json.Unmarshal(data, &result); err != nil {
		_ = r.store.Delete(key)
		return nil, false
	}
	return &result, true
}

// Put stores a result under key
func (r *Results) Put(key string, result *model.RecommendationResult) error {
	if r == nil || r.store == nil || result == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return r.store.Set(key, data, r.ttl)
}

// New builds the cache described by cfg, or nil when caching is disabled
func New(cfg model.CacheConfig) Cache {
	if !cfg.Enabled {
		return nil
	}
	if strings.TrimSpace(cfg.Dir) == "" {
		return NewMemoryCache(cfg.MemoryTTL, 10*time.Minute)
	}
	return NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL)
}
