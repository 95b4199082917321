package data

import (
	"log"
	"path/filepath"
	"sync"

	"github.com/ducminhle1904/indicator-engine/pkg/types"
)

// MemoryCache implements DataCache using in-memory storage
type MemoryCache struct {
	cache map[string]*types.Series
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string]*types.Series),
	}
}

// Get returns a copy of the cached series
func (c *MemoryCache) Get(key string) (*types.Series, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	series, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	return series.Clone(), true
}

// Set stores a copy of series
func (c *MemoryCache) Set(key string, series *types.Series) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = series.Clone()
}

// Clear removes all cached data
func (c *MemoryCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]*types.Series)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another DataProvider with caching functionality
type CachedProvider struct {
	provider DataProvider
	cache    DataCache
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider DataProvider) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    NewMemoryCache(),
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadData loads data once per source
func (p *CachedProvider) LoadData(source string) (*types.Series, error) {
	if cached, exists := p.cache.Get(source); exists {
		return cached, nil
	}

	series, err := p.provider.LoadData(source)
	if err != nil {
		log.Printf("❌ Failed to load data from %s: %v", filepath.Base(source), err)
		return nil, err
	}

	p.cache.Set(source, series)
	log.Printf("✅ Loaded and cached data from %s (%d rows)", filepath.Base(source), series.Len())
	return series, nil
}

// ValidateData validates data using the underlying provider
func (p *CachedProvider) ValidateData(series *types.Series) error {
	return p.provider.ValidateData(series)
}

// ClearCache clears all cached data
func (p *CachedProvider) ClearCache() {
	p.cache.Clear()
}

// GetCacheSize returns the number of cached entries
func (p *CachedProvider) GetCacheSize() int {
	return p.cache.Size()
}
