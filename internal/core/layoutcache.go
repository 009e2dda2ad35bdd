package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/calebshay/trellis/pkg/models"
	"gopkg.in/yaml.v3"
)

// DefaultLayoutTTL is the freshness window for cached layouts.
const DefaultLayoutTTL = 24 * time.Hour

// LayoutCache is the optional memoization collaborator for the optimizer.
// The optimizer itself stays pure and cache-agnostic; callers that want
// memoization compose one of these with a CachingOptimizer.
type LayoutCache interface {
	Get(key string) (*models.Layout, bool)
	Put(key string, layout *models.Layout, ttl time.Duration)
}

type cacheEntry struct {
	layout  models.Layout
	expires time.Time
}

// memoryLayoutCache is an in-memory LayoutCache. A single mutex guards the
// map; entries are replaced atomically, so readers never observe a partially
// written entry.
type memoryLayoutCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

// NewMemoryLayoutCache creates an empty in-memory LayoutCache.
func NewMemoryLayoutCache() LayoutCache {
	return &memoryLayoutCache{entries: make(map[string]cacheEntry)}
}

func (c *memoryLayoutCache) Get(key string) (*models.Layout, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if timeNow().After(e.expires) {
		delete(c.entries, key)
		return nil, false
	}
	layout := e.layout
	return &layout, true
}

func (c *memoryLayoutCache) Put(key string, layout *models.Layout, ttl time.Duration) {
	if layout == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{
		layout:  *layout,
		expires: timeNow().Add(ttl),
	}
}

// GardenHash returns a content hash of the garden's optimization inputs
// (area, zones, plants). Any mutation of those inputs changes the hash,
// which is what invalidates cached layouts.
func GardenHash(garden models.Garden) (string, error) {
	// Zone assignments are optimizer output, not input; strip them so a
	// previously optimized garden hashes the same as a fresh one.
	zones := make([]models.Zone, len(garden.Zones))
	for i, z := range garden.Zones {
		z.AssignedPlantIDs = nil
		zones[i] = z
	}
	input := models.Garden{
		Area:   garden.Area,
		Zones:  zones,
		Plants: garden.Plants,
	}
	data, err := yaml.Marshal(input)
	if err != nil {
		return "", fmt.Errorf("hashing garden %s: %w", garden.ID, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// CachingOptimizer wraps a LayoutOptimizer with a LayoutCache. Results are
// keyed by the garden content hash and stamped with SourceHash so stale
// layouts can be recognized by stores as well.
type CachingOptimizer struct {
	inner LayoutOptimizer
	cache LayoutCache
	ttl   time.Duration
}

// NewCachingOptimizer composes an optimizer with a cache. A zero ttl falls
// back to DefaultLayoutTTL.
func NewCachingOptimizer(inner LayoutOptimizer, cache LayoutCache, ttl time.Duration) *CachingOptimizer {
	if ttl <= 0 {
		ttl = DefaultLayoutTTL
	}
	return &CachingOptimizer{inner: inner, cache: cache, ttl: ttl}
}

// Optimize returns a cached layout when the garden is unchanged and the
// entry is fresh, otherwise delegates to the wrapped optimizer and caches
// the result. Errors are never cached.
func (co *CachingOptimizer) Optimize(garden models.Garden) (*models.Layout, error) {
	key, err := GardenHash(garden)
	if err != nil {
		return nil, err
	}

	if cached, ok := co.cache.Get(key); ok {
		return cached, nil
	}

	layout, err := co.inner.Optimize(garden)
	if err != nil {
		return nil, err
	}
	layout.SourceHash = key
	co.cache.Put(key, layout, co.ttl)
	return layout, nil
}
