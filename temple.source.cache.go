package temple

import (
	"context"
	"sync"
	"time"
)

// CachedSource wraps any TemplateSource with in-memory caching of Get.
// Misses are cached too, for NegativeCacheTTL.
type CachedSource struct {
	source TemplateSource
	config CacheConfig
	now    func() time.Time

	mu     sync.RWMutex
	cache  map[string]*cacheEntry
	closed bool
}

// CacheConfig configures the caching behavior.
type CacheConfig struct {
	// TTL is how long cached entries remain valid.
	// Default: 5 minutes.
	TTL time.Duration `yaml:"ttl"`

	// MaxEntries is the maximum number of cached templates.
	// When exceeded, the least recently accessed entry is evicted.
	// Default: 1000.
	MaxEntries int `yaml:"max_entries"`

	// NegativeCacheTTL is how long to cache "not found" results.
	// Set to 0 to disable negative caching.
	NegativeCacheTTL time.Duration `yaml:"negative_ttl"`
}

// DefaultCacheConfig returns the default caching configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		TTL:              DefaultCacheTTL,
		MaxEntries:       DefaultCacheMaxEntries,
		NegativeCacheTTL: DefaultNegativeCacheTTL,
	}
}

type cacheEntry struct {
	record     *SourceRecord
	notFound   bool
	cachedAt   time.Time
	accessedAt time.Time
	key        string
}

// NewCachedSource wraps a source with caching.
func NewCachedSource(source TemplateSource, config CacheConfig) *CachedSource {
	if config.TTL == 0 {
		config.TTL = DefaultCacheTTL
	}
	if config.MaxEntries == 0 {
		config.MaxEntries = DefaultCacheMaxEntries
	}

	return &CachedSource{
		source: source,
		config: config,
		now:    time.Now,
		cache:  make(map[string]*cacheEntry),
	}
}

// Get retrieves a template, using the cache when available.
func (s *CachedSource) Get(ctx context.Context, name string) (*SourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, NewSourceClosedError()
	}
	entry, ok := s.cache[name]
	if ok && s.isValid(entry) {
		entry.accessedAt = s.now()
		s.mu.Unlock()

		if entry.notFound {
			return nil, NewSourceNotFoundError(name)
		}
		return copyRecord(entry.record), nil
	}
	s.mu.Unlock()

	rec, err := s.source.Get(ctx, name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, NewSourceClosedError()
	}

	if err != nil {
		if IsNotFound(err) && s.config.NegativeCacheTTL > 0 {
			s.addEntry(name, nil, true)
		}
		return nil, err
	}

	s.addEntry(name, rec, false)
	return copyRecord(rec), nil
}

// Save stores a template and invalidates its cache entry.
func (s *CachedSource) Save(ctx context.Context, rec *SourceRecord) error {
	if err := s.source.Save(ctx, rec); err != nil {
		return err
	}
	s.Invalidate(rec.Name)
	return nil
}

// Delete removes a template and invalidates its cache entry.
func (s *CachedSource) Delete(ctx context.Context, name string) error {
	if err := s.source.Delete(ctx, name); err != nil {
		return err
	}
	s.Invalidate(name)
	return nil
}

// List bypasses the cache.
func (s *CachedSource) List(ctx context.Context) ([]string, error) {
	return s.source.List(ctx)
}

// Close drops the cache and closes the wrapped source.
func (s *CachedSource) Close() error {
	s.mu.Lock()
	s.closed = true
	s.cache = nil
	s.mu.Unlock()

	return s.source.Close()
}

// Invalidate removes a template from the cache.
func (s *CachedSource) Invalidate(name string) {
	s.mu.Lock()
	delete(s.cache, name)
	s.mu.Unlock()
}

// InvalidateAll clears the entire cache.
func (s *CachedSource) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string]*cacheEntry)
	s.mu.Unlock()
}

// Stats returns cache statistics.
func (s *CachedSource) Stats() CacheStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := CacheStats{Entries: len(s.cache)}
	for _, entry := range s.cache {
		if !s.isValid(entry) {
			continue
		}
		if entry.notFound {
			stats.NegativeEntries++
		} else {
			stats.ValidEntries++
		}
	}
	return stats
}

// CacheStats contains cache statistics.
type CacheStats struct {
	Entries         int
	ValidEntries    int
	NegativeEntries int
}

func (s *CachedSource) isValid(entry *cacheEntry) bool {
	ttl := s.config.TTL
	if entry.notFound {
		ttl = s.config.NegativeCacheTTL
	}
	return s.now().Sub(entry.cachedAt) < ttl
}

// addEntry adds an entry, evicting first when full.
// Caller must hold write lock.
func (s *CachedSource) addEntry(name string, rec *SourceRecord, notFound bool) {
	if _, exists := s.cache[name]; !exists && len(s.cache) >= s.config.MaxEntries {
		s.evictOldest()
	}

	now := s.now()
	s.cache[name] = &cacheEntry{
		record:     copyRecord(rec),
		notFound:   notFound,
		cachedAt:   now,
		accessedAt: now,
		key:        name,
	}
}

// evictOldest removes the least recently accessed entry.
// Caller must hold write lock.
func (s *CachedSource) evictOldest() {
	var oldest *cacheEntry
	for _, entry := range s.cache {
		if oldest == nil || entry.accessedAt.Before(oldest.accessedAt) {
			oldest = entry
		}
	}
	if oldest != nil {
		delete(s.cache, oldest.key)
	}
}
