package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"weathernow/datasource"
	"weathernow/models"
)

// CachedProvider wraps a WeatherProvider and adds caching functionality
type CachedProvider struct {
	provider       datasource.WeatherProvider
	cache          map[string]cacheEntry
	mutex          sync.RWMutex
	cacheDuration  time.Duration
	cacheHitCount  int
	cacheMissCount int
	logger         *log.Logger
}

// cacheEntry represents a cached weather item with its timestamp
type cacheEntry struct {
	Data      models.Weather
	Timestamp time.Time
}

// Ensure CachedProvider implements the WeatherProvider interface
var _ datasource.WeatherProvider = (*CachedProvider)(nil)

// NewCachedProvider creates a new cached wrapper around a weather provider
func NewCachedProvider(provider datasource.WeatherProvider, cacheDuration time.Duration, logger *log.Logger) *CachedProvider {
	if logger == nil {
		logger = log.Default()
	}

	return &CachedProvider{
		provider:      provider,
		cache:         make(map[string]cacheEntry),
		cacheDuration: cacheDuration,
		logger:        logger,
	}
}

// Name returns the name of the underlying provider with [Cached] suffix
func (c *CachedProvider) Name() string {
	return c.provider.Name() + " [Cached]"
}

// CurrentWeather fetches weather data, using cache when available. Cache
// keys are the trimmed, lowercased city so "London" and " london " share an
// entry, matching the trim the provider applies to its input.
func (c *CachedProvider) CurrentWeather(ctx context.Context, city string) (models.Weather, error) {
	key := cacheKey(city)

	c.mutex.RLock()
	entry, found := c.cache[key]
	c.mutex.RUnlock()

	// If found and not expired, return the cached data
	if found && time.Since(entry.Timestamp) < c.cacheDuration {
		c.mutex.Lock()
		c.cacheHitCount++
		c.mutex.Unlock()

		c.logger.Debug("cache hit",
			"city", city, "provider", c.provider.Name(),
			"age", time.Since(entry.Timestamp).Round(time.Second))

		return entry.Data, nil
	}

	// Cache miss or expired, fetch fresh data
	c.mutex.Lock()
	c.cacheMissCount++
	c.mutex.Unlock()

	c.logger.Debug("cache miss", "city", city, "provider", c.provider.Name())

	data, err := c.provider.CurrentWeather(ctx, city)
	if err != nil {
		return models.Weather{}, err
	}

	c.mutex.Lock()
	c.cache[key] = cacheEntry{
		Data:      data,
		Timestamp: time.Now(),
	}
	c.mutex.Unlock()

	return data, nil
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedProvider) CacheStats() (hits, misses int) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.cacheHitCount, c.cacheMissCount
}

func cacheKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
