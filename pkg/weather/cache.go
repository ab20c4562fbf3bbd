package weather

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultCacheSize = 100
	defaultCacheTTL  = 5 * time.Minute
)

// Cache holds API responses for a fixed time. The least recently used entry is
// evicted once the cache is full.
type Cache struct {
	lru *expirable.LRU[string, Document]
}

func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}

	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	return &Cache{
		lru: expirable.NewLRU[string, Document](size, nil, ttl),
	}
}

func (c *Cache) Get(key string) (Document, bool) {
	return c.lru.Get(key)
}

func (c *Cache) Set(key string, doc Document) {
	c.lru.Add(key, doc)
}

func (c *Cache) Clear() {
	c.lru.Purge()
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

func stationsKey() string {
	return "stations"
}

func stationKey(stationID int) string {
	return fmt.Sprintf("station:%d", stationID)
}

func observationKey(stationID int) string {
	return fmt.Sprintf("observation:%d", stationID)
}

func forecastKey(stationID int) string {
	return fmt.Sprintf("forecast:%d", stationID)
}
