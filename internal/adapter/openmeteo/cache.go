package openmeteo

import (
	"context"
	"fmt"
	"sync"

	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"github.com/couchcryptid/beach-bulletin-etl/internal/observability"
)

// CachedProvider wraps a ForecastProvider with an in-memory LRU cache.
type CachedProvider struct {
	inner   domain.ForecastProvider
	cache   *lruCache[domain.Forecast]
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a forecast provider.
func NewCachedProvider(inner domain.ForecastProvider, maxEntries int, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache[domain.Forecast](maxEntries),
		metrics: metrics,
	}
}

func (c *CachedProvider) Forecast(ctx context.Context, q domain.ForecastQuery) (domain.Forecast, error) {
	if q.Hour == "" {
		q.Hour = domain.DefaultForecastHour
	}
	key := fmt.Sprintf("%.4f,%.4f|%s|%s", q.Lat, q.Lon, q.Date, q.Hour)
	if f, ok := c.cache.get(key); ok {
		c.metrics.ForecastCache.WithLabelValues("hit").Inc()
		return f, nil
	}
	c.metrics.ForecastCache.WithLabelValues("miss").Inc()

	f, err := c.inner.Forecast(ctx, q)
	if err != nil {
		return f, err
	}
	// Only cache forecasts with data so "not yet published" hours are retried.
	if f.Available() {
		c.cache.put(key, f)
	}
	return f, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
