package geodata

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Store is the entry storage behind a Cache (process memory or Redis).
// Get must report ok=false for expired entries.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Cache memoizes one upstream provider for a fixed time-to-live.
// Concurrent misses for the same key share a single fetch.
type Cache[V any] struct {
	name  string
	ttl   time.Duration
	store Store
	group singleflight.Group

	hits        atomic.Uint64
	misses      atomic.Uint64
	fetchErrors atomic.Uint64
}

type CacheStats struct {
	Name        string `json:"name"`
	TTL         string `json:"ttl"`
	Hits        uint64 `json:"hits"`
	Misses      uint64 `json:"misses"`
	FetchErrors uint64 `json:"fetch_errors"`
	Entries     int    `json:"entries"` // -1 when the store cannot tell
}

func NewCache[V any](name string, store Store, ttl time.Duration) *Cache[V] {
	return &Cache[V]{name: name, ttl: ttl, store: store}
}

func (c *Cache[V]) TTL() time.Duration { return c.ttl }

// GetOrFetch returns the cached value for key or calls fetch and stores its result.
// Nothing is stored when fetch fails. The fetch runs detached from ctx so a
// cancelled waiter does not fail the other callers sharing it.
func (c *Cache[V]) GetOrFetch(ctx context.Context, key string, fetch func(context.Context) (V, error)) (V, error) {
	var zero V

	if v, ok := c.lookup(ctx, key); ok {
		c.hits.Add(1)
		return v, nil
	}
	c.misses.Add(1)

	fctx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (val any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s fetch panic: %v", c.name, r)
			}
		}()

		// a flight that just finished may have filled the slot
		if v, ok := c.lookup(fctx, key); ok {
			return v, nil
		}

		v, err := fetch(fctx)
		if err != nil {
			c.fetchErrors.Add(1)
			return nil, err
		}
		c.save(fctx, key, v)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	}
}

func (c *Cache[V]) Stats() CacheStats {
	entries := -1
	if l, ok := c.store.(interface{ Len() int }); ok {
		entries = l.Len()
	}
	return CacheStats{
		Name:        c.name,
		TTL:         c.ttl.String(),
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		FetchErrors: c.fetchErrors.Load(),
		Entries:     entries,
	}
}

// lookup treats any store or decode failure as a miss.
func (c *Cache[V]) lookup(ctx context.Context, key string) (V, bool) {
	var v V
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		log.Printf("[agrigeo][cache] %s get key=%s error: %v", c.name, key, err)
		return v, false
	}
	if !ok {
		return v, false
	}
	if err := json.Unmarshal(data, &v); err != nil {
		log.Printf("[agrigeo][cache] %s decode key=%s error: %v", c.name, key, err)
		return v, false
	}
	return v, true
}

func (c *Cache[V]) save(ctx context.Context, key string, v V) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[agrigeo][cache] %s encode key=%s error: %v", c.name, key, err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		log.Printf("[agrigeo][cache] %s set key=%s error: %v", c.name, key, err)
	}
}
