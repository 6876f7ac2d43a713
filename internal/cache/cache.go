package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// FetchFunc loads the upstream value for key. Implementations are expected
// to be rate-limited calls into the API client.
type FetchFunc[V any] func(ctx context.Context, key string) (V, error)

// FailurePolicy decides what Upsert does when the fetch for an absent key fails.
type FailurePolicy int

const (
	// KeepPlaceholder inserts the configured degraded placeholder record.
	// The key is then treated as resolved and only revisited by RefreshBatch.
	KeepPlaceholder FailurePolicy = iota

	// RetryNextCycle leaves the key absent so a later cycle can retry it.
	RetryNextCycle
)

// Config parameterises a Cache.
type Config[V any] struct {
	// Size is the LRU bound. Required, must be positive.
	Size int

	// Policy selects the failed-fetch behaviour for Upsert.
	Policy FailurePolicy

	// Placeholder builds the degraded record inserted under KeepPlaceholder.
	// Ignored under RetryNextCycle.
	Placeholder func(key string) V
}

// Cache is a bounded key→record store with lazy population and rotating
// refresh. It is not safe for concurrent use; the single-threaded cycle
// scheduler is the only writer.
type Cache[V any] struct {
	entries     *lru.Cache[string, V]
	policy      FailurePolicy
	placeholder func(key string) V
}

// New constructs a Cache from cfg.
func New[V any](cfg Config[V]) (*Cache[V], error) {
	entries, err := lru.New[string, V](cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	if cfg.Policy == KeepPlaceholder && cfg.Placeholder == nil {
		return nil, fmt.Errorf("cache: KeepPlaceholder requires a placeholder builder")
	}
	return &Cache[V]{
		entries:     entries,
		policy:      cfg.Policy,
		placeholder: cfg.Placeholder,
	}, nil
}

// Get returns the record for key without touching recency, so reads never
// perturb the refresh rotation.
func (c *Cache[V]) Get(key string) (V, bool) {
	return c.entries.Peek(key)
}

// Contains reports whether key is cached, without touching recency.
func (c *Cache[V]) Contains(key string) bool {
	return c.entries.Contains(key)
}

// Set inserts or replaces the record for key, marking it most recently used.
func (c *Cache[V]) Set(key string, v V) {
	c.entries.Add(key, v)
}

// Len returns the number of cached records.
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Keys returns all cached keys, least recently used first.
func (c *Cache[V]) Keys() []string {
	return c.entries.Keys()
}

// Upsert fetches and inserts key if it is absent. The returned bool reports
// whether a fetch was attempted, so callers can enforce per-cycle lookup caps
// by counting attempts rather than successes.
func (c *Cache[V]) Upsert(ctx context.Context, key string, fetch FetchFunc[V]) (bool, error) {
	if c.entries.Contains(key) {
		return false, nil
	}
	v, err := fetch(ctx, key)
	if err != nil {
		if c.policy == KeepPlaceholder {
			c.entries.Add(key, c.placeholder(key))
		}
		return true, err
	}
	c.entries.Add(key, v)
	return true, nil
}

// RefreshBatch re-fetches up to max existing records, walking keys
// oldest-recency-first. Every attempted key is bumped to most recently used —
// success or not — so a persistently failing key cannot pin the rotation.
// Failed fetches keep the previous record value. The attempt count and the
// first error encountered are returned; iteration continues past failures
// but stops once ctx is cancelled.
func (c *Cache[V]) RefreshBatch(ctx context.Context, max int, fetch FetchFunc[V]) (int, error) {
	var firstErr error
	attempted := 0
	for _, key := range c.entries.Keys() {
		if attempted >= max || ctx.Err() != nil {
			break
		}
		if _, ok := c.entries.Get(key); !ok { // bump recency on attempt
			continue
		}
		attempted++
		v, err := fetch(ctx, key)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.entries.Add(key, v)
	}
	return attempted, firstErr
}
