// Package cache provides the bounded resource caches for expensive API
// sub-resources (worlds, instances).
//
// A Cache is a size-bounded LRU keyed by string. Reads use Peek so lookups
// never disturb recency; only inserts and refreshes do. RefreshBatch walks
// keys oldest-recency-first and bumps each attempted key, which yields a
// round-robin rotation through the cache across cycles.
//
// Upsert's behaviour on a failed fetch is a policy choice: KeepPlaceholder
// inserts a degraded record so a dead id is not re-fetched every cycle,
// RetryNextCycle leaves the key absent so a later cycle tries again.
package cache
