// Package vrchat implements the rate-limited VRChat API client.
//
// All requests flow through Client.get, which enforces a single global
// minimum interval between calls via a shared rate.Limiter and records
// per-request latency against a histogram label derived from the endpoint's
// first path segment (so /worlds/wrld_abc collapses to "worlds").
//
// Responses map onto a small error taxonomy (errors.go): 401 flips the shared
// authenticated flag and returns KindUnauthorized, 429 forces a fixed cooldown
// and returns KindRateLimited, anything else non-200 is KindTransport, and a
// body missing required fields is KindMalformed. The client never retries —
// retry policy belongs to the cycle scheduler.
//
// Typed endpoint wrappers (api.go) cover the consumed API surface: the global
// online-user scalar, the authenticated user document, the paginated friends
// list (online/offline partitions), world and instance detail, and paginated
// favorites by kind.
package vrchat
