// Package collector implements one collector per published metric family.
//
// Each collector is a pure function of (client, caches) → (metric side
// effects, cache mutations) behind the shared Collector contract used by the
// cycle scheduler: Name() for the error-counter label and Collect(ctx) for
// one cycle's worth of work. Collectors never call each other and never
// handle their peers' failures — isolation lives in the scheduler.
//
// location.go holds the parsing of VRChat location strings
// (worldId[:instanceId[~modifier(arg)...]] with the private/offline/traveling
// sentinels) plus the tag→trust-rank table.
package collector
