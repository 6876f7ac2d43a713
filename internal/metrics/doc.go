// Package metrics defines every instrument the exporter publishes, all under
// the vrchat_ namespace on an injected Prometheus registry.
//
// Plain gauges/counters/histograms use client_golang's stock types. Metric
// families whose label sets must be rebuilt from scratch each cycle (per-
// friend detail, per-world stats, per-instance player counts, favorites) use
// SnapshotGauge instead: a custom prometheus.Collector whose entire series
// set is swapped atomically, so a concurrent scrape never observes a
// half-cleared set and stale label combinations drop out the moment a new
// snapshot lands.
package metrics
