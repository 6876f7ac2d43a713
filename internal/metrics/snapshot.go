package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Series is one labelled sample in a SnapshotGauge's current set. Labels must
// match the gauge's label dimensions in order and count.
type Series struct {
	Labels []string
	Value  float64
}

// SnapshotGauge is a gauge family whose full series set is replaced
// atomically. Unlike GaugeVec's Reset-then-Set, there is no window in which
// a concurrent scrape sees a partially rebuilt set.
type SnapshotGauge struct {
	desc *prometheus.Desc

	mu     sync.RWMutex
	series []Series
}

// NewSnapshotGauge creates an unregistered SnapshotGauge with the given
// variable label dimensions.
func NewSnapshotGauge(name, help string, labels []string) *SnapshotGauge {
	return &SnapshotGauge{desc: prometheus.NewDesc(name, help, labels, nil)}
}

// Replace swaps in series as the complete current set. The slice is retained;
// callers must not modify it afterwards.
func (g *SnapshotGauge) Replace(series []Series) {
	g.mu.Lock()
	g.series = series
	g.mu.Unlock()
}

// Len returns the number of series in the current set.
func (g *SnapshotGauge) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.series)
}

// Describe implements prometheus.Collector.
func (g *SnapshotGauge) Describe(ch chan<- *prometheus.Desc) {
	ch <- g.desc
}

// Collect implements prometheus.Collector.
func (g *SnapshotGauge) Collect(ch chan<- prometheus.Metric) {
	g.mu.RLock()
	series := g.series
	g.mu.RUnlock()
	for _, s := range series {
		ch <- prometheus.MustNewConstMetric(g.desc, prometheus.GaugeValue, s.Value, s.Labels...)
	}
}
