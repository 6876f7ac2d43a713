package collector

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vrcpulse/vrcpulse/internal/cache"
	"github.com/vrcpulse/vrcpulse/internal/metrics"
	"github.com/vrcpulse/vrcpulse/internal/vrchat"
)

// testEnv wires a client, metrics registry, and fresh caches against a fake
// API server for one collector test.
type testEnv struct {
	client    *vrchat.Client
	mx        *metrics.Metrics
	reg       *prometheus.Registry
	worlds    *cache.Cache[vrchat.World]
	instances *cache.Cache[InstanceRecord]
}

func newTestEnv(t *testing.T, h http.Handler) *testEnv {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	reg := prometheus.NewRegistry()
	mx := metrics.New(reg)

	client, err := vrchat.New(vrchat.Config{
		BaseURL:   srv.URL,
		UserAgent: "vrcpulse-test/1.0",
		Cooldown:  time.Second,
		Observer:  mx,
	})
	if err != nil {
		t.Fatalf("vrchat.New() error = %v", err)
	}

	worlds, err := cache.New(cache.Config[vrchat.World]{
		Size:        100,
		Policy:      cache.KeepPlaceholder,
		Placeholder: func(id string) vrchat.World { return vrchat.World{ID: id, Name: id} },
	})
	if err != nil {
		t.Fatalf("world cache: %v", err)
	}
	instances, err := cache.New(cache.Config[InstanceRecord]{
		Size:   100,
		Policy: cache.RetryNextCycle,
	})
	if err != nil {
		t.Fatalf("instance cache: %v", err)
	}

	return &testEnv{client: client, mx: mx, reg: reg, worlds: worlds, instances: instances}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

// gatherValue returns the value of the series of family name whose labels
// exactly match labels (nil for an unlabelled metric). Fails the test when
// the series does not exist.
func gatherValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	v, ok := findSeries(t, reg, name, labels)
	if !ok {
		t.Fatalf("series %s%v not found", name, labels)
	}
	return v
}

// hasSeries reports whether the exact series exists.
func hasSeries(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) bool {
	t.Helper()
	_, ok := findSeries(t, reg, name, labels)
	return ok
}

func findSeries(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) (float64, bool) {
	t.Helper()
	fams, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	for _, mf := range fams {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if len(m.GetLabel()) != len(labels) {
				continue
			}
			match := true
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					match = false
					break
				}
			}
			if !match {
				continue
			}
			switch {
			case m.Gauge != nil:
				return m.GetGauge().GetValue(), true
			case m.Counter != nil:
				return m.GetCounter().GetValue(), true
			default:
				return m.GetUntyped().GetValue(), true
			}
		}
	}
	return 0, false
}
