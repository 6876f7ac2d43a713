package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vrcpulse/vrcpulse/internal/metrics"
)

// fakeCollector records which cycles it ran on and can be told to fail or
// panic.
type fakeCollector struct {
	name   string
	runs   int
	err    error
	panics bool
}

func (f *fakeCollector) Name() string { return f.name }

func (f *fakeCollector) Collect(context.Context) error {
	f.runs++
	if f.panics {
		panic("boom")
	}
	return f.err
}

// fakeAuth fails the first failures re-authentication attempts, then holds
// the session valid.
type fakeAuth struct {
	failures int
	attempts int
	valid    bool
}

func (a *fakeAuth) Authenticated() bool { return a.valid }

func (a *fakeAuth) Authenticate(context.Context) error {
	a.attempts++
	if a.attempts <= a.failures {
		return errors.New("login rejected")
	}
	a.valid = true
	return nil
}

// runCycles drives the scheduler with an instant injected sleep, cancelling
// after n completed cycles.
func runCycles(t *testing.T, s *Scheduler, n int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slept := 0
	s.sleep = func(ctx context.Context, _ time.Duration) error {
		slept++
		if slept >= n {
			cancel()
		}
		return ctx.Err()
	}

	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
}

func newTestScheduler(entries []Entry, auth Authenticator) (*Scheduler, *metrics.Metrics) {
	mx := metrics.New(prometheus.NewRegistry())
	s := New(Config{
		Entries:       entries,
		Auth:          auth,
		Metrics:       mx,
		Interval:      time.Minute,
		ReauthBackoff: time.Minute,
	})
	return s, mx
}

func TestCadence_Due(t *testing.T) {
	tests := []struct {
		name    string
		cadence Cadence
		due     []int
		notDue  []int
	}{
		{"zero value runs every cycle", Cadence{}, []int{1, 2, 3, 100}, nil},
		{"every 1 runs every cycle", Cadence{Every: 1}, []int{1, 2, 3}, nil},
		{"every 5", Cadence{Every: 5}, []int{5, 10, 15}, []int{1, 2, 3, 4, 6, 9, 11}},
		{"every 3", Cadence{Every: 3}, []int{3, 6, 9}, []int{1, 2, 4, 5, 7, 8}},
		{"phase shifts the firing cycles", Cadence{Every: 5, Phase: 2}, []int{2, 7, 12}, []int{5, 10}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, cycle := range tc.due {
				if !tc.cadence.Due(cycle) {
					t.Errorf("Due(%d) = false, want true", cycle)
				}
			}
			for _, cycle := range tc.notDue {
				if tc.cadence.Due(cycle) {
					t.Errorf("Due(%d) = true, want false", cycle)
				}
			}
		})
	}
}

func TestRun_CadenceMix(t *testing.T) {
	every := &fakeCollector{name: "every"}
	offline := &fakeCollector{name: "offline"}
	favorites := &fakeCollector{name: "favorites"}

	s, _ := newTestScheduler([]Entry{
		{Collector: every},
		{Collector: offline, Cadence: Cadence{Every: 5}},
		{Collector: favorites, Cadence: Cadence{Every: 3}},
	}, &fakeAuth{valid: true})

	runCycles(t, s, 15)

	if every.runs != 15 {
		t.Errorf("every-cycle collector runs = %d, want 15", every.runs)
	}
	if offline.runs != 3 {
		t.Errorf("every-5 collector runs = %d, want 3", offline.runs)
	}
	if favorites.runs != 5 {
		t.Errorf("every-3 collector runs = %d, want 5", favorites.runs)
	}
	if s.Cycle() != 15 {
		t.Errorf("Cycle() = %d, want 15", s.Cycle())
	}
}

func TestRun_FailureIsolation(t *testing.T) {
	bad := &fakeCollector{name: "bad", err: errors.New("upstream down")}
	good := &fakeCollector{name: "good"}

	s, mx := newTestScheduler([]Entry{
		{Collector: bad},
		{Collector: good},
	}, &fakeAuth{valid: true})

	runCycles(t, s, 4)

	if good.runs != 4 {
		t.Errorf("good collector runs = %d, want 4", good.runs)
	}
	if got := counterValue(t, mx, "bad"); got != 4 {
		t.Errorf("scrape_errors{bad} = %v, want 4", got)
	}
	if got := counterValue(t, mx, "good"); got != 0 {
		t.Errorf("scrape_errors{good} = %v, want 0", got)
	}
}

func TestRun_PanicIsolation(t *testing.T) {
	wild := &fakeCollector{name: "wild", panics: true}
	calm := &fakeCollector{name: "calm"}

	s, mx := newTestScheduler([]Entry{
		{Collector: wild},
		{Collector: calm},
	}, &fakeAuth{valid: true})

	runCycles(t, s, 3)

	if calm.runs != 3 {
		t.Errorf("calm collector runs = %d, want 3", calm.runs)
	}
	if got := counterValue(t, mx, "wild"); got != 3 {
		t.Errorf("scrape_errors{wild} = %v, want 3", got)
	}
}

func TestRun_ReauthBackoffHoldsCycle(t *testing.T) {
	c := &fakeCollector{name: "c"}
	auth := &fakeAuth{failures: 2}

	s, mx := newTestScheduler([]Entry{{Collector: c}}, auth)

	// Two failed auth ticks sleep the backoff, then one real cycle runs.
	runCycles(t, s, 3)

	if auth.attempts != 3 {
		t.Errorf("auth attempts = %d, want 3", auth.attempts)
	}
	if s.Cycle() != 1 {
		t.Errorf("Cycle() = %d, want 1 (failed auth must not advance it)", s.Cycle())
	}
	if c.runs != 1 {
		t.Errorf("collector runs = %d, want 1", c.runs)
	}
	if got := counterValue(t, mx, "auth"); got != 2 {
		t.Errorf("scrape_errors{auth} = %v, want 2", got)
	}
}

func TestRun_OnlyIfGate(t *testing.T) {
	gated := &fakeCollector{name: "gated"}
	open := false

	s, _ := newTestScheduler([]Entry{
		{Collector: gated, OnlyIf: func() bool { return open }},
	}, &fakeAuth{valid: true})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	slept := 0
	s.sleep = func(ctx context.Context, _ time.Duration) error {
		slept++
		open = slept >= 2 // gate opens from cycle 3 onward
		if slept >= 5 {
			cancel()
		}
		return ctx.Err()
	}

	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want context.Canceled", err)
	}
	if gated.runs != 3 {
		t.Errorf("gated runs = %d, want 3", gated.runs)
	}
}

func TestRun_CycleMetrics(t *testing.T) {
	c := &fakeCollector{name: "c"}
	s, mx := newTestScheduler([]Entry{{Collector: c}}, &fakeAuth{valid: true})

	base := time.Unix(1700000000, 0)
	calls := 0
	s.now = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * 250 * time.Millisecond)
	}

	runCycles(t, s, 1)

	if got := gaugeValue(t, mx.CycleNumber); got != 1 {
		t.Errorf("scrape_cycle_number = %v, want 1", got)
	}
	if got := gaugeValue(t, mx.ScrapeDuration); got != 0.25 {
		t.Errorf("scrape_duration_seconds = %v, want 0.25", got)
	}
	if got := gaugeValue(t, mx.LastScrapeTime); got != float64(base.Add(750*time.Millisecond).Unix()) {
		t.Errorf("last_scrape_success_timestamp = %v", got)
	}
}

func counterValue(t *testing.T, mx *metrics.Metrics, label string) float64 {
	t.Helper()
	c, err := mx.ScrapeErrors.GetMetricWithLabelValues(label)
	if err != nil {
		t.Fatalf("GetMetricWithLabelValues(%q) error = %v", label, err)
	}
	return readValue(t, c)
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	return readValue(t, g)
}

func readValue(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var pb dto.Metric
	if err := m.Write(&pb); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if pb.Counter != nil {
		return pb.GetCounter().GetValue()
	}
	return pb.GetGauge().GetValue()
}
