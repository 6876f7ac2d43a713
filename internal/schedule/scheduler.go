package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vrcpulse/vrcpulse/internal/metrics"
)

// Collector is one metric family's collection procedure.
type Collector interface {
	// Name labels the error counter when this collector fails.
	Name() string
	Collect(ctx context.Context) error
}

// Authenticator is the auth collaborator consulted before each cycle.
type Authenticator interface {
	Authenticate(ctx context.Context) error
	Authenticated() bool
}

// Cadence describes how often a collector runs, in cycles. The zero value
// (and Every <= 1) means every cycle. Phase shifts which cycles are due:
// {Every: 5} fires on cycles 5, 10, 15…; {Every: 5, Phase: 2} on 2, 7, 12….
type Cadence struct {
	Every int
	Phase int
}

// Due reports whether a collector with this cadence runs on the given cycle.
func (c Cadence) Due(cycle int) bool {
	if c.Every <= 1 {
		return true
	}
	return (cycle-c.Phase)%c.Every == 0
}

// Entry binds a collector to its cadence and an optional runtime guard.
type Entry struct {
	Collector Collector
	Cadence   Cadence

	// OnlyIf, when non-nil, skips the entry for any cycle where it returns
	// false (e.g. instance refresh with an empty instance cache).
	OnlyIf func() bool
}

// Config collects the scheduler's collaborators and timing knobs.
type Config struct {
	Entries       []Entry
	Auth          Authenticator
	Metrics       *metrics.Metrics
	Interval      time.Duration // inter-cycle sleep
	ReauthBackoff time.Duration // sleep after a failed re-authentication
}

// Scheduler drives the scrape cycles. One cycle runs to completion before
// the next begins; collectors never execute concurrently.
type Scheduler struct {
	entries       []Entry
	auth          Authenticator
	mx            *metrics.Metrics
	interval      time.Duration
	reauthBackoff time.Duration

	cycle int

	// now and sleep are injectable for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New constructs a Scheduler from cfg.
func New(cfg Config) *Scheduler {
	return &Scheduler{
		entries:       cfg.Entries,
		auth:          cfg.Auth,
		mx:            cfg.Metrics,
		interval:      cfg.Interval,
		reauthBackoff: cfg.ReauthBackoff,
		now:           time.Now,
		sleep:         sleepCtx,
	}
}

// Run loops scrape cycles until ctx is cancelled, returning ctx's error.
func (s *Scheduler) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !s.auth.Authenticated() {
			slog.Warn("schedule: session expired, re-authenticating")
			if err := s.auth.Authenticate(ctx); err != nil {
				slog.Error("schedule: re-authentication failed",
					"retry_in", s.reauthBackoff, "err", err)
				s.mx.ScrapeErrors.WithLabelValues("auth").Inc()
				if err := s.sleep(ctx, s.reauthBackoff); err != nil {
					return err
				}
				// Retry the tick without advancing the cycle counter.
				continue
			}
		}

		s.cycle++
		s.runCycle(ctx)

		if err := s.sleep(ctx, s.interval); err != nil {
			return err
		}
	}
}

// Cycle returns the number of the last started cycle.
func (s *Scheduler) Cycle() int { return s.cycle }

func (s *Scheduler) runCycle(ctx context.Context) {
	start := s.now()
	slog.Info("schedule: cycle starting", "cycle", s.cycle)

	for _, e := range s.entries {
		if !e.Cadence.Due(s.cycle) {
			continue
		}
		if e.OnlyIf != nil && !e.OnlyIf() {
			continue
		}
		if err := s.collect(ctx, e.Collector); err != nil {
			s.mx.ScrapeErrors.WithLabelValues(e.Collector.Name()).Inc()
			slog.Warn("schedule: collector failed",
				"collector", e.Collector.Name(), "cycle", s.cycle, "err", err)
		}
	}

	elapsed := s.now().Sub(start)
	s.mx.ScrapeDuration.Set(elapsed.Seconds())
	s.mx.LastScrapeTime.Set(float64(s.now().Unix()))
	s.mx.CycleNumber.Set(float64(s.cycle))
	slog.Info("schedule: cycle done", "cycle", s.cycle, "duration", elapsed)
}

// collect runs one collector, converting a panic into an error so a bad
// collector cannot take down the cycle loop.
func (s *Scheduler) collect(ctx context.Context, c Collector) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("collector %s panicked: %v", c.Name(), r)
		}
	}()
	return c.Collect(ctx)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
