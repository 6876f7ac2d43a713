package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vrcpulse/vrcpulse/internal/cache"
	"github.com/vrcpulse/vrcpulse/internal/collector"
	"github.com/vrcpulse/vrcpulse/internal/config"
	"github.com/vrcpulse/vrcpulse/internal/metrics"
	"github.com/vrcpulse/vrcpulse/internal/schedule"
	"github.com/vrcpulse/vrcpulse/internal/vrchat"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	slog.Info("vrcpulse starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"port", cfg.Exporter.Port,
		"scrape_interval", cfg.Exporter.ScrapeInterval,
		"request_delay", cfg.Exporter.RequestDelay,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Watch config file for hot-reload. Applying cadence or cache changes
	// requires a restart; reloads are logged so operators can see them land.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			slog.Info("config hot-reloaded, restart to apply scheduling changes",
				"scrape_interval", updated.Exporter.ScrapeInterval)
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mx := metrics.New(reg)

	client, err := vrchat.New(vrchat.Config{
		BaseURL:      cfg.API.BaseURL,
		UserAgent:    cfg.API.UserAgent,
		RequestDelay: cfg.Exporter.RequestDelay,
		Cooldown:     cfg.Exporter.RateLimitCooldown,
		Credentials: vrchat.Credentials{
			Cookie:   cfg.API.Auth.Cookie(),
			Username: cfg.API.Auth.Username,
			Password: cfg.API.Auth.Password(),
		},
		Observer: mx,
	})
	if err != nil {
		slog.Error("failed to build API client", "err", err)
		os.Exit(1)
	}

	worldPolicy := cache.KeepPlaceholder
	if cfg.Exporter.FailedLookup == config.FailedLookupRetry {
		worldPolicy = cache.RetryNextCycle
	}
	worlds, err := cache.New(cache.Config[vrchat.World]{
		Size:   cfg.Exporter.WorldCacheSize,
		Policy: worldPolicy,
		Placeholder: func(id string) vrchat.World {
			return vrchat.World{ID: id, Name: id}
		},
	})
	if err != nil {
		slog.Error("failed to build world cache", "err", err)
		os.Exit(1)
	}

	// Instance lookups are never cached on failure — the instance may simply
	// have closed between the friend listing and the lookup.
	instances, err := cache.New(cache.Config[collector.InstanceRecord]{
		Size:   cfg.Exporter.InstanceCacheSize,
		Policy: cache.RetryNextCycle,
	})
	if err != nil {
		slog.Error("failed to build instance cache", "err", err)
		os.Exit(1)
	}

	sched := schedule.New(schedule.Config{
		Auth:          client,
		Metrics:       mx,
		Interval:      cfg.Exporter.ScrapeInterval,
		ReauthBackoff: cfg.Exporter.ReauthBackoff,
		Entries: []schedule.Entry{
			{Collector: &collector.Platform{Client: client, Metrics: mx}},
			{Collector: &collector.CurrentUser{Client: client, Metrics: mx}},
			{Collector: &collector.OnlineFriends{
				Client: client, Metrics: mx,
				Worlds: worlds, Instances: instances,
				MaxWorldLookups:    cfg.Exporter.MaxWorldLookups,
				MaxInstanceLookups: cfg.Exporter.MaxInstanceLookups,
			}},
			{Collector: &collector.WorldRefresh{
				Client: client, Metrics: mx, Worlds: worlds,
				MaxLookups: cfg.Exporter.MaxWorldLookups,
			}},
			{
				Collector: &collector.InstanceRefresh{
					Client: client, Metrics: mx,
					Worlds: worlds, Instances: instances,
				},
				OnlyIf: func() bool { return instances.Len() > 0 },
			},
			{
				Collector: &collector.OfflineFriends{Client: client, Metrics: mx},
				Cadence:   schedule.Cadence{Every: cfg.Exporter.OfflineCadence},
			},
			{
				Collector: &collector.Favorites{Client: client, Metrics: mx},
				Cadence:   schedule.Cadence{Every: cfg.Exporter.FavoritesCadence},
			},
		},
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Exporter.Port),
		Handler: mux,
	}
	go func() {
		slog.Info("metrics endpoint listening", "addr", srv.Addr, "path", "/metrics")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics server failed", "err", err)
			cancel()
		}
	}()

	// Startup authentication is the one fatal failure in the process.
	if err := client.Authenticate(ctx); err != nil {
		slog.Error("authentication failed", "err", err)
		os.Exit(1)
	}

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("scheduler stopped", "err", err)
	}

	slog.Info("vrcpulse shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown failed", "err", err)
	}
}
