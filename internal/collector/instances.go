package collector

import (
	"context"
	"log/slog"

	"github.com/vrcpulse/vrcpulse/internal/cache"
	"github.com/vrcpulse/vrcpulse/internal/metrics"
	"github.com/vrcpulse/vrcpulse/internal/vrchat"
)

// InstanceRefresh re-fetches the live player count for every cached instance
// and swaps in a fresh player-count series set. There is no per-cycle cap —
// the instance cache is already bounded by the resolution cap and LRU size.
type InstanceRefresh struct {
	Client    *vrchat.Client
	Metrics   *metrics.Metrics
	Worlds    *cache.Cache[vrchat.World]
	Instances *cache.Cache[InstanceRecord]
}

func (c *InstanceRefresh) Name() string { return "instances" }

func (c *InstanceRefresh) Collect(ctx context.Context) error {
	keys := c.Instances.Keys()
	series := make([]metrics.Series, 0, len(keys))
	var firstErr error

	for _, key := range keys {
		rec, ok := c.Instances.Get(key)
		if !ok {
			continue
		}

		inst, err := c.Client.Instance(ctx, rec.WorldID, rec.InstanceID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			slog.Warn("instance refresh failed", "instance", key, "err", err)
		} else {
			rec.PlayerCount = inst.Players()
			rec.Region = orDefault(inst.Region, rec.Region)
			rec.Type = orDefault(inst.Type, rec.Type)
			c.Instances.Set(key, rec)
		}

		name := cachedWorldName(c.Worlds, rec.WorldID)
		if name == rec.WorldID && rec.WorldName != "" {
			name = rec.WorldName
		}
		series = append(series, metrics.Series{
			Labels: []string{
				rec.WorldID,
				name,
				rec.InstanceID,
				orDefault(rec.Type, "unknown"),
				orDefault(rec.Region, "us"),
			},
			Value: float64(rec.PlayerCount),
		})
	}

	c.Metrics.InstancePlayerCount.Replace(series)
	return firstErr
}
