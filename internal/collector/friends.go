package collector

import (
	"context"
	"log/slog"
	"strings"

	"github.com/vrcpulse/vrcpulse/internal/cache"
	"github.com/vrcpulse/vrcpulse/internal/metrics"
	"github.com/vrcpulse/vrcpulse/internal/vrchat"
)

// InstanceRecord is the cached state for one world instance friends occupy.
// Keyed by "worldID:instanceID"; WorldName is denormalized at creation so a
// display name survives eviction of the world entry.
type InstanceRecord struct {
	WorldID     string
	InstanceID  string
	WorldName   string
	Region      string
	Type        string
	PlayerCount int
}

// OnlineFriends pages through the online friends list, resolves unknown
// worlds and instances through the caches (capped per cycle), and publishes
// the per-status/per-platform/per-world breakdowns plus per-friend detail.
type OnlineFriends struct {
	Client    *vrchat.Client
	Metrics   *metrics.Metrics
	Worlds    *cache.Cache[vrchat.World]
	Instances *cache.Cache[InstanceRecord]

	// MaxWorldLookups and MaxInstanceLookups cap new resolutions per cycle.
	// Ids beyond the cap stay unresolved until a later cycle.
	MaxWorldLookups    int
	MaxInstanceLookups int
}

func (c *OnlineFriends) Name() string { return "friends" }

func (c *OnlineFriends) Collect(ctx context.Context) error {
	friends, err := c.Client.Friends(ctx, false)
	if err != nil {
		if len(friends) == 0 {
			// An outage reads as nobody online, not as last cycle's list.
			c.Metrics.FriendDetail.Replace(nil)
			c.Metrics.FriendByWorld.Replace(nil)
			return err
		}
		slog.Warn("friends: continuing with partial list",
			"fetched", len(friends), "err", err)
	}

	c.resolveWorlds(ctx, friends)
	c.resolveInstances(ctx, friends)

	statusCounts := make(map[string]int)
	platformCounts := make(map[string]int)
	worldCounts := make(map[string]int)
	detail := make([]metrics.Series, 0, len(friends))

	for _, f := range friends {
		status := orDefault(f.Status, "offline")
		platform := orDefault(f.LastPlatform, "unknown")
		statusCounts[status]++
		platformCounts[platform]++

		var worldName, instType string
		if wid, ok := worldID(f.Location); ok && strings.Contains(f.Location, ":") {
			worldCounts[wid]++
			worldName = c.worldName(wid)
			instType = instanceType(f.Location)
		} else {
			worldName = orDefault(f.Location, "unknown")
			instType = orDefault(f.Location, "unknown")
		}

		detail = append(detail, metrics.Series{
			Labels: []string{
				orDefault(f.DisplayName, "unknown"),
				status,
				platform,
				worldName,
				instType,
				orDefault(f.CurrentAvatarName, "unknown"),
			},
			Value: 1,
		})
	}

	c.Metrics.FriendDetail.Replace(detail)

	for status, n := range statusCounts {
		c.Metrics.FriendByStatus.WithLabelValues(status).Set(float64(n))
	}
	for platform, n := range platformCounts {
		c.Metrics.FriendByPlatform.WithLabelValues(platform).Set(float64(n))
	}

	byWorld := make([]metrics.Series, 0, len(worldCounts))
	for wid, n := range worldCounts {
		byWorld = append(byWorld, metrics.Series{
			Labels: []string{c.worldName(wid), wid},
			Value:  float64(n),
		})
	}
	c.Metrics.FriendByWorld.Replace(byWorld)

	slog.Info("online friends collected",
		"friends", len(friends),
		"worlds_cached", c.Worlds.Len(),
		"instances_cached", c.Instances.Len())
	return nil
}

// resolveWorlds populates the world cache for locations whose world id is
// not yet cached, up to MaxWorldLookups fetch attempts this cycle.
func (c *OnlineFriends) resolveWorlds(ctx context.Context, friends []vrchat.Friend) {
	attempts := 0
	seen := make(map[string]bool)
	for _, f := range friends {
		wid, ok := worldID(f.Location)
		if !ok || seen[wid] {
			continue
		}
		seen[wid] = true
		if attempts >= c.MaxWorldLookups {
			continue
		}
		attempted, err := c.Worlds.Upsert(ctx, wid, fetchWorld(c.Client))
		if attempted {
			attempts++
		}
		if err != nil {
			slog.Warn("world lookup failed", "world_id", wid, "err", err)
		}
	}
}

// resolveInstances populates the instance cache for locations carrying an
// instance id, up to MaxInstanceLookups fetch attempts this cycle. Failed
// instance lookups are never cached — the instance may simply have closed.
func (c *OnlineFriends) resolveInstances(ctx context.Context, friends []vrchat.Friend) {
	attempts := 0
	seen := make(map[string]bool)
	for _, f := range friends {
		wid, iid, ok := instanceKey(f.Location)
		if !ok {
			continue
		}
		key := wid + ":" + iid
		if seen[key] {
			continue
		}
		seen[key] = true
		if attempts >= c.MaxInstanceLookups {
			continue
		}
		attempted, err := c.Instances.Upsert(ctx, key, func(ctx context.Context, _ string) (InstanceRecord, error) {
			inst, err := c.Client.Instance(ctx, wid, iid)
			if err != nil {
				return InstanceRecord{}, err
			}
			return InstanceRecord{
				WorldID:     wid,
				InstanceID:  iid,
				WorldName:   c.worldName(wid),
				Region:      orDefault(inst.Region, "us"),
				Type:        orDefault(inst.Type, "public"),
				PlayerCount: inst.Players(),
			}, nil
		})
		if attempted {
			attempts++
		}
		if err != nil {
			slog.Warn("instance lookup failed", "instance", key, "err", err)
		}
	}
}

func (c *OnlineFriends) worldName(wid string) string {
	return cachedWorldName(c.Worlds, wid)
}

// OfflineFriends pages through the offline partition and publishes only the
// offline count. Scheduled on a slow cadence — the list changes rarely and a
// full page-through is expensive.
type OfflineFriends struct {
	Client  *vrchat.Client
	Metrics *metrics.Metrics
}

func (c *OfflineFriends) Name() string { return "friends_offline" }

func (c *OfflineFriends) Collect(ctx context.Context) error {
	friends, err := c.Client.Friends(ctx, true)
	if err != nil && len(friends) == 0 {
		return err
	}
	c.Metrics.FriendsOffline.Set(float64(len(friends)))
	slog.Info("offline friends collected", "friends", len(friends))
	return err
}
