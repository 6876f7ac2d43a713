package collector

import (
	"context"
	"log/slog"

	"github.com/vrcpulse/vrcpulse/internal/cache"
	"github.com/vrcpulse/vrcpulse/internal/metrics"
	"github.com/vrcpulse/vrcpulse/internal/vrchat"
)

// WorldRefresh rotates through the world cache re-fetching visit/favorite/
// occupant/heat stats, then republishes gauges for every cached world — not
// just the ones refreshed this cycle. Staleness is implicit in the values.
type WorldRefresh struct {
	Client  *vrchat.Client
	Metrics *metrics.Metrics
	Worlds  *cache.Cache[vrchat.World]

	// MaxLookups caps refresh fetches per cycle; shares the new-world budget.
	MaxLookups int
}

func (c *WorldRefresh) Name() string { return "worlds" }

func (c *WorldRefresh) Collect(ctx context.Context) error {
	if c.Worlds.Len() == 0 {
		return nil
	}

	refreshed, err := c.Worlds.RefreshBatch(ctx, c.MaxLookups, fetchWorld(c.Client))

	keys := c.Worlds.Keys()
	visits := make([]metrics.Series, 0, len(keys))
	favorites := make([]metrics.Series, 0, len(keys))
	occupants := make([]metrics.Series, 0, len(keys))
	heat := make([]metrics.Series, 0, len(keys))

	for _, wid := range keys {
		w, ok := c.Worlds.Get(wid)
		if !ok {
			continue
		}
		name := orDefault(w.Name, wid)
		visits = append(visits, metrics.Series{
			Labels: []string{wid, name, w.AuthorName}, Value: float64(w.Visits),
		})
		favorites = append(favorites, metrics.Series{
			Labels: []string{wid, name}, Value: float64(w.Favorites),
		})
		occupants = append(occupants, metrics.Series{
			Labels: []string{wid, name}, Value: float64(w.Occupants),
		})
		heat = append(heat, metrics.Series{
			Labels: []string{wid, name}, Value: float64(w.Heat),
		})
	}

	c.Metrics.WorldVisits.Replace(visits)
	c.Metrics.WorldFavorites.Replace(favorites)
	c.Metrics.WorldOccupants.Replace(occupants)
	c.Metrics.WorldHeat.Replace(heat)
	c.Metrics.WorldsCached.Set(float64(c.Worlds.Len()))

	slog.Info("world metrics published", "cached", len(keys), "refreshed", refreshed)
	return err
}

// fetchWorld adapts the client's world endpoint to the cache's fetch contract.
func fetchWorld(client *vrchat.Client) cache.FetchFunc[vrchat.World] {
	return func(ctx context.Context, id string) (vrchat.World, error) {
		w, err := client.World(ctx, id)
		if err != nil {
			return vrchat.World{}, err
		}
		return *w, nil
	}
}

// cachedWorldName resolves a display name for wid, falling back to the raw
// world id when the world is not cached or cached degraded.
func cachedWorldName(worlds *cache.Cache[vrchat.World], wid string) string {
	if w, ok := worlds.Get(wid); ok && w.Name != "" {
		return w.Name
	}
	return wid
}
