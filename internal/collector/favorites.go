package collector

import (
	"context"
	"log/slog"

	"github.com/vrcpulse/vrcpulse/internal/metrics"
	"github.com/vrcpulse/vrcpulse/internal/vrchat"
)

// favoriteKinds are the typed favorites pages fetched each run.
var favoriteKinds = []string{"world", "avatar", "friend"}

// Favorites fetches all three typed favorites pages and publishes counts by
// primary tag (first tag if present, else the favorite's type). Scheduled on
// a slow cadence.
type Favorites struct {
	Client  *vrchat.Client
	Metrics *metrics.Metrics
}

func (c *Favorites) Name() string { return "favorites" }

func (c *Favorites) Collect(ctx context.Context) error {
	var all []vrchat.Favorite
	var firstErr error
	for _, kind := range favoriteKinds {
		favs, err := c.Client.Favorites(ctx, kind)
		all = append(all, favs...)
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	tagCounts := make(map[string]int)
	for _, fav := range all {
		tag := orDefault(fav.Type, "unknown")
		if len(fav.Tags) > 0 {
			tag = fav.Tags[0]
		}
		tagCounts[tag]++
	}

	series := make([]metrics.Series, 0, len(tagCounts))
	for tag, n := range tagCounts {
		series = append(series, metrics.Series{Labels: []string{tag}, Value: float64(n)})
	}
	c.Metrics.FavoritesTotal.Replace(series)

	slog.Info("favorites collected", "total", len(all), "tags", len(tagCounts))
	return firstErr
}
