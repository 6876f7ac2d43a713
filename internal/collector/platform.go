package collector

import (
	"context"

	"github.com/vrcpulse/vrcpulse/internal/metrics"
	"github.com/vrcpulse/vrcpulse/internal/vrchat"
)

// Platform publishes the global online-user count and API health from the
// unauthenticated /visits scalar.
type Platform struct {
	Client  *vrchat.Client
	Metrics *metrics.Metrics
}

func (p *Platform) Name() string { return "visits" }

func (p *Platform) Collect(ctx context.Context) error {
	n, err := p.Client.Visits(ctx)
	if err != nil {
		p.Metrics.APIHealthy.Set(0)
		return err
	}
	p.Metrics.APIHealthy.Set(1)
	p.Metrics.OnlineUsers.Set(float64(n))
	return nil
}
