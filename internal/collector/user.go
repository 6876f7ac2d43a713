package collector

import (
	"context"

	"github.com/vrcpulse/vrcpulse/internal/metrics"
	"github.com/vrcpulse/vrcpulse/internal/vrchat"
)

// CurrentUser publishes the authenticated user's identity info, presence
// status, trust rank, and the coarse friend counts embedded in the user
// document.
type CurrentUser struct {
	Client  *vrchat.Client
	Metrics *metrics.Metrics
}

func (c *CurrentUser) Name() string { return "auth_user" }

func (c *CurrentUser) Collect(ctx context.Context) error {
	u, err := c.Client.CurrentUser(ctx)
	if err != nil {
		return err
	}

	c.Metrics.UserInfo.Reset()
	c.Metrics.UserInfo.WithLabelValues(
		u.DisplayName,
		u.ID,
		u.Username,
		u.StatusDescription,
		u.LastPlatform,
		orDefault(u.DeveloperType, "none"),
		u.HomeLocation,
	).Set(1)

	c.Metrics.SetUserStatus(orDefault(u.Status, "offline"))
	c.Metrics.UserTrustRank.Set(float64(trustRank(u.Tags)))

	// Coarse counts from the embedded id lists. The detailed per-friend
	// collector refines the online picture separately.
	c.Metrics.FriendsOnline.Set(float64(len(u.OnlineFriends)))
	c.Metrics.FriendsOffline.Set(float64(len(u.OfflineFriends)))
	c.Metrics.FriendsActive.Set(float64(len(u.ActiveFriends)))
	c.Metrics.FriendsTotal.Set(float64(len(u.Friends)))

	return nil
}
