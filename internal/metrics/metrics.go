package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vrchat"

// UserStatusStates is the closed set of user presence states published by the
// status enum. Unrecognized upstream values are dropped, not published.
var UserStatusStates = []string{"active", "join me", "ask me", "busy", "offline"}

// Metrics holds every instrument the exporter publishes. Collectors write to
// it directly; the registry it was built on serves /metrics.
type Metrics struct {
	// Platform-wide.
	OnlineUsers prometheus.Gauge
	APIHealthy  prometheus.Gauge

	// Current user.
	UserInfo      *prometheus.GaugeVec
	UserStatus    *prometheus.GaugeVec
	UserTrustRank prometheus.Gauge

	// Friends summary.
	FriendsOnline  prometheus.Gauge
	FriendsOffline prometheus.Gauge
	FriendsActive  prometheus.Gauge
	FriendsTotal   prometheus.Gauge

	// Friend breakdowns.
	FriendByStatus   *prometheus.GaugeVec
	FriendByPlatform *prometheus.GaugeVec
	FriendByWorld    *SnapshotGauge
	FriendDetail     *SnapshotGauge

	// Worlds.
	WorldVisits    *SnapshotGauge
	WorldFavorites *SnapshotGauge
	WorldOccupants *SnapshotGauge
	WorldHeat      *SnapshotGauge
	WorldsCached   prometheus.Gauge

	// Instances.
	InstancePlayerCount *SnapshotGauge

	// Favorites.
	FavoritesTotal *SnapshotGauge

	// Request and cycle tracking.
	RequestDuration *prometheus.HistogramVec
	ScrapeErrors    *prometheus.CounterVec
	ScrapeDuration  prometheus.Gauge
	LastScrapeTime  prometheus.Gauge
	CycleNumber     prometheus.Gauge
}

// New builds all instruments and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)

	m := &Metrics{
		OnlineUsers: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "online_users_total",
			Help: "Total users currently online on VRChat.",
		}),
		APIHealthy: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "api_healthy",
			Help: "VRChat API health (1=ok, 0=down).",
		}),

		UserInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "current_user_info",
			Help: "Authenticated user info (always 1).",
		}, []string{"display_name", "user_id", "username", "status_description", "last_platform", "developer_type", "home_location"}),
		UserStatus: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "user_status",
			Help: "Current user status (1 for the active state).",
		}, []string{"status"}),
		UserTrustRank: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "user_trust_rank",
			Help: "Current user trust rank (-2=troll .. 5=legend, 0=visitor).",
		}),

		FriendsOnline: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "friends_online",
			Help: "Friends currently online.",
		}),
		FriendsOffline: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "friends_offline",
			Help: "Friends currently offline.",
		}),
		FriendsActive: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "friends_active",
			Help: "Friends active outside a private instance.",
		}),
		FriendsTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "friends_total",
			Help: "Total friends.",
		}),

		FriendByStatus: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "friend_by_status",
			Help: "Online friends by status.",
		}, []string{"status"}),
		FriendByPlatform: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "friend_by_platform",
			Help: "Online friends by platform.",
		}, []string{"platform"}),
		FriendByWorld: NewSnapshotGauge("vrchat_friend_by_world",
			"Online friends by world.",
			[]string{"world_name", "world_id"}),
		FriendDetail: NewSnapshotGauge("vrchat_friend_detail",
			"Per-friend detail (1 = online).",
			[]string{"display_name", "status", "platform", "world_name", "instance_type", "avatar_name"}),

		WorldVisits: NewSnapshotGauge("vrchat_world_visits",
			"Visit count for a cached world.",
			[]string{"world_id", "world_name", "author_name"}),
		WorldFavorites: NewSnapshotGauge("vrchat_world_favorites",
			"Favorite count for a cached world.",
			[]string{"world_id", "world_name"}),
		WorldOccupants: NewSnapshotGauge("vrchat_world_occupants",
			"Current occupants in a cached world across all instances.",
			[]string{"world_id", "world_name"}),
		WorldHeat: NewSnapshotGauge("vrchat_world_heat",
			"Popularity heat for a cached world.",
			[]string{"world_id", "world_name"}),
		WorldsCached: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "worlds_cached_total",
			Help: "Total worlds in the local cache.",
		}),

		InstancePlayerCount: NewSnapshotGauge("vrchat_instance_player_count",
			"Player count in a world instance friends are in.",
			[]string{"world_id", "world_name", "instance_id", "instance_type", "region"}),

		FavoritesTotal: NewSnapshotGauge("vrchat_favorites_total",
			"Favorites by tag/type.",
			[]string{"tag"}),

		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "api_request_duration_seconds",
			Help:    "Duration of individual VRChat API requests.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0},
		}, []string{"endpoint"}),
		ScrapeErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "scrape_errors_total",
			Help: "Failed scrape attempts by endpoint/collector.",
		}, []string{"endpoint"}),
		ScrapeDuration: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "scrape_duration_seconds",
			Help: "Duration of the last full scrape cycle.",
		}),
		LastScrapeTime: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_scrape_success_timestamp",
			Help: "Unix timestamp of the last completed scrape cycle.",
		}),
		CycleNumber: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "scrape_cycle_number",
			Help: "Total completed scrape cycles.",
		}),
	}

	reg.MustRegister(
		m.FriendByWorld, m.FriendDetail,
		m.WorldVisits, m.WorldFavorites, m.WorldOccupants, m.WorldHeat,
		m.InstancePlayerCount, m.FavoritesTotal,
	)

	return m
}

// ObserveRequest records one API request's latency under its endpoint label.
// It satisfies the client's RequestObserver interface.
func (m *Metrics) ObserveRequest(endpoint string, seconds float64) {
	m.RequestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// SetUserStatus publishes the status enum: the matching state gets 1, all
// others 0. A status outside the closed set is dropped entirely.
func (m *Metrics) SetUserStatus(status string) {
	known := false
	for _, s := range UserStatusStates {
		if s == status {
			known = true
			break
		}
	}
	if !known {
		return
	}
	for _, s := range UserStatusStates {
		v := 0.0
		if s == status {
			v = 1.0
		}
		m.UserStatus.WithLabelValues(s).Set(v)
	}
}
