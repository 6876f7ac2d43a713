package vrchat

// User is the authenticated user document returned by /auth/user.
// The four friend id lists give the coarse friend counts; the detailed
// per-friend data comes from the paginated friends endpoint instead.
type User struct {
	ID                    string   `json:"id"`
	DisplayName           string   `json:"displayName"`
	Username              string   `json:"username"`
	Status                string   `json:"status"`
	StatusDescription     string   `json:"statusDescription"`
	LastPlatform          string   `json:"last_platform"`
	DeveloperType         string   `json:"developerType"`
	HomeLocation          string   `json:"homeLocation"`
	Tags                  []string `json:"tags"`
	Friends               []string `json:"friends"`
	OnlineFriends         []string `json:"onlineFriends"`
	OfflineFriends        []string `json:"offlineFriends"`
	ActiveFriends         []string `json:"activeFriends"`
	RequiresTwoFactorAuth []string `json:"requiresTwoFactorAuth"`
}

// Friend is one record from the paginated friends list.
type Friend struct {
	ID                string `json:"id"`
	DisplayName       string `json:"displayName"`
	Status            string `json:"status"`
	LastPlatform      string `json:"last_platform"`
	Location          string `json:"location"`
	CurrentAvatarName string `json:"currentAvatarName"`
}

// World is the world detail document. It doubles as the world cache record:
// created on first reference from a friend's location, refreshed in place.
type World struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	AuthorName string `json:"authorName"`
	Visits     int    `json:"visits"`
	Favorites  int    `json:"favorites"`
	Occupants  int    `json:"occupants"`
	Heat       int    `json:"heat"`
}

// Instance is the instance detail document. The API reports the live player
// count under n_users on newer deployments and userCount on older ones.
type Instance struct {
	WorldID    string `json:"worldId"`
	InstanceID string `json:"instanceId"`
	NUsers     *int   `json:"n_users"`
	UserCount  int    `json:"userCount"`
	Region     string `json:"region"`
	Type       string `json:"type"`
}

// Players returns the live player count, preferring n_users when present.
func (i *Instance) Players() int {
	if i.NUsers != nil {
		return *i.NUsers
	}
	return i.UserCount
}

// Favorite is one record from the paginated favorites list.
type Favorite struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	FavoriteID string   `json:"favoriteId"`
	Tags       []string `json:"tags"`
}
