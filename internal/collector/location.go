package collector

import "strings"

// Location sentinels meaning "no resolvable location".
const (
	locPrivate   = "private"
	locOffline   = "offline"
	locTraveling = "traveling"
)

// instanceTypeNames maps location modifiers to their display labels, in
// match-precedence order.
var instanceTypeNames = []struct{ key, label string }{
	{"public", "public"},
	{"hidden", "friends+"},
	{"friends", "friends"},
	{"private", "private"},
	{"group", "group"},
}

// regions the API encodes in ~region(...) modifiers.
var regions = []string{"us", "use", "eu", "jp", "aus"}

// trustRanks maps system tags to numeric trust ranks.
var trustRanks = map[string]int{
	"system_legend":         5,
	"system_trust_veteran":  4,
	"system_trust_trusted":  3,
	"system_trust_known":    2,
	"system_trust_basic":    1,
	"system_probable_troll": -1,
	"system_troll":          -2,
}

func isSentinel(location string) bool {
	return location == locPrivate || location == locOffline || location == locTraveling
}

// instanceType extracts the human-readable instance type from a location
// string. Sentinels pass through unchanged, an empty location is "unknown",
// and a location without any ~modifier is a bare public instance.
func instanceType(location string) string {
	if location == "" {
		return "unknown"
	}
	if isSentinel(location) {
		return location
	}
	if !strings.Contains(location, "~") {
		return "public"
	}
	for _, t := range instanceTypeNames {
		if strings.Contains(location, "~"+t.key) {
			return t.label
		}
	}
	return "unknown"
}

// region extracts the instance region from a location string, defaulting to us.
func region(location string) string {
	for _, r := range regions {
		if strings.Contains(location, "~region("+r+")") {
			return r
		}
	}
	return "us"
}

// worldID extracts the world id from a location string. ok is false for
// sentinels and empty locations, which carry no world at all.
func worldID(location string) (string, bool) {
	if location == "" || isSentinel(location) {
		return "", false
	}
	id, _, _ := strings.Cut(location, ":")
	return id, true
}

// instanceKey splits a location into its world and instance ids. ok is false
// when the location has no instance part.
func instanceKey(location string) (world, instance string, ok bool) {
	if location == "" || isSentinel(location) {
		return "", "", false
	}
	world, rest, found := strings.Cut(location, ":")
	if !found {
		return "", "", false
	}
	instance, _, _ = strings.Cut(rest, "~")
	return world, instance, true
}

// trustRank derives the numeric trust rank from a user's tag list. Tags are
// scanned in reverse order so a tag appended later wins; no match is 0
// (visitor).
func trustRank(tags []string) int {
	for i := len(tags) - 1; i >= 0; i-- {
		if rank, ok := trustRanks[tags[i]]; ok {
			return rank
		}
	}
	return 0
}

// orDefault substitutes fallback for an empty string.
func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
