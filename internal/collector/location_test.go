package collector

import "testing"

func TestInstanceType(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"wrld_abc:12345~public", "public"},
		{"wrld_abc:12345~hidden(usr_x)~region(eu)", "friends+"},
		{"wrld_abc:12345~friends(usr_x)", "friends"},
		{"wrld_abc:12345~private(usr_x)~canRequestInvite", "private"},
		{"wrld_abc:12345~group(grp_x)~groupAccessType(public)", "group"},
		{"wrld_abc:12345", "public"},
		{"private", "private"},
		{"offline", "offline"},
		{"traveling", "traveling"},
		{"", "unknown"},
		{"wrld_abc:12345~mystery", "unknown"},
	}
	for _, tc := range tests {
		if got := instanceType(tc.location); got != tc.want {
			t.Errorf("instanceType(%q) = %q, want %q", tc.location, got, tc.want)
		}
	}
}

func TestRegion(t *testing.T) {
	tests := []struct {
		location string
		want     string
	}{
		{"wrld_abc:1~public~region(eu)", "eu"},
		{"wrld_abc:1~hidden(usr_x)~region(jp)", "jp"},
		{"wrld_abc:1~region(use)", "use"},
		{"wrld_abc:1~region(aus)", "aus"},
		{"wrld_abc:1~public", "us"},
		{"wrld_abc:1", "us"},
	}
	for _, tc := range tests {
		if got := region(tc.location); got != tc.want {
			t.Errorf("region(%q) = %q, want %q", tc.location, got, tc.want)
		}
	}
}

func TestWorldID(t *testing.T) {
	tests := []struct {
		location string
		want     string
		ok       bool
	}{
		{"wrld_abc:12345~public", "wrld_abc", true},
		{"wrld_abc", "wrld_abc", true},
		{"private", "", false},
		{"offline", "", false},
		{"traveling", "", false},
		{"", "", false},
	}
	for _, tc := range tests {
		got, ok := worldID(tc.location)
		if got != tc.want || ok != tc.ok {
			t.Errorf("worldID(%q) = %q, %v, want %q, %v", tc.location, got, ok, tc.want, tc.ok)
		}
	}
}

func TestInstanceKey(t *testing.T) {
	tests := []struct {
		location        string
		world, instance string
		ok              bool
	}{
		{"wrld_abc:12345~public~region(eu)", "wrld_abc", "12345", true},
		{"wrld_abc:12345", "wrld_abc", "12345", true},
		{"wrld_abc", "", "", false},
		{"private", "", "", false},
		{"", "", "", false},
	}
	for _, tc := range tests {
		world, instance, ok := instanceKey(tc.location)
		if world != tc.world || instance != tc.instance || ok != tc.ok {
			t.Errorf("instanceKey(%q) = %q, %q, %v, want %q, %q, %v",
				tc.location, world, instance, ok, tc.world, tc.instance, tc.ok)
		}
	}
}

func TestTrustRank(t *testing.T) {
	tests := []struct {
		name string
		tags []string
		want int
	}{
		{"legend", []string{"system_legend"}, 5},
		{"veteran", []string{"system_trust_veteran"}, 4},
		{"trusted", []string{"system_trust_trusted"}, 3},
		{"known", []string{"system_trust_known"}, 2},
		{"basic", []string{"system_trust_basic"}, 1},
		{"probable troll", []string{"system_probable_troll"}, -1},
		{"troll", []string{"system_troll"}, -2},
		{"visitor", []string{"language_eng"}, 0},
		{"no tags", nil, 0},
		{"latest tag wins", []string{"system_trust_basic", "system_trust_known"}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := trustRank(tc.tags); got != tc.want {
				t.Errorf("trustRank(%v) = %d, want %d", tc.tags, got, tc.want)
			}
		})
	}
}

func TestOrDefault(t *testing.T) {
	if got := orDefault("", "fallback"); got != "fallback" {
		t.Errorf("orDefault empty = %q", got)
	}
	if got := orDefault("value", "fallback"); got != "value" {
		t.Errorf("orDefault non-empty = %q", got)
	}
}
