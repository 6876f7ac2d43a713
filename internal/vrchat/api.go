package vrchat

import (
	"context"
	"net/url"
	"strconv"
)

// pageSize is the offset/limit page size used by every paginated endpoint.
const pageSize = 100

// Visits returns the global online-user count. No auth required.
func (c *Client) Visits(ctx context.Context) (int, error) {
	var n int
	if err := c.get(ctx, "/visits", nil, &n); err != nil {
		return 0, err
	}
	return n, nil
}

// CurrentUser fetches the authenticated user document. A response without an
// id field is rejected as malformed.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, "/auth/user", nil, &u); err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, &APIError{Kind: KindMalformed, Endpoint: "/auth/user"}
	}
	return &u, nil
}

// Friends pages through the friends list for the requested partition.
// Pagination stops on the first short or empty page. On error the friends
// fetched so far are returned alongside it, so callers can choose to proceed
// with a partial list.
func (c *Client) Friends(ctx context.Context, offline bool) ([]Friend, error) {
	var all []Friend
	for offset := 0; ; offset += pageSize {
		params := url.Values{
			"offset":  {strconv.Itoa(offset)},
			"n":       {strconv.Itoa(pageSize)},
			"offline": {strconv.FormatBool(offline)},
		}
		var page []Friend
		if err := c.get(ctx, "/auth/user/friends", params, &page); err != nil {
			return all, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}

// World fetches the world detail document for id. A response without a name
// is rejected as malformed, since every derived metric labels by it.
func (c *Client) World(ctx context.Context, id string) (*World, error) {
	var w World
	if err := c.get(ctx, "/worlds/"+id, nil, &w); err != nil {
		return nil, err
	}
	if w.Name == "" {
		return nil, &APIError{Kind: KindMalformed, Endpoint: "/worlds/" + id}
	}
	if w.ID == "" {
		w.ID = id
	}
	return &w, nil
}

// Instance fetches live detail for one world instance.
func (c *Client) Instance(ctx context.Context, worldID, instanceID string) (*Instance, error) {
	var inst Instance
	if err := c.get(ctx, "/instances/"+worldID+":"+instanceID, nil, &inst); err != nil {
		return nil, err
	}
	return &inst, nil
}

// Favorites pages through the favorites list of the given kind
// (world, avatar, or friend). Partial results accompany any error.
func (c *Client) Favorites(ctx context.Context, kind string) ([]Favorite, error) {
	var all []Favorite
	for offset := 0; ; offset += pageSize {
		params := url.Values{
			"type":   {kind},
			"offset": {strconv.Itoa(offset)},
			"n":      {strconv.Itoa(pageSize)},
		}
		var page []Favorite
		if err := c.get(ctx, "/favorites", params, &page); err != nil {
			return all, err
		}
		all = append(all, page...)
		if len(page) < pageSize {
			return all, nil
		}
	}
}
