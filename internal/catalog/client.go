// Package catalog provides a wrapper around the Spotify Web API.
//
// Upstream items cross the package boundary as opaque records: the engine
// never inspects their internal structure beyond the track or artist ID.
package catalog

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// topTracksMarket is the market used for artist top-track lookups.
const topTracksMarket = "US"

// Client wraps the Spotify API client with convenience methods.
type Client struct {
	api *spotify.Client
}

// New creates a new Spotify catalog client wrapper.
// The underlying client should already be authenticated.
func New(api *spotify.Client) *Client {
	return &Client{api: api}
}

// UserID returns the current user's Spotify ID.
func (c *Client) UserID(ctx context.Context) (string, error) {
	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("getting current user: %w", err)
	}
	return user.ID, nil
}
