package catalog

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// TopTracks retrieves the user's top tracks over the medium-term window.
func (c *Client) TopTracks(ctx context.Context, limit int) ([]Item, error) {
	page, err := c.api.CurrentUsersTopTracks(ctx,
		spotify.Limit(limit),
		spotify.Timerange(spotify.MediumTermRange),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching top tracks: %w", err)
	}

	items := make([]Item, 0, len(page.Tracks))
	for _, track := range page.Tracks {
		item, err := newItem(track.ID.String(), track)
		if err != nil {
			return nil, fmt.Errorf("encoding top track: %w", err)
		}
		if item.ID == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// SavedTracksPage retrieves one page of the user's saved tracks. Items carry
// the inner track objects; saved entries without a track ID are skipped.
func (c *Client) SavedTracksPage(ctx context.Context, limit, offset int) ([]Item, error) {
	page, err := c.api.CurrentUsersTracks(ctx,
		spotify.Limit(limit),
		spotify.Offset(offset),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching saved tracks (offset %d): %w", offset, err)
	}

	items := make([]Item, 0, len(page.Tracks))
	for _, saved := range page.Tracks {
		item, err := newItem(saved.ID.String(), saved.FullTrack)
		if err != nil {
			return nil, fmt.Errorf("encoding saved track: %w", err)
		}
		if item.ID == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// TopArtists retrieves the user's top artists over the medium-term window.
func (c *Client) TopArtists(ctx context.Context, limit int) ([]Item, error) {
	page, err := c.api.CurrentUsersTopArtists(ctx,
		spotify.Limit(limit),
		spotify.Timerange(spotify.MediumTermRange),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching top artists: %w", err)
	}

	items := make([]Item, 0, len(page.Artists))
	for _, artist := range page.Artists {
		item, err := newItem(artist.ID.String(), artist)
		if err != nil {
			return nil, fmt.Errorf("encoding top artist: %w", err)
		}
		if item.ID == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// ArtistTopTracks retrieves an artist's top tracks.
func (c *Client) ArtistTopTracks(ctx context.Context, artistID string) ([]Item, error) {
	tracks, err := c.api.GetArtistsTopTracks(ctx, spotify.ID(artistID), topTracksMarket)
	if err != nil {
		return nil, fmt.Errorf("fetching artist top tracks: %w", err)
	}

	items := make([]Item, 0, len(tracks))
	for _, track := range tracks {
		item, err := newItem(track.ID.String(), track)
		if err != nil {
			return nil, fmt.Errorf("encoding artist track: %w", err)
		}
		if item.ID == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}
