package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"
)

// spotifyPageSize is the largest page the playlist items endpoint serves.
const spotifyPageSize = 100

// SpotifyConfig configures the Spotify metadata provider.
type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	Market       string // ISO country code used to decide track availability

	// Overrides for the API and token endpoints; empty uses Spotify's.
	BaseURL  string
	TokenURL string
}

// SpotifyProvider fetches playlist and track metadata from the Spotify Web API
// using the client credentials flow.
type SpotifyProvider struct {
	client *spotify.Client
	market string
}

// NewSpotifyProvider creates a SpotifyProvider. Tokens are fetched and
// refreshed on demand with ctx.
func NewSpotifyProvider(ctx context.Context, cfg SpotifyConfig) *SpotifyProvider {
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}

	creds := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     tokenURL,
	}

	return newSpotifyProvider(creds.Client(ctx), cfg)
}

func newSpotifyProvider(httpClient *http.Client, cfg SpotifyConfig) *SpotifyProvider {
	opts := []spotify.ClientOption{spotify.WithRetry(true)}
	if cfg.BaseURL != "" {
		opts = append(opts, spotify.WithBaseURL(cfg.BaseURL))
	}

	return &SpotifyProvider{
		client: spotify.New(httpClient, opts...),
		market: cfg.Market,
	}
}

func (p *SpotifyProvider) requestOptions() []spotify.RequestOption {
	if p.market == "" {
		return nil
	}
	return []spotify.RequestOption{spotify.Market(p.market)}
}

// GetPlaylist returns the playlist with every entry, following pagination.
// It returns nil if the playlist does not exist.
func (p *SpotifyProvider) GetPlaylist(ctx context.Context, id string) (*ports.ExternalPlaylist, error) {
	pl, err := p.client.GetPlaylist(ctx, spotify.ID(id), p.requestOptions()...)
	if err != nil {
		if isSpotifyNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get playlist: %w", err)
	}

	opts := append(p.requestOptions(), spotify.Limit(spotifyPageSize))
	page, err := p.client.GetPlaylistItems(ctx, spotify.ID(id), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist items: %w", err)
	}

	playlist := &ports.ExternalPlaylist{
		ID:    string(pl.ID),
		Name:  pl.Name,
		URL:   pl.ExternalURLs["spotify"],
		Items: make([]ports.ExternalTrack, 0, int(page.Total)),
	}
	if len(pl.Images) > 0 {
		playlist.CoverImageURL = pl.Images[0].URL
	}

	for {
		for _, item := range page.Items {
			track := convertPlaylistItem(item)
			playlist.Items = append(playlist.Items, track)
			if track.Available {
				playlist.TrackCount++
				playlist.TotalDuration += track.Duration
			}
		}

		err := p.client.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get playlist items: %w", err)
		}
	}

	return playlist, nil
}

// GetTrack returns one track, or nil if it does not exist.
func (p *SpotifyProvider) GetTrack(ctx context.Context, id string) (*ports.ExternalTrack, error) {
	t, err := p.client.GetTrack(ctx, spotify.ID(id), p.requestOptions()...)
	if err != nil {
		if isSpotifyNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get track: %w", err)
	}

	track := convertSpotifyTrack(t)
	return &track, nil
}

func convertPlaylistItem(item spotify.PlaylistItem) ports.ExternalTrack {
	if item.Track.Track == nil {
		return ports.ExternalTrack{}
	}
	track := convertSpotifyTrack(item.Track.Track)
	if item.IsLocal {
		track.Available = false
	}
	return track
}

func convertSpotifyTrack(t *spotify.FullTrack) ports.ExternalTrack {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	track := ports.ExternalTrack{
		ID:        string(t.ID),
		Name:      t.Name,
		Artists:   artists,
		Duration:  time.Duration(t.Duration) * time.Millisecond,
		Available: t.Name != "" && (t.IsPlayable == nil || *t.IsPlayable),
	}
	if len(t.Album.Images) > 0 {
		track.ImageURL = t.Album.Images[0].URL
	}
	return track
}

func isSpotifyNotFound(err error) bool {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusNotFound || apiErr.Status == http.StatusBadRequest
	}
	return false
}

// Ensure SpotifyProvider implements ports.MetadataProvider.
var _ ports.MetadataProvider = (*SpotifyProvider)(nil)
