package ports

import (
	"context"
	"strings"
	"time"
)

// ExternalTrack is track metadata from the playlist/track metadata provider.
type ExternalTrack struct {
	ID       string
	Name     string
	Artists  []string
	Duration time.Duration
	ImageURL string // Album art, largest available

	// Available is false for playlist entries without an underlying track
	// (removed, local files or region-locked content).
	Available bool
}

// SearchTerms returns the text used to look the track up on the watch platform.
func (t ExternalTrack) SearchTerms() string {
	return strings.TrimSpace(t.Name + " " + strings.Join(t.Artists, " "))
}

// DisplayTitle returns "name - artists".
func (t ExternalTrack) DisplayTitle() string {
	if len(t.Artists) == 0 {
		return t.Name
	}
	return t.Name + " - " + strings.Join(t.Artists, ", ")
}

// ExternalPlaylist is playlist metadata with all of its entries in order.
type ExternalPlaylist struct {
	ID            string
	Name          string
	URL           string
	TrackCount    int
	TotalDuration time.Duration
	CoverImageURL string
	Items         []ExternalTrack
}

// MetadataProvider fetches playlist and track metadata from the external catalog.
type MetadataProvider interface {
	// GetPlaylist returns the playlist with every entry.
	GetPlaylist(ctx context.Context, id string) (*ExternalPlaylist, error)

	// GetTrack returns one track.
	GetTrack(ctx context.Context, id string) (*ExternalTrack, error)
}
