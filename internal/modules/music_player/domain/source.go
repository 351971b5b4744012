package domain

import (
	"net/url"
	"strings"
)

// TrackSource represents the origin platform of a track.
type TrackSource string

const (
	TrackSourceYouTube    TrackSource = "youtube"
	TrackSourceSpotify    TrackSource = "spotify"
	TrackSourceSoundCloud TrackSource = "soundcloud"
	TrackSourceOther      TrackSource = "other"
)

// ParseTrackSource derives the platform from a track's display link.
func ParseTrackSource(link string) TrackSource {
	u, err := url.Parse(link)
	if err != nil {
		return TrackSourceOther
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case host == "youtu.be" || strings.HasSuffix(host, "youtube.com"):
		return TrackSourceYouTube
	case strings.HasSuffix(host, "spotify.com"):
		return TrackSourceSpotify
	case strings.HasSuffix(host, "soundcloud.com"):
		return TrackSourceSoundCloud
	default:
		return TrackSourceOther
	}
}

// Color returns the embed accent color for the platform.
func (s TrackSource) Color() int {
	switch s {
	case TrackSourceYouTube:
		return 0xFF0000
	case TrackSourceSpotify:
		return 0x1DB954
	case TrackSourceSoundCloud:
		return 0xFF5500
	default:
		return 0x5865F2
	}
}
