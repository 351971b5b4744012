package domain

import (
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
)

// Track represents a resolved, playable audio track.
// Tracks are values: once built they are never modified.
type Track struct {
	URL          string // Stream source and cache key
	Title        string
	WebpageURL   string // Link shown to users, may be empty
	ThumbnailURL string
	Duration     time.Duration // Zero when unknown
	RequestedBy  string        // Display name of the requester
	RequesterID  snowflake.ID
}

// NewTrack creates a new Track. Negative durations are treated as unknown.
func NewTrack(
	url string,
	title string,
	webpageURL string,
	thumbnailURL string,
	duration time.Duration,
	requestedBy string,
	requesterID snowflake.ID,
) Track {
	if duration < 0 {
		duration = 0
	}

	return Track{
		URL:          url,
		Title:        title,
		WebpageURL:   webpageURL,
		ThumbnailURL: thumbnailURL,
		Duration:     duration,
		RequestedBy:  requestedBy,
		RequesterID:  requesterID,
	}
}

// IsValid returns true if the track has the minimum required fields.
func (t Track) IsValid() bool {
	return t.URL != "" && t.Title != ""
}

// DisplayURL returns the link to show users, falling back to the stream URL.
func (t Track) DisplayURL() string {
	if t.WebpageURL != "" {
		return t.WebpageURL
	}
	return t.URL
}

// FormattedDuration returns the duration as m:ss or h:mm:ss.
func (t Track) FormattedDuration() string {
	if t.Duration <= 0 {
		return "?:??"
	}

	totalSeconds := int(t.Duration.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return strconv.Itoa(hours) + ":" + pad(minutes) + ":" + pad(seconds)
	}
	return strconv.Itoa(minutes) + ":" + pad(seconds)
}

// TotalDuration sums the known durations of the given tracks.
func TotalDuration(tracks []Track) time.Duration {
	var total time.Duration
	for _, t := range tracks {
		total += t.Duration
	}
	return total
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
