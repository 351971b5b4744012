package ports

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/domain"
)

// Custom IDs of the playback control buttons attached to "Now Playing" messages.
const (
	ControlTogglePause = "music:toggle"
	ControlSkip        = "music:skip"
	ControlStop        = "music:stop"
)

// PlaylistSummary is shown when a playlist request is accepted.
type PlaylistSummary struct {
	Name          string
	URL           string
	TrackCount    int
	TotalDuration time.Duration
	CoverImageURL string
	RequestedBy   string
}

// Presenter defines the interface for user-visible output in Discord channels.
// Failures are reported to the caller, which treats them as best-effort.
type Presenter interface {
	// PostNowPlaying posts a "Now Playing" message with playback controls.
	PostNowPlaying(
		ctx context.Context,
		channelID snowflake.ID,
		info domain.NowPlaying,
	) (domain.NowPlayingMessage, error)

	// UpdateNowPlaying re-renders a posted "Now Playing" message, e.g. after pause.
	UpdateNowPlaying(ctx context.Context, msg domain.NowPlayingMessage, info domain.NowPlaying) error

	// DeleteNowPlaying removes a posted "Now Playing" message.
	DeleteNowPlaying(ctx context.Context, msg domain.NowPlayingMessage) error

	// PostNotice posts a short informational message.
	PostNotice(ctx context.Context, channelID snowflake.ID, text string) error

	// PostPlaylistAdded posts the summary of an accepted playlist.
	PostPlaylistAdded(ctx context.Context, channelID snowflake.ID, summary PlaylistSummary) error
}
