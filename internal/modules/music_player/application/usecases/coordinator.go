package usecases

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/domain"
)

// DefaultQueueDisplayLimit is how many queued tracks ListQueue returns.
const DefaultQueueDisplayLimit = 10

// CoordinatorConfig holds the playback parameters shared by all guilds.
type CoordinatorConfig struct {
	IdleTimeout            time.Duration
	MaxConsecutiveFailures int
	QueueDisplayLimit      int
}

// EnqueueInput contains the input for the Enqueue use case.
type EnqueueInput struct {
	GuildID               snowflake.ID
	RequesterID           snowflake.ID
	RequesterName         string
	NotificationChannelID snowflake.ID
	Query                 string
}

// EnqueueOutput contains the result of the Enqueue use case.
type EnqueueOutput struct {
	Track    domain.Track // First track added
	Position int          // 1-based queue position of Track
	Started  bool         // Track starts playing right away
	Queued   int          // Tracks added by this request so far

	// Set for playlist requests.
	Playlist *ports.PlaylistSummary
	Pending  int // Playlist entries still being loaded in the background
}

// ControlInput identifies the guild for pause, resume, skip and stop.
type ControlInput struct {
	GuildID               snowflake.ID
	NotificationChannelID snowflake.ID // Optional: updates notification channel if non-zero
}

// SkipOutput contains the result of the Skip use case.
type SkipOutput struct {
	Skipped *domain.Track
	Next    *domain.Track // nil if the queue is empty
}

// QueueListing is the displayable state of a guild's queue.
type QueueListing struct {
	State    domain.PlaybackState
	Current  *domain.Track
	Tracks   []domain.Track // At most the display limit, in play order
	Total    int            // Number of queued tracks
	Overflow int            // Queued tracks not included in Tracks
	Loading  bool
}

// PlaybackCoordinator routes commands to per-guild playback sessions.
type PlaybackCoordinator struct {
	voiceState   ports.VoiceStateProvider
	resolver     *TrackResolver
	presenter    ports.Presenter
	watchdog     *InactivityWatchdog
	sessions     *SessionRegistry
	displayLimit int
}

// NewPlaybackCoordinator creates a new PlaybackCoordinator.
func NewPlaybackCoordinator(
	voiceState ports.VoiceStateProvider,
	resolver *TrackResolver,
	connector ports.VoiceConnector,
	opener ports.StreamOpener,
	presenter ports.Presenter,
	cfg CoordinatorConfig,
) *PlaybackCoordinator {
	if cfg.QueueDisplayLimit <= 0 {
		cfg.QueueDisplayLimit = DefaultQueueDisplayLimit
	}

	c := &PlaybackCoordinator{
		voiceState:   voiceState,
		resolver:     resolver,
		presenter:    presenter,
		displayLimit: cfg.QueueDisplayLimit,
	}
	c.watchdog = NewInactivityWatchdog(cfg.IdleTimeout, c.onIdle)
	c.sessions = NewSessionRegistry(func(guildID snowflake.ID) *GuildPlaybackSession {
		slog.Debug("creating playback session", "guild", guildID)
		return NewGuildPlaybackSession(guildID, SessionDeps{
			Connector:              connector,
			Opener:                 opener,
			Presenter:              presenter,
			Watchdog:               c.watchdog,
			MaxConsecutiveFailures: cfg.MaxConsecutiveFailures,
		})
	})

	return c
}

// Enqueue resolves the query and adds the result to the guild's queue,
// joining or moving to the requester's voice channel first.
func (c *PlaybackCoordinator) Enqueue(ctx context.Context, input EnqueueInput) (*EnqueueOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, ErrEmptyQuery
	}

	voiceChannelID, err := c.voiceState.GetUserVoiceChannel(input.GuildID, input.RequesterID)
	if err != nil {
		return nil, err
	}
	if voiceChannelID == 0 {
		return nil, ErrNotInVoice
	}

	requester := Requester{ID: input.RequesterID, Name: input.RequesterName}
	query := c.resolver.Classify(input.Query)

	var (
		tracks   []domain.Track
		playlist *PlaylistResolution
	)
	switch query.Kind {
	case domain.QueryKindExternalPlaylist:
		playlist, err = c.resolver.ResolveExternalPlaylist(ctx, query, requester)
		if playlist != nil {
			tracks = playlist.Initial
		}
	case domain.QueryKindExternalTrack:
		var track domain.Track
		track, err = c.resolver.ResolveExternalTrack(ctx, query, requester)
		tracks = []domain.Track{track}
	default:
		var track domain.Track
		track, err = c.resolver.ResolveSingle(ctx, query, requester)
		tracks = []domain.Track{track}
	}
	if err != nil {
		slog.Info("failed to resolve query",
			"guild", input.GuildID,
			"query", input.Query,
			"kind", query.Kind.String(),
			"error", err,
		)
		return nil, err
	}

	session := c.sessions.GetOrCreate(input.GuildID)
	session.SetNotificationChannelID(input.NotificationChannelID)

	position, started, err := session.Enqueue(ctx, voiceChannelID, tracks...)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}
	output := &EnqueueOutput{
		Track:    tracks[0],
		Position: position,
		Started:  started,
		Queued:   len(tracks),
	}

	if playlist != nil {
		output.Pending = playlist.Remaining()
		output.Playlist = &ports.PlaylistSummary{
			Name:          playlist.Playlist.Name,
			URL:           playlist.Playlist.URL,
			TrackCount:    playlist.Playlist.TrackCount,
			TotalDuration: playlist.Playlist.TotalDuration,
			CoverImageURL: playlist.Playlist.CoverImageURL,
			RequestedBy:   requester.Name,
		}

		if output.Pending > 0 {
			meta, start := playlist.Playlist, playlist.NextIndex
			session.StartPlaylistLoad(func(ctx context.Context) iter.Seq[domain.Track] {
				return c.resolver.ResolveRemaining(ctx, meta, start, requester)
			})
		}

		if input.NotificationChannelID != 0 {
			if err := c.presenter.PostPlaylistAdded(ctx, input.NotificationChannelID, *output.Playlist); err != nil {
				slog.Warn("failed to post playlist summary", "guild", input.GuildID, "error", err)
			}
		}
	}

	slog.Info("enqueued",
		"guild", input.GuildID,
		"kind", query.Kind.String(),
		"track", output.Track.Title,
		"queued", output.Queued,
		"pending", output.Pending,
		"position", output.Position,
	)

	return output, nil
}

// Pause pauses the guild's current track.
func (c *PlaybackCoordinator) Pause(ctx context.Context, input ControlInput) error {
	session, err := c.session(input)
	if err != nil {
		return err
	}
	return session.Pause(ctx)
}

// Resume resumes the guild's paused track.
func (c *PlaybackCoordinator) Resume(ctx context.Context, input ControlInput) error {
	session, err := c.session(input)
	if err != nil {
		return err
	}
	return session.Resume(ctx)
}

// TogglePause pauses or resumes the guild's current track and reports
// whether playback is now paused.
func (c *PlaybackCoordinator) TogglePause(ctx context.Context, input ControlInput) (bool, error) {
	session, err := c.session(input)
	if err != nil {
		return false, err
	}
	return session.TogglePause(ctx)
}

// Skip stops the guild's current track so that the next one starts.
func (c *PlaybackCoordinator) Skip(ctx context.Context, input ControlInput) (*SkipOutput, error) {
	session, err := c.session(input)
	if err != nil {
		return nil, err
	}

	next := session.Snapshot(1)
	skipped, err := session.Skip(ctx)
	if err != nil {
		return nil, err
	}

	output := &SkipOutput{Skipped: skipped}
	if len(next.Queue) > 0 {
		output.Next = &next.Queue[0]
	}
	return output, nil
}

// Stop clears the guild's queue and leaves the voice channel.
func (c *PlaybackCoordinator) Stop(ctx context.Context, input ControlInput) error {
	session, err := c.session(input)
	if err != nil {
		return err
	}
	return session.Stop(ctx)
}

// ListQueue returns the guild's current track and the head of its queue.
func (c *PlaybackCoordinator) ListQueue(guildID snowflake.ID) QueueListing {
	session := c.sessions.Get(guildID)
	if session == nil {
		return QueueListing{State: domain.PlaybackIdle}
	}

	snap := session.Snapshot(c.displayLimit)
	return QueueListing{
		State:    snap.State,
		Current:  snap.Current,
		Tracks:   snap.Queue,
		Total:    snap.QueueLen,
		Overflow: snap.QueueLen - len(snap.Queue),
		Loading:  snap.Loading,
	}
}

// HandleVoiceLost cleans up after the bot was disconnected from a voice
// channel by someone else.
func (c *PlaybackCoordinator) HandleVoiceLost(ctx context.Context, guildID, channelID snowflake.ID) {
	session := c.sessions.Get(guildID)
	if session == nil {
		return
	}
	session.VoiceLost(ctx, channelID)
}

// Shutdown stops every session and leaves all voice channels.
func (c *PlaybackCoordinator) Shutdown(ctx context.Context) {
	c.watchdog.Stop()

	for _, session := range c.sessions.All() {
		if err := session.Stop(ctx); err != nil && !errors.Is(err, ErrNotConnected) {
			slog.Warn("failed to stop session", "guild", session.GuildID(), "error", err)
		}
		session.Close()
		c.sessions.Remove(session.GuildID())
	}
}

func (c *PlaybackCoordinator) session(input ControlInput) (*GuildPlaybackSession, error) {
	session := c.sessions.Get(input.GuildID)
	if session == nil {
		return nil, ErrNotConnected
	}
	session.SetNotificationChannelID(input.NotificationChannelID)
	return session, nil
}

func (c *PlaybackCoordinator) onIdle(guildID snowflake.ID) {
	if session := c.sessions.Get(guildID); session != nil {
		session.CheckIdle()
	}
}
